package gateway

import "fmt"

// PromptStyle selects which instruction template the gateway embeds the mood
// into. The style is fixed per deployment, never per request.
type PromptStyle string

const (
	// StyleBlessing produces a short, forceful blessing-card message.
	StyleBlessing PromptStyle = "blessing"
	// StyleEssay produces a longer, quieter essay-style message.
	StyleEssay PromptStyle = "essay"
)

const blessingTemplate = `사용자의 기분: %s

[중요 지시사항]
1. 답변은 무조건 한국어로 작성해.
2. 전체 길이는 2~3문장으로 짧고 강렬하게 작성해.
3. 화려하고 강렬한 붓글씨 스타일의 축복 메시지 카드 톤으로 작성해.
4. 어미는 "~하세요", "~입니다", "~바랍니다" 처럼 단호하고 긍정적인 표현을 사용해.
5. 힘 있고 축복하는 인사말 형태로 작성해줘.
6. 보기 좋게 문장 단위로 줄바꿈을 해줘. (각 문장마다 줄바꿈)

예시 형식:
"기분 좋은 행복한 휴일 보내세요.
늘 함께해주셔서 감사합니다.
당신의 앞날에 축복이 가득하길 기원합니다."

또는

"오늘도 수고하셨습니다.
당신의 모든 순간이 빛나기를 바랍니다.
건강하고 행복한 나날 되세요."

응답은 JSON 형식 { quote: "2~3문장 축복 메시지 (문장 단위 줄바꿈)", author: "오늘의 위로", message: "짧은 응원" } 으로 제공해줘.`

const essayTemplate = `사용자의 기분: %s

[중요 지시사항]
1. 답변은 무조건 한국어로 작성해.
2. 전체 길이는 5~7문장의 차분한 에세이 톤으로 작성해.
3. 위로하고 공감하는 잔잔한 문체를 사용해.
4. 어미는 "~해요", "~이에요" 처럼 부드러운 표현을 사용해.
5. 보기 좋게 문장 단위로 줄바꿈을 해줘.

응답은 JSON 형식 { quote: "5~7문장 에세이 (문장 단위 줄바꿈)", author: "오늘의 위로", message: "짧은 응원" } 으로 제공해줘.`

// buildPrompt embeds the mood into the deployment's instruction template
func buildPrompt(style PromptStyle, mood string) string {
	switch style {
	case StyleEssay:
		return fmt.Sprintf(essayTemplate, mood)
	default:
		return fmt.Sprintf(blessingTemplate, mood)
	}
}
