package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/todayscomfort/backend/internal/apperrors"
	"github.com/todayscomfort/backend/internal/models"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Client calls the generative-text API and turns a mood string into a
// structured card. One request per call; transport errors get a single retry,
// upstream HTTP errors do not.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	style   PromptStyle
	httpc   *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the upstream endpoint (used by tests)
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// New creates a gateway client. An empty apiKey is allowed here; Generate
// reports it as a ConfigurationError before any call is made.
func New(apiKey, model string, style PromptStyle, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		style:   style,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate produces a structured card for the given mood.
//
// Empty or whitespace-only moods fail with ValidationError before any network
// call. A missing API key fails with ConfigurationError. Upstream transport or
// HTTP failures fail with UpstreamError carrying the upstream status; a
// response whose extracted text is missing or not the requested JSON fails
// with MalformedResponseError.
func (c *Client) Generate(ctx context.Context, mood string) (*models.GeneratedCard, error) {
	mood = strings.TrimSpace(mood)
	if mood == "" {
		return nil, apperrors.NewValidation("기분을 입력해주세요.")
	}

	if c.apiKey == "" {
		log.Println("Card generation API key missing")
		return nil, apperrors.NewConfiguration("GEMINI_API_KEY가 설정되지 않았습니다.")
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(c.style, mood)}}}},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	resp, err := c.post(ctx, url, body)
	if err != nil {
		return nil, apperrors.NewUpstream(0, "카드를 만들지 못했어요. 잠시 후 다시 시도해주세요.")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(resp.Body)
		log.Printf("Card generation upstream error: status=%d body=%s\n", resp.StatusCode, errBody)
		return nil, apperrors.NewUpstream(resp.StatusCode, "카드를 만들지 못했어요. 잠시 후 다시 시도해주세요.")
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, apperrors.NewMalformedResponse("AI 응답을 이해하지 못했어요. 다시 시도해주세요.")
	}

	text := ""
	if len(gr.Candidates) > 0 && len(gr.Candidates[0].Content.Parts) > 0 {
		text = gr.Candidates[0].Content.Parts[0].Text
	}
	if strings.TrimSpace(text) == "" {
		log.Println("Card generation response missing text field")
		return nil, apperrors.NewMalformedResponse("AI 응답을 이해하지 못했어요. 다시 시도해주세요.")
	}

	// The model is asked to emit JSON but may fence it in code-block markers.
	cleaned := cleanJSON(text)

	var card models.GeneratedCard
	if err := json.Unmarshal([]byte(cleaned), &card); err != nil {
		log.Printf("Card generation JSON parse error: %v\n", err)
		return nil, apperrors.NewMalformedResponse("AI 응답을 이해하지 못했어요. 다시 시도해주세요.")
	}

	return &card, nil
}

// post issues the upstream request, retrying once on transport errors only.
// A completed response is returned as-is regardless of status.
func (c *Client) post(ctx context.Context, url string, body []byte) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpc.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

// cleanJSON strips code-fence markers the model sometimes wraps around its JSON
func cleanJSON(input string) string {
	input = strings.ReplaceAll(input, "```json", "")
	input = strings.ReplaceAll(input, "```", "")
	return strings.TrimSpace(input)
}
