package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todayscomfort/backend/internal/apperrors"
)

func candidateResponse(text string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]string{{"text": text}},
			}},
		},
	})
	return string(body)
}

func TestGenerate_InputValidation(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	c := New("test-key", "gemini-2.5-flash", StyleBlessing, WithBaseURL(srv.URL))

	t.Run("empty mood", func(t *testing.T) {
		_, err := c.Generate(context.Background(), "")
		require.Error(t, err)
		var ve *apperrors.ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("whitespace-only mood", func(t *testing.T) {
		_, err := c.Generate(context.Background(), "   \n\t ")
		require.Error(t, err)
		var ve *apperrors.ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	// Neither rejection may reach the upstream
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestGenerate_MissingAPIKey(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	c := New("", "gemini-2.5-flash", StyleBlessing, WithBaseURL(srv.URL))

	_, err := c.Generate(context.Background(), "기분 좋아요")
	require.Error(t, err)
	var ce *apperrors.ConfigurationError
	assert.ErrorAs(t, err, &ce)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestGenerate_Success(t *testing.T) {
	card := `{"quote": "오늘도 수고하셨습니다.\n당신의 앞날에 축복이 가득하길 기원합니다.", "author": "오늘의 위로", "message": "힘내세요"}`

	t.Run("plain JSON", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Contains(t, r.URL.Path, "/v1beta/models/gemini-2.5-flash:generateContent")
			assert.Equal(t, "test-key", r.URL.Query().Get("key"))

			var req generateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Len(t, req.Contents, 1)
			require.Len(t, req.Contents[0].Parts, 1)
			assert.Contains(t, req.Contents[0].Parts[0].Text, "지친 하루")

			w.Write([]byte(candidateResponse(card)))
		}))
		defer srv.Close()

		c := New("test-key", "gemini-2.5-flash", StyleBlessing, WithBaseURL(srv.URL))
		got, err := c.Generate(context.Background(), "지친 하루")
		require.NoError(t, err)
		assert.Equal(t, "오늘의 위로", got.Author)
		assert.Contains(t, got.Quote, "수고하셨습니다")
		assert.Equal(t, "힘내세요", got.Message)
	})

	t.Run("code-fenced JSON", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(candidateResponse("```json\n" + card + "\n```")))
		}))
		defer srv.Close()

		c := New("test-key", "gemini-2.5-flash", StyleBlessing, WithBaseURL(srv.URL))
		got, err := c.Generate(context.Background(), "지친 하루")
		require.NoError(t, err)
		assert.Equal(t, "오늘의 위로", got.Author)
	})

	t.Run("mood is trimmed before embedding", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req generateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Contains(t, req.Contents[0].Parts[0].Text, "사용자의 기분: 행복\n")
			w.Write([]byte(candidateResponse(card)))
		}))
		defer srv.Close()

		c := New("test-key", "gemini-2.5-flash", StyleBlessing, WithBaseURL(srv.URL))
		_, err := c.Generate(context.Background(), "  행복  ")
		require.NoError(t, err)
	})
}

func TestGenerate_MalformedResponse(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"text is not JSON", candidateResponse("not json")},
		{"no candidates", `{"candidates": []}`},
		{"empty text", candidateResponse("")},
		{"body is not JSON", `<html>oops</html>`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := New("test-key", "gemini-2.5-flash", StyleBlessing, WithBaseURL(srv.URL))
			_, err := c.Generate(context.Background(), "기분")
			require.Error(t, err)
			var me *apperrors.MalformedResponseError
			assert.ErrorAs(t, err, &me)
		})
	}
}

func TestGenerate_UpstreamError(t *testing.T) {
	for _, code := range []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusForbidden} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		c := New("test-key", "gemini-2.5-flash", StyleBlessing, WithBaseURL(srv.URL))
		_, err := c.Generate(context.Background(), "기분")
		require.Error(t, err)

		var ue *apperrors.UpstreamError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, code, ue.Status)

		srv.Close()
	}
}

func TestGenerate_HTTPErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New("test-key", "gemini-2.5-flash", StyleBlessing, WithBaseURL(srv.URL))
	_, err := c.Generate(context.Background(), "기분")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGenerate_TransportErrorRetriedOnce(t *testing.T) {
	// A server that is already closed produces a transport error on every
	// attempt; the client must give up after the retry.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New("test-key", "gemini-2.5-flash", StyleBlessing, WithBaseURL(url))
	_, err := c.Generate(context.Background(), "기분")
	require.Error(t, err)

	var ue *apperrors.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, 0, ue.Status)
}

func TestGenerate_EssayStyle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Contents[0].Parts[0].Text, "에세이")
		w.Write([]byte(candidateResponse(`{"quote": "q", "author": "오늘의 위로", "message": "m"}`)))
	}))
	defer srv.Close()

	c := New("test-key", "gemini-2.5-flash", StyleEssay, WithBaseURL(srv.URL))
	_, err := c.Generate(context.Background(), "차분한 하루")
	require.NoError(t, err)
}
