package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hackguide/advisor/internal/chat"
	"github.com/hackguide/advisor/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const upstreamBody = `{"id":"chatcmpl-abc","object":"chat.completion","created":1700000000,"model":"gpt-4o","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  hi there  "}}],"usage":{"total_tokens":12}}`

func TestOpenAIClient_Complete(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, upstreamBody)
	}))
	defer srv.Close()

	c, err := llm.NewOpenAIClient("sk-test", srv.URL+"/v1/", 0)
	require.NoError(t, err)

	resp, err := c.Complete(context.Background(), llm.Request{
		Model:    "gpt-4o",
		Messages: []chat.Message{{Role: chat.RoleSystem, Content: "sys"}, {Role: chat.RoleUser, Content: "hello"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "gpt-4o", gotBody["model"])
	assert.Len(t, gotBody["messages"], 2)

	assert.Equal(t, "hi there", resp.Content())
	out, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, upstreamBody, string(out), "upstream body must pass through verbatim")
}

func TestOpenAIClient_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"error message passed through", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided"}}`, 401, "Incorrect API key provided"},
		{"generic message without error body", http.StatusTooManyRequests, `rate limited`, 429, "OpenAI API error"},
		{"empty message falls back", http.StatusBadGateway, `{"error":{"message":""}}`, 502, "OpenAI API error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c, err := llm.NewOpenAIClient("sk-test", srv.URL, 0)
			require.NoError(t, err)

			_, err = c.Complete(context.Background(), llm.Request{Model: "gpt-4o-mini"})
			require.Error(t, err)

			var apiErr *llm.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.wantStatus, apiErr.Status)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.Equal(t, tt.wantStatus, llm.StatusOf(err))
			assert.Equal(t, tt.wantMsg, llm.MessageOf(err))
		})
	}
}

func TestOpenAIClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := llm.NewOpenAIClient("sk-test", url, 0)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), llm.Request{Model: "gpt-4o"})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, llm.StatusOf(err))
	assert.Equal(t, "Internal server error", llm.MessageOf(err))
	assert.True(t, llm.IsRetryable(err))
}

func TestOpenAIClient_MissingContentIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"x","choices":[{"index":0,"message":{"role":"assistant","content":null}}]}`)
	}))
	defer srv.Close()

	c, err := llm.NewOpenAIClient("sk-test", srv.URL, 0)
	require.NoError(t, err)

	resp, err := c.Complete(context.Background(), llm.Request{Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, "", resp.Content())
}

func TestNewOpenAIClient_MissingKey(t *testing.T) {
	_, err := llm.NewOpenAIClient("  ", "", 0)
	assert.ErrorIs(t, err, llm.ErrMissingCredential)
}

func TestNewGeminiClient_MissingKey(t *testing.T) {
	_, err := llm.NewGeminiClient(context.Background(), "")
	assert.ErrorIs(t, err, llm.ErrMissingCredential)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), true},
		{"timeout status", &llm.APIError{Status: 408}, true},
		{"rate limited", &llm.APIError{Status: 429}, true},
		{"server error", &llm.APIError{Status: 503}, true},
		{"bad request", &llm.APIError{Status: 400}, false},
		{"unauthorized", &llm.APIError{Status: 401}, false},
		{"transport", &llm.APIError{Status: 500, Err: io.ErrUnexpectedEOF}, true},
		{"canceled", context.Canceled, false},
		{"wrapped deadline", &llm.APIError{Status: 500, Err: context.DeadlineExceeded}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, llm.IsRetryable(tt.err))
		})
	}
}
