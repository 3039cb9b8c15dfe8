package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hackguide/advisor/internal/chat"
)

// DefaultOpenAIBaseURL is the public OpenAI API root.
const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

const (
	openAIErrorMessage = "OpenAI API error"
	maxResponseBytes   = 4 << 20
)

// OpenAIClient calls an OpenAI-compatible /chat/completions endpoint.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewOpenAIClient returns a client for baseURL (DefaultOpenAIBaseURL when
// empty). A zero timeout leaves the request bounded only by its context.
func NewOpenAIClient(apiKey, baseURL string, timeout time.Duration) (*OpenAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingCredential
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	return &OpenAIClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type openAIRequest struct {
	Model    string         `json:"model"`
	Messages []chat.Message `json:"messages"`
}

type openAIErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete posts req and parses the completion. Upstream error responses
// keep their status; transport failures are reported as 500.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (*chat.Completion, error) {
	body, err := json.Marshal(openAIRequest{Model: req.Model, Messages: req.Messages})
	if err != nil {
		return nil, fmt.Errorf("Complete: marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("Complete: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &APIError{Status: http.StatusInternalServerError, Message: internalErrorMessage, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &APIError{Status: http.StatusInternalServerError, Message: internalErrorMessage, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := openAIErrorMessage
		var eb openAIErrorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Error.Message != "" {
			msg = eb.Error.Message
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}

	completion, err := chat.ParseCompletion(raw)
	if err != nil {
		return nil, &APIError{Status: http.StatusInternalServerError, Message: internalErrorMessage, Err: err}
	}
	return completion, nil
}
