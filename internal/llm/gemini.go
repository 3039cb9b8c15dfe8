package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hackguide/advisor/internal/chat"
	"google.golang.org/genai"
)

// GeminiClient answers chat requests with the Gemini API and reshapes the
// answer into a chat completion.
type GeminiClient struct {
	cli *genai.Client
	now func() time.Time
}

// NewGeminiClient builds a client for the Gemini API backend.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingCredential
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{cli: cli, now: time.Now}, nil
}

// Complete sends the conversation to req.Model. System messages are joined
// into the system instruction.
func (g *GeminiClient) Complete(ctx context.Context, req Request) (*chat.Completion, error) {
	contents, system := toGeminiContents(req.Messages)

	var cfg *genai.GenerateContentConfig
	if system != nil {
		cfg = &genai.GenerateContentConfig{SystemInstruction: system}
	}

	resp, err := g.cli.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return nil, geminiError(err)
	}

	id := "chatcmpl-" + uuid.NewString()
	return chat.NewCompletion(id, req.Model, resp.Text(), g.now()), nil
}

func toGeminiContents(msgs []chat.Message) ([]*genai.Content, *genai.Content) {
	var (
		contents []*genai.Content
		system   []string
	)
	for _, m := range msgs {
		switch m.Role {
		case chat.RoleSystem:
			system = append(system, m.Content)
		case chat.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(system) == 0 {
		return contents, nil
	}
	return contents, genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
}

func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{Status: apiErr.Code, Message: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &APIError{Status: apiErrPtr.Code, Message: apiErrPtr.Message}
	}
	return &APIError{Status: http.StatusInternalServerError, Message: internalErrorMessage, Err: err}
}
