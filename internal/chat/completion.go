package chat

import (
	"encoding/json"
	"strings"
	"time"
)

// Completion ids for responses produced without a model call.
const (
	ClarifyCompletionID  = "chatcmpl-clarify"
	FallbackCompletionID = "chatcmpl-fallback"
)

// Completion is a chat-completion response body.
//
// Completions parsed from an upstream provider keep their raw bytes and are
// re-serialized verbatim, so fields this type does not model (usage,
// system_fingerprint, ...) survive the round trip.
type Completion struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`

	raw json.RawMessage
}

// Choice is one entry of Completion.Choices.
type Choice struct {
	Index        int     `json:"index"`
	FinishReason string  `json:"finish_reason"`
	Message      Message `json:"message"`
}

// NewCompletion builds a single-choice assistant completion.
func NewCompletion(id, model, content string, now time.Time) *Completion {
	return &Completion{
		ID:      id,
		Object:  "chat.completion",
		Created: now.Unix(),
		Model:   model,
		Choices: []Choice{{
			Index:        0,
			FinishReason: "stop",
			Message:      Message{Role: RoleAssistant, Content: content},
		}},
	}
}

type wireCompletion struct {
	ID      string  `json:"id"`
	Object  string  `json:"object"`
	Created float64 `json:"created"`
	Model   string  `json:"model"`
	Choices []struct {
		Index        int    `json:"index"`
		FinishReason string `json:"finish_reason"`
		Message      *struct {
			Role    string `json:"role"`
			Content any    `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ParseCompletion decodes an upstream response body. Non-string message
// content decodes as empty content rather than an error.
func ParseCompletion(body []byte) (*Completion, error) {
	var w wireCompletion
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, err
	}
	c := &Completion{
		ID:      w.ID,
		Object:  w.Object,
		Created: int64(w.Created),
		Model:   w.Model,
		raw:     append(json.RawMessage(nil), body...),
	}
	for _, ch := range w.Choices {
		choice := Choice{Index: ch.Index, FinishReason: ch.FinishReason}
		if ch.Message != nil {
			choice.Message.Role = Role(ch.Message.Role)
			if s, ok := ch.Message.Content.(string); ok {
				choice.Message.Content = s
			}
		}
		c.Choices = append(c.Choices, choice)
	}
	return c, nil
}

// Content returns the trimmed content of the first choice, or "".
func (c *Completion) Content() string {
	if c == nil || len(c.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(c.Choices[0].Message.Content)
}

// Raw returns the upstream body this completion was parsed from, if any.
func (c *Completion) Raw() json.RawMessage {
	return c.raw
}

// MarshalJSON writes upstream bodies verbatim and synthesized ones field by field.
func (c Completion) MarshalJSON() ([]byte, error) {
	if len(c.raw) > 0 {
		return c.raw, nil
	}
	type plain Completion
	return json.Marshal(plain(c))
}
