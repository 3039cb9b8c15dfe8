package chat

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestSanitize(t *testing.T) {
	in := []Incoming{
		{Role: "system", Content: "be nice"},
		{Role: "user", Content: "  build me a todo app  "},
		{Role: "assistant", Content: "   "},
		{Role: "assistant", Content: 42},
		{Role: "user", Content: nil},
		{Role: "tool", Content: "result"},
		{Role: 7, Content: "numeric role"},
		{Role: "assistant", Content: "Sure."},
	}
	got := Sanitize(in)
	want := []Message{
		{Role: RoleUser, Content: "build me a todo app"},
		{Role: RoleAssistant, Content: "Sure."},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sanitize = %+v, want %+v", got, want)
	}
}

func TestSanitize_Empty(t *testing.T) {
	if got := Sanitize(nil); len(got) != 0 {
		t.Errorf("expected no messages, got %v", got)
	}
}

func TestLatestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		msgs []Message
		want string
	}{
		{"last user wins", []Message{{RoleUser, "a"}, {RoleAssistant, "b"}, {RoleUser, "c"}, {RoleAssistant, "d"}}, "c"},
		{"no user falls back to last", []Message{{RoleAssistant, "only"}, {RoleAssistant, "last"}}, "last"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LatestUserMessage(tt.msgs); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewCompletion_Shape(t *testing.T) {
	c := NewCompletion(FallbackCompletionID, "gpt-4o", "hello", time.Unix(1700000000, 0))
	body, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"chatcmpl-fallback","object":"chat.completion","created":1700000000,"model":"gpt-4o",` +
		`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"hello"}}]}`
	if string(body) != want {
		t.Errorf("got  %s\nwant %s", body, want)
	}
}

func TestParseCompletion_KeepsRawBody(t *testing.T) {
	body := []byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o","usage":{"total_tokens":9},` +
		`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  Start with **Cursor**  "}}]}`)
	c, err := ParseCompletion(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Content() != "Start with **Cursor**" {
		t.Errorf("content = %q", c.Content())
	}
	out, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != string(body) {
		t.Errorf("expected verbatim body, got %s", out)
	}
}

func TestParseCompletion_MissingContent(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no choices", `{"id":"x"}`},
		{"empty choices", `{"choices":[]}`},
		{"null message", `{"choices":[{"message":null}]}`},
		{"null content", `{"choices":[{"message":{"role":"assistant","content":null}}]}`},
		{"array content", `{"choices":[{"message":{"role":"assistant","content":[{"type":"text"}]}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseCompletion([]byte(tt.body))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Content() != "" {
				t.Errorf("expected empty content, got %q", c.Content())
			}
		})
	}
}

func TestParseCompletion_InvalidJSON(t *testing.T) {
	if _, err := ParseCompletion([]byte("<html>")); err == nil {
		t.Error("expected error for non-JSON body")
	}
}
