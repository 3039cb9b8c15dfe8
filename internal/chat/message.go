package chat

import "strings"

// Role is the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ModeSuggestStack selects stack-advice handling for a request.
const ModeSuggestStack = "suggest-stack"

// Message is one sanitized conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Incoming is a message exactly as the client sent it. Role and Content are
// left untyped so that malformed entries can be dropped instead of failing
// the whole decode.
type Incoming struct {
	Role    any `json:"role"`
	Content any `json:"content"`
}

// ToolContext narrows a non-stack question to one catalog tool.
type ToolContext struct {
	ToolID          string `json:"toolId"`
	ToolName        string `json:"toolName"`
	ToolDescription string `json:"toolDescription"`
}

// Sanitize keeps user and assistant messages whose content is a non-empty
// string after trimming.
func Sanitize(in []Incoming) []Message {
	out := make([]Message, 0, len(in))
	for _, m := range in {
		content, ok := m.Content.(string)
		if !ok {
			continue
		}
		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}
		role, _ := m.Role.(string)
		switch Role(role) {
		case RoleUser, RoleAssistant:
			out = append(out, Message{Role: Role(role), Content: content})
		}
	}
	return out
}

// LatestUserMessage returns the content of the last user message, or of the
// last message when no user message exists.
func LatestUserMessage(msgs []Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleUser {
			return msgs[i].Content
		}
	}
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].Content
}
