package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/hackguide/advisor/internal/advisor"
	"github.com/hackguide/advisor/internal/chat"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.uber.org/zap"
)

const maxChatBodyBytes = 1 << 20

// chatRequestSchema only pins down what the handler cannot recover from.
// Unknown fields, odd modes and malformed context are tolerated.
const chatRequestSchema = `{
	"type": "object",
	"required": ["messages"],
	"properties": {
		"messages": {"type": "array"}
	}
}`

var chatSchema = compileSchema("chat-request.json", chatRequestSchema)

func compileSchema(name, doc string) *jsonschema.Schema {
	parsed, err := jsonschema.UnmarshalJSON(strings.NewReader(doc))
	if err != nil {
		panic(err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, parsed); err != nil {
		panic(err)
	}
	return c.MustCompile(name)
}

// chatBody is the POST /api/chat body once it passed the schema.
type chatBody struct {
	Messages []json.RawMessage `json:"messages"`
	Mode     json.RawMessage   `json:"mode"`
	Context  json.RawMessage   `json:"context"`
}

// decodeChatRequest turns a raw body into an advisor request. A body that
// fails the schema yields a request without messages, which the advisor
// rejects after its credential check.
func decodeChatRequest(raw []byte) (advisor.Request, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return advisor.Request{}, err
	}
	var req advisor.Request
	if chatSchema.Validate(doc) != nil {
		return req, nil
	}

	var body chatBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return advisor.Request{}, err
	}
	// Entries that are not objects are dropped here; sanitization drops the rest.
	req.Messages = make([]chat.Incoming, 0, len(body.Messages))
	for _, m := range body.Messages {
		var in chat.Incoming
		if json.Unmarshal(m, &in) == nil {
			req.Messages = append(req.Messages, in)
		}
	}

	var mode string
	if json.Unmarshal(body.Mode, &mode) == nil {
		req.Mode = mode
	}
	var tc chat.ToolContext
	if json.Unmarshal(body.Context, &tc) == nil && tc.ToolName != "" {
		req.Context = &tc
	}
	return req, nil
}

// handleChat handles POST /api/chat.
func (d *Dependencies) handleChat(w http.ResponseWriter, r *http.Request) {
	defer func() { _ = r.Body.Close() }()
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxChatBodyBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Error: "invalid request body"})
		return
	}
	if len(raw) > maxChatBodyBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResp{Error: "request body too large"})
		return
	}

	req, err := decodeChatRequest(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Error: "invalid JSON body"})
		return
	}
	req.ID = requestIDFromContext(r.Context())

	completion, err := d.Advisor.Handle(r.Context(), req)
	if err != nil {
		var reqErr *advisor.RequestError
		if errors.As(err, &reqErr) {
			writeJSON(w, reqErr.Status, ErrorResp{Error: reqErr.Message})
			return
		}
		d.Logger.Error("chat failed", zap.String("request_id", req.ID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Error: "Internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, completion)
}
