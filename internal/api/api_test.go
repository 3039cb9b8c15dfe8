package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hackguide/advisor/internal/advisor"
	"github.com/hackguide/advisor/internal/catalog"
	"github.com/hackguide/advisor/internal/chat"
	"github.com/hackguide/advisor/internal/chread"
	"github.com/hackguide/advisor/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testAdminToken = "adv_test_token"

type echoModel struct {
	calls []llm.Request
	err   error
}

func (m *echoModel) Complete(_ context.Context, req llm.Request) (*chat.Completion, error) {
	m.calls = append(m.calls, req)
	if m.err != nil {
		return nil, m.err
	}
	return chat.NewCompletion("chatcmpl-echo", req.Model, "Cursor is an editor.", time.Unix(1_700_000_000, 0)), nil
}

type fakeReader struct {
	days int
	err  error
}

func (f *fakeReader) GetOutcomes(_ context.Context, days int) (*chread.OutcomeReport, error) {
	f.days = days
	if f.err != nil {
		return nil, f.err
	}
	return &chread.OutcomeReport{Days: days, Outcomes: chread.OutcomeCounts{Total: 3}}, nil
}

func newTestRouter(t *testing.T, model llm.ChatModel, reader OutcomeReader) http.Handler {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminToken), bcrypt.MinCost)
	require.NoError(t, err)
	return NewRouter(&Dependencies{
		Advisor:        advisor.New(advisorOptions(model)),
		Catalog:        catalog.Default(),
		Reader:         reader,
		AdminTokenHash: string(hash),
		CacheTTL:       time.Minute,
		Logger:         zap.NewNop(),
	})
}

// advisorOptions builds advisor options around a test model; a nil model leaves
// the service unconfigured.
func advisorOptions(model llm.ChatModel) advisor.Options {
	return advisor.Options{Model: model, StackModel: "stack-model", ChatModel: "chat-model"}
}

func do(t *testing.T, h http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name   string
		model  llm.ChatModel
		body   string
		status int
		msg    string
	}{
		{"invalid json", &echoModel{}, `{"messages":`, 400, "invalid JSON body"},
		{"empty body", &echoModel{}, ``, 400, "invalid JSON body"},
		{"missing messages", &echoModel{}, `{}`, 400, "messages array is required"},
		{"messages not an array", &echoModel{}, `{"messages":"hi"}`, 400, "messages array is required"},
		{"body not an object", &echoModel{}, `[1,2]`, 400, "messages array is required"},
		{"no usable messages", &echoModel{}, `{"messages":[{"role":"system","content":"x"},{"role":"user","content":"  "}]}`, 400, "messages array must contain user/assistant messages"},
		{"unconfigured", nil, `{"messages":[{"role":"user","content":"hi"}]}`, 500, "OPENAI_API_KEY is not configured"},
		{"unconfigured wins over bad messages", nil, `{}`, 500, "OPENAI_API_KEY is not configured"},
		{"upstream error", &echoModel{err: &llm.APIError{Status: 429, Message: "Rate limit reached"}}, `{"messages":[{"role":"user","content":"hi"}]}`, 429, "Rate limit reached"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t, tt.model, nil)
			rec := do(t, h, http.MethodPost, "/api/chat", tt.body, nil)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.msg, errorOf(t, rec))
		})
	}
}

func TestChat_PassThrough(t *testing.T) {
	m := &echoModel{}
	h := newTestRouter(t, m, nil)
	body := `{"messages":[{"role":"user","content":"What is Cursor?"},{"role":7,"content":"x"}],"mode":42,"context":{"toolId":"cursor","toolName":"Cursor","toolDescription":"AI-first code editor"}}`
	rec := do(t, h, http.MethodPost, "/api/chat", body, map[string]string{"X-Request-ID": "req-1"})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "req-1", rec.Header().Get("X-Request-ID"))

	var got chat.Completion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "chatcmpl-echo", got.ID)
	assert.Equal(t, "Cursor is an editor.", got.Choices[0].Message.Content)

	require.Len(t, m.calls, 1)
	assert.Equal(t, "chat-model", m.calls[0].Model)
	require.Len(t, m.calls[0].Messages, 2)
	assert.Contains(t, m.calls[0].Messages[0].Content, "The user is asking about Cursor.")
}

func TestChat_DropsNonObjectMessages(t *testing.T) {
	m := &echoModel{}
	h := newTestRouter(t, m, nil)
	body := `{"messages":[5,"hi",null,{"role":"user","content":"What is Cursor?"}]}`
	rec := do(t, h, http.MethodPost, "/api/chat", body, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, m.calls, 1)
	require.Len(t, m.calls[0].Messages, 2)
	assert.Equal(t, "What is Cursor?", m.calls[0].Messages[1].Content)
}

func TestChat_OnlyNonObjectMessages(t *testing.T) {
	h := newTestRouter(t, &echoModel{}, nil)
	rec := do(t, h, http.MethodPost, "/api/chat", `{"messages":[5,"hi"]}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "messages array must contain user/assistant messages", errorOf(t, rec))
}

func TestDecodeChatRequest(t *testing.T) {
	req, err := decodeChatRequest([]byte(`{"messages":[],"mode":"suggest-stack","context":{"toolId":"x"}}`))
	require.NoError(t, err)
	assert.NotNil(t, req.Messages)
	assert.Empty(t, req.Messages)
	assert.Equal(t, chat.ModeSuggestStack, req.Mode)
	assert.Nil(t, req.Context, "context without toolName is ignored")

	req, err = decodeChatRequest([]byte(`{"mode":"suggest-stack","messages":[5,"hi",{"role":"user","content":"todo app"}]}`))
	require.NoError(t, err)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "todo app", req.Messages[0].Content)

	req, err = decodeChatRequest([]byte(`{"messages":null}`))
	require.NoError(t, err)
	assert.Nil(t, req.Messages)
}

func TestListTools(t *testing.T) {
	h := newTestRouter(t, nil, nil)

	rec := do(t, h, http.MethodGet, "/api/tools", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all ToolListResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Equal(t, catalog.Default().Len(), all.Count)

	rec = do(t, h, http.MethodGet, "/api/tools?q=cursor&limit=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ranked ToolListResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ranked))
	assert.Equal(t, "cursor", ranked.Query)
	require.Equal(t, 2, ranked.Count)
	assert.Equal(t, "cursor", ranked.Tools[0].ID)

	for _, bad := range []string{"0", "-3", "abc"} {
		rec = do(t, h, http.MethodGet, "/api/tools?limit="+bad, "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestGetTool(t *testing.T) {
	h := newTestRouter(t, nil, nil)

	rec := do(t, h, http.MethodGet, "/api/tools/codex", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var e catalog.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, "Codex", e.Name)

	rec = do(t, h, http.MethodGet, "/api/tools/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "tool not found", errorOf(t, rec))
}

func TestListSections(t *testing.T) {
	h := newTestRouter(t, nil, nil)
	rec := do(t, h, http.MethodGet, "/api/sections", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp SectionListResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Sections, len(catalog.BuiltinSections()))
}

func TestOutcomes_Auth(t *testing.T) {
	reader := &fakeReader{}
	h := newTestRouter(t, nil, reader)

	rec := do(t, h, http.MethodGet, "/api/advice/outcomes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Missing or invalid Authorization header", errorOf(t, rec))

	rec = do(t, h, http.MethodGet, "/api/advice/outcomes", "", map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid admin token", errorOf(t, rec))

	auth := map[string]string{"Authorization": "Bearer " + testAdminToken}
	rec = do(t, h, http.MethodGet, "/api/advice/outcomes?days=14", "", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 14, reader.days)
	var report chread.OutcomeReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 3, report.Outcomes.Total)

	rec = do(t, h, http.MethodGet, "/api/advice/outcomes?days=week", "", auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOutcomes_ReaderError(t *testing.T) {
	h := newTestRouter(t, nil, &fakeReader{err: errors.New("clickhouse down")})
	rec := do(t, h, http.MethodGet, "/api/advice/outcomes", "", map[string]string{"Authorization": "Bearer " + testAdminToken})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestOutcomes_NotRoutedWithoutReader(t *testing.T) {
	h := newTestRouter(t, nil, nil)
	rec := do(t, h, http.MethodGet, "/api/advice/outcomes", "", map[string]string{"Authorization": "Bearer " + testAdminToken})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminCache(t *testing.T) {
	c := newAdminCache(time.Hour)
	hit, refresh := c.get("t")
	assert.False(t, hit)
	assert.False(t, refresh)

	c.set("t")
	hit, refresh = c.get("t")
	assert.True(t, hit)
	assert.False(t, refresh)

	stale := newAdminCache(-time.Second)
	stale.set("t")
	hit, refresh = stale.get("t")
	assert.True(t, hit)
	assert.True(t, refresh, "first stale read claims the refresh")
	_, refresh = stale.get("t")
	assert.False(t, refresh, "only one refresh per entry")

	stale.evict("t")
	hit, _ = stale.get("t")
	assert.False(t, hit)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(t, nil, nil)
	rec := do(t, h, http.MethodOptions, "/api/chat", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDGenerated(t *testing.T) {
	h := newTestRouter(t, nil, nil)
	rec := do(t, h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}

func TestGenerateAdminToken(t *testing.T) {
	token, hash, err := GenerateAdminToken()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, AdminTokenPrefix))
	assert.Len(t, token, len(AdminTokenPrefix)+64)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)))
}
