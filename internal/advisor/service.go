// Package advisor handles chat requests: it resolves stack intent, asks the
// model, validates stack advice, retries once with a correction and falls
// back to a deterministic answer when the model cannot comply.
package advisor

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hackguide/advisor/internal/catalog"
	"github.com/hackguide/advisor/internal/chat"
	"github.com/hackguide/advisor/internal/intent"
	"github.com/hackguide/advisor/internal/llm"
	"github.com/hackguide/advisor/internal/planner"
	"github.com/hackguide/advisor/internal/policy"
	"github.com/hackguide/advisor/internal/prompt"
	"github.com/hackguide/advisor/internal/storage"
	"go.uber.org/zap"
)

// RequestError is a request that ends without a completion. Status is the
// HTTP status and Message the client-facing error text.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("advisor: %d %s", e.Status, e.Message)
}

// Request is one chat call. A nil Messages slice means the client sent no
// message list at all.
type Request struct {
	ID       string
	Messages []chat.Incoming
	Mode     string
	Context  *chat.ToolContext
}

// Options configures a Service.
type Options struct {
	// Model is nil when no credential is configured; every request then fails
	// with a 500 naming CredentialName.
	Model          llm.ChatModel
	CredentialName string
	Catalog        *catalog.Index
	StackModel     string
	ChatModel      string
	Writer         storage.EventWriter
	Logger         *zap.Logger
}

// Service is safe for concurrent use; all per-request state lives in a run.
type Service struct {
	model      llm.ChatModel
	credential string
	idx        *catalog.Index
	validator  *policy.Validator
	stackModel string
	chatModel  string
	writer     storage.EventWriter
	logger     *zap.Logger
	now        func() time.Time
}

// New builds a Service. Missing catalog, writer and logger default to the
// built-in catalog, a no-op sink and a no-op logger.
func New(opts Options) *Service {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Writer == nil {
		opts.Writer = storage.NewLogWriter(zap.NewNop())
	}
	if opts.CredentialName == "" {
		opts.CredentialName = "OPENAI_API_KEY"
	}
	return &Service{
		model:      opts.Model,
		credential: opts.CredentialName,
		idx:        opts.Catalog,
		validator:  policy.NewValidator(opts.Catalog),
		stackModel: opts.StackModel,
		chatModel:  opts.ChatModel,
		writer:     opts.Writer,
		logger:     opts.Logger,
		now:        time.Now,
	}
}

// Catalog returns the index the service plans with.
func (s *Service) Catalog() *catalog.Index { return s.idx }

// run is the state of one request as it moves through the stages.
type run struct {
	req    Request
	start  time.Time
	stack  bool
	model  string
	msgs   []chat.Message
	latest string

	resolved bool
	intent   intent.StackIntent
	plan     planner.Plan
	base     []chat.Message
	retry    []chat.Message

	first, second *chat.Completion
	firstCheck    policy.Validation
	secondCheck   *policy.Validation
	result        *chat.Completion
	err           *RequestError
	outcome       storage.Outcome
}

type transition func(*Service, context.Context, *run) Stage

// transitions holds one handler per non-terminal stage.
var transitions = map[Stage]transition{
	StageReceived:       (*Service).onReceived,
	StageSanitized:      (*Service).onSanitized,
	StageIntentInferred: (*Service).onIntentInferred,
	StagePlanned:        (*Service).onPlanned,
	StagePrompted:       (*Service).onPrompted,
	StageFirstAttempt:   (*Service).onFirstAttempt,
	StageRetryPrompted:  (*Service).onRetryPrompted,
	StageSecondAttempt:  (*Service).onSecondAttempt,
}

// Handle runs one request to completion. The returned error, if any, is a
// *RequestError.
func (s *Service) Handle(ctx context.Context, req Request) (*chat.Completion, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	r := &run{req: req, start: s.now(), stack: req.Mode == chat.ModeSuggestStack}

	stage := StageReceived
	for !stage.Terminal() {
		stage = transitions[stage](s, ctx, r)
	}

	if r.stack {
		s.writer.Write(s.event(r))
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.result, nil
}

func (s *Service) reject(r *run, status int, msg string) Stage {
	r.err = &RequestError{Status: status, Message: msg}
	r.outcome = storage.OutcomeRejected
	return StageRejected
}

func (s *Service) onReceived(_ context.Context, r *run) Stage {
	if s.model == nil {
		return s.reject(r, http.StatusInternalServerError, s.credential+" is not configured")
	}
	if r.req.Messages == nil {
		return s.reject(r, http.StatusBadRequest, "messages array is required")
	}
	r.msgs = chat.Sanitize(r.req.Messages)
	if len(r.msgs) == 0 {
		return s.reject(r, http.StatusBadRequest, "messages array must contain user/assistant messages")
	}
	r.latest = chat.LatestUserMessage(r.msgs)
	r.model = s.chatModel
	if r.stack {
		r.model = s.stackModel
	}
	return StageSanitized
}

func (s *Service) onSanitized(_ context.Context, r *run) Stage {
	if !r.stack {
		return s.compose(r)
	}
	r.intent = intent.Resolve(r.latest, r.msgs)
	r.resolved = true
	s.logger.Debug("intent_inferred",
		zap.String("request_id", r.req.ID),
		zap.Stringer("complexity", r.intent.Complexity),
		zap.Int("complexity_score", r.intent.ComplexityScore),
		zap.Int("max_primary_tools", r.intent.MaxPrimaryTools),
		zap.Any("requires", r.intent.Requires),
		zap.Any("ambiguous", r.intent.Ambiguous),
		zap.Any("confidence", r.intent.Confidence),
		zap.Bool("already_asked_clarifying_question", r.intent.AlreadyAskedClarifyingQuestion),
		zap.Bool("should_ask_clarifying_question", r.intent.ShouldAskClarifyingQuestion),
	)
	return StageIntentInferred
}

func (s *Service) onIntentInferred(_ context.Context, r *run) Stage {
	if r.intent.ShouldAskClarifyingQuestion {
		s.logger.Debug("clarifying_question_returned",
			zap.String("request_id", r.req.ID),
			zap.Any("ambiguous", r.intent.Ambiguous),
		)
		r.result = chat.NewCompletion(chat.ClarifyCompletionID, r.model, intent.ClarifyingQuestion, s.now())
		r.outcome = storage.OutcomeClarify
		return StageClarifyReturned
	}
	r.plan = planner.Build(s.idx, r.intent, r.latest)
	return StagePlanned
}

func (s *Service) onPlanned(_ context.Context, r *run) Stage {
	return s.compose(r)
}

// compose builds the base conversation: system prompt, then the sanitized transcript.
func (s *Service) compose(r *run) Stage {
	opts := prompt.Options{Mode: r.req.Mode, Context: r.req.Context}
	if r.stack {
		opts.Intent, opts.Plan = &r.intent, &r.plan
	}
	r.base = make([]chat.Message, 0, len(r.msgs)+1)
	r.base = append(r.base, chat.Message{Role: chat.RoleSystem, Content: prompt.System(opts)})
	r.base = append(r.base, r.msgs...)
	return StagePrompted
}

func (s *Service) onPrompted(ctx context.Context, r *run) Stage {
	s.logger.Debug("request_start",
		zap.String("request_id", r.req.ID),
		zap.String("mode", modeName(r.req.Mode)),
		zap.String("model", r.model),
		zap.Int("message_count", len(r.msgs)),
		zap.Strings("selected_sections", planner.Sections(r.plan.PrimaryTools)),
		zap.Strings("selected_tools", planner.Names(r.plan.PrimaryTools)),
	)

	resp, err := s.model.Complete(ctx, llm.Request{Model: r.model, Messages: r.base})
	if err != nil {
		status := llm.StatusOf(err)
		s.logger.Debug("first_attempt_error",
			zap.String("request_id", r.req.ID),
			zap.String("mode", modeName(r.req.Mode)),
			zap.Int("status", status),
		)
		r.err = &RequestError{Status: status, Message: llm.MessageOf(err)}
		r.outcome = storage.OutcomeModelError
		return StageModelError
	}
	r.first = resp

	if !r.stack {
		r.result = resp
		return StageValid
	}
	return StageFirstAttempt
}

func (s *Service) onFirstAttempt(_ context.Context, r *run) Stage {
	content := r.first.Content()
	r.firstCheck = s.validator.Validate(content, r.intent)
	s.logger.Debug("validation_first",
		zap.String("request_id", r.req.ID),
		zap.Bool("valid", r.firstCheck.Valid),
		zap.Strings("mentioned_guide_tools", r.firstCheck.MentionedToolNames),
		zap.Strings("primary_tools", r.firstCheck.PrimaryToolNames),
		zap.Strings("violations", r.firstCheck.Violations.Details),
	)
	if r.firstCheck.Valid {
		r.result = r.first
		r.outcome = storage.OutcomeValidFirst
		return StageValid
	}

	r.retry = append([]chat.Message(nil), r.base...)
	if content != "" {
		r.retry = append(r.retry, chat.Message{Role: chat.RoleAssistant, Content: content})
	}
	r.retry = append(r.retry, chat.Message{
		Role:    chat.RoleUser,
		Content: prompt.Correction(r.intent, r.plan, r.firstCheck.Violations.Details),
	})
	return StageRetryPrompted
}

func (s *Service) onRetryPrompted(ctx context.Context, r *run) Stage {
	resp, err := s.model.Complete(ctx, llm.Request{Model: r.model, Messages: r.retry})
	if err != nil {
		s.logger.Debug("retry_attempt_error",
			zap.String("request_id", r.req.ID),
			zap.Int("status", llm.StatusOf(err)),
			zap.Bool("retry_used", true),
		)
		return s.fallback(r)
	}
	r.second = resp
	return StageSecondAttempt
}

func (s *Service) onSecondAttempt(_ context.Context, r *run) Stage {
	check := s.validator.Validate(r.second.Content(), r.intent)
	r.secondCheck = &check
	s.logger.Debug("validation_retry",
		zap.String("request_id", r.req.ID),
		zap.Bool("valid", check.Valid),
		zap.Strings("mentioned_guide_tools", check.MentionedToolNames),
		zap.Strings("primary_tools", check.PrimaryToolNames),
		zap.Strings("violations", check.Violations.Details),
		zap.Bool("retry_used", true),
	)
	if check.Valid {
		r.result = r.second
		r.outcome = storage.OutcomeValidRetry
		return StageValid
	}
	return s.fallback(r)
}

func (s *Service) fallback(r *run) Stage {
	content := policy.Fallback(s.idx, r.intent, r.plan, r.latest)
	s.logger.Debug("fallback_used",
		zap.String("request_id", r.req.ID),
		zap.Bool("retry_used", true),
		zap.Strings("selected_sections", planner.Sections(r.plan.PrimaryTools)),
		zap.Strings("selected_tools", planner.Names(r.plan.PrimaryTools)),
	)
	r.result = chat.NewCompletion(chat.FallbackCompletionID, r.model, content, s.now())
	r.outcome = storage.OutcomeFallback
	return StageFallbackGenerated
}

func modeName(mode string) string {
	if mode == "" {
		return "default"
	}
	return mode
}

func (s *Service) event(r *run) *storage.AdviceEvent {
	e := &storage.AdviceEvent{
		RequestID:      r.req.ID,
		Timestamp:      r.start.UTC(),
		Mode:           r.req.Mode,
		Model:          r.model,
		Outcome:        r.outcome,
		PrimaryTools:   planner.IDs(r.plan.PrimaryTools),
		AddLaterTools:  planner.IDs(r.plan.AddLaterTools),
		MessagePreview: storage.TruncatePayload(r.latest, storage.PayloadPreviewLength),
		MessageHash:    storage.HashPayload(r.latest),
		LatencyMs:      float32(s.now().Sub(r.start).Seconds() * 1000),
		HTTPStatus:     http.StatusOK,
	}
	if r.resolved {
		e.Complexity = r.intent.Complexity.String()
		e.ComplexityScore = uint8(r.intent.ComplexityScore)
		e.NeedsAuth = r.intent.Requires.Auth
		e.NeedsDatabase = r.intent.Requires.Database
		e.NeedsDeployment = r.intent.Requires.Deployment
		e.NeedsExternal = r.intent.Requires.ExternalAPI
		e.NeedsAI = r.intent.Requires.AIAPI
	}
	if r.first != nil {
		e.FirstViolations = r.firstCheck.Violations.Names()
	}
	if r.secondCheck != nil {
		e.RetryViolations = r.secondCheck.Violations.Names()
	}
	if r.err != nil {
		e.HTTPStatus = uint16(r.err.Status)
	}
	return e
}
