package llm

import (
	"context"
	"time"

	"github.com/hackguide/advisor/internal/chat"
	"go.uber.org/zap"
)

// Middleware decorates a ChatModel.
type Middleware func(ChatModel) ChatModel

// Wrap applies middlewares in left-to-right order: Wrap(m, A, B) is A(B(m)).
func Wrap(inner ChatModel, mws ...Middleware) ChatModel {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// Retry repeats retryable failures up to maxAttempts calls in total, waiting
// baseDelay, 2*baseDelay, ... between them. It stops as soon as ctx is done.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next ChatModel) ChatModel {
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next ChatModel
	max  int
	base time.Duration
}

func (r *retrying) Complete(ctx context.Context, req Request) (*chat.Completion, error) {
	var last error
	for i := 0; i < r.max; i++ {
		resp, err := r.next.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		last = err
		if !IsRetryable(err) || i == r.max-1 {
			break
		}

		timer := time.NewTimer(r.base * time.Duration(1<<i))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, last
		case <-timer.C:
		}
	}
	return nil, last
}

// Logging records every call at debug level and failures at warn.
func Logging(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next ChatModel) ChatModel {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next ChatModel
	log  *zap.Logger
}

func (l *logging) Complete(ctx context.Context, req Request) (*chat.Completion, error) {
	start := time.Now()
	resp, err := l.next.Complete(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		l.log.Warn("model call failed",
			zap.String("model", req.Model),
			zap.Int("status", StatusOf(err)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return nil, err
	}
	l.log.Debug("model call",
		zap.String("model", req.Model),
		zap.Int("messages", len(req.Messages)),
		zap.Duration("elapsed", elapsed),
	)
	return resp, nil
}
