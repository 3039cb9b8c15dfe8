package storage

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"
)

const (
	bufferSize    = 10_000
	flushInterval = 100 * time.Millisecond
	flushBatch    = 1000
	drainTimeout  = 2 * time.Second
)

// BufferedWriter queues events and hands them to a flush function in
// batches from one background goroutine. Write() is non-blocking.
type BufferedWriter struct {
	flushFn func([]*AdviceEvent)
	buffer  chan *AdviceEvent
	done    chan struct{}
	flushed chan struct{} // closed by flushLoop when it returns
	logger  *zap.Logger
}

// NewBufferedWriter starts the flush loop. flush receives a batch that is
// reused after it returns and must not retain it.
func NewBufferedWriter(flush func([]*AdviceEvent), logger *zap.Logger) *BufferedWriter {
	w := &BufferedWriter{
		flushFn: flush,
		buffer:  make(chan *AdviceEvent, bufferSize),
		done:    make(chan struct{}),
		flushed: make(chan struct{}),
		logger:  logger,
	}
	go w.flushLoop()
	return w
}

// Write queues an advice event for async insertion.
// Non-blocking: drops the event if the buffer is full.
func (w *BufferedWriter) Write(event *AdviceEvent) {
	select {
	case w.buffer <- event:
	default:
		w.logger.Warn("event buffer full, dropping event",
			zap.String("request_id", event.RequestID),
		)
	}
}

// Close signals the flush loop to drain remaining events, waits for it to
// finish (up to drainTimeout), and then returns. Safe to call once.
func (w *BufferedWriter) Close() {
	close(w.done)
	<-w.flushed
}

func (w *BufferedWriter) flushLoop() {
	defer close(w.flushed)

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]*AdviceEvent, 0, flushBatch)

	for {
		select {
		case event := <-w.buffer:
			batch = append(batch, event)
			if len(batch) >= flushBatch {
				w.flushFn(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				w.flushFn(batch)
				batch = batch[:0]
			}
		case <-w.done:
			drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
			defer cancel()
		drainLoop:
			for {
				select {
				case event := <-w.buffer:
					batch = append(batch, event)
				case <-drainCtx.Done():
					break drainLoop
				default:
					break drainLoop
				}
			}
			if len(batch) > 0 {
				w.flushFn(batch)
			}
			return
		}
	}
}

// ClickHouseWriter batch-inserts advice events into the advice_events table.
type ClickHouseWriter struct {
	*BufferedWriter
	conn   driver.Conn
	logger *zap.Logger
}

// NewClickHouseWriter connects, pings and starts the background flush loop.
func NewClickHouseWriter(dsn string, logger *zap.Logger) (*ClickHouseWriter, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	// ClickHouse Cloud only accepts TLS; ParseDSN leaves TLS nil without ?secure=true.
	if opts.TLS == nil {
		opts.TLS = &tls.Config{}
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, err
	}

	w := &ClickHouseWriter{conn: conn, logger: logger}
	w.BufferedWriter = NewBufferedWriter(w.flush, logger)
	return w, nil
}

// Close drains pending events and closes the connection.
func (w *ClickHouseWriter) Close() {
	w.BufferedWriter.Close()
	if err := w.conn.Close(); err != nil {
		w.logger.Warn("clickhouse close failed", zap.Error(err))
	}
}

func (w *ClickHouseWriter) flush(events []*AdviceEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	batch, err := w.conn.PrepareBatch(ctx, `
		INSERT INTO advice_events (
			request_id, timestamp, mode, model, outcome,
			complexity, complexity_score,
			needs_auth, needs_database, needs_deployment, needs_external_api, needs_ai_api,
			primary_tools, add_later_tools, first_violations, retry_violations,
			message_preview, message_hash, latency_ms, http_status
		)
	`)
	if err != nil {
		w.logger.Error("clickhouse prepare batch failed", zap.Error(err))
		return
	}

	for _, e := range events {
		if err := batch.Append(
			e.RequestID,
			e.Timestamp,
			e.Mode,
			e.Model,
			string(e.Outcome),
			e.Complexity,
			e.ComplexityScore,
			boolToUint8(e.NeedsAuth),
			boolToUint8(e.NeedsDatabase),
			boolToUint8(e.NeedsDeployment),
			boolToUint8(e.NeedsExternal),
			boolToUint8(e.NeedsAI),
			nonNil(e.PrimaryTools),
			nonNil(e.AddLaterTools),
			nonNil(e.FirstViolations),
			nonNil(e.RetryViolations),
			e.MessagePreview,
			e.MessageHash,
			e.LatencyMs,
			e.HTTPStatus,
		); err != nil {
			w.logger.Error("clickhouse append event failed",
				zap.String("request_id", e.RequestID),
				zap.Error(err),
			)
		}
	}

	if err := batch.Send(); err != nil {
		w.logger.Error("clickhouse batch send failed",
			zap.Int("batch_size", len(events)),
			zap.Error(err),
		)
	}
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// LogWriter is a fallback EventWriter for local development.
// It logs events as structured JSON to stdout via zap.
type LogWriter struct {
	logger *zap.Logger
}

// NewLogWriter creates a LogWriter that outputs events to the given logger.
func NewLogWriter(logger *zap.Logger) *LogWriter {
	return &LogWriter{logger: logger}
}

func (w *LogWriter) Write(event *AdviceEvent) {
	w.logger.Info("advice_event",
		zap.String("request_id", event.RequestID),
		zap.String("mode", event.Mode),
		zap.String("model", event.Model),
		zap.String("outcome", string(event.Outcome)),
		zap.String("complexity", event.Complexity),
		zap.Strings("primary_tools", event.PrimaryTools),
		zap.Strings("add_later_tools", event.AddLaterTools),
		zap.Strings("first_violations", event.FirstViolations),
		zap.Strings("retry_violations", event.RetryViolations),
		zap.Float32("latency_ms", event.LatencyMs),
		zap.Uint16("http_status", event.HTTPStatus),
		zap.String("message_preview", event.MessagePreview),
	)
}

func (w *LogWriter) Close() {}
