package chread

import (
	"context"
	"crypto/tls"
	"fmt"
	"math"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"
)

// Analytics windows are clamped to [1, MaxDays] days.
const (
	DefaultDays = 7
	MaxDays     = 90
)

// Reader provides read access to the ClickHouse advice_events table.
type Reader struct {
	conn   driver.Conn
	logger *zap.Logger
}

// NewReader opens a ClickHouse connection for read queries.
func NewReader(dsn string, logger *zap.Logger) (*Reader, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("NewReader: %w", err)
	}
	if opts.TLS == nil {
		opts.TLS = &tls.Config{}
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("NewReader: %w", err)
	}
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("NewReader: %w", err)
	}

	return &Reader{conn: conn, logger: logger}, nil
}

// Close closes the ClickHouse connection.
func (r *Reader) Close() error {
	return r.conn.Close()
}

// OutcomeCounts holds request counts per outcome.
type OutcomeCounts struct {
	Total      int `json:"total"`
	Clarify    int `json:"clarify"`
	ValidFirst int `json:"valid_first"`
	ValidRetry int `json:"valid_retry"`
	Fallback   int `json:"fallback"`
	ModelError int `json:"model_error"`
	Rejected   int `json:"rejected"`
}

// DayBucket holds per-day retry and fallback counts.
type DayBucket struct {
	Day       string `json:"day"`
	Requests  int    `json:"requests"`
	Retries   int    `json:"retries"`
	Fallbacks int    `json:"fallbacks"`
}

// NameCount holds a tool id or rule name and how often it appeared.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// LatencyStats holds latency percentiles in milliseconds.
type LatencyStats struct {
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

// OutcomeReport is the advice analytics for one window.
type OutcomeReport struct {
	Days            int           `json:"days"`
	Outcomes        OutcomeCounts `json:"outcomes"`
	ByDay           []DayBucket   `json:"by_day"`
	TopPrimaryTools []NameCount   `json:"top_primary_tools"`
	TopViolations   []NameCount   `json:"top_violations"`
	Latency         LatencyStats  `json:"latency"`
}

// ClampDays maps a requested window onto [1, MaxDays], using DefaultDays for <= 0.
func ClampDays(days int) int {
	switch {
	case days <= 0:
		return DefaultDays
	case days > MaxDays:
		return MaxDays
	default:
		return days
	}
}

// GetOutcomes aggregates advice events from the last days days.
func (r *Reader) GetOutcomes(ctx context.Context, days int) (*OutcomeReport, error) {
	days = ClampDays(days)
	rangeStart := time.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	args := []any{clickhouse.Named("range_start", rangeStart)}

	result := &OutcomeReport{Days: days}

	var total, clarify, validFirst, validRetry, fallback, modelErr, rejected uint64
	err := r.conn.QueryRow(ctx,
		"SELECT count() as total, "+
			"countIf(outcome = 'clarify') as clarify, "+
			"countIf(outcome = 'valid_first') as valid_first, "+
			"countIf(outcome = 'valid_retry') as valid_retry, "+
			"countIf(outcome = 'fallback') as fallback, "+
			"countIf(outcome = 'model_error') as model_error, "+
			"countIf(outcome = 'rejected') as rejected "+
			"FROM advice_events WHERE timestamp >= @range_start",
		args...,
	).Scan(&total, &clarify, &validFirst, &validRetry, &fallback, &modelErr, &rejected)
	if err != nil {
		return nil, fmt.Errorf("GetOutcomes summary: %w", err)
	}
	result.Outcomes = OutcomeCounts{
		Total:      int(total),
		Clarify:    int(clarify),
		ValidFirst: int(validFirst),
		ValidRetry: int(validRetry),
		Fallback:   int(fallback),
		ModelError: int(modelErr),
		Rejected:   int(rejected),
	}

	dayRows, err := r.conn.Query(ctx,
		"SELECT toStartOfDay(timestamp) as day, count() as requests, "+
			"countIf(outcome IN ('valid_retry', 'fallback')) as retries, "+
			"countIf(outcome = 'fallback') as fallbacks "+
			"FROM advice_events WHERE timestamp >= @range_start "+
			"GROUP BY day ORDER BY day",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("GetOutcomes by_day: %w", err)
	}
	defer func() { _ = dayRows.Close() }()
	for dayRows.Next() {
		var day time.Time
		var requests, retries, fallbacks uint64
		if err := dayRows.Scan(&day, &requests, &retries, &fallbacks); err != nil {
			return nil, fmt.Errorf("GetOutcomes by_day scan: %w", err)
		}
		result.ByDay = append(result.ByDay, DayBucket{
			Day:       day.Format(time.DateOnly),
			Requests:  int(requests),
			Retries:   int(retries),
			Fallbacks: int(fallbacks),
		})
	}

	result.TopPrimaryTools, err = r.topNames(ctx, "primary_tools", args)
	if err != nil {
		return nil, fmt.Errorf("GetOutcomes top_primary_tools: %w", err)
	}
	result.TopViolations, err = r.topNames(ctx, "first_violations", args)
	if err != nil {
		return nil, fmt.Errorf("GetOutcomes top_violations: %w", err)
	}

	var p50, p95, p99 float64
	err = r.conn.QueryRow(ctx,
		"SELECT quantile(0.5)(latency_ms) as p50, "+
			"quantile(0.95)(latency_ms) as p95, "+
			"quantile(0.99)(latency_ms) as p99 "+
			"FROM advice_events WHERE timestamp >= @range_start",
		args...,
	).Scan(&p50, &p95, &p99)
	if err != nil {
		return nil, fmt.Errorf("GetOutcomes latency: %w", err)
	}
	result.Latency = LatencyStats{P50: safeFloat(p50), P95: safeFloat(p95), P99: safeFloat(p99)}

	if result.ByDay == nil {
		result.ByDay = []DayBucket{}
	}
	return result, nil
}

// topNames counts array elements of column; column is a fixed identifier, never user input.
func (r *Reader) topNames(ctx context.Context, column string, args []any) ([]NameCount, error) {
	rows, err := r.conn.Query(ctx,
		fmt.Sprintf("SELECT arrayJoin(%s) as name, count() as count "+
			"FROM advice_events WHERE timestamp >= @range_start "+
			"GROUP BY name ORDER BY count DESC LIMIT 10", column),
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []NameCount{}
	for rows.Next() {
		var name string
		var count uint64
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		out = append(out, NameCount{Name: name, Count: int(count)})
	}
	return out, rows.Err()
}

// safeFloat replaces NaN/Inf with 0.0.
// ClickHouse returns NaN for quantile() on empty result sets.
func safeFloat(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0.0
	}
	return f
}
