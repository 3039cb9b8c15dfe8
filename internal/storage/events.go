package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// EventWriter persists advice outcome events.
// Write() must NEVER block the caller.
type EventWriter interface {
	Write(event *AdviceEvent)
	Close()
}

// Outcome is how a stack-advice request ended.
type Outcome string

const (
	OutcomeClarify    Outcome = "clarify"
	OutcomeValidFirst Outcome = "valid_first"
	OutcomeValidRetry Outcome = "valid_retry"
	OutcomeFallback   Outcome = "fallback"
	OutcomeModelError Outcome = "model_error"
	OutcomeRejected   Outcome = "rejected"
)

// AdviceEvent is one stack-advice request as persisted for analytics.
type AdviceEvent struct {
	RequestID       string
	Timestamp       time.Time
	Mode            string
	Model           string
	Outcome         Outcome
	Complexity      string
	ComplexityScore uint8
	NeedsAuth       bool
	NeedsDatabase   bool
	NeedsDeployment bool
	NeedsExternal   bool
	NeedsAI         bool
	PrimaryTools    []string
	AddLaterTools   []string
	// Rule names that failed on the first and second model answer.
	FirstViolations []string
	RetryViolations []string
	MessagePreview  string // First 500 chars
	MessageHash     string // SHA256 of the latest user message
	LatencyMs       float32
	HTTPStatus      uint16
}

// PayloadPreviewLength is the max chars stored in message_preview.
const PayloadPreviewLength = 500

// TruncatePayload returns the first N characters (runes) of a payload for
// preview storage. It never splits a multi-byte UTF-8 character.
func TruncatePayload(payload string, maxLen int) string {
	runes := []rune(payload)
	if len(runes) <= maxLen {
		return payload
	}
	return string(runes[:maxLen])
}

// HashPayload returns the hex SHA256 of payload.
func HashPayload(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
