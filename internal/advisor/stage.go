package advisor

// Stage is a step of handling one chat request. Handle walks the stages
// until it reaches a terminal one.
type Stage int

const (
	StageReceived Stage = iota
	StageSanitized
	StageIntentInferred
	StagePlanned
	StagePrompted
	StageFirstAttempt
	StageRetryPrompted
	StageSecondAttempt

	// Terminal stages.
	StageRejected
	StageClarifyReturned
	StageModelError
	StageValid
	StageFallbackGenerated
)

var stageNames = [...]string{
	StageReceived:          "received",
	StageSanitized:         "sanitized",
	StageIntentInferred:    "intent-inferred",
	StagePlanned:           "planned",
	StagePrompted:          "prompted",
	StageFirstAttempt:      "first-attempt",
	StageRetryPrompted:     "retry-prompted",
	StageSecondAttempt:     "second-attempt",
	StageRejected:          "rejected",
	StageClarifyReturned:   "clarify-returned",
	StageModelError:        "model-error",
	StageValid:             "valid",
	StageFallbackGenerated: "fallback-generated",
}

func (s Stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "unknown"
}

// Terminal reports whether s ends the request.
func (s Stage) Terminal() bool {
	return s >= StageRejected
}
