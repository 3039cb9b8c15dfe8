package intent

import (
	"strings"

	"github.com/hackguide/advisor/internal/catalog"
	"github.com/hackguide/advisor/internal/chat"
)

// Confidence cutoffs. A capability between AmbiguousMax and RequiredThreshold
// is neither required nor ambiguous.
const (
	RequiredThreshold = 0.65
	AmbiguousMin      = 0.40
	AmbiguousMax      = 0.64
)

// ClarifyingQuestion is asked at most once per conversation when auth or
// database need is ambiguous.
const ClarifyingQuestion = "Do you need user accounts or saved data in the first version? If no, I'll keep it no-auth and no-database."

// Complexity is the scope tier of a requested app.
type Complexity int

const (
	ComplexitySimple Complexity = iota
	ComplexityMedium
	ComplexityComplex
)

// String returns the lowercase tier name.
func (c Complexity) String() string {
	switch c {
	case ComplexitySimple:
		return "simple"
	case ComplexityMedium:
		return "medium"
	default:
		return "complex"
	}
}

// MarshalText encodes the tier as its name.
func (c Complexity) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// MaxPrimaryTools is the primary-stack cap for the tier.
func (c Complexity) MaxPrimaryTools() int {
	switch c {
	case ComplexitySimple:
		return 2
	case ComplexityMedium:
		return 3
	default:
		return 4
	}
}

func complexityFromScore(score int) Complexity {
	switch {
	case score <= 1:
		return ComplexitySimple
	case score == 2:
		return ComplexityMedium
	default:
		return ComplexityComplex
	}
}

// Requirements are the capabilities the first version must include.
type Requirements struct {
	Auth        bool `json:"auth"`
	Database    bool `json:"database"`
	Deployment  bool `json:"deployment"`
	ExternalAPI bool `json:"externalApi"`
	AIAPI       bool `json:"aiApi"`
}

// Ambiguity marks capabilities the message neither clearly asks for nor rules out.
type Ambiguity struct {
	Auth     bool `json:"auth"`
	Database bool `json:"database"`
}

// StackIntent is the per-turn decision record consumed by planning,
// prompting and validation.
type StackIntent struct {
	Confidence                     Confidence   `json:"confidence"`
	Complexity                     Complexity   `json:"complexity"`
	ComplexityScore                int          `json:"complexityScore"`
	MaxPrimaryTools                int          `json:"maxPrimaryTools"`
	Requires                       Requirements `json:"requires"`
	Ambiguous                      Ambiguity    `json:"ambiguous"`
	ExplicitNegations              Negations    `json:"explicitNegations"`
	Signals                        Signals      `json:"signals"`
	AlreadyAskedClarifyingQuestion bool         `json:"alreadyAskedClarifyingQuestion"`
	ShouldAskClarifyingQuestion    bool         `json:"shouldAskClarifyingQuestion"`
}

// IsRequired reports whether a confidence clears the required threshold.
func IsRequired(confidence float64) bool {
	return confidence >= RequiredThreshold
}

// IsAmbiguous reports whether a confidence falls in the ambiguous band.
func IsAmbiguous(confidence float64) bool {
	return confidence >= AmbiguousMin && confidence <= AmbiguousMax
}

// HasAskedClarifyingQuestion reports whether any assistant message already
// contains the clarifying question, compared in normalized form.
func HasAskedClarifyingQuestion(transcript []chat.Message) bool {
	question := catalog.Normalize(ClarifyingQuestion)
	for _, m := range transcript {
		if m.Role == chat.RoleAssistant && strings.Contains(catalog.Normalize(m.Content), question) {
			return true
		}
	}
	return false
}

// Resolve infers the stack intent for the latest user message. The
// transcript is only scanned for a previously asked clarifying question.
func Resolve(latest string, transcript []chat.Message) StackIntent {
	inf := InferConfidence(latest)
	conf, neg, sig := inf.Confidence, inf.Negations, inf.Signals

	requiresAuth := IsRequired(conf.NeedsAuth) && !neg.Auth
	requiresDatabase := IsRequired(conf.NeedsDatabase) && !neg.Database
	requiresAI := IsRequired(conf.NeedsAIAPI)

	ambiguousAuth := IsAmbiguous(conf.NeedsAuth) && !neg.Auth
	ambiguousDatabase := IsAmbiguous(conf.NeedsDatabase) && !neg.Database

	asked := HasAskedClarifyingQuestion(transcript)

	score := 0
	for _, hit := range []bool{requiresAuth, requiresDatabase, requiresAI, sig.RealtimeOrBackground, sig.MultiUser} {
		if hit {
			score++
		}
	}
	if !requiresAuth && !requiresDatabase && !requiresAI && IsRequired(conf.NeedsDeployment) {
		score++
	}
	complexity := complexityFromScore(score)

	return StackIntent{
		Confidence:      conf,
		Complexity:      complexity,
		ComplexityScore: score,
		MaxPrimaryTools: complexity.MaxPrimaryTools(),
		Requires: Requirements{
			Auth:        requiresAuth && !(asked && ambiguousAuth),
			Database:    requiresDatabase && !(asked && ambiguousDatabase),
			Deployment:  IsRequired(conf.NeedsDeployment) || sig.Deployment,
			ExternalAPI: IsRequired(conf.NeedsExternalAPI),
			AIAPI:       requiresAI,
		},
		Ambiguous: Ambiguity{
			Auth:     ambiguousAuth,
			Database: ambiguousDatabase,
		},
		ExplicitNegations:              neg,
		Signals:                        sig,
		AlreadyAskedClarifyingQuestion: asked,
		ShouldAskClarifyingQuestion:    (ambiguousAuth || ambiguousDatabase) && !asked,
	}
}
