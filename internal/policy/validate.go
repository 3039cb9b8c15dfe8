package policy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hackguide/advisor/internal/catalog"
	"github.com/hackguide/advisor/internal/intent"
)

const (
	maxBullets = 4
	maxWords   = 140
)

var (
	bulletLine    = regexp.MustCompile(`^[-*]\s+`)
	laterBullet   = regexp.MustCompile(`(?i)^[-*]\s*later if needed\b`)
	startWithLead = regexp.MustCompile(`(?i)^[-*]\s*start with\b`)
)

// response is the parsed view of a model answer that rules inspect.
type response struct {
	content     string
	bullets     []string
	firstBullet string
	mentioned   []string
	primary     []string
	// committed are mentions outside "Later if needed" bullets. The auth and
	// database rules read it so that a deferred suggestion, which Fallback
	// itself emits, does not count as recommending the tool.
	committed []string
	words     int
}

// rules run in order; each failing rule adds its detail sentence.
var rules = []struct {
	kind   Violation
	failed func(v *Validator, r *response, in intent.StackIntent) bool
	detail func(in intent.StackIntent) string
}{
	{
		ViolationMissingDevelopmentTool,
		func(v *Validator, r *response, _ intent.StackIntent) bool {
			return !startWithLead.MatchString(r.firstBullet) ||
				!v.anyOfCategory(v.idx.Mentioned(r.firstBullet), catalog.CategoryDevelopment) ||
				!v.anyOfCategory(r.mentioned, catalog.CategoryDevelopment)
		},
		fixed(`First bullet must start with "Start with **<development tool>**" and include one development tool.`),
	},
	{
		ViolationUnneededAuth,
		func(v *Validator, r *response, in intent.StackIntent) bool {
			return !in.Requires.Auth && v.anyOfCategory(r.committed, catalog.CategoryAuth)
		},
		fixed("Remove auth tools unless user intent clearly requires user accounts."),
	},
	{
		ViolationUnneededDatabase,
		func(v *Validator, r *response, in intent.StackIntent) bool {
			return !in.Requires.Database && v.anyOfCategory(r.committed, catalog.CategoryDatabase)
		},
		fixed("Remove database tools unless user intent clearly requires saved data."),
	},
	{
		ViolationTooManyTools,
		func(_ *Validator, r *response, in intent.StackIntent) bool {
			return len(r.primary) > in.MaxPrimaryTools
		},
		func(in intent.StackIntent) string {
			return fmt.Sprintf("Keep the primary stack to at most %d guide tools.", in.MaxPrimaryTools)
		},
	},
	{
		ViolationLowLevelDetails,
		func(_ *Validator, r *response, _ intent.StackIntent) bool {
			return intent.LowLevelDetail.Any(r.content)
		},
		fixed("Remove low-level implementation details (HTML/CSS/JavaScript/file setup/config) and keep coaching high-level."),
	},
	{
		ViolationTooVerbose,
		func(_ *Validator, r *response, _ intent.StackIntent) bool {
			return len(r.bullets) > maxBullets || r.words > maxWords
		},
		fixed("Keep the answer concise: one short sentence plus up to four bullets."),
	},
}

func fixed(s string) func(intent.StackIntent) string {
	return func(intent.StackIntent) string { return s }
}

// Validator checks stack-advice responses against a resolved intent.
type Validator struct {
	idx *catalog.Index
}

// NewValidator returns a Validator that recognizes tools from idx.
func NewValidator(idx *catalog.Index) *Validator {
	return &Validator{idx: idx}
}

// Validate runs every rule against content. The response is valid iff no
// rule fails. Empty content is validated like any other text.
func (v *Validator) Validate(content string, in intent.StackIntent) Validation {
	r := v.parse(content)

	var out Violations
	for _, rule := range rules {
		if rule.failed(v, r, in) {
			out.set(rule.kind)
			out.Details = append(out.Details, rule.detail(in))
		}
	}

	return Validation{
		Valid:              len(out.Details) == 0,
		MentionedToolNames: r.mentioned,
		PrimaryToolNames:   r.primary,
		Violations:         out,
	}
}

func (v *Validator) parse(content string) *response {
	r := &response{
		content:   content,
		bullets:   bulletLines(content),
		mentioned: v.idx.Mentioned(content),
		words:     len(strings.Fields(content)),
	}
	if len(r.bullets) > 0 {
		r.firstBullet = r.bullets[0]
	}

	seen := map[string]bool{}
	for _, line := range r.bullets {
		if isLaterBullet(line) {
			continue
		}
		for _, name := range v.idx.Mentioned(line) {
			if !seen[name] {
				seen[name] = true
				r.primary = append(r.primary, name)
			}
		}
	}

	var kept []string
	for _, line := range strings.Split(content, "\n") {
		if isLaterBullet(strings.TrimSpace(line)) {
			continue
		}
		kept = append(kept, line)
	}
	r.committed = v.idx.Mentioned(strings.Join(kept, "\n"))
	return r
}

func (v *Validator) anyOfCategory(names []string, c catalog.Category) bool {
	for _, name := range names {
		if e, ok := v.idx.ByName(name); ok && e.Category == c {
			return true
		}
	}
	return false
}

func isLaterBullet(trimmed string) bool {
	return bulletLine.MatchString(trimmed) && laterBullet.MatchString(trimmed)
}

// bulletLines returns the trimmed lines that start with "-" or "*" followed by whitespace.
func bulletLines(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if bulletLine.MatchString(line) {
			out = append(out, line)
		}
	}
	return out
}
