package policy

// Violation identifies one response rule.
type Violation int

const (
	ViolationMissingDevelopmentTool Violation = iota + 1
	ViolationUnneededAuth
	ViolationUnneededDatabase
	ViolationTooManyTools
	ViolationLowLevelDetails
	ViolationTooVerbose
)

// String returns the snake_case rule name used in logs and stored events.
func (v Violation) String() string {
	switch v {
	case ViolationMissingDevelopmentTool:
		return "missing_development_tool"
	case ViolationUnneededAuth:
		return "unneeded_auth"
	case ViolationUnneededDatabase:
		return "unneeded_database"
	case ViolationTooManyTools:
		return "too_many_tools"
	case ViolationLowLevelDetails:
		return "contains_low_level_details"
	case ViolationTooVerbose:
		return "too_verbose"
	default:
		return "unspecified"
	}
}

// Violations is the per-rule outcome of validating one response.
type Violations struct {
	MissingDevelopmentTool  bool     `json:"missingDevelopmentTool"`
	UnneededAuth            bool     `json:"unneededAuth"`
	UnneededDatabase        bool     `json:"unneededDatabase"`
	TooManyTools            bool     `json:"tooManyTools"`
	ContainsLowLevelDetails bool     `json:"containsLowLevelDetails"`
	TooVerbose              bool     `json:"tooVerbose"`
	Details                 []string `json:"details"`
}

func (v *Violations) set(kind Violation) {
	switch kind {
	case ViolationMissingDevelopmentTool:
		v.MissingDevelopmentTool = true
	case ViolationUnneededAuth:
		v.UnneededAuth = true
	case ViolationUnneededDatabase:
		v.UnneededDatabase = true
	case ViolationTooManyTools:
		v.TooManyTools = true
	case ViolationLowLevelDetails:
		v.ContainsLowLevelDetails = true
	case ViolationTooVerbose:
		v.TooVerbose = true
	}
}

// Names returns the rule names of every triggered violation.
func (v Violations) Names() []string {
	var out []string
	flags := []struct {
		on   bool
		kind Violation
	}{
		{v.MissingDevelopmentTool, ViolationMissingDevelopmentTool},
		{v.UnneededAuth, ViolationUnneededAuth},
		{v.UnneededDatabase, ViolationUnneededDatabase},
		{v.TooManyTools, ViolationTooManyTools},
		{v.ContainsLowLevelDetails, ViolationLowLevelDetails},
		{v.TooVerbose, ViolationTooVerbose},
	}
	for _, f := range flags {
		if f.on {
			out = append(out, f.kind.String())
		}
	}
	return out
}

// Validation is the result of checking one response against an intent.
type Validation struct {
	Valid              bool       `json:"isValid"`
	MentionedToolNames []string   `json:"mentionedToolNames"`
	PrimaryToolNames   []string   `json:"primaryToolNames"`
	Violations         Violations `json:"violations"`
}
