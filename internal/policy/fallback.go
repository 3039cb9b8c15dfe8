package policy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hackguide/advisor/internal/catalog"
	"github.com/hackguide/advisor/internal/intent"
	"github.com/hackguide/advisor/internal/planner"
)

const fallbackLead = "Keep the first version lean so you can test the idea fast."

var dataSourceHints = []struct {
	re   *regexp.Regexp
	hint string
}{
	{regexp.MustCompile(`(?i)grocery|store|prices?`), "Use one grocery or retail pricing API first, then add more store sources after the MVP works."},
	{regexp.MustCompile(`(?i)weather`), "Use one weather API first so your first version stays easy to test and iterate."},
	{regexp.MustCompile(`(?i)stock|market`), "Use one market-data API first and expand providers later."},
}

const genericDataSourceHint = "Use one reliable external API provider first, then expand once the core flow is working."

// DataSourceHint picks the external-data advice for a user message.
func DataSourceHint(msg string) string {
	for _, h := range dataSourceHints {
		if h.re.MatchString(msg) {
			return h.hint
		}
	}
	return genericDataSourceHint
}

func supportReason(e *catalog.Entry) string {
	switch e.Category {
	case catalog.CategoryDatabase:
		return "saved data"
	case catalog.CategoryAuth:
		return "user accounts"
	case catalog.CategoryDeployment:
		return "a public share link"
	case catalog.CategoryAPI:
		return "AI features"
	default:
		return strings.ToLower(e.Section)
	}
}

// JoinWithAnd joins values as "a", "a and b" or "a, b, and c".
func JoinWithAnd(values []string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	case 2:
		return values[0] + " and " + values[1]
	default:
		return strings.Join(values[:len(values)-1], ", ") + ", and " + values[len(values)-1]
	}
}

func required(in intent.StackIntent, c catalog.Category) bool {
	switch c {
	case catalog.CategoryAuth:
		return in.Requires.Auth
	case catalog.CategoryDatabase:
		return in.Requires.Database
	case catalog.CategoryDeployment:
		return in.Requires.Deployment
	case catalog.CategoryAPI:
		return in.Requires.AIAPI
	default:
		return false
	}
}

// Fallback composes a deterministic answer from the plan. It is built to
// pass the development-tool, auth, database and tool-count rules of
// Validate for the same intent.
func Fallback(idx *catalog.Index, in intent.StackIntent, p planner.Plan, latest string) string {
	var dev *catalog.Entry
	for _, e := range p.PrimaryTools {
		if e.Category == catalog.CategoryDevelopment {
			dev = e
			break
		}
	}
	if dev == nil {
		if devs := idx.ByCategory(catalog.CategoryDevelopment); len(devs) > 0 {
			dev = devs[0]
		}
	}
	if dev == nil {
		return strings.Join([]string{
			"Start with one development tool and keep the first version tight.",
			"- Start with **your preferred development tool** - ask it to build one usable first version end-to-end.",
			"- Keep scope to one core user flow, then expand only after it works.",
		}, "\n")
	}

	var support []*catalog.Entry
	for _, e := range p.PrimaryTools {
		if e.ID != dev.ID && required(in, e.Category) {
			support = append(support, e)
		}
	}
	if limit := max(0, in.MaxPrimaryTools-1); len(support) > limit {
		support = support[:limit]
	}

	bullets := []string{
		fmt.Sprintf("- Start with **%s** - %s. Use it to ship a usable first version quickly.", dev.Name, dev.Tagline),
	}
	if len(support) > 0 {
		phrases := make([]string, len(support))
		for i, e := range support {
			phrases[i] = fmt.Sprintf("**%s** for %s", e.Name, supportReason(e))
		}
		bullets = append(bullets, fmt.Sprintf("- Add %s because this idea needs it in v1.", JoinWithAnd(phrases)))
	}
	if in.Requires.ExternalAPI {
		bullets = append(bullets, "- Data source: "+DataSourceHint(latest))
	}
	if len(bullets) < 2 {
		bullets = append(bullets, "- Keep v1 focused on one core flow first, then add features only after that works.")
	}
	if len(bullets) < 4 && len(p.AddLaterTools) > 0 {
		later := p.AddLaterTools[0]
		bullets = append(bullets, fmt.Sprintf("- Later if needed: **%s** for %s.", later.Name, supportReason(later)))
	}
	if len(bullets) > 4 {
		bullets = bullets[:4]
	}

	return strings.Join(append([]string{fallbackLead}, bullets...), "\n")
}
