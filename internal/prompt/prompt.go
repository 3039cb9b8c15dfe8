package prompt

import (
	"fmt"
	"strings"

	"github.com/hackguide/advisor/internal/catalog"
	"github.com/hackguide/advisor/internal/chat"
	"github.com/hackguide/advisor/internal/intent"
	"github.com/hackguide/advisor/internal/planner"
)

// DefaultSystemPrompt is used for general questions without a tool context.
const DefaultSystemPrompt = "You are an assistant for the AI Hackathon Guide. Help users find tools, compare options (e.g. Cursor vs Replit), and get quick tips for building AI apps during hackathons. Be concise and actionable."

// Options selects which system prompt to build.
type Options struct {
	Mode    string
	Context *chat.ToolContext
	Intent  *intent.StackIntent
	Plan    *planner.Plan
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func toolLine(e *catalog.Entry) string {
	return fmt.Sprintf("- %s (%s) - %s", e.Name, e.Section, e.Tagline)
}

// CandidateBlock renders the plan as three labeled tool groups. Empty
// optional groups are omitted.
func CandidateBlock(p planner.Plan) string {
	lines := []string{"Primary candidate tools:"}
	if len(p.PrimaryTools) == 0 {
		lines = append(lines, "- None")
	}
	for _, e := range p.PrimaryTools {
		lines = append(lines, toolLine(e))
	}
	if len(p.AddLaterTools) > 0 {
		lines = append(lines, "Optional add-later candidates:")
		for _, e := range p.AddLaterTools {
			lines = append(lines, toolLine(e))
		}
	}
	if len(p.AlternativeTools) > 0 {
		lines = append(lines, "Alternatives if a candidate does not fit:")
		for _, e := range p.AlternativeTools {
			lines = append(lines, toolLine(e))
		}
	}
	return strings.Join(lines, "\n")
}

// IntentSummary renders the resolved requirements as prompt bullets.
func IntentSummary(in intent.StackIntent) string {
	return strings.Join([]string{
		"- Auth required: " + yesNo(in.Requires.Auth),
		"- Database required: " + yesNo(in.Requires.Database),
		"- Deployment required: " + yesNo(in.Requires.Deployment),
		"- External API likely required: " + yesNo(in.Requires.ExternalAPI),
		"- AI API required: " + yesNo(in.Requires.AIAPI),
		fmt.Sprintf("- Complexity: %s (max %d tools in Best first version)", in.Complexity, in.MaxPrimaryTools),
	}, "\n")
}

// System builds the system prompt for a request.
func System(opts Options) string {
	if opts.Mode == chat.ModeSuggestStack {
		if opts.Intent == nil || opts.Plan == nil {
			return strings.Join([]string{
				"You suggest minimal stacks for vibe coders.",
				"Keep recommendations concise and practical.",
			}, "\n")
		}
		return strings.Join([]string{
			"You are a stack advisor for vibe coders (AI-assisted coding, minimal config, ship fast).",
			"Recommend the minimum viable build path for this specific app idea.",
			"Speak like a pragmatic AI pair programmer, not a framework tutorial.",
			"Do NOT recommend a tool from every guide section by default.",
			"",
			"Intent analysis from backend policy (treat as hard constraints):",
			IntentSummary(*opts.Intent),
			"",
			"Candidate tools (prefer these when relevant):",
			CandidateBlock(*opts.Plan),
			"",
			"Output style:",
			"- Start with one short recommendation sentence.",
			"- Then provide 2 to 4 concise bullets total.",
			"- First bullet must start with: Start with **<development tool>** - <why this fits>.",
			"- Pick the development tool that best fits the request. Do not force a default tool.",
			"- Mention at most one supporting tool unless required by intent.",
			"- Add an external data/API bullet only when External API required is yes.",
			"- If relevant, add one bullet that starts with: Later if needed: ...",
			"",
			"Hard rules:",
			"- Never include auth tools in primary recommendation unless Auth required is yes.",
			"- Never include database tools in primary recommendation unless Database required is yes.",
			"- Keep primary recommended guide tools within the max tool cap from intent analysis.",
			"- Never mention low-level implementation details: HTML/CSS/JavaScript steps, file creation, boilerplate, folder structure, or build config.",
			"- Keep language high-level, agentic, and beginner-friendly for vibe coders.",
			"- No [Guide] or [Other] labels.",
		}, "\n")
	}

	if opts.Context != nil {
		return fmt.Sprintf("The user is asking about %s. Use this description: %s. Answer their question concisely.",
			opts.Context.ToolName, opts.Context.ToolDescription)
	}

	return DefaultSystemPrompt
}

// Correction builds the user message sent with the single retry. details are
// the remediation sentences of the failed validation.
func Correction(in intent.StackIntent, p planner.Plan, details []string) string {
	return strings.Join([]string{
		"Rewrite your previous answer in a vibe-coder coaching style.",
		strings.Join(details, " "),
		"Start with one development tool in the first bullet using: Start with **<tool>** - ...",
		fmt.Sprintf("Keep the stack minimal for %s scope (max %d guide tools).", in.Complexity, in.MaxPrimaryTools),
		fmt.Sprintf("Auth required: %s. Include auth tools only if required.", yesNo(in.Requires.Auth)),
		fmt.Sprintf("Database required: %s. Include database tools only if required.", yesNo(in.Requires.Database)),
		fmt.Sprintf("External API required: %s.", yesNo(in.Requires.ExternalAPI)),
		"Do not include low-level implementation details (HTML/CSS/JavaScript/files/boilerplate/config).",
		"Keep it to one short recommendation sentence and 2-4 concise bullets.",
		CandidateBlock(p),
		"No [Guide] or [Other] labels.",
	}, "\n")
}
