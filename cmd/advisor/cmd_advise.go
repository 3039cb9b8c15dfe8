package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hackguide/advisor/internal/catalog"
	"github.com/hackguide/advisor/internal/chat"
	"github.com/hackguide/advisor/internal/intent"
	"github.com/hackguide/advisor/internal/planner"
	"github.com/hackguide/advisor/internal/policy"
	"github.com/hackguide/advisor/internal/prompt"
	"github.com/spf13/cobra"
)

// adviceReport is what `advisor advise` prints: everything the service
// derives for a message before it would call the model.
type adviceReport struct {
	Message            string             `json:"message"`
	Intent             intent.StackIntent `json:"intent"`
	ClarifyingQuestion string             `json:"clarifyingQuestion,omitempty"`
	Plan               planIDs            `json:"plan"`
	SystemPrompt       string             `json:"systemPrompt"`
	Fallback           string             `json:"fallback"`
	FallbackCheck      policy.Validation  `json:"fallbackCheck"`
}

type planIDs struct {
	Primary      []string `json:"primary"`
	AddLater     []string `json:"addLater"`
	Alternatives []string `json:"alternatives"`
}

func newAdviseCmd() *cobra.Command {
	var catalogFile string

	cmd := &cobra.Command{
		Use:   "advise <message>",
		Short: "Show intent, plan, prompt and fallback for a message without calling a model",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := cliCatalog(catalogFile)
			if err != nil {
				return err
			}
			return writeAdvice(cmd.OutOrStdout(), idx, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVar(&catalogFile, "catalog", "", "YAML catalog file (default: built-in catalog)")
	return cmd
}

func buildAdviceReport(idx *catalog.Index, msg string) adviceReport {
	transcript := []chat.Message{{Role: chat.RoleUser, Content: msg}}
	in := intent.Resolve(msg, transcript)
	plan := planner.Build(idx, in, msg)
	fallback := policy.Fallback(idx, in, plan, msg)

	report := adviceReport{
		Message: msg,
		Intent:  in,
		Plan: planIDs{
			Primary:      planner.IDs(plan.PrimaryTools),
			AddLater:     planner.IDs(plan.AddLaterTools),
			Alternatives: planner.IDs(plan.AlternativeTools),
		},
		SystemPrompt:  prompt.System(prompt.Options{Mode: chat.ModeSuggestStack, Intent: &in, Plan: &plan}),
		Fallback:      fallback,
		FallbackCheck: policy.NewValidator(idx).Validate(fallback, in),
	}
	if in.ShouldAskClarifyingQuestion {
		report.ClarifyingQuestion = intent.ClarifyingQuestion
	}
	return report
}

func writeAdvice(w io.Writer, idx *catalog.Index, msg string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(buildAdviceReport(idx, msg)); err != nil {
		return fmt.Errorf("writeAdvice: %w", err)
	}
	return nil
}

func cliCatalog(path string) (*catalog.Index, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	sections, err := catalog.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return catalog.Build(sections), nil
}
