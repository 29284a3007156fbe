package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"lumen/internal/api"
	"lumen/internal/app"
	"lumen/internal/guidance"
	"lumen/internal/insight"
)

func newGuidanceCommand(ctx *commandContext) *cobra.Command {
	var userID string
	var forceRefresh bool
	var practices []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "guidance",
		Short: "Synthesize guidance from the stored session history",
		RunE: func(cmd *cobra.Command, args []string) error {
			refs, err := parsePracticeRefs(practices)
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(a *app.App) error {
				res, err := a.Guidance.GuidanceFromHistory(cmd.Context(), refs, nil, guidance.Options{
					UserID:       strings.TrimSpace(userID),
					ForceRefresh: forceRefresh,
				})
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, api.FromGuidanceResult(res))
				}
				printGuidance(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User id attributed in lineage (defaults to guidance.default_user)")
	cmd.Flags().BoolVar(&forceRefresh, "force", false, "Bypass the guidance cache")
	cmd.Flags().StringSliceVar(&practices, "practice", nil, "Active practice as id or id=name (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the guidance as JSON")
	return cmd
}

func parsePracticeRefs(values []string) ([]insight.PracticeRef, error) {
	refs := make([]insight.PracticeRef, 0, len(values))
	for _, value := range values {
		id, name, _ := strings.Cut(value, "=")
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("invalid practice %q: id is required", value)
		}
		refs = append(refs, insight.PracticeRef{ID: id, Name: strings.TrimSpace(name)})
	}
	return refs, nil
}

func printGuidance(out io.Writer, res guidance.Result) {
	ins := res.Insight
	fmt.Fprintf(out, "Pattern (%s, confidence %.2f from %d sessions):\n", toneLabel(ins), ins.Confidence.Value, ins.Confidence.DataPoints)
	fmt.Fprintf(out, "  %s\n", ins.PatternDescription)

	if len(ins.Recommendations) == 0 {
		fmt.Fprintln(out, "Recommendations: none")
	} else {
		rows := make([][]string, 0, len(ins.Recommendations))
		for _, rec := range ins.Recommendations {
			rows = append(rows, []string{rec.ID, rec.TargetID, rec.Label, rec.Rationale})
		}
		fmt.Fprintln(out, "Recommendations:")
		fmt.Fprintln(out, renderTable([]string{"ID", "Target", "Label", "Rationale"}, rows, nil))
	}

	switch {
	case ins.Degraded:
		fmt.Fprintln(out, "Source:  degraded response (not cached, no lineage)")
	case res.FromCache:
		fmt.Fprintf(out, "Source:  cache (stored %s)\n", api.FormatTime(res.CachedAt))
	default:
		fmt.Fprintf(out, "Source:  %s\n", ins.GeneratedBy)
	}
	if ins.SynthesisID != "" {
		fmt.Fprintf(out, "Synthesis: %s\n", ins.SynthesisID)
	}
	for _, change := range ins.Adjustments {
		fmt.Fprintf(out, "Adjusted: %s\n", change)
	}
}

func toneLabel(ins insight.Insight) string {
	if ins.Tone == "" {
		return "unrated"
	}
	return string(ins.Tone)
}
