package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lumen/internal/api"
	"lumen/internal/app"
	"lumen/internal/guidance"
	"lumen/internal/lineage"
)

const historyTimeLayout = "2006-01-02 15:04"

func explainService(a *app.App) *api.ExplainService {
	if a == nil || a.Tracker == nil {
		return nil
	}
	return api.NewExplainService(a.Tracker)
}

func newExplainCommand(ctx *commandContext) *cobra.Command {
	explainCmd := &cobra.Command{
		Use:   "explain",
		Short: "Explain why a recommendation or synthesis was produced",
	}

	explainCmd.AddCommand(newExplainRecommendationCommand(ctx))
	explainCmd.AddCommand(newExplainSynthesisCommand(ctx))
	explainCmd.AddCommand(newExplainLineageCommand(ctx))

	return explainCmd
}

func newExplainRecommendationCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "recommendation <id>",
		Short: "Explain one recommendation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app.App) error {
				exp, err := explainService(a).Recommendation(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, exp)
				}
				printExplanation(cmd.OutOrStdout(), exp)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newExplainSynthesisCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "synthesis <id>",
		Short: "Explain a synthesis and every recommendation in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app.App) error {
				exp, err := explainService(a).Synthesis(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, exp)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Synthesis %s (%s, confidence %.2f)\n", exp.Synthesis.ID, exp.ConfidenceLevel, exp.Synthesis.OverallConfidence)
				fmt.Fprintf(out, "  %s\n", exp.Summary)
				if exp.Synthesis.PatternSummary != "" {
					fmt.Fprintf(out, "Pattern: %s\n", exp.Synthesis.PatternSummary)
				}
				for _, rec := range exp.Recommendations {
					fmt.Fprintln(out)
					printExplanation(out, rec)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newExplainLineageCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "lineage <id>",
		Short: "Print the raw lineage record for a recommendation as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app.App) error {
				rec, err := explainService(a).Lineage(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd, rec)
			})
		},
	}
}

func printExplanation(out io.Writer, exp lineage.Explanation) {
	rec := exp.Lineage
	fmt.Fprintf(out, "Recommendation %s: %s\n", rec.RecommendationID, rec.Label)
	fmt.Fprintf(out, "  %s\n", exp.Summary)
	fmt.Fprintf(out, "  Confidence:  %.2f (%s)\n", rec.ConfidenceScore, exp.ConfidenceLevel)
	fmt.Fprintf(out, "  Because:     %s\n", rec.PrimaryReason)
	for _, reason := range rec.SecondaryReasons {
		fmt.Fprintf(out, "               %s\n", reason)
	}
	if len(rec.ContributingSessionIDs) > 0 {
		fmt.Fprintf(out, "  Sessions:    %s\n", strings.Join(rec.ContributingSessionIDs, ", "))
	}
	if exp.Exploratory {
		fmt.Fprintln(out, "  Note:        exploratory; more sessions will sharpen this")
	}
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit, offset int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history [userId]",
		Short: "List past syntheses for a user, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			userID := cfg.Guidance.DefaultUser
			if len(args) == 1 {
				userID = args[0]
			}
			if userID == "" {
				userID = guidance.DefaultUser
			}
			limitValue, offsetValue, err := api.ParsePage(strconv.Itoa(limit), strconv.Itoa(offset))
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(a *app.App) error {
				page, err := explainService(a).History(cmd.Context(), userID, limitValue, offsetValue)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, page)
				}
				printHistory(cmd.OutOrStdout(), page)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", lineage.DefaultHistoryLimit, "Maximum syntheses to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "Syntheses to skip")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printHistory(out io.Writer, page lineage.HistoryPage) {
	if len(page.Syntheses) == 0 {
		fmt.Fprintf(out, "No syntheses recorded for %s\n", page.UserID)
		return
	}
	rows := make([][]string, 0, len(page.Syntheses))
	for _, syn := range page.Syntheses {
		rows = append(rows, []string{
			syn.CreatedAt.Local().Format(historyTimeLayout),
			syn.ID,
			string(syn.Trigger),
			fmt.Sprintf("%.2f", syn.OverallConfidence),
			strconv.Itoa(len(syn.RecommendationIDs)),
			syn.GeneratedBy,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Created", "Synthesis", "Trigger", "Confidence", "Recs", "Generated By"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	))
	fmt.Fprintf(out, "Showing %d of %d (offset %d)\n", len(page.Syntheses), page.Total, page.Offset)
}

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "verify <recommendationId>",
		Short: "Check the integrity of a recommendation's lineage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app.App) error {
				result, err := explainService(a).Verify(cmd.Context(), api.VerifyRequest{RecommendationID: args[0]})
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, result)
				}
				out := cmd.OutOrStdout()
				printLines(out, verifyLines(result, shouldColorize(out)))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func verifyLines(result lineage.VerifyResult, colorize bool) []string {
	var lines []string
	if result.IsValid {
		lines = append(lines, renderStatusLine(result.RecommendationID, statusOK, "lineage intact", colorize))
	} else {
		lines = append(lines, renderStatusLine(result.RecommendationID, statusError, "lineage invalid", colorize))
	}
	for _, issue := range result.Issues {
		lines = append(lines, renderStatusLine("Issue", statusError, issue, colorize))
	}
	for _, warning := range result.Warnings {
		lines = append(lines, renderStatusLine("Warning", statusWarn, warning, colorize))
	}
	return lines
}
