package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lumen/internal/confidence"
	"lumen/internal/tone"
)

type scoreView struct {
	confidence.Score
	Level confidence.Level `json:"level"`
	Tone  tone.Tone        `json:"tone"`
}

func newScoreCommand() *cobra.Command {
	var total, lastWeek, related int
	var consistency float64
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "score",
		Short:       "Compute a confidence score from session counts",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if total < 0 || lastWeek < 0 || related < 0 {
				return fmt.Errorf("session counts must be non-negative")
			}
			var signal *float64
			if cmd.Flags().Changed("consistency") {
				signal = &consistency
			}
			score := confidence.Compute(total, lastWeek, related, signal)
			view := scoreView{Score: score, Level: score.Level(), Tone: tone.Determine(score.Value)}
			if jsonOutput {
				return writeJSON(cmd, view)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Confidence: %.2f\n", view.Value)
			fmt.Fprintf(out, "Level:      %s\n", view.Level)
			fmt.Fprintf(out, "Tone:       %s\n", view.Tone)
			return nil
		},
	}

	cmd.Flags().IntVar(&total, "total", 0, "Sessions in the analysis window")
	cmd.Flags().IntVar(&lastWeek, "last-week", 0, "Sessions in the last seven days")
	cmd.Flags().IntVar(&related, "related", 0, "Related prior insights")
	cmd.Flags().Float64Var(&consistency, "consistency", 0, "Optional consistency signal in [0, 1]")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newToneCommand() *cobra.Command {
	toneCmd := &cobra.Command{
		Use:         "tone",
		Short:       "Check and calibrate the certainty of text",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}

	toneCmd.AddCommand(newToneCheckCommand())
	toneCmd.AddCommand(newToneShiftCommand())

	return toneCmd
}

type toneCheckView struct {
	confidence.Result
	Calibrated tone.ShiftResult `json:"calibrated"`
}

func newToneCheckCommand() *cobra.Command {
	var value float64
	var dataPoints int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check <text>",
		Short: "Validate claimed certainty against a confidence value",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validConfidence(value); err != nil {
				return err
			}
			text := strings.Join(args, " ")
			var points *int
			if cmd.Flags().Changed("data-points") {
				points = &dataPoints
			}
			view := toneCheckView{
				Result:     confidence.Validate(text, value, points),
				Calibrated: tone.Shift(text, value, nil),
			}
			if jsonOutput {
				return writeJSON(cmd, view)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			kind, label := statusOK, "matches the evidence"
			if !view.Valid {
				kind, label = statusWarn, string(view.MismatchType)
			}
			printLines(out, []string{
				renderStatusLine("Certainty", kind, label, colorize),
				renderStatusLine("Claimed", statusInfo, string(view.ClaimedLevel), colorize),
				renderStatusLine("Supported", confidenceKind(view.ActualLevel), string(view.ActualLevel), colorize),
			})
			if view.Suggestion != "" {
				printLines(out, []string{renderStatusLine("Suggestion", statusInfo, view.Suggestion, colorize)})
			}
			if view.Calibrated.Changed() {
				fmt.Fprintf(out, "\nCalibrated (%s):\n  %s\n", view.Calibrated.Tone, view.Calibrated.Text)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&value, "confidence", 0.5, "Confidence the text should reflect")
	cmd.Flags().IntVar(&dataPoints, "data-points", 0, "Sessions backing the confidence")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newToneShiftCommand() *cobra.Command {
	var value float64
	var verbose bool
	var currentFlag string

	cmd := &cobra.Command{
		Use:   "shift <text>",
		Short: "Rewrite text in the tone a confidence value supports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validConfidence(value); err != nil {
				return err
			}
			var current *tone.Tone
			if currentFlag != "" {
				parsed, ok := tone.Parse(strings.ToLower(strings.TrimSpace(currentFlag)))
				if !ok {
					return fmt.Errorf("unknown tone %q (want exploratory, observational or definitive)", currentFlag)
				}
				current = &parsed
			}
			result := tone.Shift(strings.Join(args, " "), value, current)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, result.Text)
			if verbose {
				for _, change := range result.Changes {
					fmt.Fprintf(cmd.ErrOrStderr(), "changed: %s\n", change)
				}
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&value, "confidence", 0.5, "Confidence the text should reflect")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List each change on stderr")
	cmd.Flags().StringVar(&currentFlag, "current", "", "Tone the text is already written in (default: detected)")
	return cmd
}

func validConfidence(value float64) error {
	if value < 0 || value > 1 {
		return fmt.Errorf("confidence must be between 0 and 1, got %v", value)
	}
	return nil
}
