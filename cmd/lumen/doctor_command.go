package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lumen/internal/app"
	"lumen/internal/preflight"
	"lumen/internal/textgen"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var skipProviders bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, catalog and generation providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(a *app.App) error {
				var providers []textgen.Provider
				if !skipProviders {
					providers = a.Providers
				}
				results := preflight.RunAll(cmd.Context(), cfg, providers...)
				if jsonOutput {
					if err := writeJSON(cmd, results); err != nil {
						return err
					}
				} else {
					printDoctor(cmd, results, len(a.Providers) == 0)
				}
				if failed := preflight.Failed(results); len(failed) > 0 {
					return fmt.Errorf("%d of %d checks failed", len(failed), len(results))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&skipProviders, "skip-providers", false, "Do not send a test prompt to each provider")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printDoctor(cmd *cobra.Command, results []preflight.Result, noProviders bool) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		state := "OK"
		if !r.Passed {
			state = "FAIL"
		}
		rows = append(rows, []string{r.Name, state, r.Detail})
	}
	fmt.Fprintln(out, renderTable([]string{"Check", "Result", "Detail"}, rows, nil))
	if noProviders {
		fmt.Fprintln(out, "No generation provider has an API key; guidance requests will return unavailable.")
	}
}
