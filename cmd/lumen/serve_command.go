package main

import (
	"github.com/spf13/cobra"

	"lumen/internal/daemonrun"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var development bool
	var skipProviderCheck bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the lumen daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			level := ""
			if ctx.logLevelFlag != nil {
				level = *ctx.logLevelFlag
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:          level,
				Development:       development,
				SkipProviderCheck: skipProviderCheck,
			})
		},
	}

	cmd.Flags().BoolVar(&development, "dev", false, "Include source locations in log lines")
	cmd.Flags().BoolVar(&skipProviderCheck, "skip-provider-check", false, "Do not ping generation providers at startup")
	return cmd
}
