package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lumen/internal/api"
	"lumen/internal/config"
)

const statusTimeout = 3 * time.Second

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether the lumen daemon is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			status, fetchErr := fetchDaemonStatus(cmd.Context(), cfg)
			if jsonOutput {
				if fetchErr != nil {
					return fetchErr
				}
				return writeJSON(cmd, status)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			printLines(out, renderSectionHeader("Daemon", colorize))
			printLines(out, daemonStatusLines(status, fetchErr, colorize))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the health payload as JSON")
	return cmd
}

func fetchDaemonStatus(ctx context.Context, cfg *config.Config) (api.DaemonStatus, error) {
	var status api.DaemonStatus
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL(cfg.API.Bind), nil)
	if err != nil {
		return status, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return status, fmt.Errorf("connect to daemon at %s: %w", cfg.API.Bind, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return status, fmt.Errorf("daemon health returned %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return status, fmt.Errorf("decode daemon health: %w", err)
	}
	return status, nil
}

// healthURL maps a listen address to a dialable one; wildcard hosts become
// loopback.
func healthURL(bind string) string {
	host, port, err := net.SplitHostPort(strings.TrimSpace(bind))
	if err != nil {
		return "http://" + bind + "/api/health"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port) + "/api/health"
}

func daemonStatusLines(status api.DaemonStatus, fetchErr error, colorize bool) []string {
	if fetchErr != nil {
		return []string{
			renderStatusLine("Lumen", statusError, "Not running", colorize),
			renderStatusLine("Detail", statusInfo, fetchErr.Error(), colorize),
		}
	}

	lines := []string{renderStatusLine("Lumen", statusOK, fmt.Sprintf("Running (pid %d)", status.PID), colorize)}
	if status.Generator == "" {
		lines = append(lines, renderStatusLine("Generator", statusWarn, "none configured; guidance requests will fail", colorize))
	} else {
		lines = append(lines, renderStatusLine("Generator", statusOK, status.Generator, colorize))
	}
	lines = append(lines,
		renderStatusLine("Lineage store", statusInfo, status.LineageBackend, colorize),
		renderStatusLine("Guidance cache", statusInfo, status.CacheBackend, colorize),
	)
	if status.StartedAt != "" {
		lines = append(lines, renderStatusLine("Started", statusInfo, status.StartedAt, colorize))
	}
	return lines
}
