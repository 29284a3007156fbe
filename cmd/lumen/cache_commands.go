package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lumen/internal/api"
	"lumen/internal/app"
	"lumen/internal/guidancecache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the guidance cache",
	}

	cacheCmd.AddCommand(newCacheShowCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

// withCache opens only the configured cache backend.
func (c *commandContext) withCache(cmd *cobra.Command, fn func(*guidancecache.Cache) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.logger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	cache, err := app.OpenCache(cmd.Context(), cfg, logger, nil)
	if err != nil {
		return err
	}
	defer cache.Close()
	return fn(cache)
}

type cacheView struct {
	Present     bool   `json:"present"`
	UserID      string `json:"userId,omitempty"`
	ContextHash string `json:"contextHash,omitempty"`
	CachedAt    string `json:"cachedAt,omitempty"`
	ExpiresAt   string `json:"expiresAt,omitempty"`
	Expired     bool   `json:"expired"`
	InsightID   string `json:"insightId,omitempty"`
	Pattern     string `json:"pattern,omitempty"`
}

func newCacheShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the cached guidance entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(cmd, func(cache *guidancecache.Cache) error {
				entry, ok, err := cache.Peek(cmd.Context())
				if err != nil {
					return err
				}
				view := newCacheView(entry, ok, cache.TTL(), time.Now())
				if jsonOutput {
					return writeJSON(cmd, view)
				}
				out := cmd.OutOrStdout()
				if !view.Present {
					fmt.Fprintln(out, "Guidance cache is empty")
					return nil
				}
				fmt.Fprintf(out, "User:         %s\n", view.UserID)
				fmt.Fprintf(out, "Context hash: %s\n", view.ContextHash)
				fmt.Fprintf(out, "Cached at:    %s\n", view.CachedAt)
				fmt.Fprintf(out, "Expires at:   %s (expired: %s)\n", view.ExpiresAt, yesNo(view.Expired))
				fmt.Fprintf(out, "Insight:      %s\n", view.InsightID)
				fmt.Fprintf(out, "Pattern:      %s\n", view.Pattern)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newCacheView(entry guidancecache.Entry, ok bool, ttl time.Duration, now time.Time) cacheView {
	if !ok {
		return cacheView{}
	}
	expires := entry.CachedAt.Add(ttl)
	return cacheView{
		Present:     true,
		UserID:      entry.UserID,
		ContextHash: entry.ContextHash,
		CachedAt:    api.FormatTime(entry.CachedAt),
		ExpiresAt:   api.FormatTime(expires),
		Expired:     now.After(expires),
		InsightID:   entry.Insight.ID,
		Pattern:     entry.Insight.PatternDescription,
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the cached guidance entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(cmd, func(cache *guidancecache.Cache) error {
				if err := cache.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Guidance cache cleared")
				return nil
			})
		},
	}
}
