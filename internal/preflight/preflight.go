package preflight

import (
	"context"

	"lumen/internal/config"
	"lumen/internal/textgen"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll checks the directories the daemon writes to and, when providers are
// given, that each one answers a trivial prompt.
func RunAll(ctx context.Context, cfg *config.Config, providers ...textgen.Provider) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Data directory holds the lineage database, cache file and lock.
	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))

	if cfg.Paths.SessionsDir != "" {
		results = append(results, CheckSessionsDir(cfg.Paths.SessionsDir))
	}

	if cfg.Paths.CatalogPath != "" {
		results = append(results, CheckCatalog(cfg.Paths.CatalogPath))
	}

	for _, p := range providers {
		results = append(results, CheckProvider(ctx, p))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
