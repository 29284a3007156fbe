package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"lumen/internal/catalog"
	"lumen/internal/textgen"
)

const providerCheckTimeout = 30 * time.Second

// CheckProvider verifies that a text generation provider answers a trivial
// prompt. It uses a 30-second timeout.
func CheckProvider(ctx context.Context, p textgen.Provider) Result {
	if p == nil {
		return Result{Name: "Text generation", Detail: "no provider configured"}
	}
	name := fmt.Sprintf("Provider %s", p.Name())

	checkCtx, cancel := context.WithTimeout(ctx, providerCheckTimeout)
	defer cancel()

	resp, err := p.Complete(checkCtx, textgen.Request{
		SystemPrompt: "Reply with the single word OK.",
		Messages:     []textgen.Message{{Role: textgen.RoleUser, Content: "ping"}},
		MaxTokens:    5,
	})
	if err != nil {
		return Result{Name: name, Detail: summarizeProviderError(err)}
	}
	if !resp.Usable() {
		detail := resp.Error
		if detail == "" {
			detail = "empty response"
		}
		return Result{Name: name, Detail: detail}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSessionsDir verifies the session export directory is readable. A
// missing directory passes: guidance then runs with no history.
func CheckSessionsDir(path string) Result {
	const name = "Sessions directory"
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (not created yet; no history)", path)}
	}
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}

// CheckCatalog verifies that a custom recommendation catalog parses.
func CheckCatalog(path string) Result {
	const name = "Recommendation catalog"
	cat, err := catalog.Load(path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d targets)", path, len(cat.Targets()))}
}

// summarizeProviderError produces a human-readable summary for provider check failures.
func summarizeProviderError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (provider unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (provider unreachable)"
	}
	return err.Error()
}
