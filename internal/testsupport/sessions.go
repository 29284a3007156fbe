package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lumen/internal/session"
)

// Reference is the fixed "now" used by session fixtures.
var Reference = time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)

// ShadowSession returns a shadow-work record completed daysAgo days before
// Reference.
func ShadowSession(id string, daysAgo int, trigger string) session.RawSession {
	return session.RawSession{
		Kind: session.KindShadowWork,
		Data: map[string]any{
			"id":           id,
			"completedAt":  Reference.AddDate(0, 0, -daysAgo).Format(time.RFC3339),
			"shadowTraits": []any{"anger", "envy"},
			"trigger":      trigger,
		},
	}
}

// MeditationSession returns a meditation record completed daysAgo days before
// Reference.
func MeditationSession(id string, daysAgo int) session.RawSession {
	return session.RawSession{
		Kind: session.KindMeditation,
		Data: map[string]any{
			"id":          id,
			"completedAt": Reference.AddDate(0, 0, -daysAgo).Format(time.RFC3339),
		},
	}
}

// Summaries normalizes raws most-recent-first.
func Summaries(raws ...session.RawSession) []session.Summary {
	return session.NormalizeAll(raws)
}

// WriteSessions stores raws under dir using one <kind>.json file per kind.
func WriteSessions(t testing.TB, dir string, raws ...session.RawSession) {
	t.Helper()

	byKind := map[session.Kind][]map[string]any{}
	for _, raw := range raws {
		byKind[raw.Kind] = append(byKind[raw.Kind], raw.Data)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	for kind, records := range byKind {
		data, err := json.Marshal(map[string]any{"sessions": records})
		if err != nil {
			t.Fatalf("encode %s sessions: %v", kind, err)
		}
		path := filepath.Join(dir, string(kind)+".json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}
