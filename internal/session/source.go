package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"lumen/internal/logging"
)

// RawSession is one untouched session record as stored by the host app.
type RawSession struct {
	Kind Kind
	Data map[string]any
}

// Source lists the raw session history. Implementations are read-only.
type Source interface {
	List(ctx context.Context) ([]RawSession, error)
}

// DirSource reads a directory holding one JSON file per session kind. Each file
// is either an array of session objects or an object with a "sessions" array.
type DirSource struct {
	dir    string
	logger *slog.Logger
}

// NewDirSource builds a DirSource rooted at dir.
func NewDirSource(dir string, logger *slog.Logger) *DirSource {
	return &DirSource{dir: dir, logger: logging.NewComponentLogger(logger, "session-source")}
}

// List returns every readable session. A missing directory yields no sessions.
// Files that cannot be parsed are skipped with a warning so one corrupt export
// never hides the rest of the history.
func (s *DirSource) List(ctx context.Context) ([]RawSession, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sessions dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var out []RawSession
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		kind, ok := ParseKind(strings.TrimSuffix(name, filepath.Ext(name)))
		if !ok {
			s.logger.Debug("skipping file with unknown session kind", logging.String("file", name))
			continue
		}
		records, err := readRecords(filepath.Join(s.dir, name))
		if err != nil {
			logging.WarnWithContext(s.logger, "session file unreadable", "session_file_invalid",
				logging.String("file", name),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the JSON export for this session kind"),
				logging.String(logging.FieldImpact, "sessions in this file are ignored for guidance"),
			)
			continue
		}
		for _, record := range records {
			out = append(out, RawSession{Kind: kind, Data: record})
		}
	}
	return out, nil
}

func readRecords(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "{") {
		var wrapper struct {
			Sessions []map[string]any `json:"sessions"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
		}
		return wrapper.Sessions, nil
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return records, nil
}

// Load lists and normalizes every session from src, most recent first.
func Load(ctx context.Context, src Source) ([]Summary, error) {
	if src == nil {
		return nil, nil
	}
	raws, err := src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return NormalizeAll(raws), nil
}

// StaticSource serves a fixed slice of sessions.
type StaticSource []RawSession

// List implements Source.
func (s StaticSource) List(ctx context.Context) ([]RawSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]RawSession(nil), s...), nil
}
