package lineage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; existing databases must be cleared to adopt the new schema.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const recommendationColumns = "id, synthesis_id, user_id, target_id, label, contributing_sessions_json, detected_patterns_json, primary_reason, secondary_reasons_json, confidence_score, generated_by, created_at_ns"

const synthesisColumns = "id, user_id, trigger, context_summary, context_hash, pattern_summary, recommendation_ids_json, overall_confidence, generated_by, created_at_ns"

// SQLiteStore persists lineage in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens or creates the lineage database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("open lineage db: path required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create lineage dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database location.
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to recreate it)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *SQLiteStore) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) PutRecommendation(ctx context.Context, rec RecommendationLineage) error {
	return retryOnBusy(ctx, func() error {
		return insertRecommendation(ctx, s.db, rec, false)
	})
}

func (s *SQLiteStore) PutSynthesis(ctx context.Context, syn SynthesisLineage) error {
	idsJSON, err := encodeStrings(syn.RecommendationIDs)
	if err != nil {
		return err
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin lineage tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		_, err = tx.ExecContext(ctx,
			`INSERT INTO synthesis_lineage (`+synthesisColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			syn.ID, syn.UserID, string(syn.Trigger), syn.ContextSummary, syn.ContextHash, syn.PatternSummary,
			idsJSON, syn.OverallConfidence, syn.GeneratedBy, syn.CreatedAt.UTC().UnixNano(),
		)
		if err != nil {
			if isConstraint(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("insert synthesis lineage: %w", err)
		}
		for _, rec := range syn.Recommendations {
			if err := insertRecommendation(ctx, tx, rec, true); err != nil {
				return err
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit lineage tx: %w", err)
		}
		return nil
	})
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertRecommendation(ctx context.Context, db execer, rec RecommendationLineage, ignoreExisting bool) error {
	sessions, err := encodeStrings(rec.ContributingSessionIDs)
	if err != nil {
		return err
	}
	patterns, err := encodeStrings(rec.DetectedPatterns)
	if err != nil {
		return err
	}
	secondary, err := encodeStrings(rec.SecondaryReasons)
	if err != nil {
		return err
	}
	verb := "INSERT"
	if ignoreExisting {
		verb = "INSERT OR IGNORE"
	}
	_, err = db.ExecContext(ctx,
		verb+` INTO recommendation_lineage (`+recommendationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RecommendationID, rec.SynthesisID, rec.UserID, rec.TargetID, rec.Label,
		sessions, patterns, rec.PrimaryReason, secondary,
		rec.ConfidenceScore, rec.GeneratedBy, rec.CreatedAt.UTC().UnixNano(),
	)
	if err != nil {
		if isConstraint(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert recommendation lineage: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetRecommendation(ctx context.Context, id string) (RecommendationLineage, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recommendationColumns+` FROM recommendation_lineage WHERE id = ?`, id)
	rec, err := scanRecommendation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RecommendationLineage{}, ErrNotFound
	}
	if err != nil {
		return RecommendationLineage{}, fmt.Errorf("get recommendation lineage: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) GetSynthesis(ctx context.Context, id string) (SynthesisLineage, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+synthesisColumns+` FROM synthesis_lineage WHERE id = ?`, id)
	syn, err := scanSynthesis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SynthesisLineage{}, ErrNotFound
	}
	if err != nil {
		return SynthesisLineage{}, fmt.Errorf("get synthesis lineage: %w", err)
	}
	if err := s.hydrate(ctx, &syn); err != nil {
		return SynthesisLineage{}, err
	}
	return syn, nil
}

func (s *SQLiteStore) ListSyntheses(ctx context.Context, userID string, limit, offset int) ([]SynthesisLineage, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM synthesis_lineage WHERE user_id = ?", userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count synthesis lineage: %w", err)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+synthesisColumns+` FROM synthesis_lineage WHERE user_id = ? ORDER BY created_at_ns DESC, id ASC LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list synthesis lineage: %w", err)
	}
	defer rows.Close()

	page := make([]SynthesisLineage, 0)
	for rows.Next() {
		syn, err := scanSynthesis(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan synthesis lineage: %w", err)
		}
		page = append(page, syn)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate synthesis lineage: %w", err)
	}
	for i := range page {
		if err := s.hydrate(ctx, &page[i]); err != nil {
			return nil, 0, err
		}
	}
	return page, total, nil
}

func (s *SQLiteStore) hydrate(ctx context.Context, syn *SynthesisLineage) error {
	syn.Recommendations = make([]RecommendationLineage, 0, len(syn.RecommendationIDs))
	for _, id := range syn.RecommendationIDs {
		rec, err := s.GetRecommendation(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		syn.Recommendations = append(syn.Recommendations, rec)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecommendation(row scanner) (RecommendationLineage, error) {
	var (
		rec                           RecommendationLineage
		sessions, patterns, secondary string
		createdNS                     int64
	)
	if err := row.Scan(
		&rec.RecommendationID, &rec.SynthesisID, &rec.UserID, &rec.TargetID, &rec.Label,
		&sessions, &patterns, &rec.PrimaryReason, &secondary,
		&rec.ConfidenceScore, &rec.GeneratedBy, &createdNS,
	); err != nil {
		return RecommendationLineage{}, err
	}
	var err error
	if rec.ContributingSessionIDs, err = decodeStrings(sessions); err != nil {
		return RecommendationLineage{}, err
	}
	if rec.DetectedPatterns, err = decodeStrings(patterns); err != nil {
		return RecommendationLineage{}, err
	}
	if rec.SecondaryReasons, err = decodeStrings(secondary); err != nil {
		return RecommendationLineage{}, err
	}
	rec.CreatedAt = time.Unix(0, createdNS).UTC()
	return rec, nil
}

func scanSynthesis(row scanner) (SynthesisLineage, error) {
	var (
		syn       SynthesisLineage
		trigger   string
		ids       string
		createdNS int64
	)
	if err := row.Scan(
		&syn.ID, &syn.UserID, &trigger, &syn.ContextSummary, &syn.ContextHash, &syn.PatternSummary,
		&ids, &syn.OverallConfidence, &syn.GeneratedBy, &createdNS,
	); err != nil {
		return SynthesisLineage{}, err
	}
	syn.Trigger = Trigger(trigger)
	var err error
	if syn.RecommendationIDs, err = decodeStrings(ids); err != nil {
		return SynthesisLineage{}, err
	}
	syn.CreatedAt = time.Unix(0, createdNS).UTC()
	return syn, nil
}

func encodeStrings(values []string) (string, error) {
	data, err := json.Marshal(cloneStrings(values))
	if err != nil {
		return "", fmt.Errorf("encode lineage list: %w", err)
	}
	return string(data), nil
}

func decodeStrings(raw string) ([]string, error) {
	out := []string{}
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode lineage list: %w", err)
	}
	return out, nil
}

func isConstraint(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "SQLITE_CONSTRAINT")
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
