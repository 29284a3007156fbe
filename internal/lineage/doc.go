// Package lineage records and answers questions about why a recommendation
// was made.
//
// A RecommendationLineage links one recommendation to the sessions, detected
// patterns and reasoning behind it; a SynthesisLineage groups the
// recommendations from one synthesis call together with its trigger and
// context summary. Both are insert-only.
//
// Tracker is the query surface (explain, history, verify) over a Store.
// MemoryStore suits tests and ephemeral runs; SQLiteStore persists to a
// modernc.org/sqlite database with an embedded schema. Schema changes bump
// schemaVersion and require the database to be recreated.
package lineage
