// Package daemon coordinates the long-running lumen process.
//
// It owns the HTTP API lifecycle and uses a flock-based lock in the data
// directory to prevent multiple instances from sharing the same lineage
// database. Routes cover the lineage explain, history and verify queries,
// guidance retrieval, health and Prometheus metrics. Every request is traced
// with otelhttp, tagged with an X-Request-ID that flows into log lines, and
// counted by route and status.
//
// Keep orchestration here: pipeline logic belongs to the guidance, lineage
// and synthesis packages.
package daemon
