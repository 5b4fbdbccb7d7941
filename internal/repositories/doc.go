// Package repositories implements SQLite persistence for analysis history.
//
// [AnalysisRepository] records every submission with its last observed status and, once the task completes,
// the rendered artifacts (dictionary, ER diagram, schema JSON) in a companion analysis_results table.
// Records are soft deleted via deleted_at timestamps and excluded from queries by default.
//
// Sequence numbers provide stable, human-readable ordering (e.g., analysis #42) independent of UUIDs and creation timestamps.
// [NextSequence] advances the per-table counter inside the inserting transaction.
package repositories
