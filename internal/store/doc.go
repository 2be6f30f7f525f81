// Package store provides SQLite-backed durable storage for chat message
// segments and the operational log.
//
// The layout is one append-only table per channel, named by a configurable
// prefix plus the channel id, created lazily on the channel's first write.
// Each table carries secondary indexes on message_id and time. A single
// shared log table holds operational log entries.
//
// Ordering rules:
//   - Row identity and replay order come from auto_id (storage-assigned,
//     strictly increasing). Rows are never updated or deleted.
//   - "Recent n" reads select the n most-recent DISTINCT timestamps, then
//     return every row inside that window oldest first. Segments fanned out
//     from one message share a timestamp and are never split.
//
// Retraction is modeled as an annotated replay: a tombstone row followed by
// re-inserted originals, keeping the full audit trail. See internal/recall.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
