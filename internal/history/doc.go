// Package history records finished conversion batches in a local SQLite
// database so past runs can be listed and inspected from the CLI.
//
// The database lives at <state_dir>/history.db, runs in WAL mode, and retries
// writes briefly when another process holds the lock. Schema changes bump
// schemaVersion; older databases are rejected rather than migrated.
package history
