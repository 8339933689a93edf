// Package store persists arithprobe records in SQLite.
//
// Two logs live side by side:
//   - invocations and completions written by the scenario harness, keyed by
//     content-addressed IDs and ordered by the logical seq clock
//   - probe runs written by the probe runner, keyed by UUIDv7 run IDs
//
// Ordering never uses wall-clock time. Flow reads use ORDER BY seq, id;
// probe history uses the time-sortable run ID.
//
// The database runs in WAL mode with a single open connection, a 5 second
// busy timeout and foreign keys enforced.
package store
