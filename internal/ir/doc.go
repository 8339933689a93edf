// Package ir holds the value and record types shared by the scenario harness
// and the store.
//
// Constraints:
//   - no floats; numbers are int64
//   - no null in canonical output
//   - ordering uses logical seq values, never wall-clock time
//   - IDs are content-addressed over RFC 8785 canonical JSON
//
// ir imports nothing internal.
package ir
