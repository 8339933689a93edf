// Package harness runs YAML scenarios against the arithmetic actions and
// checks the recorded trace.
//
// # Scenario Format
//
//	name: add_then_check
//	description: "Adds two numbers and checks parity of the sum"
//	flow_token: flow-001            # optional
//	setup:
//	  - action: Arith.add
//	    args: { a: 0, b: 0 }
//	flow:
//	  - invoke: Arith.add
//	    args: { a: 1, b: 2 }
//	    expect:
//	      case: Success
//	      result: { sum: 3 }
//	assertions:
//	  - type: trace_contains
//	    action: Arith.add
//	    args: { a: 1 }
//	  - type: trace_order
//	    actions: [Arith.add, Arith.isEven]
//	  - type: trace_count
//	    action: Arith.isEven
//	    count: 1
//
// # Actions
//
//   - Arith.add {a, b} returns Success {sum}
//   - Arith.isEven {v} returns Success {even}
//   - missing or non-integer arguments return InvalidArgs {error}
//   - any other action returns UnknownAction {action}
//
// # Determinism
//
// Each run uses a fresh in-memory store, a seq clock starting at 1 and a
// fixed flow token, so the same scenario always yields the same trace.
// The trace is read back from the store and compared against golden files
// in canonical JSON.
package harness
