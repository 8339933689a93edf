package harness

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arithprobe/internal/ir"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Type: EventInvocation, ActionURI: "Arith.add", Args: ir.Object{"a": ir.Int(1), "b": ir.Int(2)}, Seq: 1},
		{Type: EventCompletion, OutputCase: CaseSuccess, Result: ir.Object{"sum": ir.Int(3)}, Seq: 2},
		{Type: EventInvocation, ActionURI: "Arith.isEven", Args: ir.Object{"v": ir.Int(3)}, Seq: 3},
		{Type: EventCompletion, OutputCase: CaseSuccess, Result: ir.Object{"even": ir.Bool(false)}, Seq: 4},
		{Type: EventInvocation, ActionURI: "Arith.add", Args: ir.Object{"a": ir.Int(5), "b": ir.Int(5)}, Seq: 5},
		{Type: EventCompletion, OutputCase: CaseSuccess, Result: ir.Object{"sum": ir.Int(10)}, Seq: 6},
	}
}

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()

	tests := []struct {
		name string
		a    Assertion
		ok   bool
	}{
		{"action only", Assertion{Action: "Arith.isEven"}, true},
		{"subset args", Assertion{Action: "Arith.add", Args: map[string]any{"a": 5}}, true},
		{"all args", Assertion{Action: "Arith.add", Args: map[string]any{"a": 1, "b": 2}}, true},
		{"wrong value", Assertion{Action: "Arith.add", Args: map[string]any{"a": 7}}, false},
		{"missing key", Assertion{Action: "Arith.add", Args: map[string]any{"c": 1}}, false},
		{"absent action", Assertion{Action: "Arith.mul"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.a.Type = AssertTraceContains
			err := assertTraceContains(trace, tt.a)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var ae *AssertionError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, AssertTraceContains, ae.Type)
		})
	}
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceOrder(trace, Assertion{Actions: []string{"Arith.add", "Arith.isEven"}}))

	err := assertTraceOrder(trace, Assertion{Actions: []string{"Arith.isEven", "Arith.add"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Arith.isEven (pos 3) should be before Arith.add (pos 1)")

	err = assertTraceOrder(trace, Assertion{Actions: []string{"Arith.add", "Arith.mul"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing action: Arith.mul")
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceCount(trace, Assertion{Action: "Arith.add", Count: 2}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Action: "Arith.mul", Count: 0}))

	err := assertTraceCount(trace, Assertion{Action: "Arith.isEven", Count: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected: 2 occurrences of Arith.isEven")
	assert.Contains(t, err.Error(), "Actual: 1 occurrences")
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := &AssertionError{Type: "trace_count", Expected: "x", Actual: "y", Trace: sampleTrace()}
	msg := err.Error()

	assert.Contains(t, msg, "Assertion failed: trace_count")
	assert.Contains(t, msg, "[1] Arith.add")
	assert.Contains(t, msg, "[3] Arith.isEven")
	assert.NotContains(t, msg, "[2]", "completions are not listed")
}

func TestEvaluateAssertions(t *testing.T) {
	result := &Result{Trace: sampleTrace()}

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceCount, Action: "Arith.add", Count: 2},
		{Type: AssertTraceCount, Action: "Arith.add", Count: 3},
		{Type: "final_state"},
	})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "3 occurrences of Arith.add")
	assert.Contains(t, errs[1], `unknown assertion type "final_state"`)
}
