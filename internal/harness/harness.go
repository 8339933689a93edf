package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"

	"github.com/roach88/arithprobe/internal/ir"
	"github.com/roach88/arithprobe/internal/store"
	"github.com/roach88/arithprobe/internal/testutil"
)

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	actions Actions
	logger  *slog.Logger
}

// WithActions replaces the action table.
func WithActions(actions Actions) Option {
	return func(c *runConfig) { c.actions = actions }
}

// WithLogger sets the logger. Logs are discarded by default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *runConfig) { c.logger = logger }
}

// Run executes a scenario against a fresh in-memory store and returns the
// trace read back from it.
//
// Setup and flow steps run the real actions. Expect clauses are checked
// against the produced completions; a mismatch is recorded in the result
// and the run carries on. Assertions are evaluated last.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{
		actions: ArithActions(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	flowToken := testutil.NewFixedFlowToken(scenario.FlowToken).Generate()
	rec := NewRecorder(st, cfg.actions, testutil.NewSeqClock(), flowToken, cfg.logger)
	result := NewResult()

	for i, step := range scenario.Setup {
		_, comp, err := invokeStep(ctx, rec, step.Action, step.Args)
		if err != nil {
			return nil, fmt.Errorf("setup step %d: %w", i, err)
		}
		if comp.OutputCase != CaseSuccess {
			result.AddError(fmt.Sprintf("setup[%d] %s: returned %s %v", i, step.Action, comp.OutputCase, ir.ToGo(comp.Result)))
		}
	}

	for i, step := range scenario.Flow {
		_, comp, err := invokeStep(ctx, rec, step.Invoke, step.Args)
		if err != nil {
			return nil, fmt.Errorf("flow step %d: %w", i, err)
		}
		if step.Expect == nil {
			continue
		}
		if msg := checkExpect(step.Expect, comp); msg != "" {
			result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Invoke, msg))
		}
		cfg.logger.Info("flow step validated",
			"step", i,
			"action", step.Invoke,
			"expected_case", step.Expect.Case,
			"actual_case", comp.OutputCase,
		)
	}

	invs, comps, err := st.ReadFlow(ctx, flowToken)
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	result.Trace = buildTrace(invs, comps)

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

func invokeStep(ctx context.Context, rec *Recorder, action string, rawArgs map[string]any) (ir.Invocation, ir.Completion, error) {
	args, err := ir.ObjectFromMap(rawArgs)
	if err != nil {
		return ir.Invocation{}, ir.Completion{}, fmt.Errorf("convert args: %w", err)
	}
	return rec.Invoke(ctx, ir.ActionRef(action), args)
}

// checkExpect returns a description of the mismatch, or "" when comp
// satisfies the clause.
func checkExpect(expect *ExpectClause, comp ir.Completion) string {
	if comp.OutputCase != expect.Case {
		return fmt.Sprintf("expected case %s, got %s %v", expect.Case, comp.OutputCase, ir.ToGo(comp.Result))
	}
	want, err := ir.ObjectFromMap(expect.Result)
	if err != nil {
		return fmt.Sprintf("invalid expected result: %v", err)
	}
	for _, key := range want.SortedKeys() {
		got, ok := comp.Result[key]
		if !ok {
			return fmt.Sprintf("result field %q missing", key)
		}
		if !reflect.DeepEqual(got, want[key]) {
			return fmt.Sprintf("result field %q = %v, want %v", key, ir.ToGo(got), ir.ToGo(want[key]))
		}
	}
	return ""
}
