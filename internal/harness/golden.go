package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/arithprobe/internal/ir"
)

// GoldenDir is where golden traces live relative to the test package.
const GoldenDir = "testdata/golden"

// TraceSnapshot is the golden-file form of a run.
type TraceSnapshot struct {
	ScenarioName string
	FlowToken    string
	Trace        []TraceEvent
}

func (s TraceSnapshot) toCanonicalMap() map[string]any {
	events := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		m := map[string]any{
			"type": event.Type,
			"seq":  event.Seq,
		}
		switch event.Type {
		case EventInvocation:
			m["action_uri"] = event.ActionURI
			m["args"] = nonNil(event.Args)
		case EventCompletion:
			m["output_case"] = event.OutputCase
			m["result"] = nonNil(event.Result)
		}
		events[i] = m
	}

	out := map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         events,
	}
	if s.FlowToken != "" {
		out["flow_token"] = s.FlowToken
	}
	return out
}

func nonNil(obj ir.Object) ir.Object {
	if obj == nil {
		return ir.Object{}
	}
	return obj
}

// Snapshot renders a result as canonical JSON. The flow token is included
// only when the scenario pins one.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	return ir.MarshalCanonical(TraceSnapshot{
		ScenarioName: scenario.Name,
		FlowToken:    scenario.FlowToken,
		Trace:        result.Trace,
	}.toCanonicalMap())
}

// RunWithGolden runs a scenario and compares its snapshot with
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(t.Context(), scenario, opts...)
	if err != nil {
		return nil, err
	}

	snapshot, err := Snapshot(scenario, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, snapshot)

	return result, nil
}
