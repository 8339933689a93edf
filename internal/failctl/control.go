package failctl

import (
	"fmt"
	"os"
)

// OddInput is the literal value checked by the conditional parity case.
const OddInput = 3

// State is the position of a single decision in the control state machine.
type State int

const (
	// StateUnconfigured is the zero value before Decide runs.
	StateUnconfigured State = iota
	// StateFlagForced means the force flag short-circuited the marker check.
	StateFlagForced
	// StateMarkerChecked means the marker path was consulted.
	StateMarkerChecked
)

func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateFlagForced:
		return "flag-forced"
	case StateMarkerChecked:
		return "marker-checked"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText renders the state by name in JSON output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Control carries the two failure-injection inputs.
type Control struct {
	// ForceFail makes the parity case fail regardless of the marker.
	ForceFail bool

	// MarkerPath is checked for existence when ForceFail is false.
	// Empty means no marker is configured, which reads as absent.
	MarkerPath string

	// Exists overrides the existence check. Nil uses os.Stat.
	Exists func(path string) bool
}

// Decision is the terminal state of one evaluation.
type Decision struct {
	State         State  `json:"state"`
	MarkerPath    string `json:"marker_path,omitempty"`
	MarkerPresent bool   `json:"marker_present"`
}

func (d Decision) String() string {
	switch d.State {
	case StateFlagForced:
		return "forced failure"
	case StateMarkerChecked:
		if d.MarkerPath == "" {
			return "no marker configured"
		}
		if d.MarkerPresent {
			return fmt.Sprintf("marker present at %s", d.MarkerPath)
		}
		return fmt.Sprintf("marker absent at %s", d.MarkerPath)
	default:
		return d.State.String()
	}
}

// Decide runs the state machine once. The marker is checked at most once;
// whatever state it has at that instant is the answer.
func (c Control) Decide() Decision {
	if c.ForceFail {
		return Decision{State: StateFlagForced, MarkerPath: c.MarkerPath}
	}
	d := Decision{State: StateMarkerChecked, MarkerPath: c.MarkerPath}
	if c.MarkerPath != "" {
		d.MarkerPresent = c.exists(c.MarkerPath)
	}
	return d
}

func (c Control) exists(path string) bool {
	if c.Exists != nil {
		return c.Exists(path)
	}
	_, err := os.Stat(path)
	return err == nil
}

// Outcome is the result of the conditional parity assertion.
type Outcome struct {
	Decision Decision `json:"decision"`
	Input    int      `json:"input"`
	Expected bool     `json:"expected"`
	Actual   bool     `json:"actual"`
	Pass     bool     `json:"pass"`
	Reason   string   `json:"reason"`
}

func (o Outcome) String() string {
	if o.Decision.State == StateFlagForced {
		return fmt.Sprintf("parity check failed: %s", o.Reason)
	}
	status := "passed"
	if !o.Pass {
		status = "failed"
	}
	return fmt.Sprintf("parity check %s: isEven(%d) = %v, want %v (%s)",
		status, o.Input, o.Actual, o.Expected, o.Reason)
}

// Evaluate decides and then asserts isEven(OddInput) against the expectation
// the decision selects. A forced decision fails without calling isEven.
func (c Control) Evaluate(isEven func(int) bool) Outcome {
	d := c.Decide()
	out := Outcome{Decision: d, Input: OddInput}

	if d.State == StateFlagForced {
		out.Reason = "failure forced by flag"
		return out
	}

	out.Expected = d.MarkerPresent
	out.Actual = isEven(OddInput)
	out.Pass = out.Actual == out.Expected
	out.Reason = d.String()
	return out
}
