package harness

import "github.com/roach88/arithprobe/internal/ir"

// Trace event types.
const (
	EventInvocation = "invocation"
	EventCompletion = "completion"
)

// TraceEvent is one invocation or completion in seq order.
type TraceEvent struct {
	Type       string    `json:"type"`
	ActionURI  string    `json:"action_uri,omitempty"`
	Args       ir.Object `json:"args,omitempty"`
	OutputCase string    `json:"output_case,omitempty"`
	Result     ir.Object `json:"result,omitempty"`
	Seq        int64     `json:"seq"`
}

// Result is the outcome of a scenario run.
type Result struct {
	Pass   bool         `json:"pass"`
	Trace  []TraceEvent `json:"trace"`
	Errors []string     `json:"errors,omitempty"`
}

// NewResult returns a passing, empty result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// FlowRecord is one entry of a merged flow. Exactly one field is set.
type FlowRecord struct {
	Invocation *ir.Invocation
	Completion *ir.Completion
}

// MergeFlow interleaves a flow's records by seq. Both slices must already be
// in seq order, as the store returns them. Each invocation precedes its
// completion because its seq is always lower.
func MergeFlow(invs []ir.Invocation, comps []ir.Completion) []FlowRecord {
	merged := make([]FlowRecord, 0, len(invs)+len(comps))
	i, c := 0, 0
	for i < len(invs) || c < len(comps) {
		if c >= len(comps) || (i < len(invs) && invs[i].Seq < comps[c].Seq) {
			merged = append(merged, FlowRecord{Invocation: &invs[i]})
			i++
			continue
		}
		merged = append(merged, FlowRecord{Completion: &comps[c]})
		c++
	}
	return merged
}

func buildTrace(invs []ir.Invocation, comps []ir.Completion) []TraceEvent {
	trace := make([]TraceEvent, 0, len(invs)+len(comps))
	for _, rec := range MergeFlow(invs, comps) {
		if inv := rec.Invocation; inv != nil {
			trace = append(trace, TraceEvent{
				Type:      EventInvocation,
				ActionURI: string(inv.ActionURI),
				Args:      inv.Args,
				Seq:       inv.Seq,
			})
			continue
		}
		comp := rec.Completion
		trace = append(trace, TraceEvent{
			Type:       EventCompletion,
			OutputCase: comp.OutputCase,
			Result:     comp.Result,
			Seq:        comp.Seq,
		})
	}
	return trace
}
