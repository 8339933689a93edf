package cli

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/arithprobe/internal/harness"
	"github.com/roach88/arithprobe/internal/ir"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Action   string
}

// TraceEvent is one entry of a flow timeline.
type TraceEvent struct {
	Seq          int64        `json:"seq"`
	Type         string       `json:"type"` // "invocation" or "completion"
	ID           string       `json:"id"`
	ActionURI    ir.ActionRef `json:"action_uri,omitempty"`
	Args         ir.Object    `json:"args,omitempty"`
	InvocationID string       `json:"invocation_id,omitempty"`
	OutputCase   string       `json:"output_case,omitempty"`
	Result       ir.Object    `json:"result,omitempty"`
}

// TraceResult is the JSON payload of the trace command.
type TraceResult struct {
	FlowToken string       `json:"flow_token"`
	Timeline  []TraceEvent `json:"timeline"`
	Stats     TraceStats   `json:"stats"`
}

// TraceStats summarizes a flow.
type TraceStats struct {
	Invocations int  `json:"invocations"`
	Completions int  `json:"completions"`
	IsComplete  bool `json:"is_complete"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [flow-token | invocation-id]",
		Short: "Show a recorded flow",
		Long: `Show the invocations and completions recorded under a flow token, in seq
order. An invocation ID shows the flow that invocation belongs to. Without
an argument, list the recorded flow tokens.

Examples:
  arithprobe trace
  arithprobe trace 0192f0c4-...
  arithprobe trace 0192f0c4-... --verbose
  arithprobe trace 0192f0c4-... --action Arith.add --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return listFlows(cmd, opts)
			}
			return runTrace(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().StringVar(&opts.Action, "action", "", "only show this action and its completions")

	return cmd
}

func listFlows(cmd *cobra.Command, opts *TraceOptions) error {
	st, err := openExistingStore(cmd, opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	tokens, err := st.ListFlowTokens(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list flows", err)
	}

	f := opts.formatter(cmd)
	if f.JSON() {
		return f.Success(tokens)
	}
	if len(tokens) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No flows recorded.")
		return nil
	}
	for _, t := range tokens {
		fmt.Fprintln(cmd.OutOrStdout(), t)
	}
	return nil
}

func runTrace(cmd *cobra.Command, opts *TraceOptions, ref string) error {
	st, err := openExistingStore(cmd, opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	flowToken := ref
	invs, comps, err := st.ReadFlow(ctx, flowToken)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read flow", err)
	}
	if len(invs) == 0 {
		inv, err := st.ReadInvocation(ctx, ref)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return NewExitError(ExitCommandError, fmt.Sprintf("no events found for flow: %s", ref))
		case err != nil:
			return WrapExitError(ExitCommandError, "failed to read invocation", err)
		}
		flowToken = inv.FlowToken
		opts.formatter(cmd).VerboseLog("invocation %s belongs to flow %s", ref, flowToken)
		if invs, comps, err = st.ReadFlow(ctx, flowToken); err != nil {
			return WrapExitError(ExitCommandError, "failed to read flow", err)
		}
	}

	result := TraceResult{
		FlowToken: flowToken,
		Timeline:  buildTimeline(invs, comps, ir.ActionRef(opts.Action)),
		Stats: TraceStats{
			Invocations: len(invs),
			Completions: len(comps),
			IsComplete:  len(comps) == len(invs),
		},
	}

	f := opts.formatter(cmd)
	if f.JSON() {
		return f.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Flow: %s\n\n", flowToken)
	for _, e := range result.Timeline {
		switch e.Type {
		case harness.EventInvocation:
			fmt.Fprintf(w, "[%d] invoke   %s %v\n", e.Seq, e.ActionURI, ir.ToGo(e.Args))
		case harness.EventCompletion:
			fmt.Fprintf(w, "[%d] complete %s %v\n", e.Seq, e.OutputCase, ir.ToGo(e.Result))
		}
		if opts.Verbose {
			fmt.Fprintf(w, "    id: %s\n", e.ID)
		}
	}
	fmt.Fprintf(w, "\n%d invocation(s), %d completion(s)\n", result.Stats.Invocations, result.Stats.Completions)
	return nil
}

// buildTimeline merges a flow by seq. With an action filter, only matching
// invocations and their own completions are kept.
func buildTimeline(invs []ir.Invocation, comps []ir.Completion, action ir.ActionRef) []TraceEvent {
	kept := make(map[string]bool, len(invs))
	timeline := make([]TraceEvent, 0, len(invs)+len(comps))

	for _, rec := range harness.MergeFlow(invs, comps) {
		if inv := rec.Invocation; inv != nil {
			if action != "" && inv.ActionURI != action {
				continue
			}
			kept[inv.ID] = true
			timeline = append(timeline, TraceEvent{
				Seq:       inv.Seq,
				Type:      harness.EventInvocation,
				ID:        inv.ID,
				ActionURI: inv.ActionURI,
				Args:      inv.Args,
			})
			continue
		}

		comp := rec.Completion
		if action != "" && !kept[comp.InvocationID] {
			continue
		}
		timeline = append(timeline, TraceEvent{
			Seq:          comp.Seq,
			Type:         harness.EventCompletion,
			ID:           comp.ID,
			InvocationID: comp.InvocationID,
			OutputCase:   comp.OutputCase,
			Result:       comp.Result,
		})
	}
	return timeline
}
