package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/arithprobe/internal/harness"
	"github.com/roach88/arithprobe/internal/ir"
	"github.com/roach88/arithprobe/internal/store"
)

// ArithOptions holds flags shared by add and is-even.
type ArithOptions struct {
	*RootOptions
	Record   bool
	Database string

	// Tokens names recorded flows. Nil uses UUIDv7 tokens.
	Tokens harness.FlowTokenGenerator
}

// ActionOutput is the result of one arithmetic command.
type ActionOutput struct {
	Action     ir.ActionRef `json:"action"`
	Args       ir.Object    `json:"args"`
	OutputCase string       `json:"output_case"`
	Result     ir.Object    `json:"result"`
	FlowToken  string       `json:"flow_token,omitempty"`
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	return newAddCommand(&ArithOptions{RootOptions: rootOpts})
}

func newAddCommand(opts *ArithOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <a> <b>",
		Short: "Add two integers",
		Long: `Add two integers with the arithmetic unit.

Negative operands must follow "--" so they are not read as flags.

Examples:
  arithprobe add 2 3
  arithprobe add -- -7 4
  arithprobe add 2 3 --record --db ./arithprobe.db`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseOperand("a", args[0])
			if err != nil {
				return err
			}
			b, err := parseOperand("b", args[1])
			if err != nil {
				return err
			}
			return runAction(cmd, opts, harness.ActionAdd, ir.Object{"a": a, "b": b})
		},
	}
	addRecordFlags(cmd, opts)
	return cmd
}

// NewIsEvenCommand creates the is-even command.
func NewIsEvenCommand(rootOpts *RootOptions) *cobra.Command {
	return newIsEvenCommand(&ArithOptions{RootOptions: rootOpts})
}

func newIsEvenCommand(opts *ArithOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "is-even <v>",
		Short: "Report whether an integer is even",
		Long: `Report whether an integer is even with the arithmetic unit.

Examples:
  arithprobe is-even 4
  arithprobe is-even -- -3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseOperand("v", args[0])
			if err != nil {
				return err
			}
			return runAction(cmd, opts, harness.ActionIsEven, ir.Object{"v": v})
		},
	}
	addRecordFlags(cmd, opts)
	return cmd
}

func addRecordFlags(cmd *cobra.Command, opts *ArithOptions) {
	cmd.Flags().BoolVar(&opts.Record, "record", false, "record the invocation and completion in the database")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
}

func parseOperand(name, raw string) (ir.Int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, fmt.Sprintf("operand %s must be an integer", name), err)
	}
	return ir.Int(n), nil
}

func runAction(cmd *cobra.Command, opts *ArithOptions, action ir.ActionRef, args ir.Object) error {
	out := ActionOutput{Action: action, Args: args}

	if opts.Record {
		inv, comp, err := recordAction(cmd, opts, action, args)
		if err != nil {
			return err
		}
		out.OutputCase, out.Result, out.FlowToken = comp.OutputCase, comp.Result, inv.FlowToken
	} else {
		out.OutputCase, out.Result = harness.ArithActions().Call(action, args)
	}

	f := opts.formatter(cmd)
	if out.OutputCase != harness.CaseSuccess {
		if f.JSON() {
			if err := f.Result(out, true, "E_"+out.OutputCase, fmt.Sprintf("%s returned %s", action, out.OutputCase)); err != nil {
				return err
			}
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("%s returned %s %v", action, out.OutputCase, ir.ToGo(out.Result)))
	}

	if f.JSON() {
		return f.Success(out)
	}

	w := cmd.OutOrStdout()
	switch action {
	case harness.ActionAdd:
		fmt.Fprintln(w, out.Result["sum"])
	default:
		fmt.Fprintln(w, out.Result["even"])
	}
	if out.FlowToken != "" {
		f.VerboseLog("recorded flow %s", out.FlowToken)
	}
	return nil
}

// recordAction runs the action through a Recorder under a fresh flow token,
// resuming the seq clock after the highest seq already stored.
func recordAction(cmd *cobra.Command, opts *ArithOptions, action ir.ActionRef, args ir.Object) (ir.Invocation, ir.Completion, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return ir.Invocation{}, ir.Completion{}, err
	}
	dbPath := cfg.DB
	if cmd.Flags().Changed("db") {
		dbPath = opts.Database
	}
	if dbPath == "" {
		return ir.Invocation{}, ir.Completion{}, NewExitError(ExitCommandError, "--record needs a database (--db or config db)")
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return ir.Invocation{}, ir.Completion{}, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	last, err := st.LastSeq(ctx)
	if err != nil {
		return ir.Invocation{}, ir.Completion{}, WrapExitError(ExitCommandError, "failed to read last seq", err)
	}
	var tokens harness.FlowTokenGenerator = harness.UUIDv7Generator{}
	if opts.Tokens != nil {
		tokens = opts.Tokens
	}
	flow := tokens.Generate()
	rec := harness.NewRecorder(st, harness.ArithActions(), harness.NewLogicalClockAt(last), flow, opts.logger(cmd))
	inv, comp, err := rec.Invoke(ctx, action, args)
	if err != nil {
		return ir.Invocation{}, ir.Completion{}, WrapExitError(ExitCommandError, "failed to record action", err)
	}
	return inv, comp, nil
}
