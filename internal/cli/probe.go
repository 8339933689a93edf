package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/arithprobe/internal/probe"
	"github.com/roach88/arithprobe/internal/store"
)

// ProbeOptions holds flags for the probe command.
type ProbeOptions struct {
	*RootOptions
	All        bool
	Builder    bool
	TestRunner bool
	Filter     string
	Probes     string
	FailFast   bool
	Database   string
	Dir        string

	// Executor replaces the process launcher. Nil runs the real toolchain.
	Executor probe.Executor
}

// ProbeResultOutput is one probe in the JSON report.
type ProbeResultOutput struct {
	RunID       string        `json:"run_id"`
	Probe       string        `json:"probe"`
	Group       probe.Group   `json:"group"`
	Kind        probe.Kind    `json:"kind"`
	Command     string        `json:"command"`
	Dir         string        `json:"dir,omitempty"`
	Expect      probe.Outcome `json:"expect"`
	Observed    probe.Outcome `json:"observed"`
	Verdict     bool          `json:"verdict"`
	ExitCode    int           `json:"exit_code"`
	FailedTests []string      `json:"failed_tests"`
	DurationMS  int64         `json:"duration_ms"`
	Stdout      string        `json:"stdout,omitempty"`
	Stderr      string        `json:"stderr,omitempty"`
}

// ProbeReportOutput is the JSON payload of the probe command.
type ProbeReportOutput struct {
	SessionID  string              `json:"session_id"`
	Results    []ProbeResultOutput `json:"results"`
	Expected   int                 `json:"expected"`
	Unexpected int                 `json:"unexpected"`
	Total      int                 `json:"total"`
	Stopped    bool                `json:"stopped"`
}

// NewProbeCommand creates the probe command.
func NewProbeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProbeOptions{RootOptions: rootOpts}
	return newProbeCommand(opts)
}

func newProbeCommand(opts *ProbeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Build and test the arithmetic package under each probe",
		Long: `Run the probe matrix: build and test the arithmetic package under named
conditions and check each observed outcome against the expected one.

Every probe gets a private marker path, so a marker set with
"arithprobe marker set" never leaks into a probe.

Exit codes:
  0 - every probe matched its expectation
  1 - one or more probes did not
  2 - command error (bad matrix, filter, database)

Examples:
  arithprobe probe
  arithprobe probe --builder
  arithprobe probe --test-runner --filter 'fail-*'
  arithprobe probe --probes ./matrix.cue --fail-fast`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbes(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "run every group (default when no group is named)")
	cmd.Flags().BoolVar(&opts.Builder, "builder", false, "run the builder group")
	cmd.Flags().BoolVar(&opts.TestRunner, "test-runner", false, "run the test-runner group")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "select probes by glob over their names")
	cmd.Flags().StringVar(&opts.Probes, "probes", "", "CUE probe matrix replacing the built-in one")
	cmd.Flags().BoolVar(&opts.FailFast, "fail-fast", false, "stop at the first unexpected result")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record results in this SQLite database (default from config, \"\" disables)")
	cmd.Flags().StringVar(&opts.Dir, "dir", "", "module root the toolchain runs in (default current directory)")

	return cmd
}

func (o *ProbeOptions) groups() []probe.Group {
	if o.All {
		return nil
	}
	var groups []probe.Group
	if o.Builder {
		groups = append(groups, probe.GroupBuilder)
	}
	if o.TestRunner {
		groups = append(groups, probe.GroupTestRunner)
	}
	return groups
}

func runProbes(cmd *cobra.Command, opts *ProbeOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger := opts.logger(cmd)

	matrixPath := cfg.Probes
	if opts.Probes != "" {
		matrixPath = opts.Probes
	}
	var matrix []probe.Probe
	if matrixPath != "" {
		matrix, err = probe.LoadFile(matrixPath)
	} else {
		matrix, err = probe.Builtin()
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load probe matrix", err)
	}

	selected, err := probe.Select(matrix, probe.Selection{Groups: opts.groups(), Filter: opts.Filter})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to select probes", err)
	}
	if len(selected) == 0 {
		return NewExitError(ExitCommandError, "no probes selected")
	}

	runnerOpts := []probe.Option{
		probe.WithGo(cfg.Go),
		probe.WithPackage(cfg.Package),
		probe.WithDir(opts.Dir),
		probe.WithFailFast(opts.FailFast),
		probe.WithLogger(logger),
	}
	if opts.Executor != nil {
		runnerOpts = append(runnerOpts, probe.WithExecutor(opts.Executor))
	}

	dbPath := cfg.DB
	if cmd.Flags().Changed("db") {
		dbPath = opts.Database
	}
	if dbPath != "" {
		st, err := store.Open(dbPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if err := st.Close(); err != nil {
				logger.Error("error closing database", "error", err)
			}
		}()
		runnerOpts = append(runnerOpts, probe.WithStore(st))
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	report, err := probe.NewRunner(runnerOpts...).RunAll(ctx, selected)
	if err != nil {
		return WrapExitError(ExitCommandError, "probe run aborted", err)
	}

	out := probeReportOutput(report)
	f := opts.formatter(cmd)
	if f.JSON() {
		if err := f.Result(out, out.Unexpected > 0, "E_PROBE_UNEXPECTED",
			fmt.Sprintf("%d probe(s) did not match their expectation", out.Unexpected)); err != nil {
			return err
		}
	} else {
		writeProbeText(cmd.OutOrStdout(), report, out)
	}

	if out.Unexpected > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d probe(s) did not match their expectation", out.Unexpected))
	}
	return nil
}

func probeReportOutput(report probe.Report) ProbeReportOutput {
	out := ProbeReportOutput{
		SessionID: report.SessionID,
		Results:   make([]ProbeResultOutput, 0, len(report.Results)),
		Total:     len(report.Results),
		Stopped:   report.Stopped,
	}
	for _, res := range report.Results {
		failed := res.FailedTests
		if failed == nil {
			failed = []string{}
		}
		r := ProbeResultOutput{
			RunID:       res.RunID,
			Probe:       res.Probe.Name,
			Group:       res.Probe.Group,
			Kind:        res.Probe.Kind,
			Command:     res.Command.String(),
			Dir:         res.Command.Dir,
			Expect:      res.Probe.Expect,
			Observed:    res.Observed,
			Verdict:     res.Verdict,
			ExitCode:    res.ExitCode,
			FailedTests: failed,
			DurationMS:  res.Duration.Milliseconds(),
		}
		if res.Verdict {
			out.Expected++
		} else {
			out.Unexpected++
			r.Stdout, r.Stderr = string(res.Stdout), string(res.Stderr)
		}
		out.Results = append(out.Results, r)
	}
	return out
}

func writeProbeText(w io.Writer, report probe.Report, out ProbeReportOutput) {
	for _, res := range report.Results {
		mark := "✓"
		if !res.Verdict {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %-18s expect=%s observed=%s (exit %d)\n",
			mark, res.Probe.Name, res.Probe.Expect, res.Observed, res.ExitCode)
		if len(res.FailedTests) > 0 {
			fmt.Fprintf(w, "  failed tests: %v\n", res.FailedTests)
		}
		if res.Verdict {
			continue
		}
		fmt.Fprintf(w, "  command: %s\n", res.Command)
		writeBlock(w, "stderr", res.Stderr)
		writeBlock(w, "stdout", res.Stdout)
	}

	fmt.Fprintln(w)
	if report.Stopped {
		fmt.Fprintln(w, "Stopped at the first unexpected result (--fail-fast).")
	}
	fmt.Fprintf(w, "Probe Summary: %d as expected, %d unexpected, %d total (session %s)\n",
		out.Expected, out.Unexpected, out.Total, out.SessionID)
}

func writeBlock(w io.Writer, label string, data []byte) {
	if len(data) == 0 {
		return
	}
	fmt.Fprintf(w, "  --- %s ---\n", label)
	fmt.Fprint(w, string(data))
	if data[len(data)-1] != '\n' {
		fmt.Fprintln(w)
	}
}
