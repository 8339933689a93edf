package probe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/arithprobe/internal/failctl"
	"github.com/roach88/arithprobe/internal/store"
)

// Result is the outcome of one probe.
type Result struct {
	RunID       string
	Probe       Probe
	Command     Command
	Observed    Outcome
	Verdict     bool
	ExitCode    int
	FailedTests []string
	Stdout      []byte
	Stderr      []byte
	Duration    time.Duration
}

// Report collects the results of one session.
type Report struct {
	SessionID string
	Results   []Result

	// Stopped is set when fail-fast cut the session short.
	Stopped bool
}

// Passed reports whether every probe matched its expectation.
func (r Report) Passed() bool {
	for _, res := range r.Results {
		if !res.Verdict {
			return false
		}
	}
	return true
}

// Unexpected returns the results whose verdict failed.
func (r Report) Unexpected() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Verdict {
			out = append(out, res)
		}
	}
	return out
}

// Runner executes probes.
type Runner struct {
	goBin    string
	dir      string
	pkg      string
	exec     Executor
	store    *store.Store
	logger   *slog.Logger
	failFast bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithGo sets the go binary. Default "go".
func WithGo(bin string) Option {
	return func(r *Runner) {
		if bin != "" {
			r.goBin = bin
		}
	}
}

// WithDir sets the working directory, normally the module root.
func WithDir(dir string) Option {
	return func(r *Runner) { r.dir = dir }
}

// WithPackage sets the package used by probes that name none.
func WithPackage(pkg string) Option {
	return func(r *Runner) {
		if pkg != "" {
			r.pkg = pkg
		}
	}
}

// WithExecutor replaces the process launcher.
func WithExecutor(e Executor) Option {
	return func(r *Runner) { r.exec = e }
}

// WithStore records every result.
func WithStore(st *store.Store) Option {
	return func(r *Runner) { r.store = st }
}

// WithLogger sets the logger. Logs are discarded by default.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithFailFast stops a session at the first unexpected verdict.
func WithFailFast(on bool) Option {
	return func(r *Runner) { r.failFast = on }
}

// NewRunner builds a runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		goBin:  "go",
		pkg:    DefaultPackage,
		exec:   ExecExecutor{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Command returns the invocation for p without running it. For KindCommand a
// leading "go" is replaced by the runner's go binary.
func (r *Runner) Command(p Probe) Command {
	dir := r.dir
	if p.Dir != "" {
		dir = p.Dir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(r.dir, dir)
		}
	}

	if p.Kind == KindCommand {
		if len(p.Command) == 0 {
			return Command{Dir: dir}
		}
		path := p.Command[0]
		if path == "go" {
			path = r.goBin
		}
		return Command{Path: path, Args: append([]string(nil), p.Command[1:]...), Dir: dir}
	}

	pkg := p.Package
	if pkg == "" {
		pkg = r.pkg
	}

	var args []string
	switch p.Kind {
	case KindTest:
		args = []string{"test", "-json", "-count=1"}
	default:
		args = []string{"build"}
	}
	if len(p.Tags) > 0 {
		args = append(args, "-tags", strings.Join(p.Tags, ","))
	}
	args = append(args, pkg)

	return Command{Path: r.goBin, Args: args, Dir: dir}
}

// Run executes one probe in a private temp directory. The marker is created
// inside that directory only when the probe asks for it.
func (r *Runner) Run(ctx context.Context, p Probe) (Result, error) {
	if msg := checkKind(p); msg != "" {
		return Result{}, fmt.Errorf("probe %s: %s", p.Name, msg)
	}

	tmp, err := os.MkdirTemp("", "arithprobe-"+p.Name+"-")
	if err != nil {
		return Result{}, fmt.Errorf("probe %s: %w", p.Name, err)
	}
	defer os.RemoveAll(tmp)

	control := failctl.Control{
		ForceFail:  p.ForceFail,
		MarkerPath: filepath.Join(tmp, failctl.DefaultMarkerName),
	}
	if p.Marker {
		if err := failctl.SetMarker(control.MarkerPath); err != nil {
			return Result{}, fmt.Errorf("probe %s: %w", p.Name, err)
		}
	}

	cmd := r.Command(p)
	cmd.Env = control.Env()

	r.logger.Debug("probe starting", "probe", p.Name, "command", cmd.String(), "env", cmd.Env)

	start := time.Now()
	ex, err := r.exec.Execute(ctx, cmd)
	if err != nil {
		return Result{}, fmt.Errorf("probe %s: %w", p.Name, err)
	}

	res := Result{
		Probe:    p,
		Command:  cmd,
		Observed: Pass,
		ExitCode: ex.ExitCode,
		Stdout:   ex.Stdout,
		Stderr:   ex.Stderr,
		Duration: time.Since(start),
	}
	if ex.ExitCode != 0 {
		res.Observed = Fail
	}
	if p.Kind == KindTest {
		res.FailedTests = ParseTestFailures(ex.Stdout)
	}
	res.Verdict = res.Observed == p.Expect

	r.logger.Info("probe finished",
		"probe", p.Name,
		"expect", p.Expect,
		"observed", res.Observed,
		"verdict", res.Verdict,
		"exit_code", res.ExitCode,
	)
	return res, nil
}

// RunAll executes probes in order under one session ID, recording each
// result when a store is configured.
func (r *Runner) RunAll(ctx context.Context, probes []Probe) (Report, error) {
	session, err := uuid.NewV7()
	if err != nil {
		return Report{}, fmt.Errorf("session id: %w", err)
	}
	report := Report{SessionID: session.String()}

	for _, p := range probes {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res, err := r.Run(ctx, p)
		if err != nil {
			return report, err
		}

		runID, err := uuid.NewV7()
		if err != nil {
			return report, fmt.Errorf("run id: %w", err)
		}
		res.RunID = runID.String()

		if r.store != nil {
			if err := r.store.WriteProbeRun(ctx, res.record(report.SessionID)); err != nil {
				return report, err
			}
		}

		report.Results = append(report.Results, res)
		if !res.Verdict && r.failFast {
			report.Stopped = true
			break
		}
	}

	return report, nil
}

func (res Result) record(sessionID string) store.ProbeRun {
	return store.ProbeRun{
		ID:          res.RunID,
		SessionID:   sessionID,
		Probe:       res.Probe.Name,
		Group:       string(res.Probe.Group),
		Kind:        string(res.Probe.Kind),
		Expect:      string(res.Probe.Expect),
		Observed:    string(res.Observed),
		Verdict:     res.Verdict,
		ExitCode:    res.ExitCode,
		FailedTests: res.FailedTests,
		DurationMS:  res.Duration.Milliseconds(),
	}
}
