package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/roach88/arithprobe/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool
	Filter string
}

// ScenarioResult is the outcome of one scenario file.
type ScenarioResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Golden string   `json:"golden"` // "match", "updated", "missing", "mismatch", ""
	Errors []string `json:"errors,omitempty"`
}

// TestResult is the JSON payload of the test command.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run scenario traces against the arithmetic unit",
		Long: `Run every YAML scenario in a directory, checking expect clauses and
assertions, and compare each trace with <scenarios-dir>/golden/<file>.golden.
A scenario without a golden file is judged on its assertions alone.

Exit codes:
  0 - all scenarios passed
  1 - one or more scenarios failed
  2 - command error (missing directory, bad filter)

Examples:
  arithprobe test ./scenarios
  arithprobe test ./scenarios --filter 'add*'
  arithprobe test ./scenarios --update`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite golden files from the current traces")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "select scenario files by glob over their base names")

	return cmd
}

func runTests(cmd *cobra.Command, opts *TestOptions, dir string) error {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", dir))
	}
	if opts.Filter != "" && !doublestar.ValidatePattern(opts.Filter) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid filter pattern %q", opts.Filter))
	}

	files, err := harness.ScenarioFiles(dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	logger := opts.logger(cmd)
	result := TestResult{Scenarios: []ScenarioResult{}}
	for _, file := range files {
		name := scenarioBaseName(file)
		if opts.Filter != "" {
			if ok, _ := doublestar.Match(opts.Filter, name); !ok {
				continue
			}
		}

		res := runScenarioFile(cmd, opts, dir, file)
		logger.Debug("scenario finished", "file", file, "pass", res.Pass, "golden", res.Golden)

		result.Scenarios = append(result.Scenarios, res)
		result.Total++
		if res.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	f := opts.formatter(cmd)
	message := fmt.Sprintf("%d scenario(s) failed", result.Failed)
	if f.JSON() {
		if err := f.Result(result, result.Failed > 0, "E_TEST_FAILED", message); err != nil {
			return err
		}
	} else {
		writeTestText(cmd.OutOrStdout(), result)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, message)
	}
	return nil
}

func scenarioBaseName(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func goldenFilePath(dir, file string) string {
	return filepath.Join(dir, "golden", scenarioBaseName(file)+".golden")
}

func runScenarioFile(cmd *cobra.Command, opts *TestOptions, dir, file string) ScenarioResult {
	res := ScenarioResult{Name: scenarioBaseName(file), File: file}
	fail := func(format string, args ...any) ScenarioResult {
		res.Pass = false
		res.Errors = append(res.Errors, fmt.Sprintf(format, args...))
		return res
	}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return fail("load: %v", err)
	}
	res.Name = scenario.Name

	run, err := harness.Run(cmd.Context(), scenario, harness.WithLogger(opts.logger(cmd)))
	if err != nil {
		return fail("execution: %v", err)
	}
	res.Pass = run.Pass
	res.Errors = append(res.Errors, run.Errors...)

	snapshot, err := harness.Snapshot(scenario, run)
	if err != nil {
		return fail("snapshot: %v", err)
	}

	golden := goldenFilePath(dir, file)
	if opts.Update {
		if err := writeGolden(golden, snapshot); err != nil {
			return fail("golden update: %v", err)
		}
		res.Golden = "updated"
		return res
	}

	want, err := os.ReadFile(golden)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		res.Golden = "missing"
	case err != nil:
		return fail("golden read: %v", err)
	case bytes.Equal(want, snapshot):
		res.Golden = "match"
	default:
		res.Golden = "mismatch"
		return fail("trace does not match %s (run with --update to regenerate)", golden)
	}
	return res
}

func writeGolden(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create golden directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func writeTestText(w io.Writer, result TestResult) {
	if result.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return
	}

	for _, s := range result.Scenarios {
		mark := "✓"
		if !s.Pass {
			mark = "✗"
		}
		suffix := ""
		if s.Golden == "updated" {
			suffix = " (golden updated)"
		}
		fmt.Fprintf(w, "%s %s%s\n", mark, s.Name, suffix)
		for _, e := range s.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.Failed == 0 {
		fmt.Fprintln(w, "✓ All scenarios passed")
	}
}
