package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arithprobe/internal/failctl"
	"github.com/roach88/arithprobe/internal/probe"
)

// runCLI executes the full command tree and returns stdout, stderr and the
// exit code.
func runCLI(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

// runCommand executes a single command built outside the root tree.
func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), GetExitCode(err)
}

func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

// isolateEnv keeps the host environment and working directory out of config
// and failure-control resolution.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("ARITHPROBE_DB", "")
	t.Setenv(failctl.EnvForceFail, "0")
	t.Setenv(failctl.EnvMarkerPath, "off")
}

// fakeToolchain stands in for the go command: the failbuild tag breaks
// compilation, the custom builder only succeeds from its own directory and
// the parity test fails under the force flag, the failtest tag or a present
// marker.
type fakeToolchain struct {
	calls []probe.Command
}

func (f *fakeToolchain) Execute(_ context.Context, cmd probe.Command) (probe.Execution, error) {
	f.calls = append(f.calls, cmd)

	args := strings.Join(cmd.Args, " ")
	switch cmd.Args[0] {
	case "run":
		if filepath.Base(cmd.Dir) != "custombuild" {
			return probe.Execution{ExitCode: 1, Stderr: []byte("custombuild: wrong directory\n")}, nil
		}
		return probe.Execution{Stdout: []byte("custom build ok\n")}, nil
	case "build":
		if strings.Contains(args, "-tags failbuild") {
			return probe.Execution{ExitCode: 1, Stderr: []byte("internal/arith/failbuild.go: cannot use string as int\n")}, nil
		}
		return probe.Execution{}, nil
	}

	forced := env(cmd.Env, failctl.EnvForceFail) == "1" ||
		strings.Contains(args, "-tags failtest") ||
		failctl.MarkerPresent(env(cmd.Env, failctl.EnvMarkerPath))
	if forced {
		return probe.Execution{
			ExitCode: 1,
			Stdout:   []byte(`{"Action":"fail","Package":"p","Test":"TestIsEvenWorks"}` + "\n"),
			Stderr:   []byte("exit status 1\n"),
		}, nil
	}
	return probe.Execution{Stdout: []byte(`{"Action":"pass","Package":"p"}` + "\n")}, nil
}

func env(vars []string, key string) string {
	for _, kv := range vars {
		if k, v, ok := strings.Cut(kv, "="); ok && k == key {
			return v
		}
	}
	return ""
}

// brokenToolchain passes everything, so every probe expecting a failure is
// reported as unexpected.
type brokenToolchain struct{}

func (brokenToolchain) Execute(context.Context, probe.Command) (probe.Execution, error) {
	return probe.Execution{Stdout: []byte("ok\n")}, nil
}
