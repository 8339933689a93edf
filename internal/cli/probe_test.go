package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arithprobe/internal/failctl"
	"github.com/roach88/arithprobe/internal/probe"
	"github.com/roach88/arithprobe/internal/store"
	"github.com/roach88/arithprobe/internal/testutil"
)

func newTestProbeCommand(format string, exec probe.Executor) *ProbeOptions {
	return &ProbeOptions{RootOptions: &RootOptions{Format: format}, Executor: exec}
}

func TestProbe_AllExpected(t *testing.T) {
	isolateEnv(t)
	fake := &fakeToolchain{}
	opts := newTestProbeCommand("text", fake)

	stdout, code := runCommand(t, newProbeCommand(opts), "--db", "")
	require.Equal(t, ExitSuccess, code, stdout)

	assert.Len(t, fake.calls, 8)
	assert.Contains(t, stdout, "✓ fail-marker")
	assert.Contains(t, stdout, "failed tests: [TestIsEvenWorks]")
	assert.Contains(t, stdout, "Probe Summary: 8 as expected, 0 unexpected, 8 total")
}

func TestProbe_GlobalMarkerDoesNotLeak(t *testing.T) {
	isolateEnv(t)
	global := testutil.MarkerPath(t)
	require.NoError(t, failctl.SetMarker(global))
	t.Setenv(failctl.EnvMarkerPath, global)

	fake := &fakeToolchain{}
	stdout, code := runCommand(t, newProbeCommand(newTestProbeCommand("text", fake)), "--test-runner", "--filter", "test", "--db", "")
	require.Equal(t, ExitSuccess, code, stdout)

	require.Len(t, fake.calls, 1)
	assert.NotEqual(t, global, env(fake.calls[0].Env, failctl.EnvMarkerPath))
	assert.Equal(t, "0", env(fake.calls[0].Env, failctl.EnvForceFail))
}

func TestProbe_GroupSelection(t *testing.T) {
	isolateEnv(t)

	tests := []struct {
		name  string
		args  []string
		calls int
	}{
		{"builder", []string{"--builder"}, 4},
		{"test runner", []string{"--test-runner"}, 4},
		{"both groups", []string{"--builder", "--test-runner"}, 8},
		{"all wins", []string{"--all", "--builder"}, 8},
		{"filter", []string{"--filter", "fail-*"}, 5},
		{"custom builds", []string{"--builder", "--filter", "*-custom-build"}, 2},
		{"group and filter", []string{"--test-runner", "--filter", "fail-*"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeToolchain{}
			_, code := runCommand(t, newProbeCommand(newTestProbeCommand("text", fake)), append(tt.args, "--db", "")...)
			require.Equal(t, ExitSuccess, code)
			assert.Len(t, fake.calls, tt.calls)
		})
	}
}

func TestProbe_Unexpected(t *testing.T) {
	isolateEnv(t)

	stdout, code := runCommand(t, newProbeCommand(newTestProbeCommand("text", brokenToolchain{})), "--db", "")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "✗ fail-test")
	assert.Contains(t, stdout, "--- stdout ---")
	assert.Contains(t, stdout, "5 unexpected")
}

func TestProbe_FailFast(t *testing.T) {
	isolateEnv(t)

	stdout, code := runCommand(t, newProbeCommand(newTestProbeCommand("json", brokenToolchain{})), "--fail-fast", "--db", "")
	assert.Equal(t, ExitFailure, code)

	resp := decodeResponse(t, stdout)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "E_PROBE_UNEXPECTED", resp.Error.Code)

	data := resp.Data.(map[string]any)
	assert.Equal(t, true, data["stopped"])
	assert.Equal(t, float64(1), data["unexpected"])
	results := data["results"].([]any)
	last := results[len(results)-1].(map[string]any)
	assert.Equal(t, false, last["verdict"])
	assert.Equal(t, "ok\n", last["stdout"])
}

func TestProbe_RecordsHistory(t *testing.T) {
	isolateEnv(t)
	db := filepath.Join(t.TempDir(), "runs.db")

	stdout, code := runCommand(t, newProbeCommand(newTestProbeCommand("json", &fakeToolchain{})), "--builder", "--db", db)
	require.Equal(t, ExitSuccess, code, stdout)
	session := decodeResponse(t, stdout).Data.(map[string]any)["session_id"].(string)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ReadSession(t.Context(), session)
	require.NoError(t, err)
	require.Len(t, runs, 4)
	assert.Equal(t, "build", runs[0].Probe)
	assert.Equal(t, "fail-build", runs[1].Probe)
	assert.Equal(t, "fail", runs[1].Observed)
	assert.Equal(t, "fail-custom-build", runs[2].Probe)
	assert.Equal(t, "command", runs[2].Kind)
	assert.Equal(t, "pass-custom-build", runs[3].Probe)
	assert.Equal(t, "pass", runs[3].Observed)
	for _, run := range runs {
		assert.True(t, run.Verdict, run.Probe)
	}
}

func TestProbe_CustomMatrix(t *testing.T) {
	isolateEnv(t)
	matrix := filepath.Join(t.TempDir(), "matrix.cue")
	require.NoError(t, os.WriteFile(matrix, []byte(`
probes: {
	"only-build": {group: "builder", kind: "build", expect: "pass"}
}
`), 0o644))

	fake := &fakeToolchain{}
	stdout, code := runCommand(t, newProbeCommand(newTestProbeCommand("text", fake)), "--probes", matrix, "--db", "")
	require.Equal(t, ExitSuccess, code, stdout)
	require.Len(t, fake.calls, 1)
	assert.Equal(t, []string{"build", probe.DefaultPackage}, fake.calls[0].Args)
}

func TestProbe_CommandErrors(t *testing.T) {
	isolateEnv(t)

	badMatrix := filepath.Join(t.TempDir(), "bad.cue")
	require.NoError(t, os.WriteFile(badMatrix, []byte(`probes: {"x": {group: "nope", kind: "build", expect: "pass"}}`), 0o644))

	tests := []struct {
		name string
		args []string
	}{
		{"no match", []string{"--filter", "nothing-*"}},
		{"bad pattern", []string{"--filter", "[unclosed"}},
		{"bad matrix", []string{"--probes", badMatrix}},
		{"missing matrix", []string{"--probes", "missing.cue"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeToolchain{}
			_, code := runCommand(t, newProbeCommand(newTestProbeCommand("text", fake)), append(tt.args, "--db", "")...)
			assert.Equal(t, ExitCommandError, code)
			assert.Empty(t, fake.calls)
		})
	}
}

func TestCustomBuild_ReportsDirectory(t *testing.T) {
	isolateEnv(t)
	fake := &fakeToolchain{}

	stdout, code := runCommand(t, newProbeCommand(newTestProbeCommand("json", fake)), "--filter", "*-custom-build", "--dir", "/repo", "--db", "")
	require.Equal(t, ExitSuccess, code, stdout)

	results := decodeResponse(t, stdout).Data.(map[string]any)["results"].([]any)
	require.Len(t, results, 2)

	fail := results[0].(map[string]any)
	assert.Equal(t, "fail-custom-build", fail["probe"])
	assert.Equal(t, "command", fail["kind"])
	assert.Equal(t, "/repo", fail["dir"])
	assert.Equal(t, "fail", fail["observed"])

	pass := results[1].(map[string]any)
	assert.Equal(t, "/repo/cmd/custombuild", pass["dir"])
	assert.Equal(t, "go run .", pass["command"])
	assert.Equal(t, "pass", pass["observed"])
}
