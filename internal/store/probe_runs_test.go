package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRun(t *testing.T, session, probe string, verdict bool) ProbeRun {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return ProbeRun{
		ID:        id.String(),
		SessionID: session,
		Probe:     probe,
		Group:     "test-runner",
		Kind:      "test",
		Expect:    "fail",
		Observed:  "fail",
		Verdict:   verdict,
		ExitCode:  1,
	}
}

func TestProbeRuns_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := newRun(t, "s1", "fail-test", true)
	run.FailedTests = []string{"TestIsEvenWorks"}
	run.DurationMS = 42
	require.NoError(t, s.WriteProbeRun(ctx, run))

	runs, err := s.ListProbeRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run, runs[0])
}

func TestProbeRuns_NilFailedTests(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteProbeRun(ctx, newRun(t, "s1", "build", true)))

	runs, err := s.ListProbeRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, []string{}, runs[0].FailedTests)
}

func TestProbeRuns_NewestFirstAndLimit(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	names := []string{"build", "fail-build", "test", "fail-test"}
	for _, name := range names {
		require.NoError(t, s.WriteProbeRun(ctx, newRun(t, "s1", name, true)))
	}

	all, err := s.ListProbeRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "fail-test", all[0].Probe)
	assert.Equal(t, "build", all[3].Probe)

	two, err := s.ListProbeRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.Equal(t, []string{"fail-test", "test"}, []string{two[0].Probe, two[1].Probe})
}

func TestProbeRuns_Session(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteProbeRun(ctx, newRun(t, "s1", "build", true)))
	require.NoError(t, s.WriteProbeRun(ctx, newRun(t, "s2", "test", false)))
	require.NoError(t, s.WriteProbeRun(ctx, newRun(t, "s1", "fail-build", true)))

	runs, err := s.ReadSession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "build", runs[0].Probe)
	assert.Equal(t, "fail-build", runs[1].Probe)
}

func TestWriteProbeRun_Rejects(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	assert.Error(t, s.WriteProbeRun(ctx, ProbeRun{Probe: "x"}))

	run := newRun(t, "s1", "build", true)
	require.NoError(t, s.WriteProbeRun(ctx, run))
	assert.Error(t, s.WriteProbeRun(ctx, run), "duplicate run id")
}
