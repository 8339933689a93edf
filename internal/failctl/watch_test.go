package failctl

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_Transitions(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultMarkerName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	states := make(chan bool, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(present bool) { states <- present })
	}()

	next := func() bool {
		t.Helper()
		select {
		case v := <-states:
			return v
		case <-time.After(5 * time.Second):
			t.Fatal("no marker transition reported")
			return false
		}
	}

	assert.False(t, next(), "initial state")

	require.NoError(t, SetMarker(path))
	assert.True(t, next())

	require.NoError(t, ClearMarker(path))
	assert.False(t, next())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultMarkerName)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	calls := 0
	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, "other"), nil, 0o644)
	}()
	require.NoError(t, Watch(ctx, path, func(bool) { calls++ }))
	assert.Equal(t, 1, calls, "only the initial state")
}

func TestWatch_Errors(t *testing.T) {
	assert.Error(t, Watch(context.Background(), "", func(bool) {}))
	assert.Error(t, Watch(context.Background(), filepath.Join(t.TempDir(), "missing", "marker"), func(bool) {}))
}
