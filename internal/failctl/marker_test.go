package failctl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndClearMarker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultMarkerName)

	assert.False(t, MarkerPresent(path))

	require.NoError(t, SetMarker(path))
	assert.True(t, MarkerPresent(path))

	// Setting twice keeps the file.
	require.NoError(t, SetMarker(path))
	assert.True(t, MarkerPresent(path))

	require.NoError(t, ClearMarker(path))
	assert.False(t, MarkerPresent(path))

	// Clearing a missing marker is fine.
	require.NoError(t, ClearMarker(path))
}

func TestMarker_ContentIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultMarkerName)
	require.NoError(t, os.WriteFile(path, []byte("anything at all"), 0o644))

	assert.True(t, MarkerPresent(path))
	assert.True(t, Control{MarkerPath: path}.Decide().MarkerPresent)
}

func TestMarker_EmptyPath(t *testing.T) {
	assert.False(t, MarkerPresent(""))
	assert.Error(t, SetMarker(""))
	assert.Error(t, ClearMarker(""))
	assert.Error(t, Watch(context.Background(), "", func(bool) {}))
}
