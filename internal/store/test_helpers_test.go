package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/arithprobe/internal/ir"
	"github.com/roach88/arithprobe/internal/testutil"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(testutil.DBPath(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestInvocation(t *testing.T, flowToken string, action ir.ActionRef, args ir.Object, seq int64) ir.Invocation {
	t.Helper()
	inv, err := ir.NewInvocation(flowToken, action, args, seq)
	require.NoError(t, err)
	return inv
}

func createTestCompletion(t *testing.T, inv ir.Invocation, outputCase string, result ir.Object, seq int64) ir.Completion {
	t.Helper()
	comp, err := ir.NewCompletion(inv.ID, outputCase, result, seq)
	require.NoError(t, err)
	return comp
}
