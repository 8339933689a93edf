package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arithprobe/internal/ir"
)

func TestWriteAndReadFlow(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	add := createTestInvocation(t, "flow-a", "Arith.add", ir.Object{"a": ir.Int(1), "b": ir.Int(2)}, 1)
	addDone := createTestCompletion(t, add, "Success", ir.Object{"sum": ir.Int(3)}, 2)
	even := createTestInvocation(t, "flow-a", "Arith.isEven", ir.Object{"v": ir.Int(3)}, 3)
	evenDone := createTestCompletion(t, even, "Success", ir.Object{"even": ir.Bool(false)}, 4)
	other := createTestInvocation(t, "flow-b", "Arith.add", ir.Object{"a": ir.Int(0), "b": ir.Int(0)}, 5)

	for _, inv := range []ir.Invocation{even, add, other} {
		require.NoError(t, s.WriteInvocation(ctx, inv))
	}
	for _, comp := range []ir.Completion{evenDone, addDone} {
		require.NoError(t, s.WriteCompletion(ctx, comp))
	}

	invs, comps, err := s.ReadFlow(ctx, "flow-a")
	require.NoError(t, err)
	require.Len(t, invs, 2)
	require.Len(t, comps, 2)

	assert.Equal(t, add, invs[0], "ordered by seq")
	assert.Equal(t, even, invs[1])
	assert.Equal(t, addDone, comps[0])
	assert.Equal(t, evenDone, comps[1])
}

func TestReadFlow_Unknown(t *testing.T) {
	s := createTestStore(t)

	invs, comps, err := s.ReadFlow(context.Background(), "nope")
	require.NoError(t, err)
	assert.NotNil(t, invs)
	assert.NotNil(t, comps)
	assert.Empty(t, invs)
	assert.Empty(t, comps)
}

func TestWrite_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	inv := createTestInvocation(t, "flow", "Arith.add", ir.Object{"a": ir.Int(1), "b": ir.Int(1)}, 1)
	comp := createTestCompletion(t, inv, "Success", ir.Object{"sum": ir.Int(2)}, 2)

	for i := 0; i < 2; i++ {
		require.NoError(t, s.WriteInvocation(ctx, inv))
		require.NoError(t, s.WriteCompletion(ctx, comp))
	}

	second := createTestCompletion(t, inv, "InvalidArgs", ir.Object{"error": ir.String("x")}, 3)
	require.NoError(t, s.WriteCompletion(ctx, second), "second completion for an invocation is ignored")

	invs, comps, err := s.ReadFlow(ctx, "flow")
	require.NoError(t, err)
	assert.Len(t, invs, 1)
	require.Len(t, comps, 1)
	assert.Equal(t, "Success", comps[0].OutputCase)
}

func TestWriteCompletion_RequiresInvocation(t *testing.T) {
	s := createTestStore(t)

	comp, err := ir.NewCompletion("missing", "Success", nil, 1)
	require.NoError(t, err)
	assert.Error(t, s.WriteCompletion(context.Background(), comp))
}

func TestReadInvocation(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	inv := createTestInvocation(t, "flow", "Arith.add", ir.Object{"a": ir.Int(9007199254740993), "b": ir.Int(0)}, 1)
	require.NoError(t, s.WriteInvocation(ctx, inv))

	got, err := s.ReadInvocation(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv, got, "large ints round-trip exactly")

	_, err = s.ReadInvocation(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestLastSeqAndFlowTokens(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq, err := s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)

	inv := createTestInvocation(t, "zeta", "Arith.isEven", ir.Object{"v": ir.Int(2)}, 7)
	require.NoError(t, s.WriteInvocation(ctx, inv))
	require.NoError(t, s.WriteCompletion(ctx, createTestCompletion(t, inv, "Success", ir.Object{"even": ir.Bool(true)}, 8)))
	require.NoError(t, s.WriteInvocation(ctx, createTestInvocation(t, "alpha", "Arith.isEven", ir.Object{"v": ir.Int(1)}, 3)))

	seq, err = s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), seq)

	tokens, err := s.ListFlowTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, tokens)
}
