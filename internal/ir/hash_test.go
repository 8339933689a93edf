package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvocationIDDeterminism(t *testing.T) {
	args := Object{"a": Int(1), "b": Int(2)}

	id1, err := InvocationID("flow-1", "Arith.add", args, 1)
	require.NoError(t, err)
	id2, err := InvocationID("flow-1", "Arith.add", Object{"b": Int(2), "a": Int(1)}, 1)
	require.NoError(t, err)

	assert.Equal(t, id1, id2, "key order must not affect the ID")
	assert.Len(t, id1, 64)
}

func TestInvocationIDChangesWithInput(t *testing.T) {
	base := invocationIDFor(t, "flow-1", "Arith.add", Object{"a": Int(1)}, 1)

	assert.NotEqual(t, base, invocationIDFor(t, "flow-2", "Arith.add", Object{"a": Int(1)}, 1))
	assert.NotEqual(t, base, invocationIDFor(t, "flow-1", "Arith.isEven", Object{"a": Int(1)}, 1))
	assert.NotEqual(t, base, invocationIDFor(t, "flow-1", "Arith.add", Object{"a": Int(2)}, 1))
	assert.NotEqual(t, base, invocationIDFor(t, "flow-1", "Arith.add", Object{"a": Int(1)}, 2))
}

func TestCompletionIDLinksToInvocation(t *testing.T) {
	c1, err := CompletionID("inv-1", "Success", Object{"sum": Int(3)}, 2)
	require.NoError(t, err)
	c2, err := CompletionID("inv-2", "Success", Object{"sum": Int(3)}, 2)
	require.NoError(t, err)
	c3, err := CompletionID("inv-1", "InvalidArgs", Object{"sum": Int(3)}, 2)
	require.NoError(t, err)

	assert.NotEqual(t, c1, c2)
	assert.NotEqual(t, c1, c3)
}

func TestHashWithDomainSeparator(t *testing.T) {
	h := sha256.New()
	h.Write([]byte("d"))
	h.Write([]byte{0x00})
	h.Write([]byte("x"))
	assert.Equal(t, hex.EncodeToString(h.Sum(nil)), hashWithDomain("d", []byte("x")))

	assert.NotEqual(t, hashWithDomain(DomainInvocation, []byte("{}")), hashWithDomain(DomainCompletion, []byte("{}")))
}

func TestIDErrors(t *testing.T) {
	_, err := InvocationID("f", "A.b", Object{"x": nil}, 1)
	assert.Error(t, err)

	_, err = CompletionID("i", "Success", Object{"x": nil}, 1)
	assert.Error(t, err)
}

func TestNewInvocationAndCompletion(t *testing.T) {
	inv, err := NewInvocation("flow", "Arith.add", nil, 1)
	require.NoError(t, err)
	assert.Equal(t, Object{}, inv.Args)
	assert.Equal(t, Version, inv.IRVersion)
	assert.Equal(t, invocationIDFor(t, "flow", "Arith.add", Object{}, 1), inv.ID)

	comp, err := NewCompletion(inv.ID, "Success", Object{"sum": Int(0)}, 2)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, comp.InvocationID)
	assert.Equal(t, int64(2), comp.Seq)
	assert.NotEmpty(t, comp.ID)
}

func invocationIDFor(t *testing.T, flow string, action ActionRef, args Object, seq int64) string {
	t.Helper()
	id, err := InvocationID(flow, action, args, seq)
	require.NoError(t, err)
	return id
}
