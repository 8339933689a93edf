package harness

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arithprobe/internal/testutil"
)

func TestUUIDv7Generator(t *testing.T) {
	var gen FlowTokenGenerator = UUIDv7Generator{}

	prev := ""
	for range 50 {
		token := gen.Generate()
		parsed, err := uuid.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), parsed.Version())
		assert.Greater(t, token, prev, "tokens sort by creation")
		prev = token
	}
}

func TestFixedFlowTokenIsAGenerator(t *testing.T) {
	var gen FlowTokenGenerator = testutil.NewFixedFlowToken("")
	assert.Equal(t, testutil.DefaultFlowToken, gen.Generate())
}
