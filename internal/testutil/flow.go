package testutil

// DefaultFlowToken is used when a scenario does not pin its own token.
const DefaultFlowToken = "test-flow-default"

// FixedFlowToken returns the same flow token on every call so golden traces
// stay byte-identical across runs.
type FixedFlowToken struct {
	token string
}

// NewFixedFlowToken pins token, falling back to DefaultFlowToken when empty.
func NewFixedFlowToken(token string) FixedFlowToken {
	if token == "" {
		token = DefaultFlowToken
	}
	return FixedFlowToken{token: token}
}

// Generate returns the pinned token.
func (g FixedFlowToken) Generate() string {
	return g.token
}
