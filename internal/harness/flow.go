package harness

import "github.com/google/uuid"

// FlowTokenGenerator hands out the token a recorded flow is stored under.
type FlowTokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable flow tokens, so listing tokens in
// text order lists flows in creation order.
type UUIDv7Generator struct{}

// Generate returns a hyphenated UUIDv7. It panics if the random source
// fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
