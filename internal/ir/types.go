package ir

// ActionRef names an action as "Unit.action", e.g. "Arith.add".
type ActionRef string

// Version recorded on every invocation.
const Version = "1"

// Invocation records one action call.
type Invocation struct {
	ID        string    `json:"id"`
	FlowToken string    `json:"flow_token"`
	ActionURI ActionRef `json:"action_uri"`
	Args      Object    `json:"args"`
	Seq       int64     `json:"seq"`
	IRVersion string    `json:"ir_version"`
}

// Completion records the outcome of one invocation.
type Completion struct {
	ID           string `json:"id"`
	InvocationID string `json:"invocation_id"`
	OutputCase   string `json:"output_case"`
	Result       Object `json:"result"`
	Seq          int64  `json:"seq"`
}

// NewInvocation builds an invocation with its content-addressed ID.
func NewInvocation(flowToken string, action ActionRef, args Object, seq int64) (Invocation, error) {
	if args == nil {
		args = Object{}
	}
	id, err := InvocationID(flowToken, action, args, seq)
	if err != nil {
		return Invocation{}, err
	}
	return Invocation{
		ID:        id,
		FlowToken: flowToken,
		ActionURI: action,
		Args:      args,
		Seq:       seq,
		IRVersion: Version,
	}, nil
}

// NewCompletion builds a completion with its content-addressed ID.
func NewCompletion(invocationID, outputCase string, result Object, seq int64) (Completion, error) {
	if result == nil {
		result = Object{}
	}
	id, err := CompletionID(invocationID, outputCase, result, seq)
	if err != nil {
		return Completion{}, err
	}
	return Completion{
		ID:           id,
		InvocationID: invocationID,
		OutputCase:   outputCase,
		Result:       result,
		Seq:          seq,
	}, nil
}
