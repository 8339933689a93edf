package harness

import (
	"fmt"

	"github.com/roach88/arithprobe/internal/arith"
	"github.com/roach88/arithprobe/internal/ir"
)

// Output cases returned by actions.
const (
	CaseSuccess       = "Success"
	CaseInvalidArgs   = "InvalidArgs"
	CaseUnknownAction = "UnknownAction"
)

// Action names.
const (
	ActionAdd    ir.ActionRef = "Arith.add"
	ActionIsEven ir.ActionRef = "Arith.isEven"
)

// ActionFunc runs one action and returns its output case and result.
type ActionFunc func(args ir.Object) (string, ir.Object)

// Actions maps action names to their implementations.
type Actions map[ir.ActionRef]ActionFunc

// ArithActions returns the arithmetic action table.
func ArithActions() Actions {
	return Actions{
		ActionAdd:    addAction,
		ActionIsEven: isEvenAction,
	}
}

// Call runs action, reporting UnknownAction for names not in the table.
func (a Actions) Call(action ir.ActionRef, args ir.Object) (string, ir.Object) {
	fn, ok := a[action]
	if !ok {
		return CaseUnknownAction, ir.Object{"action": ir.String(action)}
	}
	return fn(args)
}

func addAction(args ir.Object) (string, ir.Object) {
	a, err := intArg(args, "a")
	if err != nil {
		return invalidArgs(err)
	}
	b, err := intArg(args, "b")
	if err != nil {
		return invalidArgs(err)
	}
	return CaseSuccess, ir.Object{"sum": ir.Int(arith.Add(a, b))}
}

func isEvenAction(args ir.Object) (string, ir.Object) {
	v, err := intArg(args, "v")
	if err != nil {
		return invalidArgs(err)
	}
	return CaseSuccess, ir.Object{"even": ir.Bool(arith.IsEven(v))}
}

func intArg(args ir.Object, name string) (int, error) {
	raw, ok := args[name]
	if !ok {
		return 0, fmt.Errorf("missing argument %q", name)
	}
	n, ok := raw.(ir.Int)
	if !ok {
		return 0, fmt.Errorf("argument %q must be an integer", name)
	}
	return int(n), nil
}

func invalidArgs(err error) (string, ir.Object) {
	return CaseInvalidArgs, ir.Object{"error": ir.String(err.Error())}
}
