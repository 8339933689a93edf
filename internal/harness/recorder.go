package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/arithprobe/internal/ir"
	"github.com/roach88/arithprobe/internal/store"
)

// Clock hands out logical seq values.
type Clock interface {
	Next() int64
}

// Recorder runs actions and writes each invocation and its completion to
// the store under one flow token.
type Recorder struct {
	store     *store.Store
	actions   Actions
	clock     Clock
	flowToken string
	logger    *slog.Logger
}

// NewRecorder builds a recorder. The clock must be called once per record,
// so one Invoke consumes two seq values.
func NewRecorder(st *store.Store, actions Actions, clock Clock, flowToken string, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:     st,
		actions:   actions,
		clock:     clock,
		flowToken: flowToken,
		logger:    logger,
	}
}

// Invoke runs action against args and records both sides.
func (r *Recorder) Invoke(ctx context.Context, action ir.ActionRef, args ir.Object) (ir.Invocation, ir.Completion, error) {
	inv, err := ir.NewInvocation(r.flowToken, action, args, r.clock.Next())
	if err != nil {
		return ir.Invocation{}, ir.Completion{}, err
	}
	if err := r.store.WriteInvocation(ctx, inv); err != nil {
		return ir.Invocation{}, ir.Completion{}, err
	}

	outputCase, result := r.actions.Call(action, inv.Args)

	comp, err := ir.NewCompletion(inv.ID, outputCase, result, r.clock.Next())
	if err != nil {
		return ir.Invocation{}, ir.Completion{}, err
	}
	if err := r.store.WriteCompletion(ctx, comp); err != nil {
		return ir.Invocation{}, ir.Completion{}, fmt.Errorf("%s: %w", action, err)
	}

	r.logger.Debug("action recorded",
		"action", action,
		"invocation_id", inv.ID,
		"completion_id", comp.ID,
		"output_case", outputCase,
	)
	return inv, comp, nil
}
