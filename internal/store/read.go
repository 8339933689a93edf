package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/arithprobe/internal/ir"
)

// ReadFlow returns the invocations and completions of one flow, each ordered
// by seq then id. Empty slices, never nil, when the flow is unknown.
func (s *Store) ReadFlow(ctx context.Context, flowToken string) ([]ir.Invocation, []ir.Completion, error) {
	invocations, err := s.readFlowInvocations(ctx, flowToken)
	if err != nil {
		return nil, nil, err
	}

	completions, err := s.readFlowCompletions(ctx, flowToken)
	if err != nil {
		return nil, nil, err
	}

	return invocations, completions, nil
}

func (s *Store) readFlowInvocations(ctx context.Context, flowToken string) ([]ir.Invocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, flow_token, action_uri, args, seq, ir_version
		FROM invocations
		WHERE flow_token = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, flowToken)
	if err != nil {
		return nil, fmt.Errorf("query invocations: %w", err)
	}
	defer rows.Close()

	invocations := []ir.Invocation{}
	for rows.Next() {
		inv, err := scanInvocation(rows)
		if err != nil {
			return nil, err
		}
		invocations = append(invocations, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invocations: %w", err)
	}

	return invocations, nil
}

func (s *Store) readFlowCompletions(ctx context.Context, flowToken string) ([]ir.Completion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.invocation_id, c.output_case, c.result, c.seq
		FROM completions c
		JOIN invocations i ON c.invocation_id = i.id
		WHERE i.flow_token = ?
		ORDER BY c.seq ASC, c.id COLLATE BINARY ASC
	`, flowToken)
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer rows.Close()

	completions := []ir.Completion{}
	for rows.Next() {
		comp, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		completions = append(completions, comp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completions: %w", err)
	}

	return completions, nil
}

// ReadInvocation returns one invocation. sql.ErrNoRows when missing.
func (s *Store) ReadInvocation(ctx context.Context, id string) (ir.Invocation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, flow_token, action_uri, args, seq, ir_version
		FROM invocations
		WHERE id = ?
	`, id)
	return scanInvocation(row)
}

// LastSeq returns the highest seq recorded, 0 for an empty log. The CLI
// resumes its clock from here.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var maxSeq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(
			(SELECT COALESCE(MAX(seq), 0) FROM invocations),
			(SELECT COALESCE(MAX(seq), 0) FROM completions)
		)
	`).Scan(&maxSeq)
	if err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return maxSeq, nil
}

// ListFlowTokens returns every distinct flow token, sorted.
func (s *Store) ListFlowTokens(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT flow_token FROM invocations
		ORDER BY flow_token
	`)
	if err != nil {
		return nil, fmt.Errorf("list flow tokens: %w", err)
	}
	defer rows.Close()

	tokens := []string{}
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("scan flow token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flow tokens: %w", err)
	}

	return tokens, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInvocation(row scanner) (ir.Invocation, error) {
	var (
		inv       ir.Invocation
		actionURI string
		argsJSON  string
	)
	if err := row.Scan(&inv.ID, &inv.FlowToken, &actionURI, &argsJSON, &inv.Seq, &inv.IRVersion); err != nil {
		if err == sql.ErrNoRows {
			return ir.Invocation{}, err
		}
		return ir.Invocation{}, fmt.Errorf("scan invocation: %w", err)
	}
	inv.ActionURI = ir.ActionRef(actionURI)

	args, err := unmarshalObject("args", argsJSON)
	if err != nil {
		return ir.Invocation{}, err
	}
	inv.Args = args
	return inv, nil
}

func scanCompletion(row scanner) (ir.Completion, error) {
	var (
		comp       ir.Completion
		resultJSON string
	)
	if err := row.Scan(&comp.ID, &comp.InvocationID, &comp.OutputCase, &resultJSON, &comp.Seq); err != nil {
		return ir.Completion{}, fmt.Errorf("scan completion: %w", err)
	}

	result, err := unmarshalObject("result", resultJSON)
	if err != nil {
		return ir.Completion{}, err
	}
	comp.Result = result
	return comp, nil
}
