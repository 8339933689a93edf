package store

import (
	"context"
	"fmt"
)

// ProbeRun is one recorded probe execution.
type ProbeRun struct {
	ID          string   `json:"id"`
	SessionID   string   `json:"session_id"`
	Probe       string   `json:"probe"`
	Group       string   `json:"group"`
	Kind        string   `json:"kind"`
	Expect      string   `json:"expect"`
	Observed    string   `json:"observed"`
	Verdict     bool     `json:"verdict"`
	ExitCode    int      `json:"exit_code"`
	FailedTests []string `json:"failed_tests"`
	DurationMS  int64    `json:"duration_ms"`
}

// WriteProbeRun records a probe execution. IDs must be unique.
func (s *Store) WriteProbeRun(ctx context.Context, run ProbeRun) error {
	if run.ID == "" || run.SessionID == "" {
		return fmt.Errorf("write probe run: id and session id are required")
	}

	failed, err := marshalNames(run.FailedTests)
	if err != nil {
		return fmt.Errorf("write probe run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO probe_runs
		(id, session_id, probe, probe_group, kind, expect, observed, verdict, exit_code, failed_tests, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.SessionID,
		run.Probe,
		run.Group,
		run.Kind,
		run.Expect,
		run.Observed,
		run.Verdict,
		run.ExitCode,
		failed,
		run.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("write probe run %s: %w", run.Probe, err)
	}
	return nil
}

// ListProbeRuns returns up to limit runs, newest first. Run IDs are UUIDv7
// so their text order is creation order. limit <= 0 returns everything.
func (s *Store) ListProbeRuns(ctx context.Context, limit int) ([]ProbeRun, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.queryProbeRuns(ctx, `
		SELECT id, session_id, probe, probe_group, kind, expect, observed, verdict, exit_code, failed_tests, duration_ms
		FROM probe_runs
		ORDER BY id COLLATE BINARY DESC
		LIMIT ?
	`, limit)
}

// ReadSession returns the runs of one session in execution order.
func (s *Store) ReadSession(ctx context.Context, sessionID string) ([]ProbeRun, error) {
	return s.queryProbeRuns(ctx, `
		SELECT id, session_id, probe, probe_group, kind, expect, observed, verdict, exit_code, failed_tests, duration_ms
		FROM probe_runs
		WHERE session_id = ?
		ORDER BY id COLLATE BINARY ASC
	`, sessionID)
}

func (s *Store) queryProbeRuns(ctx context.Context, query string, args ...any) ([]ProbeRun, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query probe runs: %w", err)
	}
	defer rows.Close()

	runs := []ProbeRun{}
	for rows.Next() {
		var (
			run    ProbeRun
			failed string
		)
		if err := rows.Scan(
			&run.ID, &run.SessionID, &run.Probe, &run.Group, &run.Kind, &run.Expect,
			&run.Observed, &run.Verdict, &run.ExitCode, &failed, &run.DurationMS,
		); err != nil {
			return nil, fmt.Errorf("scan probe run: %w", err)
		}
		if run.FailedTests, err = unmarshalNames(failed); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate probe runs: %w", err)
	}
	return runs, nil
}
