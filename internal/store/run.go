package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// runRepo implements RunRepo with raw SQL.
type runRepo struct {
	db *sql.DB
}

func (r *runRepo) Save(ctx context.Context, run *Run) error {
	if run.ID == "" {
		return fmt.Errorf("save run: empty id")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.StepCount = len(run.Steps)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, scenario, selector, encoder, total_ids, step_count, alpha, beta, gamma, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Scenario, run.Selector, run.Encoder, run.TotalIDS, run.StepCount,
		run.Alpha, run.Beta, run.Gamma, run.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_steps (run_id, seq, t, action, goal, delta, total_ids) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare step insert: %w", err)
	}
	defer stmt.Close()

	for i, st := range run.Steps {
		if _, err := stmt.ExecContext(ctx, run.ID, i, st.T, st.Action, st.Goal, st.Delta, st.TotalIDS); err != nil {
			return fmt.Errorf("insert step %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (r *runRepo) Get(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, scenario, selector, encoder, total_ids, step_count, alpha, beta, gamma, created_at
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT t, action, goal, delta, total_ids FROM run_steps WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var st RunStep
		if err := rows.Scan(&st.T, &st.Action, &st.Goal, &st.Delta, &st.TotalIDS); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		run.Steps = append(run.Steps, st)
	}
	return run, rows.Err()
}

func (r *runRepo) List(ctx context.Context, opts QueryOpts) ([]Run, error) {
	var (
		where []string
		args  []any
	)
	if opts.Scenario != "" {
		where = append(where, "scenario = ?")
		args = append(args, opts.Scenario)
	}
	if !opts.From.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, opts.From.UnixMilli())
	}
	if !opts.To.IsZero() {
		where = append(where, "created_at <= ?")
		args = append(args, opts.To.UnixMilli())
	}

	q := `SELECT id, scenario, selector, encoder, total_ids, step_count, alpha, beta, gamma, created_at FROM runs`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, id"
	if opts.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func (r *runRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		run       Run
		createdAt int64
	)
	err := s.Scan(&run.ID, &run.Scenario, &run.Selector, &run.Encoder, &run.TotalIDS,
		&run.StepCount, &run.Alpha, &run.Beta, &run.Gamma, &createdAt)
	if err != nil {
		return nil, err
	}
	run.CreatedAt = time.UnixMilli(createdAt)
	return &run, nil
}
