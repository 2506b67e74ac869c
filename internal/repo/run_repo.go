package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jtarchie/planner-pg/internal/domain"
)

// RunRepo — репозиторий для работы с запусками планов.
type RunRepo struct {
	pool *pgxpool.Pool
}

// NewRunRepo создаёт новый RunRepo.
func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

// Create создаёт новый запуск плана.
func (r *RunRepo) Create(ctx context.Context, run *domain.PlanRun) error {
	specJSON, err := json.Marshal(run.Spec)
	if err != nil {
		return fmt.Errorf("marshal spec: %w", err)
	}

	query := `
		INSERT INTO plan_runs (id, name, spec, status, error, started_at, finished_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.pool.Exec(ctx, query,
		run.ID,
		run.Name,
		specJSON,
		run.Status,
		nullString(run.Error),
		run.StartedAt,
		run.FinishedAt,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert plan run: %w", err)
	}
	return nil
}

// GetByID возвращает запуск по ID.
func (r *RunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PlanRun, error) {
	query := `
		SELECT id, name, spec, status, error, started_at, finished_at, created_at
		FROM plan_runs
		WHERE id = $1
	`
	return r.scanRun(r.pool.QueryRow(ctx, query, id))
}

// Update обновляет статус/ошибку/времена запуска.
func (r *RunRepo) Update(ctx context.Context, run *domain.PlanRun) error {
	query := `
		UPDATE plan_runs
		SET status = $2, error = $3, started_at = $4, finished_at = $5
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		run.ID,
		run.Status,
		nullString(run.Error),
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("update plan run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPending возвращает запуски в статусе PENDING (для polling fallback).
func (r *RunRepo) ListPending(ctx context.Context, limit int) ([]domain.PlanRun, error) {
	query := `
		SELECT id, name, spec, status, error, started_at, finished_at, created_at
		FROM plan_runs
		WHERE status = 'PENDING'
		ORDER BY created_at ASC
		LIMIT $1
	`
	return r.list(ctx, query, limit)
}

// ListActive возвращает запуски в статусе RUNNING.
func (r *RunRepo) ListActive(ctx context.Context, limit int) ([]domain.PlanRun, error) {
	query := `
		SELECT id, name, spec, status, error, started_at, finished_at, created_at
		FROM plan_runs
		WHERE status = 'RUNNING'
		ORDER BY created_at ASC
		LIMIT $1
	`
	return r.list(ctx, query, limit)
}

// List возвращает последние запуски.
func (r *RunRepo) List(ctx context.Context, limit int) ([]domain.PlanRun, error) {
	query := `
		SELECT id, name, spec, status, error, started_at, finished_at, created_at
		FROM plan_runs
		ORDER BY created_at DESC
		LIMIT $1
	`
	return r.list(ctx, query, limit)
}

// --- Helpers ---

func (r *RunRepo) list(ctx context.Context, query string, limit int) ([]domain.PlanRun, error) {
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list plan runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.PlanRun
	for rows.Next() {
		run, err := r.scanRunFromRows(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func (r *RunRepo) scanRun(row pgx.Row) (*domain.PlanRun, error) {
	run, err := scanPlanRun(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return run, err
}

func (r *RunRepo) scanRunFromRows(rows pgx.Rows) (*domain.PlanRun, error) {
	return scanPlanRun(rows.Scan)
}

func scanPlanRun(scan func(dest ...any) error) (*domain.PlanRun, error) {
	var run domain.PlanRun
	var specJSON []byte
	var runError *string

	err := scan(
		&run.ID,
		&run.Name,
		&specJSON,
		&run.Status,
		&runError,
		&run.StartedAt,
		&run.FinishedAt,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan plan run: %w", err)
	}

	if err := json.Unmarshal(specJSON, &run.Spec); err != nil {
		return nil, fmt.Errorf("unmarshal spec: %w", err)
	}
	if runError != nil {
		run.Error = *runError
	}

	return &run, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
