package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jtarchie/planner-pg/internal/domain"
)

// StatusRepo — Postgres-реализация store статусов задач.
//
// Ключевой контракт: ApplyAndRead применяет пачку обновлений и читает
// итоговый снимок одной транзакцией, поэтому движок всегда видит
// согласованное состояние даже при конкурентных вызовах.
type StatusRepo struct {
	pool *pgxpool.Pool
}

// NewStatusRepo создаёт новый StatusRepo.
func NewStatusRepo(pool *pgxpool.Pool) *StatusRepo {
	return &StatusRepo{pool: pool}
}

// Register заводит UNSTARTED-записи для задач запуска.
// Вызывается один раз при создании запуска; только зарегистрированные
// здесь имена принимают обновления.
func (r *StatusRepo) Register(ctx context.Context, runID uuid.UUID, names []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO task_statuses (run_id, name, status, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_id, name) DO NOTHING
	`
	now := time.Now()
	for _, name := range names {
		if _, err := tx.Exec(ctx, query, runID, name, domain.StatusUnstarted, now); err != nil {
			return fmt.Errorf("register task %s: %w", name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ApplyAndRead атомарно применяет обновления статусов и возвращает
// полный снимок запуска.
//
// Имена, не зарегистрированные для запуска, пропускаются молча и не
// создают новых записей: "нет обновления — значит не запускалась".
func (r *StatusRepo) ApplyAndRead(ctx context.Context, runID uuid.UUID, updates domain.Snapshot) (domain.Snapshot, error) {
	if err := updates.Validate(); err != nil {
		return nil, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE task_statuses
		SET status = $3, updated_at = $4
		WHERE run_id = $1 AND name = $2
	`
	now := time.Now()
	for name, status := range updates {
		// RowsAffected() == 0 — незарегистрированное имя, no-op
		if _, err := tx.Exec(ctx, query, runID, name, status, now); err != nil {
			return nil, fmt.Errorf("update task %s: %w", name, err)
		}
	}

	snap, err := readSnapshot(ctx, tx.Query, runID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return snap, nil
}

// Read возвращает снимок запуска без обновлений.
func (r *StatusRepo) Read(ctx context.Context, runID uuid.UUID) (domain.Snapshot, error) {
	return readSnapshot(ctx, r.pool.Query, runID)
}

// queryFunc покрывает и pgxpool.Pool.Query, и pgx.Tx.Query.
type queryFunc func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)

func readSnapshot(ctx context.Context, query queryFunc, runID uuid.UUID) (domain.Snapshot, error) {
	rows, err := query(ctx, `
		SELECT name, status FROM task_statuses WHERE run_id = $1
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	defer rows.Close()

	snap := make(domain.Snapshot)
	for rows.Next() {
		var name, status string
		if err := rows.Scan(&name, &status); err != nil {
			return nil, fmt.Errorf("scan status: %w", err)
		}
		parsed, err := domain.ParseStatus(status)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", name, err)
		}
		snap[name] = parsed
	}
	return snap, rows.Err()
}
