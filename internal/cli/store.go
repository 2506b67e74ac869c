package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jtarchie/planner-pg/internal/domain"
	"github.com/jtarchie/planner-pg/internal/repo"
)

// Runs — операции с запусками, нужные командам CLI.
type Runs interface {
	Create(ctx context.Context, run *domain.PlanRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PlanRun, error)
	List(ctx context.Context, limit int) ([]domain.PlanRun, error)
}

// Statuses — операции со статусами задач.
type Statuses interface {
	ApplyAndRead(ctx context.Context, runID uuid.UUID, updates domain.Snapshot) (domain.Snapshot, error)
	Read(ctx context.Context, runID uuid.UUID) (domain.Snapshot, error)
}

// Store — бандл хранилищ для команд CLI.
type Store struct {
	Runs     Runs
	Statuses Statuses
}

// NewStore подключается к Postgres и собирает Store.
//
// Схема создаётся идемпотентно, чтобы submit работал на чистой БД.
func NewStore(ctx context.Context) (*Store, error) {
	pool, err := repo.NewPool(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := repo.EnsureSchema(ctx, pool); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &Store{
		Runs:     repo.NewRunRepo(pool),
		Statuses: repo.NewStatusRepo(pool),
	}, nil
}
