package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jtarchie/planner-pg/internal/domain"
	"github.com/jtarchie/planner-pg/internal/mq"
)

// RunStore — операции с запусками, нужные orchestrator.
type RunStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PlanRun, error)
	Update(ctx context.Context, run *domain.PlanRun) error
	ListPending(ctx context.Context, limit int) ([]domain.PlanRun, error)
	ListActive(ctx context.Context, limit int) ([]domain.PlanRun, error)
}

// StatusStore — операции со статусами задач.
//
// Контракт реализуют repo.StatusRepo (Postgres) и repo.MemoryStore.
type StatusStore interface {
	Register(ctx context.Context, runID uuid.UUID, names []string) error
	ApplyAndRead(ctx context.Context, runID uuid.UUID, updates domain.Snapshot) (domain.Snapshot, error)
	Read(ctx context.Context, runID uuid.UUID) (domain.Snapshot, error)
}

// TaskPublisher отправляет задачи внешним worker'ам.
type TaskPublisher interface {
	PublishTaskReady(ctx context.Context, runID uuid.UUID, task string) error
}

// Config — конфигурация orchestrator.
type Config struct {
	Runs   RunStore
	Store  StatusStore
	Logger *slog.Logger

	// Publisher опционален: без него задачи не публикуются
	// в очередь, а worker'ы забирают их через CLI next.
	Publisher TaskPublisher

	// Conn опционален: без него orchestrator работает только
	// через polling Postgres.
	Conn *mq.Connection

	// PollInterval — период опроса Postgres. По умолчанию 5s.
	PollInterval time.Duration

	// BatchSize — сколько запусков забирать за один опрос.
	// По умолчанию 10.
	BatchSize int
}

// Orchestrator управляет активными запусками планов.
type Orchestrator struct {
	cfg    Config
	logger *slog.Logger

	mu         sync.RWMutex
	activeRuns map[uuid.UUID]*RunState

	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New создаёт orchestrator.
func New(cfg Config) *Orchestrator {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Orchestrator{
		cfg:        cfg,
		logger:     cfg.Logger,
		activeRuns: make(map[uuid.UUID]*RunState),
	}
}

// Start запускает consumers и polling loop.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return ErrAlreadyRunning
	}
	o.started = true
	ctx, o.cancel = context.WithCancel(ctx)
	o.mu.Unlock()

	if o.cfg.Conn != nil {
		pending := mq.NewConsumer(o.cfg.Conn, mq.QueueRunsPending, o.handleRunPending, o.logger)
		status := mq.NewConsumer(o.cfg.Conn, mq.QueueTasksStatus, o.handleTaskStatus, o.logger)

		o.wg.Add(2)
		go func() {
			defer o.wg.Done()
			_ = pending.Start(ctx)
		}()
		go func() {
			defer o.wg.Done()
			_ = status.Start(ctx)
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.pollLoop(ctx)
	}()

	o.logger.Info("orchestrator started",
		"poll_interval", o.cfg.PollInterval,
		"mq", o.cfg.Conn != nil,
	)
	return nil
}

// Stop останавливает orchestrator и ждёт завершения горутин.
func (o *Orchestrator) Stop() error {
	o.mu.Lock()
	if !o.started {
		o.mu.Unlock()
		return ErrNotRunning
	}
	o.started = false
	cancel := o.cancel
	o.mu.Unlock()

	cancel()
	o.wg.Wait()

	o.logger.Info("orchestrator stopped")
	return nil
}

// ActiveRuns возвращает количество запусков в работе.
func (o *Orchestrator) ActiveRuns() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.activeRuns)
}

// pollLoop — fallback на случай потерянных сообщений: периодически
// забирает PENDING-запуски и пересчитывает RUNNING.
func (o *Orchestrator) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(o.cfg.PollInterval)
	defer ticker.Stop()

	// Первый проход сразу, чтобы подобрать запуски после рестарта.
	o.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.poll(ctx)
		}
	}
}

func (o *Orchestrator) poll(ctx context.Context) {
	pending, err := o.cfg.Runs.ListPending(ctx, o.cfg.BatchSize)
	if err != nil {
		o.logger.Error("list pending runs", "error", err)
	}
	for i := range pending {
		run := pending[i]
		if err := o.adoptRun(ctx, &run); err != nil {
			o.logger.Error("adopt run", "run_id", run.ID, "error", err)
		}
	}

	active, err := o.cfg.Runs.ListActive(ctx, o.cfg.BatchSize)
	if err != nil {
		o.logger.Error("list active runs", "error", err)
		return
	}
	for i := range active {
		run := active[i]

		o.mu.RLock()
		_, known := o.activeRuns[run.ID]
		o.mu.RUnlock()

		// RUNNING-запуск без состояния в памяти — наследство
		// от прежнего процесса, восстанавливаем.
		if !known {
			if err := o.restoreRun(&run); err != nil {
				o.logger.Error("restore run", "run_id", run.ID, "error", err)
				continue
			}
		}

		if err := o.evaluateRun(ctx, run.ID); err != nil {
			o.logger.Error("evaluate run", "run_id", run.ID, "error", err)
		}
	}
}
