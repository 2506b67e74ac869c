package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jtarchie/planner-pg/internal/domain"
	"github.com/jtarchie/planner-pg/internal/engine"
	"github.com/jtarchie/planner-pg/internal/mq"
	"github.com/jtarchie/planner-pg/internal/telemetry"
)

// handleRunPending обрабатывает сообщение о новом запуске.
func (o *Orchestrator) handleRunPending(ctx context.Context, msg mq.Message) error {
	payload, err := mq.ParsePayload[mq.RunPendingPayload](msg)
	if err != nil {
		return err
	}

	run, err := o.cfg.Runs.GetByID(ctx, payload.RunID)
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}

	// Запуск мог уже подобрать polling loop.
	if run.Status != domain.RunStatusPending {
		return nil
	}

	return o.adoptRun(ctx, run)
}

// handleTaskStatus обрабатывает отчёт о статусе задачи.
func (o *Orchestrator) handleTaskStatus(ctx context.Context, msg mq.Message) error {
	payload, err := mq.ParsePayload[mq.TaskStatusPayload](msg)
	if err != nil {
		return err
	}

	status, err := domain.ParseStatus(payload.Status)
	if err != nil {
		return fmt.Errorf("task %s: %w", payload.Task, err)
	}

	logger := telemetry.WithRunID(o.logger, payload.RunID.String())
	logger.Info("task status received", "task", payload.Task, "status", status)

	state, err := o.stateFor(ctx, payload.RunID)
	if err != nil {
		return err
	}

	snap, err := o.cfg.Store.ApplyAndRead(ctx, payload.RunID, domain.Snapshot{
		payload.Task: status,
	})
	if err != nil {
		return fmt.Errorf("apply status: %w", err)
	}

	// Возврат в UNSTARTED — отказ worker'а, задачу надо отдать снова.
	if status == domain.StatusUnstarted {
		state.ClearDispatched(payload.Task)
	}

	return o.evaluate(ctx, state, snap)
}

// adoptRun берёт PENDING-запуск в работу.
func (o *Orchestrator) adoptRun(ctx context.Context, run *domain.PlanRun) error {
	logger := telemetry.WithRunID(o.logger, run.ID.String())

	plan, err := engine.BuildPlan(&run.Spec)
	if err != nil {
		// Невалидная спецификация: запуск завершается сразу.
		run.MarkFailed(fmt.Sprintf("invalid plan: %v", err))
		if uerr := o.cfg.Runs.Update(ctx, run); uerr != nil {
			return fmt.Errorf("mark invalid run failed: %w", uerr)
		}
		telemetry.RunsFinished.WithLabelValues(string(run.Status)).Inc()
		logger.Warn("plan rejected", "error", err)
		return nil
	}

	if err := o.cfg.Store.Register(ctx, run.ID, plan.Tasks()); err != nil {
		return fmt.Errorf("register tasks: %w", err)
	}

	run.MarkRunning()
	if err := o.cfg.Runs.Update(ctx, run); err != nil {
		return fmt.Errorf("mark run running: %w", err)
	}

	state := NewRunState(run, plan)
	o.mu.Lock()
	o.activeRuns[run.ID] = state
	o.mu.Unlock()

	telemetry.RunsStarted.Inc()
	logger.Info("run adopted", "plan", run.Name, "tasks", plan.Size())

	snap, err := o.cfg.Store.Read(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	return o.evaluate(ctx, state, snap)
}

// restoreRun восстанавливает состояние RUNNING-запуска после рестарта.
//
// Отметки dispatched теряются вместе с процессом: задачи в статусе
// PENDING уже у worker'ов, повторная отправка им не грозит, потому
// что eligible их больше не возвращает.
func (o *Orchestrator) restoreRun(run *domain.PlanRun) error {
	plan, err := engine.BuildPlan(&run.Spec)
	if err != nil {
		return fmt.Errorf("rebuild plan: %w", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.activeRuns[run.ID]; !ok {
		o.activeRuns[run.ID] = NewRunState(run, plan)
	}
	return nil
}

// stateFor возвращает состояние запуска, восстанавливая его при нужде.
func (o *Orchestrator) stateFor(ctx context.Context, runID uuid.UUID) (*RunState, error) {
	o.mu.RLock()
	state, ok := o.activeRuns[runID]
	o.mu.RUnlock()
	if ok {
		return state, nil
	}

	run, err := o.cfg.Runs.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if run.IsFinished() {
		return nil, fmt.Errorf("run %s: %w", runID, ErrRunNotActive)
	}
	if err := o.restoreRun(run); err != nil {
		return nil, err
	}

	o.mu.RLock()
	state = o.activeRuns[runID]
	o.mu.RUnlock()
	return state, nil
}

// evaluateRun пересчитывает запуск по текущему снимку из store.
func (o *Orchestrator) evaluateRun(ctx context.Context, runID uuid.UUID) error {
	o.mu.RLock()
	state, ok := o.activeRuns[runID]
	o.mu.RUnlock()
	if !ok {
		return ErrRunNotActive
	}

	snap, err := o.cfg.Store.Read(ctx, runID)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	return o.evaluate(ctx, state, snap)
}

// evaluate — ядро цикла: по снимку вычисляет сводный статус и
// диспетчеризует eligible задачи.
func (o *Orchestrator) evaluate(ctx context.Context, state *RunState, snap domain.Snapshot) error {
	telemetry.Evaluations.Inc()

	run := state.Run()
	logger := telemetry.WithRunID(o.logger, run.ID.String())

	status, err := state.Plan().Status(snap)
	if err != nil {
		return fmt.Errorf("plan status: %w", err)
	}

	eligible, err := state.Plan().Eligible(snap)
	if err != nil {
		return fmt.Errorf("plan eligible: %w", err)
	}

	// Сводный статус становится FAILED сразу (провал липкий), но
	// failure/finally обработчики ещё могут быть eligible. Запуск
	// финализируется только когда работы не осталось.
	if status.IsTerminal() && len(eligible) == 0 {
		return o.finalize(ctx, state, status)
	}

	for _, task := range eligible {
		if !state.MarkDispatched(task) {
			continue
		}

		if o.cfg.Publisher == nil {
			// Без очереди worker'ы забирают задачи через CLI.
			logger.Debug("task eligible", "task", task)
			continue
		}

		if err := o.cfg.Publisher.PublishTaskReady(ctx, run.ID, task); err != nil {
			state.ClearDispatched(task)
			return fmt.Errorf("publish task %s: %w", task, err)
		}
		telemetry.TasksDispatched.Inc()
		logger.Info("task dispatched", "task", task)
	}

	return nil
}

// finalize завершает запуск по терминальному сводному статусу.
func (o *Orchestrator) finalize(ctx context.Context, state *RunState, status domain.Status) error {
	run := state.Run()

	switch status {
	case domain.StatusSuccess:
		run.MarkSucceeded()
	default:
		run.MarkFailed("plan evaluated to FAILED")
	}

	if err := o.cfg.Runs.Update(ctx, run); err != nil {
		return fmt.Errorf("finalize run: %w", err)
	}

	o.mu.Lock()
	delete(o.activeRuns, run.ID)
	o.mu.Unlock()

	telemetry.RunsFinished.WithLabelValues(string(run.Status)).Inc()
	telemetry.WithRunID(o.logger, run.ID.String()).Info("run finished",
		"plan", run.Name,
		"status", run.Status,
		"duration", run.Duration(),
	)
	return nil
}
