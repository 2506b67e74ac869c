package orchestrator

import (
	"sync"

	"github.com/jtarchie/planner-pg/internal/domain"
	"github.com/jtarchie/planner-pg/internal/engine"
)

// RunState — состояние активного запуска в памяти orchestrator.
//
// Дерево плана строится один раз при взятии запуска в работу;
// dispatched защищает от повторной отправки задач, которые уже
// ушли в очередь, но ещё не отчитались.
type RunState struct {
	mu         sync.Mutex
	run        *domain.PlanRun
	plan       *engine.Plan
	dispatched map[string]struct{}
}

// NewRunState создаёт состояние для запуска с построенным планом.
func NewRunState(run *domain.PlanRun, plan *engine.Plan) *RunState {
	return &RunState{
		run:        run,
		plan:       plan,
		dispatched: make(map[string]struct{}),
	}
}

// Run возвращает запуск.
func (s *RunState) Run() *domain.PlanRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run
}

// Plan возвращает дерево плана.
func (s *RunState) Plan() *engine.Plan {
	return s.plan
}

// MarkDispatched отмечает задачу как отправленную.
// Возвращает false, если задача уже была отправлена.
func (s *RunState) MarkDispatched(task string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.dispatched[task]; ok {
		return false
	}
	s.dispatched[task] = struct{}{}
	return true
}

// ClearDispatched снимает отметку об отправке.
//
// Вызывается когда задача отчиталась нетерминальным статусом:
// UNSTARTED означает отказ worker'а от задачи, и её надо
// диспетчеризовать заново.
func (s *RunState) ClearDispatched(task string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.dispatched, task)
}
