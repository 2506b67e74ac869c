package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus — статус выполнения плана в целом (запись plan_runs).
//
// Жизненный цикл:
//
//	PENDING → RUNNING → SUCCEEDED
//	                  ↘ FAILED
//
// RunStatus — это персистентное состояние записи о запуске.
// Его не надо путать со Status: сводный Status плана каждый раз
// вычисляется движком из снимка статусов задач.
type RunStatus string

const (
	// RunStatusPending — запуск создан, но orchestrator ещё не взял его.
	RunStatusPending RunStatus = "PENDING"

	// RunStatusRunning — запуск в работе: задачи диспетчеризуются.
	RunStatusRunning RunStatus = "RUNNING"

	// RunStatusSucceeded — сводный статус плана стал SUCCESS.
	RunStatusSucceeded RunStatus = "SUCCEEDED"

	// RunStatusFailed — сводный статус плана стал FAILED.
	RunStatusFailed RunStatus = "FAILED"
)

// IsTerminal возвращает true, если запуск завершён.
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusSucceeded, RunStatusFailed:
		return true
	default:
		return false
	}
}

// PlanRun — один запуск плана.
//
// Создаётся когда пользователь отправляет план (через CLI).
// PlanRun владеет снимком статусов своих задач (task_statuses)
// и спецификацией, из которой движок строит дерево плана.
type PlanRun struct {
	// ID — уникальный идентификатор запуска.
	ID uuid.UUID `json:"id"`

	// Name — имя плана (из PlanSpec.Name).
	Name string `json:"name"`

	// Spec — спецификация плана на момент отправки.
	// План неизменяем после создания запуска.
	Spec PlanSpec `json:"spec"`

	// Status — персистентный статус запуска.
	Status RunStatus `json:"status"`

	// Error — текст ошибки, если запуск завершился с FAILED.
	Error string `json:"error,omitempty"`

	// StartedAt — время, когда orchestrator взял запуск в работу.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения запуска.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// CreatedAt — время создания запуска.
	CreatedAt time.Time `json:"created_at"`
}

// IsFinished возвращает true, если запуск завершён.
func (r *PlanRun) IsFinished() bool {
	return r.Status.IsTerminal()
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если запуск ещё не завершён.
func (r *PlanRun) Duration() time.Duration {
	if r.StartedAt == nil || r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(*r.StartedAt)
}

// MarkRunning переводит запуск в статус RUNNING.
func (r *PlanRun) MarkRunning() {
	now := time.Now()
	r.Status = RunStatusRunning
	r.StartedAt = &now
}

// MarkSucceeded переводит запуск в статус SUCCEEDED.
func (r *PlanRun) MarkSucceeded() {
	now := time.Now()
	r.Status = RunStatusSucceeded
	r.FinishedAt = &now
}

// MarkFailed переводит запуск в статус FAILED с ошибкой.
func (r *PlanRun) MarkFailed(err string) {
	now := time.Now()
	r.Status = RunStatusFailed
	r.FinishedAt = &now
	r.Error = err
}
