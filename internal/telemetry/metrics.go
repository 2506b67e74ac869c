package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики orchestrator.
var (
	// RunsStarted — количество взятых в работу запусков.
	RunsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planner_runs_started_total",
		Help: "Number of plan runs picked up by the orchestrator.",
	})

	// RunsFinished — завершённые запуски по исходу.
	RunsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_runs_finished_total",
		Help: "Number of plan runs finished, by outcome.",
	}, []string{"status"})

	// TasksDispatched — задачи, отправленные в очередь tasks.ready.
	TasksDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planner_tasks_dispatched_total",
		Help: "Number of tasks published as ready for execution.",
	})

	// Evaluations — количество пересчётов плана (eligible + status).
	Evaluations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planner_evaluations_total",
		Help: "Number of plan evaluations performed.",
	})
)
