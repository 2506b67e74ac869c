package mq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Имена exchanges.
const (
	ExchangeRuns  = "planner.runs"
	ExchangeTasks = "planner.tasks"
	ExchangeDLQ   = "planner.dlq"
)

// Имена очередей.
const (
	QueueRunsPending = "runs.pending"
	QueueTasksReady  = "tasks.ready"
	QueueTasksStatus = "tasks.status"
	QueueDLQ         = "dlq.messages"
)

// Routing keys.
const (
	KeyRunPending = "run.pending"
	KeyTaskReady  = "task.ready"
	KeyTaskStatus = "task.status"
)

// SetupTopology объявляет exchanges, очереди и bindings.
//
// Схема:
//
//	planner.runs  (direct) → runs.pending  [run.pending]
//	planner.tasks (direct) → tasks.ready   [task.ready]
//	                       → tasks.status  [task.status]
//	planner.dlq   (fanout) → dlq.messages
//
// Очереди durable, с dead-letter переадресацией в planner.dlq.
func SetupTopology(conn *Connection) error {
	return conn.WithChannel(func(ch *amqp.Channel) error {
		exchanges := []struct {
			name string
			kind string
		}{
			{ExchangeRuns, "direct"},
			{ExchangeTasks, "direct"},
			{ExchangeDLQ, "fanout"},
		}

		for _, ex := range exchanges {
			err := ch.ExchangeDeclare(
				ex.name,
				ex.kind,
				true,  // durable
				false, // auto-delete
				false, // internal
				false, // no-wait
				nil,
			)
			if err != nil {
				return fmt.Errorf("declare exchange %s: %w", ex.name, err)
			}
		}

		dlqArgs := amqp.Table{
			"x-dead-letter-exchange": ExchangeDLQ,
		}

		queues := []struct {
			name     string
			exchange string
			key      string
			args     amqp.Table
		}{
			{QueueRunsPending, ExchangeRuns, KeyRunPending, dlqArgs},
			{QueueTasksReady, ExchangeTasks, KeyTaskReady, dlqArgs},
			{QueueTasksStatus, ExchangeTasks, KeyTaskStatus, dlqArgs},
			{QueueDLQ, ExchangeDLQ, "", nil},
		}

		for _, q := range queues {
			_, err := ch.QueueDeclare(
				q.name,
				true,  // durable
				false, // auto-delete
				false, // exclusive
				false, // no-wait
				q.args,
			)
			if err != nil {
				return fmt.Errorf("declare queue %s: %w", q.name, err)
			}

			err = ch.QueueBind(q.name, q.key, q.exchange, false, nil)
			if err != nil {
				return fmt.Errorf("bind queue %s: %w", q.name, err)
			}
		}

		return nil
	})
}
