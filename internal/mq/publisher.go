package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Message — конверт сообщения в очереди.
type Message struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// RunPendingPayload — новый запуск ожидает обработки.
type RunPendingPayload struct {
	RunID uuid.UUID `json:"run_id"`
}

// TaskReadyPayload — задача готова к выполнению.
type TaskReadyPayload struct {
	RunID uuid.UUID `json:"run_id"`
	Task  string    `json:"task"`
}

// TaskStatusPayload — отчёт о статусе задачи.
//
// Status — одно из значений domain.Status в строковом виде
// (обычно SUCCESS или FAILED). Error заполняется при провале.
type TaskStatusPayload struct {
	RunID  uuid.UUID `json:"run_id"`
	Task   string    `json:"task"`
	Status string    `json:"status"`
	Error  string    `json:"error,omitempty"`
}

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn *Connection
}

// NewPublisher создаёт publisher поверх соединения.
func NewPublisher(conn *Connection) *Publisher {
	return &Publisher{conn: conn}
}

// publish сериализует payload в конверт и отправляет в exchange.
func (p *Publisher) publish(ctx context.Context, exchange, key, msgType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	msg := Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   data,
		Timestamp: time.Now(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(ctx, exchange, key,
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish %s: %w", msgType, err)
		}
		return nil
	})
}

// PublishRunPending уведомляет orchestrator о новом запуске.
func (p *Publisher) PublishRunPending(ctx context.Context, runID uuid.UUID) error {
	return p.publish(ctx, ExchangeRuns, KeyRunPending, KeyRunPending,
		RunPendingPayload{RunID: runID})
}

// PublishTaskReady отправляет задачу внешним worker'ам.
func (p *Publisher) PublishTaskReady(ctx context.Context, runID uuid.UUID, task string) error {
	return p.publish(ctx, ExchangeTasks, KeyTaskReady, KeyTaskReady,
		TaskReadyPayload{RunID: runID, Task: task})
}

// PublishTaskStatus публикует отчёт о статусе задачи.
//
// Используется CLI-командой update и внешними workers.
func (p *Publisher) PublishTaskStatus(ctx context.Context, payload TaskStatusPayload) error {
	return p.publish(ctx, ExchangeTasks, KeyTaskStatus, KeyTaskStatus, payload)
}
