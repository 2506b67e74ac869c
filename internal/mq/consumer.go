package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler обрабатывает одно сообщение.
//
// Возврат ошибки приводит к nack без requeue: сообщение уходит
// в dead-letter очередь.
type Handler func(ctx context.Context, msg Message) error

// Consumer потребляет сообщения из одной очереди.
type Consumer struct {
	conn    *Connection
	queue   string
	handler Handler
	logger  *slog.Logger
}

// NewConsumer создаёт consumer для очереди.
func NewConsumer(conn *Connection, queue string, handler Handler, logger *slog.Logger) *Consumer {
	return &Consumer{
		conn:    conn,
		queue:   queue,
		handler: handler,
		logger:  logger.With("queue", queue),
	}
}

// Start запускает потребление до отмены контекста.
//
// При разрыве соединения ждёт reconnect и подписывается заново.
func (c *Consumer) Start(ctx context.Context) error {
	for {
		if err := c.consume(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn("consume interrupted", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-c.conn.ReconnectNotify():
			c.logger.Info("resubscribing after reconnect")
		}
	}
}

// consume подписывается на очередь и обрабатывает поставки.
func (c *Consumer) consume(ctx context.Context) error {
	var deliveries <-chan amqp.Delivery

	err := c.conn.WithChannel(func(ch *amqp.Channel) error {
		if err := ch.Qos(10, 0, false); err != nil {
			return fmt.Errorf("set qos: %w", err)
		}

		d, err := ch.Consume(
			c.queue,
			"",    // consumer tag
			false, // auto-ack
			false, // exclusive
			false, // no-local
			false, // no-wait
			nil,
		)
		if err != nil {
			return fmt.Errorf("consume %s: %w", c.queue, err)
		}
		deliveries = d
		return nil
	})
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

// handle десериализует конверт и передаёт его в handler.
func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var msg Message
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		c.logger.Error("unmarshal message", "error", err)
		_ = d.Nack(false, false)
		return
	}

	if err := c.handler(ctx, msg); err != nil {
		c.logger.Error("handle message", "type", msg.Type, "id", msg.ID, "error", err)
		_ = d.Nack(false, false)
		return
	}

	_ = d.Ack(false)
}

// ParsePayload десериализует payload сообщения в конкретный тип.
func ParsePayload[T any](msg Message) (T, error) {
	var payload T
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("unmarshal %s payload: %w", msg.Type, err)
	}
	return payload, nil
}
