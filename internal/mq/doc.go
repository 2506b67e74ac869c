// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений в очереди
//   - consumer.go   — потребление сообщений из очередей
//
// Типы сообщений:
//   - run.pending — новый запуск плана ожидает orchestrator
//   - task.ready  — задача готова к выполнению внешним worker'ом
//   - task.status — worker сообщает статус задачи
//
// Сам planner задачи не выполняет: tasks.ready потребляют внешние
// workers, которые отчитываются в tasks.status.
package mq
