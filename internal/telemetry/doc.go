// Package telemetry обеспечивает наблюдаемость системы.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики
//
// Daemon экспортирует метрики на /metrics endpoint;
// формат логов общий для всех бинарей.
package telemetry
