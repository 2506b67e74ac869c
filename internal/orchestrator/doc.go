// Package orchestrator управляет жизненным циклом запусков планов.
//
// Orchestrator принимает новые запуски (из очереди runs.pending или
// через polling Postgres), строит дерево плана из спецификации,
// регистрирует задачи в store статусов и диспетчеризует eligible
// задачи внешним worker'ам через очередь tasks.ready.
//
// Отчёты о статусах задач приходят через очередь tasks.status.
// После каждого отчёта orchestrator атомарно применяет обновление,
// пересчитывает план и либо диспетчеризует новые задачи, либо
// финализирует запуск, когда сводный статус стал терминальным.
//
// Структура:
//   - orchestrator.go — ядро: запуск, остановка, polling
//   - handlers.go     — обработчики сообщений и пересчёт плана
//   - state.go        — состояние активного запуска в памяти
//   - errors.go       — ошибки пакета
package orchestrator
