// Package cli реализует инструмент командной строки planner.
//
// # Обзор
//
// CLI работает напрямую с Postgres через пакет repo: отдельного API
// сервера у planner нет. Оркестрация идёт через БД — daemon подбирает
// новые запуски и изменения статусов своим polling loop (и через
// RabbitMQ, если он настроен у daemon).
//
// # Команды
//
//   - submit — отправить план из YAML/JSON файла
//   - list   — список запусков
//   - status — состояние запуска: сводный статус и снимок задач
//   - next   — задачи, готовые к запуску (для внешних workers)
//   - update — применить статусы задач (отчёт worker'а)
//
// # Компоненты
//
// ## Store
//
// Бандл репозиториев (Runs + Statuses) за интерфейсами, чтобы команды
// можно было тестировать на in-memory реализациях.
//
// ## Output
//
// Форматирование вывода: таблицы (text/tabwriter) по умолчанию,
// JSON с флагом --json. Данные идут в stdout, сообщения — в stderr,
// так что вывод можно передавать в pipe: planner list --json | jq .
//
// Команды создаются фабричными функциями, принимающими storeFn и
// outputFn — замыкания для ленивой инициализации после парсинга
// PersistentFlags.
package cli
