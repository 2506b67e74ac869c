package engine

import "errors"

// Ошибки построения плана.
var (
	// ErrEmptyTaskName — задача без имени.
	ErrEmptyTaskName = errors.New("task has empty name")

	// ErrDuplicateTask — несколько задач с одним именем в одном плане.
	// Имя задачи — ключ в снимке статусов, дубликат делает lookup неоднозначным.
	ErrDuplicateTask = errors.New("duplicate task name")

	// ErrDuplicateHandler — обработчик одной роли задан дважды на группе.
	ErrDuplicateHandler = errors.New("duplicate handler")

	// ErrEmptyGroup — группа без main/try слотов.
	ErrEmptyGroup = errors.New("group has no slots")
)

// Ошибки вычисления.
var (
	// ErrUnknownTask — снимок содержит имя, которого нет в плане.
	ErrUnknownTask = errors.New("unknown task name")
)

// Ошибки парсинга PlanSpec.
var (
	// ErrInvalidSpec — узел спецификации имеет неверную форму.
	ErrInvalidSpec = errors.New("invalid plan spec")

	// ErrNotAGroup — корень спецификации не serial и не parallel.
	ErrNotAGroup = errors.New("plan root must be a serial or parallel group")
)
