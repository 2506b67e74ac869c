package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidStatus — значение статуса вне допустимого множества.
var ErrInvalidStatus = errors.New("invalid task status")

// Status — статус выполнения задачи в плане.
//
// Жизненный цикл:
//
//	UNSTARTED → PENDING → SUCCESS
//	                    ↘ FAILED
//
// Статус хранится во внешнем store; движок его только читает.
// Отсутствие записи для задачи эквивалентно UNSTARTED.
type Status string

const (
	// StatusUnstarted — задача ещё не отправлялась на выполнение.
	StatusUnstarted Status = "UNSTARTED"

	// StatusPending — задача отправлена и выполняется.
	StatusPending Status = "PENDING"

	// StatusSuccess — задача успешно завершена.
	StatusSuccess Status = "SUCCESS"

	// StatusFailed — задача завершилась с ошибкой.
	StatusFailed Status = "FAILED"
)

// IsTerminal возвращает true, если статус финальный.
// Только SUCCESS и FAILED — финальные.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusFailed:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление Status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus парсит строку в Status.
// Возвращает ErrInvalidStatus для любого значения вне
// {UNSTARTED, PENDING, SUCCESS, FAILED}.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusUnstarted, StatusPending, StatusSuccess, StatusFailed:
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// Snapshot — срез статусов задач: имя задачи → статус.
//
// Snapshot поставляется вызывающей стороной на каждый запрос к движку.
// Имена, отсутствующие в снимке, читаются как UNSTARTED.
type Snapshot map[string]Status

// Get возвращает статус задачи. Отсутствие записи = UNSTARTED.
func (s Snapshot) Get(name string) Status {
	if st, ok := s[name]; ok {
		return st
	}
	return StatusUnstarted
}

// Validate проверяет, что все значения снимка — допустимые статусы.
func (s Snapshot) Validate() error {
	for name, st := range s {
		if _, err := ParseStatus(string(st)); err != nil {
			return fmt.Errorf("task %q: %w", name, err)
		}
	}
	return nil
}

// Clone возвращает копию снимка.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for name, st := range s {
		out[name] = st
	}
	return out
}
