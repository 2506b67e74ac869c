package orchestrator

import "errors"

var (
	// ErrAlreadyRunning — orchestrator уже запущен.
	ErrAlreadyRunning = errors.New("orchestrator already running")

	// ErrNotRunning — orchestrator не запущен.
	ErrNotRunning = errors.New("orchestrator not running")

	// ErrRunNotActive — запуск не находится в работе у orchestrator.
	ErrRunNotActive = errors.New("run not active")
)
