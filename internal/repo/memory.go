package repo

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jtarchie/planner-pg/internal/domain"
)

// MemoryStore — store статусов в памяти.
//
// Тот же контракт, что у StatusRepo (атомарность за счёт мьютекса).
// Используется в тестах и в локальном режиме без Postgres.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]domain.Snapshot
}

// NewMemoryStore создаёт пустой MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[uuid.UUID]domain.Snapshot),
	}
}

// Register заводит UNSTARTED-записи для задач запуска.
func (s *MemoryStore) Register(_ context.Context, runID uuid.UUID, names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.runs[runID]
	if !ok {
		snap = make(domain.Snapshot, len(names))
		s.runs[runID] = snap
	}
	for _, name := range names {
		if _, exists := snap[name]; !exists {
			snap[name] = domain.StatusUnstarted
		}
	}
	return nil
}

// ApplyAndRead атомарно применяет обновления и возвращает снимок.
// Незарегистрированные имена — no-op, как и в Postgres-реализации.
func (s *MemoryStore) ApplyAndRead(_ context.Context, runID uuid.UUID, updates domain.Snapshot) (domain.Snapshot, error) {
	if err := updates.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.runs[runID]
	for name, status := range updates {
		if _, exists := snap[name]; exists {
			snap[name] = status
		}
	}
	return snap.Clone(), nil
}

// Read возвращает снимок запуска без обновлений.
func (s *MemoryStore) Read(_ context.Context, runID uuid.UUID) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.runs[runID].Clone(), nil
}
