package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jtarchie/planner-pg/internal/domain"
)

func TestMemoryStore_RegisterAndRead(t *testing.T) {
	store := NewMemoryStore()
	runID := uuid.New()
	ctx := context.Background()

	if err := store.Register(ctx, runID, []string{"A", "B"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap, err := store.Read(ctx, runID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(snap))
	}
	if snap.Get("A") != domain.StatusUnstarted {
		t.Errorf("expected A UNSTARTED, got %s", snap.Get("A"))
	}
}

func TestMemoryStore_ApplyAndRead(t *testing.T) {
	store := NewMemoryStore()
	runID := uuid.New()
	ctx := context.Background()

	_ = store.Register(ctx, runID, []string{"A", "B"})

	snap, err := store.ApplyAndRead(ctx, runID, domain.Snapshot{
		"A": domain.StatusSuccess,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Get("A") != domain.StatusSuccess {
		t.Errorf("expected A SUCCESS, got %s", snap.Get("A"))
	}
	if snap.Get("B") != domain.StatusUnstarted {
		t.Errorf("expected B UNSTARTED, got %s", snap.Get("B"))
	}
}

func TestMemoryStore_UnregisteredNameIsNoop(t *testing.T) {
	store := NewMemoryStore()
	runID := uuid.New()
	ctx := context.Background()

	_ = store.Register(ctx, runID, []string{"A"})

	// Незарегистрированное имя не создаёт новых записей
	snap, err := store.ApplyAndRead(ctx, runID, domain.Snapshot{
		"X": domain.StatusSuccess,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, exists := snap["X"]; exists {
		t.Error("unregistered name should not create state")
	}
	if len(snap) != 1 {
		t.Errorf("expected 1 entry, got %d", len(snap))
	}
}

func TestMemoryStore_InvalidStatus(t *testing.T) {
	store := NewMemoryStore()
	runID := uuid.New()
	ctx := context.Background()

	_ = store.Register(ctx, runID, []string{"A"})

	_, err := store.ApplyAndRead(ctx, runID, domain.Snapshot{
		"A": domain.Status("BOGUS"),
	})
	if !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestMemoryStore_RegisterIdempotent(t *testing.T) {
	store := NewMemoryStore()
	runID := uuid.New()
	ctx := context.Background()

	_ = store.Register(ctx, runID, []string{"A"})
	_, _ = store.ApplyAndRead(ctx, runID, domain.Snapshot{"A": domain.StatusSuccess})

	// Повторная регистрация не затирает накопленные статусы
	_ = store.Register(ctx, runID, []string{"A"})

	snap, _ := store.Read(ctx, runID)
	if snap.Get("A") != domain.StatusSuccess {
		t.Errorf("expected A SUCCESS after re-register, got %s", snap.Get("A"))
	}
}
