package engine

import (
	"errors"
	"testing"
)

func TestSerial_TaskOrder(t *testing.T) {
	plan, err := Serial(func(b *Builder) {
		b.Task("A")
		b.Parallel(func(b *Builder) {
			b.Task("B")
			b.Task("C")
		})
		b.Task("D")
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Порядок объявления сохраняется
	want := []string{"A", "B", "C", "D"}
	got := plan.Tasks()
	if len(got) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tasks[%d]: expected %s, got %s", i, want[i], got[i])
		}
	}

	if plan.Size() != 4 {
		t.Errorf("expected size 4, got %d", plan.Size())
	}
	if !plan.Has("B") {
		t.Error("plan should have task B")
	}
	if plan.Has("X") {
		t.Error("plan should not have task X")
	}
}

func TestBuilder_DuplicateTask(t *testing.T) {
	_, err := Serial(func(b *Builder) {
		b.Task("A")
		b.Parallel(func(b *Builder) {
			b.Task("A")
		})
	})
	if !errors.Is(err, ErrDuplicateTask) {
		t.Fatalf("expected ErrDuplicateTask, got %v", err)
	}
}

func TestBuilder_DuplicateTaskInHandler(t *testing.T) {
	// Уникальность действует на весь план, включая тела обработчиков
	_, err := Serial(func(b *Builder) {
		b.Task("A")
		b.Failure(func(b *Builder) {
			b.Task("A")
		})
	})
	if !errors.Is(err, ErrDuplicateTask) {
		t.Fatalf("expected ErrDuplicateTask, got %v", err)
	}
}

func TestBuilder_EmptyTaskName(t *testing.T) {
	_, err := Serial(func(b *Builder) {
		b.Task("")
	})
	if !errors.Is(err, ErrEmptyTaskName) {
		t.Fatalf("expected ErrEmptyTaskName, got %v", err)
	}
}

func TestBuilder_EmptyGroup(t *testing.T) {
	_, err := Serial(func(b *Builder) {})
	if !errors.Is(err, ErrEmptyGroup) {
		t.Fatalf("expected ErrEmptyGroup, got %v", err)
	}
}

func TestBuilder_EmptyNestedGroup(t *testing.T) {
	_, err := Serial(func(b *Builder) {
		b.Task("A")
		b.Parallel(func(b *Builder) {})
	})
	if !errors.Is(err, ErrEmptyGroup) {
		t.Fatalf("expected ErrEmptyGroup, got %v", err)
	}
}

func TestBuilder_DuplicateHandler(t *testing.T) {
	// Повторное объявление обработчика одной роли — ошибка построения,
	// а не молчаливая перезапись
	_, err := Serial(func(b *Builder) {
		b.Task("A")
		b.Failure(func(b *Builder) { b.Task("C1") })
		b.Failure(func(b *Builder) { b.Task("C2") })
	})
	if !errors.Is(err, ErrDuplicateHandler) {
		t.Fatalf("expected ErrDuplicateHandler, got %v", err)
	}
}

func TestBuilder_HandlersOfDifferentRoles(t *testing.T) {
	// По одному обработчику каждой роли на группу — допустимо
	_, err := Serial(func(b *Builder) {
		b.Task("A")
		b.Success(func(b *Builder) { b.Task("S") })
		b.Failure(func(b *Builder) { b.Task("C") })
		b.Finally(func(b *Builder) { b.Task("F") })
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBuilder_FirstErrorWins(t *testing.T) {
	_, err := Serial(func(b *Builder) {
		b.Task("")
		b.Task("A")
		b.Task("A")
	})
	if !errors.Is(err, ErrEmptyTaskName) {
		t.Fatalf("expected first error ErrEmptyTaskName, got %v", err)
	}
}
