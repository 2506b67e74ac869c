package engine

import (
	"errors"
	"testing"

	"github.com/jtarchie/planner-pg/internal/domain"
)

// mustPlan строит план или валит тест.
func mustPlan(t *testing.T, fn func() (*Plan, error)) *Plan {
	t.Helper()
	plan, err := fn()
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}
	return plan
}

// wantStatus проверяет сводный статус плана.
func wantStatus(t *testing.T, plan *Plan, snap domain.Snapshot, want domain.Status) {
	t.Helper()
	got, err := plan.Status(snap)
	if err != nil {
		t.Fatalf("status: unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("status %v: expected %s, got %s", snap, want, got)
	}
}

// wantEligible проверяет список готовых задач и его порядок.
func wantEligible(t *testing.T, plan *Plan, snap domain.Snapshot, want ...string) {
	t.Helper()
	got, err := plan.Eligible(snap)
	if err != nil {
		t.Fatalf("eligible: unexpected error: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("eligible %v: expected %v, got %v", snap, want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("eligible %v: expected %v, got %v", snap, want, got)
		}
	}
}

func TestEligible_SingleTask(t *testing.T) {
	plan := mustPlan(t, func() (*Plan, error) {
		return Serial(func(b *Builder) { b.Task("A") })
	})

	// Задача готова только когда её статус — ровно UNSTARTED
	wantEligible(t, plan, domain.Snapshot{}, "A")
	wantEligible(t, plan, domain.Snapshot{"A": domain.StatusPending})
	wantEligible(t, plan, domain.Snapshot{"A": domain.StatusSuccess})
	wantEligible(t, plan, domain.Snapshot{"A": domain.StatusFailed})

	wantStatus(t, plan, domain.Snapshot{}, domain.StatusUnstarted)
	wantStatus(t, plan, domain.Snapshot{"A": domain.StatusPending}, domain.StatusPending)
	wantStatus(t, plan, domain.Snapshot{"A": domain.StatusSuccess}, domain.StatusSuccess)
	wantStatus(t, plan, domain.Snapshot{"A": domain.StatusFailed}, domain.StatusFailed)
}

func TestEval_Idempotent(t *testing.T) {
	plan := mustPlan(t, func() (*Plan, error) {
		return Serial(func(b *Builder) {
			b.Task("A")
			b.Task("B")
		})
	})
	snap := domain.Snapshot{"A": domain.StatusSuccess}

	// Повторный вызов с тем же снимком даёт тот же результат
	for i := 0; i < 3; i++ {
		wantEligible(t, plan, snap, "B")
		wantStatus(t, plan, snap, domain.StatusUnstarted)
	}
}

func TestSerial_AbortOnFailure(t *testing.T) {
	plan := mustPlan(t, func() (*Plan, error) {
		return Serial(func(b *Builder) {
			b.Task("A")
			b.Task("B")
		})
	})

	// Провал A прерывает группу: B никогда не станет готовой
	snap := domain.Snapshot{"A": domain.StatusFailed}
	wantStatus(t, plan, snap, domain.StatusFailed)
	wantEligible(t, plan, snap)
}

func TestSerial_Progression(t *testing.T) {
	plan := mustPlan(t, func() (*Plan, error) {
		return Serial(func(b *Builder) {
			b.Task("A")
			b.Task("B")
		})
	})

	wantEligible(t, plan, domain.Snapshot{}, "A")
	wantEligible(t, plan, domain.Snapshot{"A": domain.StatusSuccess}, "B")
	wantStatus(t, plan, domain.Snapshot{"A": domain.StatusSuccess}, domain.StatusUnstarted)
	wantStatus(t, plan, domain.Snapshot{
		"A": domain.StatusSuccess,
		"B": domain.StatusSuccess,
	}, domain.StatusSuccess)
}

func TestParallel_Independence(t *testing.T) {
	plan := mustPlan(t, func() (*Plan, error) {
		return Parallel(func(b *Builder) {
			b.Task("A")
			b.Task("B")
		})
	})

	// Провал соседа не блокирует B
	snap := domain.Snapshot{"A": domain.StatusFailed}
	wantEligible(t, plan, snap, "B")
	wantStatus(t, plan, snap, domain.StatusUnstarted)

	// Разрешение только когда оба терминальны
	wantStatus(t, plan, domain.Snapshot{
		"A": domain.StatusFailed,
		"B": domain.StatusSuccess,
	}, domain.StatusFailed)
	wantStatus(t, plan, domain.Snapshot{
		"A": domain.StatusSuccess,
		"B": domain.StatusSuccess,
	}, domain.StatusSuccess)
}

func TestTry_FailureIgnored(t *testing.T) {
	plan := mustPlan(t, func() (*Plan, error) {
		return Serial(func(b *Builder) {
			b.Task("A")
			b.Try(func(b *Builder) { b.Task("B") })
		})
	})

	// Провал try-ветки не валит группу
	wantStatus(t, plan, domain.Snapshot{
		"A": domain.StatusSuccess,
		"B": domain.StatusFailed,
	}, domain.StatusSuccess)

	// Но pending try всё ещё блокирует свёртку
	wantStatus(t, plan, domain.Snapshot{
		"A": domain.StatusSuccess,
		"B": domain.StatusPending,
	}, domain.StatusPending)
}

func TestTry_SchedulesLikeMain(t *testing.T) {
	plan := mustPlan(t, func() (*Plan, error) {
		return Serial(func(b *Builder) {
			b.Task("A")
			b.Try(func(b *Builder) { b.Task("B") })
			b.Task("C")
		})
	})

	// try планируется как обычный слот: B идёт перед C
	wantEligible(t, plan, domain.Snapshot{"A": domain.StatusSuccess}, "B")

	// Незапущенный try останавливает serial-скан: группа не разрешена
	wantStatus(t, plan, domain.Snapshot{"A": domain.StatusSuccess}, domain.StatusUnstarted)

	// После провала try скан продолжается на C
	snap := domain.Snapshot{
		"A": domain.StatusSuccess,
		"B": domain.StatusFailed,
	}
	wantEligible(t, plan, snap, "C")
	wantStatus(t, plan, snap, domain.StatusUnstarted)
}

func TestTry_UnstartedDoesNotBlockParallel(t *testing.T) {
	plan := mustPlan(t, func() (*Plan, error) {
		return Parallel(func(b *Builder) {
			b.Task("A")
			b.Try(func(b *Builder) { b.Task("B") })
		})
	})

	// В parallel-группе незапущенный try не мешает разрешению,
	// хотя сама задача остаётся готовой к запуску
	snap := domain.Snapshot{"A": domain.StatusSuccess}
	wantStatus(t, plan, snap, domain.StatusSuccess)
	wantEligible(t, plan, snap, "B")

	// Запущенный try возвращает группу в pending
	wantStatus(t, plan, domain.Snapshot{
		"A": domain.StatusSuccess,
		"B": domain.StatusPending,
	}, domain.StatusPending)
}

func TestFailureHandler(t *testing.T) {
	plan := mustPlan(t, func() (*Plan, error) {
		return Serial(func(b *Builder) {
			b.Task("A")
			b.Task("B")
			b.Failure(func(b *Builder) { b.Task("C") })
		})
	})

	// Провал A: C становится готовой, статус — failed
	snap := domain.Snapshot{"A": domain.StatusFailed}
	wantEligible(t, plan, snap, "C")
	wantStatus(t, plan, snap, domain.StatusFailed)

	// Компенсация не отменяет зафиксированный провал
	wantStatus(t, plan, domain.Snapshot{
		"A": domain.StatusFailed,
		"C": domain.StatusSuccess,
	}, domain.StatusFailed)

	// Pending обработчика доминирует над провалом
	wantStatus(t, plan, domain.Snapshot{
		"A": domain.StatusFailed,
		"C": domain.StatusPending,
	}, domain.StatusPending)
}

func TestSuccessHandler(t *testing.T) {
	plan := mustPlan(t, func() (*Plan, error) {
		return Serial(func(b *Builder) {
			b.Task("A")
			b.Success(func(b *Builder) { b.Task("S") })
		})
	})

	// Успех предварителен, пока обработчик не завершился
	snap := domain.Snapshot{"A": domain.StatusSuccess}
	wantStatus(t, plan, snap, domain.StatusUnstarted)
	wantEligible(t, plan, snap, "S")

	// Терминальный результат обработчика становится результатом группы
	wantStatus(t, plan, domain.Snapshot{
		"A": domain.StatusSuccess,
		"S": domain.StatusSuccess,
	}, domain.StatusSuccess)
	wantStatus(t, plan, domain.Snapshot{
		"A": domain.StatusSuccess,
		"S": domain.StatusFailed,
	}, domain.StatusFailed)

	// При провале main обработчик успеха не планируется
	wantEligible(t, plan, domain.Snapshot{"A": domain.StatusFailed})
}

func TestFinally_OverridesSuccess(t *testing.T) {
	plan := mustPlan(t, func() (*Plan, error) {
		return Serial(func(b *Builder) {
			b.Task("A")
			b.Finally(func(b *Builder) { b.Task("B") })
		})
	})

	// Провал finally замещает успех группы
	wantStatus(t, plan, domain.Snapshot{
		"A": domain.StatusSuccess,
		"B": domain.StatusFailed,
	}, domain.StatusFailed)

	// finally планируется и после провала main
	snap := domain.Snapshot{"A": domain.StatusFailed}
	wantEligible(t, plan, snap, "B")

	// Пока finally не терминален, группа не разрешена
	wantStatus(t, plan, domain.Snapshot{"A": domain.StatusSuccess}, domain.StatusUnstarted)
}

func TestFinally_AfterFailureHandler(t *testing.T) {
	plan := mustPlan(t, func() (*Plan, error) {
		return Serial(func(b *Builder) {
			b.Task("A")
			b.Failure(func(b *Builder) { b.Task("C") })
			b.Finally(func(b *Builder) { b.Task("F") })
		})
	})

	// Сначала failure-обработчик, finally ждёт его завершения
	snap := domain.Snapshot{"A": domain.StatusFailed}
	wantEligible(t, plan, snap, "C")
	wantStatus(t, plan, snap, domain.StatusFailed)

	// Обработчик завершён — finally становится готов
	snap = domain.Snapshot{
		"A": domain.StatusFailed,
		"C": domain.StatusSuccess,
	}
	wantEligible(t, plan, snap, "F")

	// Терминальный finally замещает даже липкий провал
	wantStatus(t, plan, domain.Snapshot{
		"A": domain.StatusFailed,
		"C": domain.StatusSuccess,
		"F": domain.StatusSuccess,
	}, domain.StatusSuccess)
}

func TestNestedHandlersInParallel(t *testing.T) {
	plan := mustPlan(t, func() (*Plan, error) {
		return Parallel(func(b *Builder) {
			b.Serial(func(b *Builder) {
				b.Task("A")
				b.Failure(func(b *Builder) { b.Task("C") })
			})
			b.Task("B")
		})
	})

	// Обработчик вложенной группы готов независимо от соседей
	snap := domain.Snapshot{"A": domain.StatusFailed}
	wantEligible(t, plan, snap, "C", "B")
}

func TestComposedScenario(t *testing.T) {
	plan := mustPlan(t, func() (*Plan, error) {
		return Serial(func(b *Builder) {
			b.Parallel(func(b *Builder) {
				b.Task("A")
				b.Task("B")
				b.Serial(func(b *Builder) {
					b.Task("C")
					b.Task("D")
				})
				b.Parallel(func(b *Builder) {
					b.Task("E")
					b.Serial(func(b *Builder) {
						b.Task("F1")
						b.Task("F2")
					})
				})
			})
			b.Task("G")
		})
	})

	// Старт: все корни parallel-веток
	wantEligible(t, plan, domain.Snapshot{}, "A", "B", "C", "E", "F1")

	// Частичный прогресс
	snap := domain.Snapshot{
		"A": domain.StatusSuccess,
		"B": domain.StatusSuccess,
		"C": domain.StatusSuccess,
		"E": domain.StatusSuccess,
	}
	wantEligible(t, plan, snap, "D", "F1")

	// Вся parallel-часть завершена — очередь G
	snap = domain.Snapshot{
		"A":  domain.StatusSuccess,
		"B":  domain.StatusSuccess,
		"C":  domain.StatusSuccess,
		"D":  domain.StatusSuccess,
		"E":  domain.StatusSuccess,
		"F1": domain.StatusSuccess,
		"F2": domain.StatusSuccess,
	}
	wantEligible(t, plan, snap, "G")
	wantStatus(t, plan, snap, domain.StatusUnstarted)

	snap["G"] = domain.StatusSuccess
	wantEligible(t, plan, snap)
	wantStatus(t, plan, snap, domain.StatusSuccess)
}

func TestEval_UnknownTask(t *testing.T) {
	plan := mustPlan(t, func() (*Plan, error) {
		return Serial(func(b *Builder) { b.Task("A") })
	})

	// Имя вне плана в снимке — ошибка вызывающей стороны
	snap := domain.Snapshot{"X": domain.StatusSuccess}

	if _, err := plan.Status(snap); !errors.Is(err, ErrUnknownTask) {
		t.Fatalf("expected ErrUnknownTask, got %v", err)
	}
	if _, err := plan.Eligible(snap); !errors.Is(err, ErrUnknownTask) {
		t.Fatalf("expected ErrUnknownTask, got %v", err)
	}
}

func TestEval_InvalidStatus(t *testing.T) {
	plan := mustPlan(t, func() (*Plan, error) {
		return Serial(func(b *Builder) { b.Task("A") })
	})

	snap := domain.Snapshot{"A": domain.Status("BOGUS")}

	if _, err := plan.Status(snap); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}
