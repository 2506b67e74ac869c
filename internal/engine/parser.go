package engine

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jtarchie/planner-pg/internal/domain"
)

// ParseSpec парсит PlanSpec из YAML или JSON.
// JSON — подмножество YAML, отдельной ветки не нужно.
func ParseSpec(data []byte) (*domain.PlanSpec, error) {
	var spec domain.PlanSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	return &spec, nil
}

// BuildPlan строит Plan из декларативной спецификации.
//
// Проверяет форму каждого узла (ровно одно поле из
// task/serial/parallel/try/success/failure/finally), уникальность имён
// задач и единственность обработчиков — через Builder.
func BuildPlan(spec *domain.PlanSpec) (*Plan, error) {
	root := &spec.Plan
	if err := checkShape(root); err != nil {
		return nil, err
	}

	switch {
	case root.Serial != nil:
		return Serial(func(b *Builder) { applyBody(b, root.Serial) })
	case root.Parallel != nil:
		return Parallel(func(b *Builder) { applyBody(b, root.Parallel) })
	default:
		return nil, ErrNotAGroup
	}
}

// applyBody транслирует тело группы в вызовы Builder.
func applyBody(b *Builder, body []domain.NodeSpec) {
	for i := range body {
		n := &body[i]

		if err := checkShape(n); err != nil {
			b.state.fail(err)
			return
		}

		switch {
		case n.Task != "":
			b.Task(n.Task)
		case n.Serial != nil:
			b.Serial(func(b *Builder) { applyBody(b, n.Serial) })
		case n.Parallel != nil:
			b.Parallel(func(b *Builder) { applyBody(b, n.Parallel) })
		case n.Try != nil:
			b.Try(func(b *Builder) { applyBody(b, n.Try) })
		case n.Success != nil:
			b.Success(func(b *Builder) { applyBody(b, n.Success) })
		case n.Failure != nil:
			b.Failure(func(b *Builder) { applyBody(b, n.Failure) })
		case n.Finally != nil:
			b.Finally(func(b *Builder) { applyBody(b, n.Finally) })
		}
	}
}

// checkShape проверяет, что в узле задано ровно одно поле.
func checkShape(n *domain.NodeSpec) error {
	set := 0
	if n.Task != "" {
		set++
	}
	for _, body := range [][]domain.NodeSpec{
		n.Serial, n.Parallel, n.Try, n.Success, n.Failure, n.Finally,
	} {
		if body != nil {
			set++
		}
	}

	if set != 1 {
		return fmt.Errorf(
			"%w: node must set exactly one of task/serial/parallel/try/success/failure/finally",
			ErrInvalidSpec,
		)
	}
	return nil
}
