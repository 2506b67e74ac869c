package domain

// PlanSpec — декларативное описание плана.
//
// Это "программа" для planner — дерево из задач и групп,
// которое движок превращает в Plan. Хранится как JSONB в БД
// и как YAML/JSON файл на диске.
type PlanSpec struct {
	// Name — имя плана (например, "deploy-cluster", "nightly-backup").
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Description — описание назначения плана.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Plan — корневой узел. Должен быть группой (serial или parallel).
	Plan NodeSpec `json:"plan" yaml:"plan"`
}

// NodeSpec — узел декларативного описания плана.
//
// Ровно одно из полей должно быть задано:
//   - Task — лист: имя задачи
//   - Serial / Parallel — вложенная группа
//   - Try — ветка, чей провал не валит группу
//   - Success / Failure / Finally — обработчик объемлющей группы
//
// Try и обработчики допустимы только внутри тела группы; их тела
// собираются как неявные serial-подгруппы.
type NodeSpec struct {
	Task     string     `json:"task,omitempty" yaml:"task,omitempty"`
	Serial   []NodeSpec `json:"serial,omitempty" yaml:"serial,omitempty"`
	Parallel []NodeSpec `json:"parallel,omitempty" yaml:"parallel,omitempty"`
	Try      []NodeSpec `json:"try,omitempty" yaml:"try,omitempty"`
	Success  []NodeSpec `json:"success,omitempty" yaml:"success,omitempty"`
	Failure  []NodeSpec `json:"failure,omitempty" yaml:"failure,omitempty"`
	Finally  []NodeSpec `json:"finally,omitempty" yaml:"finally,omitempty"`
}
