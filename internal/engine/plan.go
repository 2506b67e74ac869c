package engine

import (
	"fmt"

	"github.com/jtarchie/planner-pg/internal/domain"
)

// GroupKind — вид группы.
type GroupKind string

const (
	// GroupSerial — слоты выполняются по порядку, провал прерывает группу.
	GroupSerial GroupKind = "serial"

	// GroupParallel — слоты выполняются независимо друг от друга.
	GroupParallel GroupKind = "parallel"
)

// Role — роль слота внутри группы.
type Role string

const (
	// RoleMain — обычный слот тела группы.
	RoleMain Role = "main"

	// RoleTry — слот, чей провал не считается провалом группы.
	// Планируется наравне с main; pending всё так же блокирует свёртку.
	RoleTry Role = "try"
)

// nodeKind — тег узла дерева (задача или группа).
type nodeKind int

const (
	nodeTask nodeKind = iota
	nodeGroup
)

// node — узел дерева плана: задача-лист или группа.
//
// Дерево неизменяемо после построения; вся изменчивость живёт
// во внешнем снимке статусов.
type node struct {
	kind nodeKind

	// name — имя задачи (только для nodeTask).
	name string

	// group — вид группы (только для nodeGroup).
	group GroupKind

	// slots — main/try слоты в порядке объявления.
	// Порядок значим: это порядок зависимостей для serial
	// и порядок обхода для списков результатов.
	slots []slot

	// Обработчики группы, максимум по одному каждой роли.
	// Планируются только после разрешения main/try слотов.
	success *node
	failure *node
	finally *node
}

// slot — пара (роль, узел) внутри группы.
type slot struct {
	role Role
	node *node
}

// Plan — корневая группа, которую держит и опрашивает вызывающая сторона.
//
// Plan строится один раз и затем опрашивается сколько угодно раз
// против произвольных снимков; безопасен для конкурентного чтения.
type Plan struct {
	root *node

	// tasks — имена всех задач в порядке объявления.
	tasks []string

	// index — множество имён для валидации снимков.
	index map[string]struct{}
}

// Tasks возвращает имена всех задач плана в порядке объявления.
func (p *Plan) Tasks() []string {
	out := make([]string, len(p.tasks))
	copy(out, p.tasks)
	return out
}

// Has проверяет, есть ли задача с таким именем в плане.
func (p *Plan) Has(name string) bool {
	_, ok := p.index[name]
	return ok
}

// Size возвращает количество задач в плане.
func (p *Plan) Size() int {
	return len(p.tasks)
}

// checkSnapshot валидирует снимок против плана.
// Имя вне плана — ошибка программирования вызывающей стороны,
// падаем сразу, а не молчим.
func (p *Plan) checkSnapshot(snap domain.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	for name := range snap {
		if _, ok := p.index[name]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTask, name)
		}
	}
	return nil
}
