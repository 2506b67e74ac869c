package engine

import "fmt"

// BuildFunc наполняет группу через Builder.
type BuildFunc func(*Builder)

// Serial строит план с корневой serial-группой.
//
//	plan, err := engine.Serial(func(b *engine.Builder) {
//		b.Task("migrate")
//		b.Parallel(func(b *engine.Builder) {
//			b.Task("deploy-web")
//			b.Task("deploy-worker")
//		})
//		b.Failure(func(b *engine.Builder) {
//			b.Task("rollback")
//		})
//	})
func Serial(fn BuildFunc) (*Plan, error) {
	return buildPlan(GroupSerial, fn)
}

// Parallel строит план с корневой parallel-группой.
func Parallel(fn BuildFunc) (*Plan, error) {
	return buildPlan(GroupParallel, fn)
}

// buildPlan строит дерево и возвращает готовый Plan.
// Первая ошибка построения запоминается и возвращается отсюда,
// чтобы BuildFunc-замыкания не таскали error через каждый вызов.
func buildPlan(kind GroupKind, fn BuildFunc) (*Plan, error) {
	st := &buildState{
		index: make(map[string]struct{}),
	}
	root := st.group(kind, fn)
	if st.err != nil {
		return nil, st.err
	}
	return &Plan{root: root, tasks: st.order, index: st.index}, nil
}

// buildState — общее состояние построения одного плана.
// Уникальность имён — инвариант всего плана, не отдельной группы.
type buildState struct {
	index map[string]struct{}
	order []string
	err   error
}

// fail запоминает первую ошибку построения.
func (st *buildState) fail(err error) {
	if st.err == nil {
		st.err = err
	}
}

// group строит группу указанного вида.
func (st *buildState) group(kind GroupKind, fn BuildFunc) *node {
	n := &node{kind: nodeGroup, group: kind}
	fn(&Builder{node: n, state: st})
	if len(n.slots) == 0 {
		st.fail(fmt.Errorf("%w: %s", ErrEmptyGroup, kind))
	}
	return n
}

// Builder наполняет одну группу по порядку объявления.
//
// Каждый вызов добавляет слот (Task, Serial, Parallel, Try) или
// прикрепляет обработчик (Success, Failure, Finally) к этой группе.
type Builder struct {
	node  *node
	state *buildState
}

// Task добавляет main-слот с задачей.
// Имя должно быть уникально во всём плане.
func (b *Builder) Task(name string) {
	if name == "" {
		b.state.fail(ErrEmptyTaskName)
		return
	}
	if _, ok := b.state.index[name]; ok {
		b.state.fail(fmt.Errorf("%w: %s", ErrDuplicateTask, name))
		return
	}
	b.state.index[name] = struct{}{}
	b.state.order = append(b.state.order, name)

	b.node.slots = append(b.node.slots, slot{
		role: RoleMain,
		node: &node{kind: nodeTask, name: name},
	})
}

// Serial добавляет main-слот с вложенной serial-группой.
func (b *Builder) Serial(fn BuildFunc) {
	b.node.slots = append(b.node.slots, slot{
		role: RoleMain,
		node: b.state.group(GroupSerial, fn),
	})
}

// Parallel добавляет main-слот с вложенной parallel-группой.
func (b *Builder) Parallel(fn BuildFunc) {
	b.node.slots = append(b.node.slots, slot{
		role: RoleMain,
		node: b.state.group(GroupParallel, fn),
	})
}

// Try добавляет try-слот: тело планируется как обычно, но его провал
// не считается провалом группы.
// Тело из нескольких узлов собирается в неявную serial-подгруппу.
func (b *Builder) Try(fn BuildFunc) {
	b.node.slots = append(b.node.slots, slot{
		role: RoleTry,
		node: b.state.body(fn),
	})
}

// Success прикрепляет обработчик успеха: планируется после того, как
// main/try слоты группы свелись к успеху; пока он не завершён, успех
// группы считается предварительным.
func (b *Builder) Success(fn BuildFunc) {
	b.attachHandler("success", &b.node.success, fn)
}

// Failure прикрепляет обработчик провала: планируется когда main/try
// слоты свелись к провалу. Его собственный результат не отменяет
// зафиксированный провал группы.
func (b *Builder) Failure(fn BuildFunc) {
	b.attachHandler("failure", &b.node.failure, fn)
}

// Finally прикрепляет финальный обработчик: планируется после
// разрешения группы (и её success/failure обработчика), его
// финальный результат замещает результат группы.
func (b *Builder) Finally(fn BuildFunc) {
	b.attachHandler("finally", &b.node.finally, fn)
}

// attachHandler прикрепляет обработчик роли role, максимум один на группу.
func (b *Builder) attachHandler(role string, dst **node, fn BuildFunc) {
	if *dst != nil {
		b.state.fail(fmt.Errorf("%w: %s", ErrDuplicateHandler, role))
		return
	}
	*dst = b.state.body(fn)
}

// body строит тело try/обработчика: неявная serial-подгруппа,
// либо сам узел, если тело состоит из одного main-узла без обработчиков.
func (st *buildState) body(fn BuildFunc) *node {
	n := st.group(GroupSerial, fn)
	if len(n.slots) == 1 && n.slots[0].role == RoleMain &&
		n.success == nil && n.failure == nil && n.finally == nil {
		return n.slots[0].node
	}
	return n
}
