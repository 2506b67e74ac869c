package engine

import (
	"github.com/jtarchie/planner-pg/internal/domain"
)

// Status возвращает сводный статус плана для данного снимка.
//
// Чистая функция: не мутирует ни план, ни снимок; повторный вызов
// с тем же снимком даёт тот же результат.
func (p *Plan) Status(snap domain.Snapshot) (domain.Status, error) {
	if err := p.checkSnapshot(snap); err != nil {
		return "", err
	}
	return p.root.status(snap), nil
}

// Eligible возвращает имена задач, готовых к запуску, в порядке
// объявления (обход в глубину). Задача готова, если её статус — ровно
// UNSTARTED и никакой serial-предшественник её не блокирует.
func (p *Plan) Eligible(snap domain.Snapshot) ([]string, error) {
	if err := p.checkSnapshot(snap); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(p.tasks))
	p.root.eligible(snap, &out)
	return out, nil
}

// status — рекурсивная свёртка статуса узла.
func (n *node) status(snap domain.Snapshot) domain.Status {
	if n.kind == nodeTask {
		return snap.Get(n.name)
	}

	// 1. Доминирование pending: если любой слот любой роли
	// (включая обработчики) pending — группа pending.
	for _, s := range n.slots {
		if s.node.status(snap) == domain.StatusPending {
			return domain.StatusPending
		}
	}
	for _, h := range []*node{n.success, n.failure, n.finally} {
		if h != nil && h.status(snap) == domain.StatusPending {
			return domain.StatusPending
		}
	}

	// 2. Предварительный результат по main/try слотам.
	t := n.tentative(snap)

	// 3. Обработчики. Провал липкий: failure-обработчик его не отменяет.
	// Успех предварителен, пока success-обработчик не завершился.
	res := t
	if t == domain.StatusSuccess && n.success != nil {
		if hs := n.success.status(snap); hs.IsTerminal() {
			res = hs
		} else {
			res = domain.StatusUnstarted
		}
	}

	// 4. Finally замещает любой прежний результат, включая липкий провал,
	// как только становится планируемым.
	if n.finally != nil && n.finallyReady(t, snap) {
		if fs := n.finally.status(snap); fs.IsTerminal() {
			res = fs
		} else {
			res = domain.StatusUnstarted
		}
	}

	return res
}

// tentative — предварительный результат группы по main/try слотам,
// до применения обработчиков. UNSTARTED означает "ещё не разрешена".
func (n *node) tentative(snap domain.Snapshot) domain.Status {
	switch n.group {
	case GroupSerial:
		for _, s := range n.slots {
			st := s.node.status(snap)
			switch {
			case st == domain.StatusSuccess:
				// сканируем дальше
			case st == domain.StatusFailed && s.role == RoleTry:
				// провал try пройден, сканируем дальше
			case st == domain.StatusFailed:
				// первый провал не-try слота прерывает скан:
				// последующие слоты не рассматриваются вовсе
				return domain.StatusFailed
			default:
				// UNSTARTED или PENDING — группа не разрешена
				return domain.StatusUnstarted
			}
		}
		return domain.StatusSuccess

	default: // GroupParallel
		anyFailed := false
		for _, s := range n.slots {
			st := s.node.status(snap)
			if s.role == RoleTry {
				// незапущенный или провалившийся try не мешает
				// разрешению, но pending всё ещё блокирует
				if st == domain.StatusPending {
					return domain.StatusUnstarted
				}
				continue
			}
			if !st.IsTerminal() {
				return domain.StatusUnstarted
			}
			if st == domain.StatusFailed {
				anyFailed = true
			}
		}
		if anyFailed {
			return domain.StatusFailed
		}
		return domain.StatusSuccess
	}
}

// finallyReady сообщает, можно ли планировать finally-слот:
// main/try слоты разрешены, и применимый success/failure обработчик
// (если есть) уже завершён.
func (n *node) finallyReady(t domain.Status, snap domain.Snapshot) bool {
	switch t {
	case domain.StatusSuccess:
		return n.success == nil || n.success.status(snap).IsTerminal()
	case domain.StatusFailed:
		return n.failure == nil || n.failure.status(snap).IsTerminal()
	default:
		return false
	}
}

// eligible собирает готовые к запуску задачи узла в out.
func (n *node) eligible(snap domain.Snapshot, out *[]string) {
	if n.kind == nodeTask {
		if snap.Get(n.name) == domain.StatusUnstarted {
			*out = append(*out, n.name)
		}
		return
	}

	switch n.group {
	case GroupSerial:
	scan:
		for _, s := range n.slots {
			st := s.node.status(snap)
			switch {
			case st == domain.StatusSuccess:
				// слот разрешён, переходим к следующему
			case st == domain.StatusFailed && s.role == RoleTry:
				// провал try пройден
			case st == domain.StatusFailed:
				// провал прерывает группу
				break scan
			default:
				// первый неразрешённый слот: собираем его задачи,
				// последующие слоты заблокированы
				s.node.eligible(snap, out)
				break scan
			}
		}

	default: // GroupParallel
		// слоты независимы: провал соседа никого не блокирует
		for _, s := range n.slots {
			s.node.eligible(snap, out)
		}
	}

	// Гейтинг обработчиков — независимо от исхода скана.
	t := n.tentative(snap)
	if n.success != nil && t == domain.StatusSuccess && !n.success.status(snap).IsTerminal() {
		n.success.eligible(snap, out)
	}
	if n.failure != nil && t == domain.StatusFailed && !n.failure.status(snap).IsTerminal() {
		n.failure.eligible(snap, out)
	}
	if n.finally != nil && n.finallyReady(t, snap) && !n.finally.status(snap).IsTerminal() {
		n.finally.eligible(snap, out)
	}
}
