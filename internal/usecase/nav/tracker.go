package nav

import "sync"

// Tracker отслеживает текущий путь страницы и вызывает onChange только
// при реальной смене пути. Повторные уведомления с тем же путём — no-op.
type Tracker struct {
	mu          sync.Mutex
	currentPath string
	onChange    func(path string)
}

// New создаёт трекер навигации. onChange вызывается с новым путём
// при каждой фактической смене.
func New(initialPath string, onChange func(path string)) *Tracker {
	return &Tracker{currentPath: initialPath, onChange: onChange}
}

// HandlePathChange сравнивает путь с текущим; при отличии обновляет
// состояние и запускает побочные эффекты. Возвращает true, если смена
// произошла. Хост-страница уведомляет трекер явным вызовом — как при
// мутации истории, так и при переходе назад/вперёд.
func (t *Tracker) HandlePathChange(path string) bool {
	t.mu.Lock()
	if path == t.currentPath {
		t.mu.Unlock()
		return false
	}
	t.currentPath = path
	onChange := t.onChange
	t.mu.Unlock()

	if onChange != nil {
		onChange(path)
	}
	return true
}

// CurrentPath возвращает последний известный путь.
func (t *Tracker) CurrentPath() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentPath
}
