package terminal

import "sync"

// Toggle is the open state of a dropdown menu. The button toggles it, and
// activity outside the menu closes it, as does picking an entry.
//
// Toggle 是下拉菜单的开关状态。
// 点击按钮切换，点击菜单外部关闭，选中条目后关闭。
type Toggle struct {
	mu   sync.Mutex
	open bool
}

// NewToggle creates a closed toggle.
//
// NewToggle 创建一个关闭状态的开关。
func NewToggle() *Toggle {
	return &Toggle{}
}

// Toggle flips the state and reports whether the menu is now open.
//
// Toggle 切换开关并返回菜单现在是否打开。
func (t *Toggle) Toggle() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.open = !t.open
	return t.open
}

// Open opens the menu.
//
// Open 打开菜单。
func (t *Toggle) Open() {
	t.mu.Lock()
	t.open = true
	t.mu.Unlock()
}

// Close closes the menu.
//
// Close 关闭菜单。
func (t *Toggle) Close() {
	t.mu.Lock()
	t.open = false
	t.mu.Unlock()
}

// IsOpen reports whether the menu is open.
//
// IsOpen 返回菜单是否打开。
func (t *Toggle) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

// Outside handles activity outside the menu: an open menu is closed.
// It reports whether the menu was closed by this call.
//
// Outside 处理菜单外部的操作：菜单打开时关闭它，返回本次调用是否关闭了菜单。
func (t *Toggle) Outside() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open {
		return false
	}
	t.open = false
	return true
}
