// Package history 提供内存中的浏览历史，模拟浏览器的 location 与 history API
//
// Package history provides an in-memory browsing history with the shape of a
// browser's location and history API: push, replace, back and forward.
package history

import (
	"net/url"
	"strings"
	"sync"
)

// Entry 历史记录中的一项：路径加查询参数
type Entry struct {
	Path  string
	Query url.Values
}

// URL 返回路径和编码后的查询串
func (e Entry) URL() string {
	if len(e.Query) == 0 {
		return e.Path
	}
	return e.Path + "?" + e.Query.Encode()
}

// Memory 内存历史记录，并发安全
type Memory struct {
	mu      sync.Mutex
	entries []Entry
	index   int
}

// New 以给定路径和查询参数作为当前位置创建历史记录
func New(path string, query url.Values) *Memory {
	return &Memory{entries: []Entry{{Path: path, Query: clone(query)}}}
}

// Parse 从形如 "/products?query=phone&page=2" 的地址创建历史记录
func Parse(raw string) (*Memory, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return New(path, u.Query()), nil
}

// Location 返回当前位置的查询参数副本
func (m *Memory) Location() url.Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.entries[m.index].Query)
}

// Current 返回当前记录
func (m *Memory) Current() Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entries[m.index]
	return Entry{Path: e.Path, Query: clone(e.Query)}
}

// Push 在当前路径下追加一条新记录，丢弃所有前进记录
func (m *Memory) Push(query url.Values) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushLocked(Entry{Path: m.entries[m.index].Path, Query: clone(query)})
}

// Open 导航到新的路径（带查询参数），等同于点击链接
func (m *Memory) Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	path := u.Path
	if path == "" {
		path = m.entries[m.index].Path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	m.pushLocked(Entry{Path: path, Query: u.Query()})
	return nil
}

// Replace 替换当前记录的查询参数
func (m *Memory) Replace(query url.Values) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[m.index].Query = clone(query)
}

// Back 后退一步，已在最早记录时返回 false
func (m *Memory) Back() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index == 0 {
		return false
	}
	m.index--
	return true
}

// Forward 前进一步，已在最新记录时返回 false
func (m *Memory) Forward() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index >= len(m.entries)-1 {
		return false
	}
	m.index++
	return true
}

// Len 返回记录总数
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) pushLocked(e Entry) {
	m.entries = append(m.entries[:m.index+1], e)
	m.index = len(m.entries) - 1
}

func clone(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
