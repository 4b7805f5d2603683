// Package notify provides transient user notifications (toasts).
// A notifier shows one message at a time; a newer message replaces the
// visible one and every message disappears after a fixed duration.
//
// Package notify 提供临时用户通知（提示框）。
// 通知器一次只显示一条消息；新消息会替换当前可见的消息，
// 每条消息在固定时长后消失。
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Kind is the visual category of a notification.
//
// Kind 是通知的视觉类别。
type Kind string

const (
	// Info is a neutral message.
	// Info 是中性消息。
	Info Kind = "info"

	// Success reports a completed action.
	// Success 报告已完成的操作。
	Success Kind = "success"

	// Error reports a failed action.
	// Error 报告失败的操作。
	Error Kind = "error"
)

// DefaultDuration is how long a toast stays visible.
//
// DefaultDuration 是提示框保持可见的时长。
const DefaultDuration = 3 * time.Second

// Notifier shows a transient message to the user.
//
// Notifier 向用户显示临时消息。
type Notifier interface {
	Notify(message string, kind Kind)
}

// NotifierFunc adapts a function to the Notifier interface.
//
// NotifierFunc 将函数适配为Notifier接口。
type NotifierFunc func(message string, kind Kind)

// Notify calls f(message, kind).
func (f NotifierFunc) Notify(message string, kind Kind) {
	f(message, kind)
}

// Discard is a Notifier that drops every message.
//
// Discard 是丢弃所有消息的Notifier。
var Discard Notifier = NotifierFunc(func(string, Kind) {})

// Message is a notification currently on screen.
//
// Message 是当前显示在屏幕上的通知。
type Message struct {
	Text  string
	Kind  Kind
	Shown time.Time
}

// Toast writes notifications to a terminal-like writer and tracks the one
// that is currently visible.
//
// Toast 将通知写入类终端的输出，并跟踪当前可见的通知。
type Toast struct {
	out      io.Writer
	duration time.Duration
	color    bool

	mu      sync.Mutex
	current *Message
	timer   *time.Timer
	gen     uint64
}

// NewToast creates a toast notifier.
//
// NewToast 创建一个提示框通知器。
//
// Parameters:
//   - out: Where messages are written
//   - duration: Visibility time, DefaultDuration when <= 0
//   - color: Whether to wrap messages in ANSI colors
//
// Returns:
//   - *Toast: A new toast notifier
func NewToast(out io.Writer, duration time.Duration, color bool) *Toast {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Toast{out: out, duration: duration, color: color}
}

// Notify replaces the visible message and schedules its dismissal.
//
// Notify 替换可见消息并安排其消失。
func (t *Toast) Notify(message string, kind Kind) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.current = &Message{Text: message, Kind: kind, Shown: time.Now()}
	fmt.Fprintln(t.out, t.format(message, kind))

	t.timer = time.AfterFunc(t.duration, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.gen == gen {
			t.current = nil
		}
	})
}

// Current returns the visible message, if any.
//
// Current 返回当前可见的消息（如果有）。
func (t *Toast) Current() (Message, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return Message{}, false
	}
	return *t.current, true
}

// Close stops the pending dismissal timer.
//
// Close 停止待执行的消失计时器。
func (t *Toast) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *Toast) format(message string, kind Kind) string {
	label := fmt.Sprintf("[%s] %s", kind, message)
	if !t.color {
		return label
	}
	switch kind {
	case Success:
		return "\x1b[32m" + label + "\x1b[0m"
	case Error:
		return "\x1b[31m" + label + "\x1b[0m"
	default:
		return "\x1b[34m" + label + "\x1b[0m"
	}
}

// Multi fans a notification out to several notifiers.
//
// Multi 将通知分发给多个通知器。
func Multi(notifiers ...Notifier) Notifier {
	return NotifierFunc(func(message string, kind Kind) {
		for _, n := range notifiers {
			n.Notify(message, kind)
		}
	})
}
