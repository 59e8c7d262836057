package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Toast is a short user-visible notification.
type Toast struct {
	ID        string `json:"id"`
	Seq       uint64 `json:"seq"` // assigned by the Hub, 0 elsewhere
	Level     Level  `json:"level"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

func newToast(level Level, msg string) Toast {
	return Toast{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   msg,
		Timestamp: time.Now().Unix(),
	}
}

func Success(msg string) Toast { return newToast(LevelSuccess, msg) }
func Failure(msg string) Toast { return newToast(LevelError, msg) }
func Info(msg string) Toast    { return newToast(LevelInfo, msg) }

// Notifier delivers toasts to whoever is watching.
type Notifier interface {
	Notify(Toast)
}

// Discard drops every toast.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(Toast) {}

// Recorder keeps every toast in memory.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *Recorder) Notify(t Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, t)
}

// Toasts returns a copy of everything recorded so far.
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}

// Last returns the most recent toast, if any.
func (r *Recorder) Last() (Toast, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.toasts) == 0 {
		return Toast{}, false
	}
	return r.toasts[len(r.toasts)-1], true
}

// Reset forgets everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = nil
}
