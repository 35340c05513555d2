// Package notify carries user-facing notifications (toasts) from the core
// to whatever surface renders them.
package notify

import (
	"sync"

	"github.com/itsneelabh/shopeasy/pkg/logger"
)

// Level is the severity of a notification
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a single non-blocking message for the user
type Notification struct {
	Level       Level
	Message     string
	Dismissible bool
}

// Notifier receives notifications. Implementations must not block.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Notification)

// Notify calls f(n)
func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

// Warning builds a dismissible warning
func Warning(msg string) Notification {
	return Notification{Level: LevelWarning, Message: msg, Dismissible: true}
}

// Success builds a dismissible success message
func Success(msg string) Notification {
	return Notification{Level: LevelSuccess, Message: msg, Dismissible: true}
}

// Error builds a dismissible error message
func Error(msg string) Notification {
	return Notification{Level: LevelError, Message: msg, Dismissible: true}
}

// LogNotifier writes notifications to a logger
type LogNotifier struct {
	Logger logger.Logger
}

// Notify logs n at a level matching its severity
func (l LogNotifier) Notify(n Notification) {
	if l.Logger == nil {
		return
	}
	switch n.Level {
	case LevelError:
		l.Logger.Error(n.Message, "notification", true)
	case LevelWarning:
		l.Logger.Warn(n.Message, "notification", true)
	default:
		l.Logger.Info(n.Message, "notification", true)
	}
}

// Recorder keeps every notification it receives
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify records n
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns the recorded notifications in order
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Drain returns and clears the recorded notifications
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.items
	r.items = nil
	return out
}

// Multi fans a notification out to several notifiers
type Multi []Notifier

// Notify forwards n to every notifier
func (m Multi) Notify(n Notification) {
	for _, target := range m {
		if target != nil {
			target.Notify(n)
		}
	}
}
