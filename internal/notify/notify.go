package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier is the user-facing notification sink.
type Notifier interface {
	Info(message string)
	Success(message string)
	Error(message string)
}

type Notification struct {
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// LogNotifier writes notifications to the application log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Info(message string) {
	n.logger.Info("Notification", zap.String("level", string(LevelInfo)), zap.String("message", message))
}

func (n *LogNotifier) Success(message string) {
	n.logger.Info("Notification", zap.String("level", string(LevelSuccess)), zap.String("message", message))
}

func (n *LogNotifier) Error(message string) {
	n.logger.Warn("Notification", zap.String("level", string(LevelError)), zap.String("message", message))
}

// Feed keeps the most recent notifications in memory, oldest first, and
// optionally forwards each one to a listener.
type Feed struct {
	mu       sync.RWMutex
	items    []Notification
	capacity int
	now      func() time.Time
	listener func(Notification)
}

func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = 50
	}
	return &Feed{capacity: capacity, now: time.Now}
}

// OnNotify registers a listener called after every notification.
func (f *Feed) OnNotify(fn func(Notification)) {
	f.mu.Lock()
	f.listener = fn
	f.mu.Unlock()
}

func (f *Feed) Info(message string)    { f.push(LevelInfo, message) }
func (f *Feed) Success(message string) { f.push(LevelSuccess, message) }
func (f *Feed) Error(message string)   { f.push(LevelError, message) }

func (f *Feed) push(level Level, message string) {
	f.mu.Lock()
	n := Notification{Level: level, Message: message, Timestamp: f.now()}
	f.items = append(f.items, n)
	if len(f.items) > f.capacity {
		f.items = append(f.items[:0], f.items[len(f.items)-f.capacity:]...)
	}
	listener := f.listener
	f.mu.Unlock()

	if listener != nil {
		listener(n)
	}
}

// Recent returns up to limit notifications, newest last. limit <= 0 returns all.
func (f *Feed) Recent(limit int) []Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()

	items := f.items
	if limit > 0 && len(items) > limit {
		items = items[len(items)-limit:]
	}
	out := make([]Notification, len(items))
	copy(out, items)
	return out
}

// Multi fans a notification out to every wrapped notifier.
type Multi []Notifier

func (m Multi) Info(message string) {
	for _, n := range m {
		n.Info(message)
	}
}

func (m Multi) Success(message string) {
	for _, n := range m {
		n.Success(message)
	}
}

func (m Multi) Error(message string) {
	for _, n := range m {
		n.Error(message)
	}
}
