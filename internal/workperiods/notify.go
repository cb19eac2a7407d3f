package workperiods

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity classifies a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier shows transient messages to the operator. Notify must not block.
type Notifier interface {
	Notify(ctx context.Context, severity Severity, message string)
}

// Notification is one message kept by Feed.
type Notification struct {
	ID        string    `json:"id"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// DefaultFeedSize is the number of notifications a Feed keeps.
const DefaultFeedSize = 50

// Feed keeps the most recent notifications in memory and logs each of them.
type Feed struct {
	mu     sync.Mutex
	items  []Notification
	size   int
	logger *slog.Logger
	now    func() time.Time
}

// NewFeed creates a feed holding at most size notifications.
func NewFeed(logger *slog.Logger, size int) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{size: size, logger: logger, now: time.Now}
}

// Notify implements Notifier.
func (f *Feed) Notify(ctx context.Context, severity Severity, message string) {
	n := Notification{
		ID:        uuid.NewString(),
		Severity:  severity,
		Message:   message,
		CreatedAt: f.now(),
	}
	f.mu.Lock()
	f.items = append(f.items, n)
	if len(f.items) > f.size {
		f.items = append([]Notification(nil), f.items[len(f.items)-f.size:]...)
	}
	f.mu.Unlock()

	level := slog.LevelInfo
	switch severity {
	case SeverityWarning:
		level = slog.LevelWarn
	case SeverityError:
		level = slog.LevelError
	}
	f.logger.Log(ctx, level, "notification", slog.String("id", n.ID), slog.String("severity", string(severity)), slog.String("message", message))
}

// List returns the kept notifications, oldest first.
func (f *Feed) List() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Notification(nil), f.items...)
}

// Dismiss removes a notification. It reports whether id was found.
func (f *Feed) Dismiss(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.items {
		if n.ID == id {
			f.items = append(f.items[:i:i], f.items[i+1:]...)
			return true
		}
	}
	return false
}
