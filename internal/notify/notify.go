// Package notify carries transient user-facing notifications.
package notify

import (
	"context"
	"sync"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is either a catalog key or a verbatim message from the
// backend. Message wins when both are set.
type Notification struct {
	Level   Level  `json:"level"`
	Key     string `json:"key,omitempty"`
	Message string `json:"message,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(context.Context, Notification) {})

func Success(key string) Notification { return Notification{Level: LevelSuccess, Key: key} }

func Warning(key string) Notification { return Notification{Level: LevelWarning, Key: key} }

func Error(key string) Notification { return Notification{Level: LevelError, Key: key} }

// Buffer queues notifications until the next response drains them.
type Buffer struct {
	mu    sync.Mutex
	items []Notification
}

func (b *Buffer) Notify(_ context.Context, n Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, n)
}

func (b *Buffer) Drain() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.items
	b.items = nil
	return out
}
