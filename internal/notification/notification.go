package notification

import (
	"context"
	"log/slog"
	"sync"
)

// Toast levels.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelError   = "error"
)

// Toast is a short user-facing message.
type Toast struct {
	Level string
	Text  string
	// To addresses the message to one user, e.g. the mobile number of an
	// OTP SMS. Empty for on-screen toasts.
	To string
}

// Notifier delivers toasts to whoever renders them.
type Notifier interface {
	Send(ctx context.Context, toast Toast) error
}

// Bus fans toasts out to subscribers. It replaces a module-global setter with
// an explicit value passed to the stores that need it.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Toast)
}

// NewBus creates a bus without subscribers.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(Toast))}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn func(Toast)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Send delivers the toast synchronously to every subscriber.
func (b *Bus) Send(_ context.Context, toast Toast) error {
	b.mu.RLock()
	subs := make([]func(Toast), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(toast)
	}
	return nil
}

// LoggerNotifier writes messages to the structured logger. The sandbox uses
// it as its SMS gateway.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, toast Toast) error {
	if n == nil || n.logger == nil {
		return nil
	}
	if toast.To != "" {
		n.logger.Info("message sent", slog.String("to", toast.To), slog.String("text", toast.Text))
		return nil
	}
	n.logger.Info("toast", slog.String("level", toast.Level), slog.String("text", toast.Text))
	return nil
}

// Nop discards toasts.
type Nop struct{}

func (Nop) Send(context.Context, Toast) error { return nil }
