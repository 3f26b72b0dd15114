package store

import (
	"sync"
)

// Lifecycle delivers host application lifecycle events. Keeping this behind
// an interface lets the stores revalidate on foreground without knowing
// anything about the UI host.
type Lifecycle interface {
	SubscribeForeground(fn func())
}

// AppLifecycle is the concrete event source the host pumps.
type AppLifecycle struct {
	mu   sync.Mutex
	subs []func()
}

func NewAppLifecycle() *AppLifecycle {
	return &AppLifecycle{}
}

func (l *AppLifecycle) SubscribeForeground(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subs = append(l.subs, fn)
}

// Foreground is called by the host when the application becomes active.
func (l *AppLifecycle) Foreground() {
	l.mu.Lock()
	subs := make([]func(), len(l.subs))
	copy(subs, l.subs)
	l.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

var _ Lifecycle = (*AppLifecycle)(nil)
