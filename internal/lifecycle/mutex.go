package lifecycle

import (
	"sync"
	"sync/atomic"
)

// PoisonableMutex is a mutex that treats a panic raised while held as a
// programmer bug: the mutex is marked poisoned and every later Guard call
// panics immediately instead of silently operating on possibly-torn
// state. This mirrors the fatal-on-poison behavior a Rust std::sync::Mutex
// gives the original engine for free.
type PoisonableMutex struct {
	mu       sync.Mutex
	poisoned atomic.Bool
}

// Guard runs fn with the mutex held. If fn panics, the mutex is marked
// poisoned before the panic is re-raised. A PoisonableMutex that is
// already poisoned panics on the next Guard call without running fn.
func (p *PoisonableMutex) Guard(fn func() error) error {
	if p.poisoned.Load() {
		panic("fcindex: writer mutex poisoned by a prior panic")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	done := false
	defer func() {
		if !done {
			p.poisoned.Store(true)
		}
	}()
	err := fn()
	done = true
	return err
}

// Poisoned reports whether a prior Guard call panicked.
func (p *PoisonableMutex) Poisoned() bool {
	return p.poisoned.Load()
}
