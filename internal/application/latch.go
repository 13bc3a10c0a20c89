package application

import (
	"context"
	"sync"
)

// readyLatch is a single-assignment outcome for one session instance. The ready event,
// the watchdog, the ready deadline and early failures all race to settle it; only the
// first one wins.
type readyLatch struct {
	mu      sync.Mutex
	done    chan struct{}
	settled bool
	source  string
	err     error
}

func newReadyLatch() *readyLatch {
	return &readyLatch{done: make(chan struct{})}
}

// Resolve settles the latch as ready. It returns false if it was already settled.
func (l *readyLatch) Resolve(source string) bool {
	return l.settle(source, nil)
}

// Reject settles the latch with err. It returns false if it was already settled.
func (l *readyLatch) Reject(err error) bool {
	return l.settle("", err)
}

func (l *readyLatch) settle(source string, err error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.settled {
		return false
	}
	l.settled = true
	l.source = source
	l.err = err
	close(l.done)
	return true
}

// Done is closed once the latch is settled
func (l *readyLatch) Done() <-chan struct{} {
	return l.done
}

// Err returns the rejection error, nil if resolved or still pending
func (l *readyLatch) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Source returns who resolved the latch
func (l *readyLatch) Source() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.source
}

// Wait blocks until the latch settles or ctx is done
func (l *readyLatch) Wait(ctx context.Context) error {
	select {
	case <-l.done:
		return l.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
