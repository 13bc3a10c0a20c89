package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"whatsapp-checker/internal/adapters/output/memory"
	"whatsapp-checker/internal/domain"
	"whatsapp-checker/internal/ports/output"
)

// fakeClient hands out fakeSessions. script runs when session n (1-based) connects.
type fakeClient struct {
	mu       sync.Mutex
	sessions   []*fakeSession
	newErr     error
	connectErr error
	script     func(n int, s *fakeSession)
}

func (c *fakeClient) NewSession(_ context.Context, _ string) (output.MessagingSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.newErr != nil {
		return nil, c.newErr
	}
	s := &fakeSession{
		n:          len(c.sessions) + 1,
		events:     make(chan domain.LifecycleEvent, 16),
		script:     c.script,
		connectErr: c.connectErr,
	}
	c.sessions = append(c.sessions, s)
	return s, nil
}

func (c *fakeClient) created() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

func (c *fakeClient) session(n int) *fakeSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < 1 || n > len(c.sessions) {
		return nil
	}
	return c.sessions[n-1]
}

type fakeSession struct {
	n          int
	events     chan domain.LifecycleEvent
	script     func(n int, s *fakeSession)
	connectErr error

	connected  atomic.Bool
	destroyed  atomic.Bool
	registered atomic.Bool
	queryErr   error
	queries    atomic.Int32
	active     atomic.Int32
	overlapped atomic.Bool

	mu    sync.Mutex
	sent  []string
	block chan struct{}
}

func (s *fakeSession) Connect(context.Context) error {
	if s.connectErr != nil {
		return s.connectErr
	}
	if s.script != nil {
		s.script(s.n, s)
	}
	return nil
}

func (s *fakeSession) Events() <-chan domain.LifecycleEvent { return s.events }

func (s *fakeSession) IsFullyConnected() bool { return s.connected.Load() }

func (s *fakeSession) AccountID() string { return "593990000000" }

func (s *fakeSession) IsRegistered(ctx context.Context, identifier string) (bool, error) {
	if s.active.Add(1) > 1 {
		s.overlapped.Store(true)
	}
	defer s.active.Add(-1)
	s.queries.Add(1)
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	if s.queryErr != nil {
		return false, s.queryErr
	}
	return s.registered.Load(), nil
}

func (s *fakeSession) SendText(_ context.Context, identifier, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queryErr != nil {
		return s.queryErr
	}
	s.sent = append(s.sent, identifier+"|"+text)
	return nil
}

func (s *fakeSession) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

func (s *fakeSession) Destroy() { s.destroyed.Store(true) }

func (s *fakeSession) emit(t domain.LifecycleEventType) {
	s.events <- domain.LifecycleEvent{Type: t}
}

func (s *fakeSession) emitReason(t domain.LifecycleEventType, reason string) {
	s.events <- domain.LifecycleEvent{Type: t, Reason: reason}
}

// fakeSource is a SessionSource with a fixed session
type fakeSource struct {
	ready   atomic.Bool
	session output.MessagingSession
}

func (f *fakeSource) IsReady() bool { return f.ready.Load() }

func (f *fakeSource) CurrentSession() output.MessagingSession {
	if !f.ready.Load() {
		return nil
	}
	return f.session
}

func (f *fakeSource) Status() domain.SessionStatus {
	return domain.SessionStatus{ClientID: "default", Ready: f.ready.Load()}
}

type fakePresenter struct {
	mu    sync.Mutex
	codes []string
}

func (p *fakePresenter) ShowQR(code string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.codes = append(p.codes, code)
}

func (p *fakePresenter) shown() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.codes...)
}

// countingRepo counts persisted ready transitions
type countingRepo struct {
	*memory.SessionRepository
	readies atomic.Int32
}

func (r *countingRepo) UpdateState(clientID string, state domain.SessionState, at time.Time) error {
	if state == domain.SessionStateReady {
		r.readies.Add(1)
	}
	return r.SessionRepository.UpdateState(clientID, state, at)
}

var errBackend = errors.New("backend unavailable")
