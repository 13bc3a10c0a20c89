package application

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"whatsapp-checker/internal/domain"
	"whatsapp-checker/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// Default lifecycle timings
const (
	DefaultReadyTimeout   = 60 * time.Second
	DefaultWatchdogDelay  = 5 * time.Second
	DefaultReconnectDelay = 3 * time.Second

	signalBufferSize = 64
)

// ControllerConfig holds the session lifecycle settings
type ControllerConfig struct {
	ClientID       string
	ReadyTimeout   time.Duration
	WatchdogDelay  time.Duration
	ReconnectDelay time.Duration
}

func (c ControllerConfig) withDefaults() ControllerConfig {
	if c.ClientID == "" {
		c.ClientID = "default"
	}
	if c.ReadyTimeout <= 0 {
		c.ReadyTimeout = DefaultReadyTimeout
	}
	if c.WatchdogDelay <= 0 {
		c.WatchdogDelay = DefaultWatchdogDelay
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = DefaultReconnectDelay
	}
	return c
}

// signal is one input delivered to the controller loop
type signal struct {
	kind   signalKind
	gen    uint64
	reason string
	qr     string
	err    error
	reply  chan startResult
}

type startResult struct {
	handle *sessionHandle
	err    error
}

// sessionHandle is one backend session instance. It is replaced, never mutated, on reconnection.
type sessionHandle struct {
	gen        uint64
	session    output.MessagingSession
	latch      *readyLatch
	readyTimer *time.Timer
	ctx        context.Context
	cancel     context.CancelFunc
}

// SessionController struct - owns the single WhatsApp session, its readiness and its reconnection.
// All transitions run on one loop goroutine; other goroutines only read the atomics.
type SessionController struct {
	client    output.MessagingClient
	repo      output.SessionRepository
	presenter output.PairingPresenter
	metrics   output.Metrics
	cfg       ControllerConfig

	signals   chan signal
	stop      chan struct{}
	loopDone  chan struct{}
	startLoop sync.Once
	stopOnce  sync.Once

	ready        atomic.Bool
	state        atomic.Int32
	reconnecting atomic.Bool
	reconnects   atomic.Int64
	current      atomic.Pointer[sessionHandle]

	// owned by the loop goroutine
	machine machine
	gen     uint64
}

// NewSessionController func - Creates the session lifecycle controller. repo and presenter may be nil.
func NewSessionController(client output.MessagingClient, repo output.SessionRepository, presenter output.PairingPresenter, metrics output.Metrics, cfg ControllerConfig) *SessionController {
	if metrics == nil {
		metrics = output.NopMetrics{}
	}
	return &SessionController{
		client:    client,
		repo:      repo,
		presenter: presenter,
		metrics:   metrics,
		cfg:       cfg.withDefaults(),
		signals:   make(chan signal, signalBufferSize),
		stop:      make(chan struct{}),
		loopDone:  make(chan struct{}),
		machine:   machine{state: domain.SessionStateUninitialized},
	}
}

// Start constructs a new session, destroying any previous one, and waits until it is ready.
// It fails with ErrInitialization, ErrReadyTimeout, ErrDisconnected or ErrAuthFailure.
// The controller keeps running after a failure but only post-ready drops are retried.
func (c *SessionController) Start(ctx context.Context) error {
	c.startLoop.Do(func() { go c.run() })

	reply := make(chan startResult, 1)
	if !c.send(signal{kind: signalStart, reply: reply}) {
		return fmt.Errorf("%w: controller stopped", domain.ErrInitialization)
	}

	var res startResult
	select {
	case res = <-reply:
	case <-ctx.Done():
		return ctx.Err()
	}
	if res.err != nil {
		return res.err
	}

	logrus.Info("WhatsApp client initialized, waiting for ready event...")
	if err := res.handle.latch.Wait(ctx); err != nil {
		return err
	}
	logrus.Infof("WhatsApp client ready (via %s)", res.handle.latch.Source())
	return nil
}

// Stop tears the current session down and ends the loop
func (c *SessionController) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
	c.startLoop.Do(func() { close(c.loopDone) })
	<-c.loopDone
}

// IsReady reports the readiness flag. It never blocks.
func (c *SessionController) IsReady() bool {
	return c.ready.Load()
}

// State returns the current lifecycle state
func (c *SessionController) State() domain.SessionState {
	return domain.SessionState(c.state.Load())
}

// CurrentSession returns the live session handle or nil. Callers must not keep it across calls:
// the handle changes identity on reconnection.
func (c *SessionController) CurrentSession() output.MessagingSession {
	h := c.current.Load()
	if h == nil {
		return nil
	}
	return h.session
}

// Status returns a diagnostics snapshot
func (c *SessionController) Status() domain.SessionStatus {
	status := domain.SessionStatus{
		ClientID:       c.cfg.ClientID,
		State:          c.State(),
		Ready:          c.IsReady(),
		Reconnecting:   c.reconnecting.Load(),
		ReconnectCount: c.reconnects.Load(),
	}
	if s := c.CurrentSession(); s != nil {
		status.AccountID = s.AccountID()
	}
	return status
}

func (c *SessionController) send(s signal) bool {
	select {
	case <-c.stop:
		return false
	default:
	}
	select {
	case c.signals <- s:
		return true
	case <-c.stop:
		return false
	}
}

func (c *SessionController) run() {
	defer close(c.loopDone)
	for {
		select {
		case <-c.stop:
			c.destroyCurrent()
			return
		case s := <-c.signals:
			c.handle(s)
		}
	}
}

func (c *SessionController) handle(s signal) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("Session controller recovered from panic on %s: %v\n%s", s.kind, r, debug.Stack())
		}
	}()

	h := c.current.Load()
	if s.kind != signalStart && s.kind != signalReconnectDue && (h == nil || s.gen != h.gen) {
		logrus.Debugf("Ignoring %s from stale session generation %d", s.kind, s.gen)
		return
	}

	switch s.kind {
	case signalWatchdog:
		if c.machine.state != domain.SessionStateAuthenticating {
			return
		}
		if !h.session.IsFullyConnected() {
			logrus.Warn("Watchdog: no ready event yet and the backend is not connected, still waiting")
			return
		}
		logrus.Warn("Watchdog: authenticated without ready event but backend is connected, forcing ready")
	case signalReadyTimeout:
		if !h.latch.Reject(domain.ErrReadyTimeout) {
			return
		}
		logrus.Errorf("WhatsApp client did not become ready within %v", c.cfg.ReadyTimeout)
	}

	next, effects := step(c.machine, s.kind)
	if effects == nil {
		logrus.Debugf("Ignoring %s in state %s", s.kind, c.machine.state)
		if s.reply != nil {
			s.reply <- startResult{err: fmt.Errorf("%w: controller is in state %s", domain.ErrInitialization, c.machine.state)}
		}
		return
	}
	if next.state == domain.SessionStateReady && c.machine.state != domain.SessionStateReady {
		source := s.kind.String()
		if !h.latch.Resolve(source) {
			logrus.Debugf("Readiness already settled for session %d, ignoring %s", h.gen, source)
			return
		}
	}

	prev := c.machine.state
	c.apply(next)
	if prev != next.state {
		logrus.Infof("Session %s: %s -> %s", c.cfg.ClientID, prev, next.state)
	}
	for _, e := range effects {
		c.execute(e, s)
	}
}

func (c *SessionController) apply(m machine) {
	changed := c.machine.state != m.state
	c.machine = m
	c.state.Store(int32(m.state))
	c.reconnecting.Store(m.reconnecting)
	c.metrics.SetSessionState(m.state, c.ready.Load())
	if changed {
		c.persist(m.state)
	}
}

func (c *SessionController) execute(e effect, s signal) {
	switch e {
	case effectInitialize:
		c.initialize(s)
	case effectClearReady:
		c.setReady(false)
	case effectSetReady:
		h := c.current.Load()
		if h.readyTimer != nil {
			h.readyTimer.Stop()
		}
		c.setReady(true)
		logrus.Infof("WhatsApp client ready, account %s", h.session.AccountID())
	case effectShowQR:
		logrus.Info("QR received, scan it with WhatsApp")
		if c.presenter != nil {
			c.presenter.ShowQR(s.qr)
		}
	case effectArmWatchdog:
		gen := s.gen
		time.AfterFunc(c.cfg.WatchdogDelay, func() {
			c.send(signal{kind: signalWatchdog, gen: gen})
		})
	case effectScheduleReconnect:
		logrus.Errorf("WhatsApp client disconnected (%s), restarting in %v", reasonOf(s), c.cfg.ReconnectDelay)
		time.AfterFunc(c.cfg.ReconnectDelay, func() {
			c.send(signal{kind: signalReconnectDue})
		})
	case effectReconnectPending:
		logrus.Warnf("WhatsApp client disconnected (%s), a reconnection is already in progress", reasonOf(s))
	case effectRejectLatch:
		if h := c.current.Load(); h != nil {
			h.latch.Reject(rejection(s))
		}
		if s.kind == signalAuthFailure {
			logrus.Errorf("WhatsApp authentication failure: %s. Clear the stored session and restart to pair again", s.reason)
		}
	case effectDestroy:
		c.destroyCurrent()
	case effectCountReconnect:
		c.reconnects.Add(1)
		c.metrics.IncReconnects()
		logrus.Info("Restarting WhatsApp client...")
	}
}

// initialize destroys the previous handle and constructs a new one. Connection progress
// arrives later as events.
func (c *SessionController) initialize(s signal) {
	c.destroyCurrent()

	c.gen++
	gen := c.gen
	ctx, cancel := context.WithCancel(context.Background())
	session, err := c.client.NewSession(ctx, c.cfg.ClientID)
	if err != nil {
		cancel()
		err = fmt.Errorf("%w: %v", domain.ErrInitialization, err)
		logrus.Errorf("Failed to create WhatsApp client: %v", err)
		if s.reply != nil {
			s.reply <- startResult{err: err}
		}
		c.fail(err)
		return
	}

	h := &sessionHandle{
		gen:     gen,
		session: session,
		latch:   newReadyLatch(),
		ctx:     ctx,
		cancel:  cancel,
	}
	h.readyTimer = time.AfterFunc(c.cfg.ReadyTimeout, func() {
		c.send(signal{kind: signalReadyTimeout, gen: gen})
	})
	c.current.Store(h)
	go c.pump(h)

	next, _ := step(c.machine, signalSessionCreated)
	c.apply(next)

	logrus.Infof("Initializing WhatsApp client %q...", c.cfg.ClientID)
	go func() {
		if err := session.Connect(ctx); err != nil {
			c.send(signal{kind: signalInitFailed, gen: gen, err: fmt.Errorf("%w: %v", domain.ErrInitialization, err)})
		}
	}()

	if s.reply != nil {
		s.reply <- startResult{handle: h}
	}
}

// fail runs the init-failed transition when no handle could be constructed
func (c *SessionController) fail(err error) {
	next, effects := step(c.machine, signalInitFailed)
	if effects == nil {
		return
	}
	c.apply(next)
	for _, e := range effects {
		c.execute(e, signal{kind: signalInitFailed, err: err})
	}
}

// pump forwards backend events of one session into the loop, tagged with its generation
func (c *SessionController) pump(h *sessionHandle) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("Session event pump recovered from panic: %v", r)
		}
	}()
	for {
		select {
		case <-c.stop:
			return
		case <-h.ctx.Done():
			return
		case ev, ok := <-h.session.Events():
			if !ok {
				return
			}
			s := signal{gen: h.gen, reason: ev.Reason, qr: ev.QRCode}
			switch ev.Type {
			case domain.LifecycleEventQR:
				s.kind = signalQR
			case domain.LifecycleEventAuthenticated:
				s.kind = signalAuthenticated
			case domain.LifecycleEventReady:
				s.kind = signalReady
			case domain.LifecycleEventDisconnected:
				s.kind = signalDisconnected
			case domain.LifecycleEventAuthFailure:
				s.kind = signalAuthFailure
			default:
				logrus.Debugf("Unhandled lifecycle event: %s", ev.Type)
				continue
			}
			if !c.send(s) {
				return
			}
		}
	}
}

// destroyCurrent tears down the live handle. Teardown always succeeds from here on:
// the handle is gone whatever the backend reports.
func (c *SessionController) destroyCurrent() {
	h := c.current.Swap(nil)
	if h == nil {
		return
	}
	c.setReady(false)
	if h.readyTimer != nil {
		h.readyTimer.Stop()
	}
	logrus.Info("Destroying existing WhatsApp client...")
	h.session.Destroy()
	h.cancel()
}

func (c *SessionController) setReady(ready bool) {
	c.ready.Store(ready)
	c.metrics.SetSessionState(c.machine.state, ready)
}

func (c *SessionController) persist(state domain.SessionState) {
	if c.repo == nil {
		return
	}
	if err := c.repo.UpdateState(c.cfg.ClientID, state, time.Now()); err != nil {
		logrus.Warnf("Failed to persist session state %s: %v", state, err)
	}
}

func rejection(s signal) error {
	switch s.kind {
	case signalAuthFailure:
		return fmt.Errorf("%w: %s", domain.ErrAuthFailure, s.reason)
	case signalDisconnected:
		return fmt.Errorf("%w: %s", domain.ErrDisconnected, s.reason)
	case signalReadyTimeout:
		return domain.ErrReadyTimeout
	case signalInitFailed:
		if s.err != nil {
			return s.err
		}
		return domain.ErrInitialization
	}
	return fmt.Errorf("%w: %s", domain.ErrDisconnected, s.kind)
}

func reasonOf(s signal) string {
	switch {
	case s.reason != "":
		return s.reason
	case s.err != nil:
		return s.err.Error()
	}
	return s.kind.String()
}
