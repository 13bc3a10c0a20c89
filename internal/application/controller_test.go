package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"whatsapp-checker/internal/adapters/output/memory"
	"whatsapp-checker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func testConfig() ControllerConfig {
	return ControllerConfig{
		ClientID:       "test",
		ReadyTimeout:   500 * time.Millisecond,
		WatchdogDelay:  50 * time.Millisecond,
		ReconnectDelay: 20 * time.Millisecond,
	}
}

// readyScript authenticates and readies every session
func readyScript(_ int, s *fakeSession) {
	s.connected.Store(true)
	s.emit(domain.LifecycleEventAuthenticated)
	s.emit(domain.LifecycleEventReady)
}

func newTestController(t *testing.T, client *fakeClient, cfg ControllerConfig) *SessionController {
	t.Helper()
	c := NewSessionController(client, memory.NewSessionRepository(), &fakePresenter{}, nil, cfg)
	t.Cleanup(c.Stop)
	return c
}

func startCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	t.Cleanup(cancel)
	return ctx
}

func TestControllerStartReachesReady(t *testing.T) {
	client := &fakeClient{script: readyScript}
	c := newTestController(t, client, testConfig())

	assert.False(t, c.IsReady())
	assert.Equal(t, domain.SessionStateUninitialized, c.State())

	require.NoError(t, c.Start(startCtx(t)))
	assert.True(t, c.IsReady())
	assert.Equal(t, domain.SessionStateReady, c.State())
	assert.NotNil(t, c.CurrentSession())

	status := c.Status()
	assert.Equal(t, "test", status.ClientID)
	assert.Equal(t, "593990000000", status.AccountID)
	assert.True(t, status.Ready)
	assert.Zero(t, status.ReconnectCount)
}

func TestControllerPairingShowsQR(t *testing.T) {
	presenter := &fakePresenter{}
	client := &fakeClient{script: func(_ int, s *fakeSession) {
		s.events <- domain.LifecycleEvent{Type: domain.LifecycleEventQR, QRCode: "2@first"}
		s.events <- domain.LifecycleEvent{Type: domain.LifecycleEventQR, QRCode: "2@second"}
		s.emit(domain.LifecycleEventAuthenticated)
		s.emit(domain.LifecycleEventReady)
	}}
	c := NewSessionController(client, nil, presenter, nil, testConfig())
	t.Cleanup(c.Stop)

	require.NoError(t, c.Start(startCtx(t)))
	assert.Equal(t, []string{"2@first", "2@second"}, presenter.shown())
	assert.True(t, c.IsReady())
}

func TestControllerWatchdogForcesReady(t *testing.T) {
	client := &fakeClient{script: func(_ int, s *fakeSession) {
		s.connected.Store(true)
		s.emit(domain.LifecycleEventAuthenticated)
	}}
	c := newTestController(t, client, testConfig())

	require.NoError(t, c.Start(startCtx(t)))
	assert.True(t, c.IsReady())
	assert.Equal(t, domain.SessionStateReady, c.State())
}

func TestControllerWatchdogWaitsWhileNotConnected(t *testing.T) {
	cfg := testConfig()
	cfg.ReadyTimeout = 200 * time.Millisecond
	client := &fakeClient{script: func(_ int, s *fakeSession) {
		s.emit(domain.LifecycleEventAuthenticated)
	}}
	c := newTestController(t, client, cfg)

	err := c.Start(startCtx(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrReadyTimeout))
	assert.False(t, c.IsReady())
	assert.Nil(t, c.CurrentSession())
	assert.True(t, client.session(1).destroyed.Load())
}

func TestControllerInitialTimeoutIsNotRetried(t *testing.T) {
	cfg := testConfig()
	cfg.ReadyTimeout = 100 * time.Millisecond
	client := &fakeClient{}
	c := newTestController(t, client, cfg)

	err := c.Start(startCtx(t))
	assert.True(t, errors.Is(err, domain.ErrReadyTimeout))

	time.Sleep(5 * cfg.ReconnectDelay)
	assert.Equal(t, 1, client.created())
	assert.False(t, c.IsReady())
	assert.Equal(t, domain.SessionStateDisconnected, c.State())
}

func TestControllerInitialDisconnectIsNotRetried(t *testing.T) {
	client := &fakeClient{script: func(_ int, s *fakeSession) {
		s.emitReason(domain.LifecycleEventDisconnected, "connection lost")
	}}
	c := newTestController(t, client, testConfig())

	err := c.Start(startCtx(t))
	assert.True(t, errors.Is(err, domain.ErrDisconnected))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, client.created())
	assert.False(t, c.IsReady())
}

func TestControllerAuthFailureIsTerminal(t *testing.T) {
	client := &fakeClient{script: func(_ int, s *fakeSession) {
		s.emitReason(domain.LifecycleEventAuthFailure, "logged out")
	}}
	c := newTestController(t, client, testConfig())

	err := c.Start(startCtx(t))
	assert.True(t, errors.Is(err, domain.ErrAuthFailure))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, domain.SessionStateAuthFailed, c.State())
	assert.Equal(t, 1, client.created())
	assert.False(t, c.IsReady())

	// late events do not leave the terminal state
	client.session(1).emit(domain.LifecycleEventReady)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, domain.SessionStateAuthFailed, c.State())
	assert.False(t, c.IsReady())
}

func TestControllerInitializationFailure(t *testing.T) {
	c := newTestController(t, &fakeClient{newErr: errBackend}, testConfig())

	err := c.Start(startCtx(t))
	assert.True(t, errors.Is(err, domain.ErrInitialization))
	assert.False(t, c.IsReady())
	assert.Equal(t, domain.SessionStateDisconnected, c.State())
}

func TestControllerConnectFailure(t *testing.T) {
	client := &fakeClient{connectErr: errBackend}
	c := newTestController(t, client, testConfig())

	err := c.Start(startCtx(t))
	assert.True(t, errors.Is(err, domain.ErrInitialization))
	assert.False(t, c.IsReady())
	assert.True(t, client.session(1).destroyed.Load())
}

func TestControllerDropAfterReadyReconnects(t *testing.T) {
	cfg := testConfig()
	cfg.ReconnectDelay = 200 * time.Millisecond
	client := &fakeClient{script: readyScript}
	c := newTestController(t, client, cfg)
	require.NoError(t, c.Start(startCtx(t)))

	client.session(1).emitReason(domain.LifecycleEventDisconnected, "connection lost")

	// readiness drops before the reconnection delay elapses
	assert.Eventually(t, func() bool { return !c.IsReady() }, 100*time.Millisecond, time.Millisecond)
	assert.Equal(t, 1, client.created())

	assert.Eventually(t, func() bool { return c.IsReady() }, waitFor, tick)
	assert.Equal(t, 2, client.created())
	assert.True(t, client.session(1).destroyed.Load())
	assert.Equal(t, int64(1), c.Status().ReconnectCount)
	assert.Same(t, client.session(2), c.CurrentSession())
}

func TestControllerDuplicateDisconnectSchedulesOneReconnect(t *testing.T) {
	cfg := testConfig()
	cfg.ReconnectDelay = 100 * time.Millisecond
	client := &fakeClient{script: readyScript}
	c := newTestController(t, client, cfg)
	require.NoError(t, c.Start(startCtx(t)))

	first := client.session(1)
	first.emitReason(domain.LifecycleEventDisconnected, "connection lost")
	first.emitReason(domain.LifecycleEventDisconnected, "stream replaced")

	assert.Eventually(t, func() bool { return c.IsReady() && client.created() == 2 }, waitFor, tick)
	time.Sleep(3 * cfg.ReconnectDelay)
	assert.Equal(t, 2, client.created())
	assert.Equal(t, int64(1), c.Status().ReconnectCount)
}

func TestControllerReconnectAttemptTimeoutRetries(t *testing.T) {
	cfg := testConfig()
	cfg.ReadyTimeout = 100 * time.Millisecond
	client := &fakeClient{script: func(n int, s *fakeSession) {
		// the first reconnection never becomes ready
		if n == 2 {
			return
		}
		readyScript(n, s)
	}}
	c := newTestController(t, client, cfg)
	require.NoError(t, c.Start(startCtx(t)))

	client.session(1).emit(domain.LifecycleEventDisconnected)

	assert.Eventually(t, func() bool { return c.IsReady() && client.created() == 3 }, waitFor, tick)
	assert.True(t, client.session(2).destroyed.Load())
	assert.Equal(t, int64(2), c.Status().ReconnectCount)
}

func TestControllerIgnoresStaleSessionEvents(t *testing.T) {
	cfg := testConfig()
	cfg.ReconnectDelay = 10 * time.Millisecond
	client := &fakeClient{script: readyScript}
	c := newTestController(t, client, cfg)
	require.NoError(t, c.Start(startCtx(t)))

	client.session(1).emit(domain.LifecycleEventDisconnected)
	assert.Eventually(t, func() bool { return c.IsReady() && client.created() == 2 }, waitFor, tick)

	// the replaced session is destroyed; its late events must not touch the new one
	select {
	case client.session(1).events <- domain.LifecycleEvent{Type: domain.LifecycleEventDisconnected}:
	default:
	}
	time.Sleep(50 * time.Millisecond)
	assert.True(t, c.IsReady())
	assert.Equal(t, 2, client.created())
}

func TestControllerReadyAndWatchdogSettleOnce(t *testing.T) {
	cfg := testConfig()
	cfg.WatchdogDelay = time.Millisecond
	repo := &countingRepo{SessionRepository: memory.NewSessionRepository()}
	client := &fakeClient{script: func(_ int, s *fakeSession) {
		s.connected.Store(true)
		s.emit(domain.LifecycleEventAuthenticated)
		time.Sleep(cfg.WatchdogDelay)
		s.emit(domain.LifecycleEventReady)
	}}
	c := NewSessionController(client, repo, nil, nil, cfg)
	t.Cleanup(c.Stop)

	require.NoError(t, c.Start(startCtx(t)))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), repo.readies.Load())
	assert.True(t, c.IsReady())
}

func TestControllerPersistsState(t *testing.T) {
	repo := memory.NewSessionRepository()
	client := &fakeClient{script: readyScript}
	c := NewSessionController(client, repo, nil, nil, testConfig())
	t.Cleanup(c.Stop)

	require.NoError(t, c.Start(startCtx(t)))

	record, err := repo.GetSession("test")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "ready", record.State)
	assert.NotNil(t, record.LastReadyAt)
}

func TestControllerStopDestroysSession(t *testing.T) {
	client := &fakeClient{script: readyScript}
	c := NewSessionController(client, nil, nil, nil, testConfig())

	require.NoError(t, c.Start(startCtx(t)))
	c.Stop()

	assert.False(t, c.IsReady())
	assert.Nil(t, c.CurrentSession())
	assert.True(t, client.session(1).destroyed.Load())

	err := c.Start(startCtx(t))
	assert.True(t, errors.Is(err, domain.ErrInitialization))
}

func TestControllerStopWithoutStart(t *testing.T) {
	c := NewSessionController(&fakeClient{}, nil, nil, nil, ControllerConfig{})
	c.Stop()
	c.Stop()
	assert.False(t, c.IsReady())
}
