package application

import "whatsapp-checker/internal/domain"

// signalKind is an input of the session state machine
type signalKind int

const (
	signalStart signalKind = iota
	signalSessionCreated
	signalInitFailed
	signalQR
	signalAuthenticated
	signalReady
	signalWatchdog
	signalDisconnected
	signalAuthFailure
	signalReadyTimeout
	signalReconnectDue
)

var signalNames = map[signalKind]string{
	signalStart:          "start",
	signalSessionCreated: "session_created",
	signalInitFailed:     "init_failed",
	signalQR:             "qr",
	signalAuthenticated:  "authenticated",
	signalReady:          "ready",
	signalWatchdog:       "watchdog",
	signalDisconnected:   "disconnected",
	signalAuthFailure:    "auth_failure",
	signalReadyTimeout:   "ready_timeout",
	signalReconnectDue:   "reconnect_due",
}

func (k signalKind) String() string {
	return signalNames[k]
}

// effect is a side effect the controller loop performs after a transition
type effect int

const (
	effectInitialize effect = iota
	effectClearReady
	effectSetReady
	effectShowQR
	effectArmWatchdog
	effectScheduleReconnect
	effectReconnectPending
	effectRejectLatch
	effectDestroy
	effectCountReconnect
)

// machine is the state the transition function works on
type machine struct {
	state domain.SessionState
	// reconnecting is set while a reconnection is scheduled or in progress
	reconnecting bool
	// recoverable is set once a session reached ready; from then on drops are retried
	recoverable bool
}

// step is the transition function of the session lifecycle. It has no side effects;
// the returned effects are executed by the controller loop in order.
// A nil effect list with an unchanged machine means the signal is ignored.
func step(m machine, kind signalKind) (machine, []effect) {
	if m.state == domain.SessionStateAuthFailed && kind != signalStart {
		return m, nil
	}

	switch kind {
	case signalStart:
		return machine{state: domain.SessionStateInitializing}, []effect{effectClearReady, effectInitialize}

	case signalSessionCreated:
		if m.state != domain.SessionStateInitializing && m.state != domain.SessionStateReconnecting {
			return m, nil
		}
		m.state = domain.SessionStateInitializing
		return m, []effect{}

	case signalQR:
		if !pending(m.state) {
			return m, nil
		}
		m.state = domain.SessionStateAwaitingPairing
		m.reconnecting = false
		return m, []effect{effectClearReady, effectShowQR}

	case signalAuthenticated:
		if m.state != domain.SessionStateInitializing && m.state != domain.SessionStateAwaitingPairing {
			return m, nil
		}
		m.state = domain.SessionStateAuthenticating
		return m, []effect{effectArmWatchdog}

	case signalReady, signalWatchdog:
		if !pending(m.state) {
			return m, nil
		}
		m.state = domain.SessionStateReady
		m.reconnecting = false
		m.recoverable = true
		return m, []effect{effectSetReady}

	case signalDisconnected:
		switch {
		case m.state == domain.SessionStateDisconnected && m.reconnecting:
			return m, []effect{effectReconnectPending}
		case m.state != domain.SessionStateReady && !pending(m.state):
			return m, nil
		}
		m.state = domain.SessionStateDisconnected
		if !m.recoverable {
			return m, []effect{effectClearReady, effectRejectLatch, effectDestroy}
		}
		// a drop while ready, or a reconnection attempt that dropped before ready
		m.reconnecting = true
		return m, []effect{effectClearReady, effectRejectLatch, effectScheduleReconnect}

	case signalAuthFailure:
		m.state = domain.SessionStateAuthFailed
		m.reconnecting = false
		return m, []effect{effectClearReady, effectRejectLatch}

	case signalReadyTimeout, signalInitFailed:
		if !pending(m.state) && m.state != domain.SessionStateReconnecting {
			return m, nil
		}
		m.state = domain.SessionStateDisconnected
		if !m.recoverable {
			return m, []effect{effectClearReady, effectRejectLatch, effectDestroy}
		}
		m.reconnecting = true
		return m, []effect{effectClearReady, effectRejectLatch, effectDestroy, effectScheduleReconnect}

	case signalReconnectDue:
		if m.state != domain.SessionStateDisconnected {
			m.reconnecting = false
			return m, nil
		}
		m.state = domain.SessionStateReconnecting
		return m, []effect{effectCountReconnect, effectInitialize}
	}

	return m, nil
}

// pending reports whether a session exists that has not reached ready yet
func pending(s domain.SessionState) bool {
	return s == domain.SessionStateInitializing ||
		s == domain.SessionStateAwaitingPairing ||
		s == domain.SessionStateAuthenticating
}
