package whatsapp

import (
	"errors"
	"testing"

	"whatsapp-checker/internal/domain"

	"github.com/stretchr/testify/assert"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types/events"
)

func TestTranslateEvent(t *testing.T) {
	tests := []struct {
		name string
		evt  interface{}
		want domain.LifecycleEventType
	}{
		{name: "paired", evt: &events.PairSuccess{}, want: domain.LifecycleEventAuthenticated},
		{name: "connected", evt: &events.Connected{}, want: domain.LifecycleEventReady},
		{name: "disconnected", evt: &events.Disconnected{}, want: domain.LifecycleEventDisconnected},
		{name: "stream replaced", evt: &events.StreamReplaced{}, want: domain.LifecycleEventDisconnected},
		{name: "connect failure", evt: &events.ConnectFailure{Reason: events.ConnectFailureGeneric}, want: domain.LifecycleEventDisconnected},
		{name: "connect failure logged out", evt: &events.ConnectFailure{Reason: events.ConnectFailureLoggedOut}, want: domain.LifecycleEventAuthFailure},
		{name: "logged out", evt: &events.LoggedOut{}, want: domain.LifecycleEventAuthFailure},
		{name: "pair error", evt: &events.PairError{Error: errors.New("bad")}, want: domain.LifecycleEventAuthFailure},
		{name: "client outdated", evt: &events.ClientOutdated{}, want: domain.LifecycleEventAuthFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := translateEvent(tt.evt)
			assert.True(t, ok)
			assert.Equal(t, tt.want, ev.Type)
		})
	}
}

func TestTranslateEventIgnoresUnrelated(t *testing.T) {
	_, ok := translateEvent(&events.Message{})
	assert.False(t, ok)
	_, ok = translateEvent(&events.Receipt{})
	assert.False(t, ok)
}

func TestTranslateQRItem(t *testing.T) {
	ev, ok := translateQRItem(whatsmeow.QRChannelItem{Event: whatsmeow.QRChannelEventCode, Code: "2@abc"})
	assert.True(t, ok)
	assert.Equal(t, domain.LifecycleEventQR, ev.Type)
	assert.Equal(t, "2@abc", ev.QRCode)

	_, ok = translateQRItem(whatsmeow.QRChannelSuccess)
	assert.False(t, ok)

	ev, ok = translateQRItem(whatsmeow.QRChannelTimeout)
	assert.True(t, ok)
	assert.Equal(t, domain.LifecycleEventDisconnected, ev.Type)

	ev, ok = translateQRItem(whatsmeow.QRChannelItem{Event: whatsmeow.QRChannelEventError, Error: errors.New("socket closed")})
	assert.True(t, ok)
	assert.Equal(t, domain.LifecycleEventDisconnected, ev.Type)
	assert.Contains(t, ev.Reason, "socket closed")

	ev, ok = translateQRItem(whatsmeow.QRChannelClientOutdated)
	assert.True(t, ok)
	assert.Equal(t, domain.LifecycleEventAuthFailure, ev.Type)
}
