package whatsapp

import (
	"fmt"

	"whatsapp-checker/internal/domain"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types/events"
)

// translateEvent maps a whatsmeow event onto a lifecycle event. Events that do not
// affect the session lifecycle return false.
func translateEvent(evt interface{}) (domain.LifecycleEvent, bool) {
	switch v := evt.(type) {
	case *events.PairSuccess:
		return domain.LifecycleEvent{Type: domain.LifecycleEventAuthenticated}, true
	case *events.Connected:
		return domain.LifecycleEvent{Type: domain.LifecycleEventReady}, true
	case *events.Disconnected:
		return disconnected("connection lost"), true
	case *events.StreamReplaced:
		return disconnected("stream replaced by another client"), true
	case *events.ConnectFailure:
		if v.Reason.IsLoggedOut() {
			return authFailure(fmt.Sprintf("connect failure: %s", v.Reason)), true
		}
		return disconnected(fmt.Sprintf("connect failure: %s %s", v.Reason, v.Message)), true
	case *events.LoggedOut:
		return authFailure(fmt.Sprintf("logged out: %s", v.Reason)), true
	case *events.PairError:
		return authFailure(fmt.Sprintf("pairing failed: %v", v.Error)), true
	case *events.ClientOutdated:
		return authFailure("client outdated"), true
	case *events.TemporaryBan:
		return authFailure(fmt.Sprintf("temporary ban: %s", v.String())), true
	}
	return domain.LifecycleEvent{}, false
}

// translateQRItem maps one item of the pairing channel onto a lifecycle event
func translateQRItem(item whatsmeow.QRChannelItem) (domain.LifecycleEvent, bool) {
	switch item.Event {
	case whatsmeow.QRChannelEventCode:
		return domain.LifecycleEvent{Type: domain.LifecycleEventQR, QRCode: item.Code}, true
	case whatsmeow.QRChannelSuccess.Event:
		// PairSuccess reports the authentication
		return domain.LifecycleEvent{}, false
	case whatsmeow.QRChannelTimeout.Event:
		return disconnected("pairing timed out"), true
	case whatsmeow.QRChannelEventError:
		return disconnected(fmt.Sprintf("pairing error: %v", item.Error)), true
	}
	return authFailure(fmt.Sprintf("pairing rejected: %s", item.Event)), true
}

func disconnected(reason string) domain.LifecycleEvent {
	return domain.LifecycleEvent{Type: domain.LifecycleEventDisconnected, Reason: reason}
}

func authFailure(reason string) domain.LifecycleEvent {
	return domain.LifecycleEvent{Type: domain.LifecycleEventAuthFailure, Reason: reason}
}
