package whatsapp

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"whatsapp-checker/internal/domain"
	"whatsapp-checker/internal/ports/output"

	"github.com/sirupsen/logrus"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

const eventBufferSize = 32

// Compile-time checks
var (
	_ output.MessagingClient  = (*ClientAdapter)(nil)
	_ output.MessagingSession = (*Session)(nil)
)

// ClientAdapter struct - Output adapter creating whatsmeow sessions.
// Auth material lives in the whatsmeow device store; the session repository maps each
// identity label to its device.
type ClientAdapter struct {
	container *sqlstore.Container
	repo      output.SessionRepository
	log       waLog.Logger
}

// NewClientAdapter func - Creates the adapter on top of an open postgres connection and
// upgrades the device store schema
func NewClientAdapter(ctx context.Context, db *sql.DB, repo output.SessionRepository) (*ClientAdapter, error) {
	log := NewLogger("whatsmeow")
	container := sqlstore.NewWithDB(db, "postgres", log.Sub("Database"))
	if err := container.Upgrade(ctx); err != nil {
		return nil, fmt.Errorf("failed to upgrade whatsapp device store: %w", err)
	}
	return &ClientAdapter{
		container: container,
		repo:      repo,
		log:       log,
	}, nil
}

// NewSession - Creates a whatsmeow client for the identity label, reusing its stored device if any
func (a *ClientAdapter) NewSession(ctx context.Context, clientID string) (output.MessagingSession, error) {
	device, err := a.device(ctx, clientID)
	if err != nil {
		return nil, err
	}

	client := whatsmeow.NewClient(device, a.log.Sub("Client/"+clientID))
	// reconnection is owned by the session controller
	client.EnableAutoReconnect = false

	s := &Session{
		clientID: clientID,
		client:   client,
		repo:     a.repo,
		events:   make(chan domain.LifecycleEvent, eventBufferSize),
		closed:   make(chan struct{}),
	}
	s.handlerID = client.AddEventHandler(s.handleEvent)
	return s, nil
}

// ResetSession - Deletes the stored auth material of the identity label
func (a *ClientAdapter) ResetSession(ctx context.Context, clientID string) error {
	record, err := a.repo.GetSession(clientID)
	if err != nil {
		return err
	}
	if record != nil && record.DeviceJID != "" {
		jid, err := types.ParseJID(record.DeviceJID)
		if err != nil {
			return fmt.Errorf("invalid stored device jid %q: %w", record.DeviceJID, err)
		}
		device, err := a.container.GetDevice(ctx, jid)
		if err != nil {
			return fmt.Errorf("failed to load device %s: %w", jid, err)
		}
		if device != nil {
			if err := device.Delete(ctx); err != nil {
				return fmt.Errorf("failed to delete device %s: %w", jid, err)
			}
		}
	}
	logrus.Infof("Stored WhatsApp session for %q cleared", clientID)
	return a.repo.DeleteSession(clientID)
}

func (a *ClientAdapter) device(ctx context.Context, clientID string) (*store.Device, error) {
	record, err := a.repo.GetSession(clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session record: %w", err)
	}
	if record == nil || record.DeviceJID == "" {
		return a.container.NewDevice(), nil
	}

	jid, err := types.ParseJID(record.DeviceJID)
	if err != nil {
		logrus.Warnf("Ignoring invalid stored device jid %q: %v", record.DeviceJID, err)
		return a.container.NewDevice(), nil
	}
	device, err := a.container.GetDevice(ctx, jid)
	if err != nil {
		return nil, fmt.Errorf("failed to load device %s: %w", jid, err)
	}
	if device == nil {
		logrus.Warnf("Stored device %s for %q not found, pairing again", jid, clientID)
		return a.container.NewDevice(), nil
	}
	return device, nil
}

// Session struct - one whatsmeow client instance
type Session struct {
	clientID  string
	client    *whatsmeow.Client
	repo      output.SessionRepository
	handlerID uint32

	events    chan domain.LifecycleEvent
	closed    chan struct{}
	closeOnce sync.Once
}

// Connect - Connects the client. A fresh device gets a pairing channel first; a stored
// device reports authenticated right away and ready once the socket is up.
func (s *Session) Connect(ctx context.Context) error {
	if s.client.Store.ID == nil {
		qrChan, err := s.client.GetQRChannel(ctx)
		if err != nil {
			return fmt.Errorf("failed to open pairing channel: %w", err)
		}
		go s.forwardPairing(qrChan)
	} else {
		s.emit(domain.LifecycleEvent{Type: domain.LifecycleEventAuthenticated})
	}
	return s.client.Connect()
}

// Events - lifecycle events in emission order
func (s *Session) Events() <-chan domain.LifecycleEvent {
	return s.events
}

// IsFullyConnected - socket up and logged in
func (s *Session) IsFullyConnected() bool {
	return s.client.IsConnected() && s.client.IsLoggedIn()
}

// AccountID - user part of the paired account
func (s *Session) AccountID() string {
	if id := s.client.Store.ID; id != nil {
		return id.User
	}
	return ""
}

// IsRegistered - Checks the identifier with the WhatsApp usync query
func (s *Session) IsRegistered(ctx context.Context, identifier string) (bool, error) {
	responses, err := s.client.IsOnWhatsApp(ctx, []string{"+" + domain.UserPart(identifier)})
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrBackendQuery, err)
	}
	for _, r := range responses {
		if r.IsIn {
			return true, nil
		}
	}
	return false, nil
}

// SendText - Sends a plain text message
func (s *Session) SendText(ctx context.Context, identifier, text string) error {
	to := types.NewJID(domain.UserPart(identifier), types.DefaultUserServer)
	_, err := s.client.SendMessage(ctx, to, &waE2E.Message{
		Conversation: proto.String(text),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackendQuery, err)
	}
	return nil
}

// Destroy - Disconnects and detaches the client. Failures are logged, never returned.
func (s *Session) Destroy() {
	s.closeOnce.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				logrus.Errorf("Error destroying WhatsApp client: %v", r)
			}
		}()
		close(s.closed)
		s.client.RemoveEventHandler(s.handlerID)
		s.client.Disconnect()
		logrus.Info("Previous WhatsApp client destroyed")
	})
}

func (s *Session) handleEvent(evt interface{}) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("WhatsApp event handler recovered from panic: %v", r)
		}
	}()

	if pair, ok := evt.(*events.PairSuccess); ok {
		logrus.Infof("Paired as %s (%s)", pair.ID, pair.Platform)
		if err := s.repo.UpdateDevice(s.clientID, pair.ID.String()); err != nil {
			logrus.Errorf("Failed to store device for %q: %v", s.clientID, err)
		}
	}

	ev, ok := translateEvent(evt)
	if !ok {
		return
	}
	s.emit(ev)
}

func (s *Session) forwardPairing(qrChan <-chan whatsmeow.QRChannelItem) {
	for item := range qrChan {
		if ev, ok := translateQRItem(item); ok {
			s.emit(ev)
		}
	}
}

func (s *Session) emit(ev domain.LifecycleEvent) {
	select {
	case s.events <- ev:
	case <-s.closed:
	}
}
