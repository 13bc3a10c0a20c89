package memory

import (
	"sync"
	"time"

	"whatsapp-checker/internal/domain"
	"whatsapp-checker/internal/ports/output"
)

// Compile-time check to ensure SessionRepository implements output.SessionRepository
var _ output.SessionRepository = (*SessionRepository)(nil)

// SessionRepository struct - Output adapter for in-memory session records.
// Uses sync.Map for concurrent access; records are copied in and out.
type SessionRepository struct {
	records sync.Map
	mu      sync.Mutex
}

// NewSessionRepository creates an empty in-memory repository
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{}
}

// GetSession returns a copy of the record, or nil if the label is unknown
func (m *SessionRepository) GetSession(clientID string) (*domain.SessionRecord, error) {
	value, exists := m.records.Load(clientID)
	if !exists {
		return nil, nil
	}
	record, ok := value.(domain.SessionRecord)
	if !ok {
		// malformed entry
		m.records.Delete(clientID)
		return nil, nil
	}
	return &record, nil
}

// UpdateDevice stores the device jid, creating the record if needed
func (m *SessionRepository) UpdateDevice(clientID, deviceJID string) error {
	m.update(clientID, func(r *domain.SessionRecord) {
		r.DeviceJID = deviceJID
	})
	return nil
}

// UpdateState stores the state, and the ready time when the state is ready
func (m *SessionRepository) UpdateState(clientID string, state domain.SessionState, at time.Time) error {
	m.update(clientID, func(r *domain.SessionRecord) {
		r.State = state.String()
		if state == domain.SessionStateReady {
			readyAt := at
			r.LastReadyAt = &readyAt
		}
	})
	return nil
}

// DeleteSession removes the record. This operation is idempotent.
func (m *SessionRepository) DeleteSession(clientID string) error {
	m.records.Delete(clientID)
	return nil
}

func (m *SessionRepository) update(clientID string, mutate func(*domain.SessionRecord)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	record := domain.SessionRecord{ClientID: clientID, State: domain.SessionStateUninitialized.String(), CreatedAt: now}
	if value, ok := m.records.Load(clientID); ok {
		if existing, ok := value.(domain.SessionRecord); ok {
			record = existing
		}
	}
	mutate(&record)
	record.UpdatedAt = now
	m.records.Store(clientID, record)
}
