package postgres

import (
	"errors"
	"time"

	"whatsapp-checker/internal/domain"
	"whatsapp-checker/internal/ports/output"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ output.SessionRepository = (*SessionRepository)(nil)

// SessionRepository struct - Secondary/Driven adapter for PostgreSQL
type SessionRepository struct {
	dbGorm *gorm.DB
}

// NewSessionRepository func - Creates new PostgreSQL repository and migrates its table
func NewSessionRepository(dbGorm *gorm.DB) (*SessionRepository, error) {
	logrus.Info("Migrate database ...")
	if err := domain.MigrateDatabase(dbGorm); err != nil {
		return nil, err
	}
	return &SessionRepository{
		dbGorm: dbGorm,
	}, nil
}

// GetSession func - Loads the record of an identity label
func (p *SessionRepository) GetSession(clientID string) (*domain.SessionRecord, error) {
	var record domain.SessionRecord
	err := p.dbGorm.Where("client_id = ?", clientID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		logrus.Errorln(err)
		return nil, err
	}
	return &record, nil
}

// UpdateDevice func - Upserts the device jid of an identity label
func (p *SessionRepository) UpdateDevice(clientID, deviceJID string) error {
	record := domain.SessionRecord{
		ClientID:  clientID,
		DeviceJID: deviceJID,
		State:     domain.SessionStateAuthenticating.String(),
	}
	err := p.dbGorm.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"device_jid", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		logrus.Errorln(err)
	}
	return err
}

// UpdateState func - Upserts the last lifecycle state of an identity label
func (p *SessionRepository) UpdateState(clientID string, state domain.SessionState, at time.Time) error {
	record := domain.SessionRecord{
		ClientID: clientID,
		State:    state.String(),
	}
	columns := []string{"state", "updated_at"}
	if state == domain.SessionStateReady {
		record.LastReadyAt = &at
		columns = append(columns, "last_ready_at")
	}
	err := p.dbGorm.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&record).Error
	if err != nil {
		logrus.Errorln(err)
	}
	return err
}

// DeleteSession func - Removes the record of an identity label
func (p *SessionRepository) DeleteSession(clientID string) error {
	err := p.dbGorm.Where("client_id = ?", clientID).Delete(&domain.SessionRecord{}).Error
	if err != nil {
		logrus.Errorln(err)
	}
	return err
}
