package application

import (
	"context"
	"errors"
	"time"

	"whatsapp-checker/internal/domain"
	"whatsapp-checker/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// SessionSource is the capability the use cases need from the lifecycle controller
type SessionSource interface {
	IsReady() bool
	CurrentSession() output.MessagingSession
	Status() domain.SessionStatus
}

// WhatsAppCheckerService struct - Application service implementing the registration check use case
type WhatsAppCheckerService struct {
	sessions   SessionSource
	queue      *QueryQueue
	normalizer domain.PhoneNormalizer
	metrics    output.Metrics
}

// NewWhatsAppCheckerService func - Creates new checker service
func NewWhatsAppCheckerService(sessions SessionSource, queue *QueryQueue, normalizer domain.PhoneNormalizer, metrics output.Metrics) *WhatsAppCheckerService {
	if metrics == nil {
		metrics = output.NopMetrics{}
	}
	return &WhatsAppCheckerService{
		sessions:   sessions,
		queue:      queue,
		normalizer: normalizer,
		metrics:    metrics,
	}
}

// CheckNumber func - Use case: check whether a phone number has a WhatsApp account
func (s *WhatsAppCheckerService) CheckNumber(ctx context.Context, request domain.CheckRequest) (*domain.CheckResult, error) {
	if !s.sessions.IsReady() {
		s.metrics.ObserveQuery("unready")
		return nil, domain.ErrSessionNotReady
	}

	query := domain.NewQuery(request.PhoneNumber, s.normalizer.Normalize(request.PhoneNumber))
	log := logrus.WithField("query_id", query.ID.String())
	log.Infof("Checking number: %s", query.Identifier)

	registered, err := Submit(ctx, s.queue, func(ctx context.Context) (bool, error) {
		session := s.sessions.CurrentSession()
		if session == nil {
			return false, domain.ErrSessionNotReady
		}
		return session.IsRegistered(ctx, query.Identifier)
	})
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotReady) {
			s.metrics.ObserveQuery("unready")
		} else {
			s.metrics.ObserveQuery("error")
		}
		log.Errorf("Failed to check number %s: %v", query.Identifier, err)
		return nil, err
	}

	if registered {
		s.metrics.ObserveQuery("registered")
	} else {
		s.metrics.ObserveQuery("not_registered")
	}
	log.Infof("Number %s registered=%t (waited %v)", query.Identifier, registered, time.Since(query.EnqueuedAt))

	return &domain.CheckResult{
		Verification: registered,
		PhoneNumber:  query.PhoneNumber,
		Identifier:   query.Identifier,
		Timestamp:    time.Now(),
	}, nil
}

// IsReady func - reports the session readiness flag
func (s *WhatsAppCheckerService) IsReady() bool {
	return s.sessions.IsReady()
}

// Status func - session diagnostics including the queue
func (s *WhatsAppCheckerService) Status() domain.SessionStatus {
	status := s.sessions.Status()
	status.QueueWaiting = s.queue.Size()
	status.QueueInFlight = s.queue.Pending()
	return status
}
