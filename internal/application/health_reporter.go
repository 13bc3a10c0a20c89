package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"whatsapp-checker/internal/domain"

	"github.com/sirupsen/logrus"
)

// Default reporter timings
const (
	DefaultHealthInterval     = time.Hour
	DefaultHealthInitialDelay = 60 * time.Second

	healthSendTimeout = 30 * time.Second
)

// HealthReporterConfig holds the liveness report settings
type HealthReporterConfig struct {
	SupportPhone string
	DomainSuffix string
	Interval     time.Duration
	InitialDelay time.Duration
}

// HealthReporter struct - periodically proves the ready session is alive by messaging the support phone.
// Sends go through the query queue so they never overlap a registration check.
type HealthReporter struct {
	sessions SessionSource
	queue    *QueryQueue
	cfg      HealthReporterConfig

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewHealthReporter func - Creates the health reporter
func NewHealthReporter(sessions SessionSource, queue *QueryQueue, cfg HealthReporterConfig) *HealthReporter {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultHealthInterval
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultHealthInitialDelay
	}
	return &HealthReporter{
		sessions: sessions,
		queue:    queue,
		cfg:      cfg,
		stop:     make(chan struct{}),
	}
}

// Start launches the report timer. Without a support phone the reporter stays off.
func (r *HealthReporter) Start() {
	if r.cfg.SupportPhone == "" {
		logrus.Warn("SUPPORT_PHONE not configured, health monitor disabled")
		return
	}
	logrus.Infof("Health monitor started: reporting every %v to %s", r.cfg.Interval, r.cfg.SupportPhone)

	r.wg.Add(1)
	go r.loop()
}

// Stop ends the report timer
func (r *HealthReporter) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
	r.wg.Wait()
	logrus.Info("Health monitor stopped")
}

func (r *HealthReporter) loop() {
	defer r.wg.Done()
	first := time.NewTimer(r.cfg.InitialDelay)
	defer first.Stop()
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-first.C:
			r.safeReport()
		case <-ticker.C:
			r.safeReport()
		}
	}
}

func (r *HealthReporter) safeReport() {
	defer func() {
		if rec := recover(); rec != nil {
			logrus.Errorf("Health check recovered from panic: %v", rec)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), healthSendTimeout)
	defer cancel()
	if err := r.Report(ctx); err != nil {
		logrus.Errorf("Failed to send health check: %v", err)
	}
}

// Report sends one liveness message if the session is ready. Skips return nil.
func (r *HealthReporter) Report(ctx context.Context) error {
	if !r.sessions.IsReady() || r.cfg.SupportPhone == "" {
		logrus.Info("Health check skipped: WhatsApp not ready or SUPPORT_PHONE not configured")
		return nil
	}

	report, err := Submit(ctx, r.queue, func(ctx context.Context) (*domain.HealthReport, error) {
		session := r.sessions.CurrentSession()
		if session == nil {
			return nil, domain.ErrSessionNotReady
		}
		report := r.compose(session.AccountID())
		if err := session.SendText(ctx, report.To, report.Text); err != nil {
			return nil, err
		}
		return report, nil
	})
	if err != nil {
		return err
	}
	logrus.Infof("Health check sent to %s - client: %s", r.cfg.SupportPhone, report.AccountID)
	return nil
}

func (r *HealthReporter) compose(accountID string) *domain.HealthReport {
	if accountID == "" {
		accountID = "unknown"
	}
	return &domain.HealthReport{
		To:        domain.UserPart(r.cfg.SupportPhone) + r.cfg.DomainSuffix,
		AccountID: accountID,
		Text:      fmt.Sprintf("✅ *WhatsApp Checker:*\n📱 *Client:* %s\n🟢 *Status:* Connected", accountID),
	}
}
