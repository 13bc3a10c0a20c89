package protocal

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"whatsapp-checker/configs"
	httpAdapter "whatsapp-checker/internal/adapters/input/http"
	"whatsapp-checker/internal/adapters/output/postgres"
	promAdapter "whatsapp-checker/internal/adapters/output/prometheus"
	"whatsapp-checker/internal/adapters/output/terminal"
	whatsappAdapter "whatsapp-checker/internal/adapters/output/whatsapp"
	"whatsapp-checker/internal/application"
	"whatsapp-checker/internal/domain"
	"whatsapp-checker/pkg/database_driver/gorm"
	"whatsapp-checker/pkg/logger"

	swagger "github.com/arsmn/fiber-swagger/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

type config struct {
	ENV          string `mapstructure:"env"`
	ResetSession bool
}

// ServeHTTP func
func ServeHTTP() error {
	var cfg config
	flag.StringVar(&cfg.ENV, "env", "", "the environment to use")
	flag.BoolVar(&cfg.ResetSession, "reset-session", false, "clear the stored WhatsApp session before starting")
	flag.Parse()
	configs.InitViper("./configs", cfg.ENV)
	conf := configs.GetViper()

	logCloser, err := logger.Init(logger.Config{Debug: conf.App.Debug, Dir: conf.Log.Dir})
	if err != nil {
		return err
	}
	defer logCloser.Close()
	logrus.Infof("Starting WhatsApp checker (%s)", conf.App.Env)

	dbConGorm, err := gorm.ConnectToPostgreSQL(
		conf.Postgres.Host,
		conf.Postgres.Port,
		conf.Postgres.Username,
		conf.Postgres.Password,
		conf.Postgres.DbName,
		conf.Postgres.SSLMode,
	)
	if err != nil {
		return err
	}
	defer gorm.DisconnectPostgres(dbConGorm)

	ctx := context.Background()

	// Wire up the hexagonal architecture layers
	// Output adapters
	sessionRepo, err := postgres.NewSessionRepository(dbConGorm.Postgres)
	if err != nil {
		return err
	}
	waClient, err := whatsappAdapter.NewClientAdapter(ctx, dbConGorm.SQL, sessionRepo)
	if err != nil {
		return err
	}
	if cfg.ResetSession {
		if err := waClient.ResetSession(ctx, conf.WhatsApp.ClientName); err != nil {
			return err
		}
	}
	metrics := promAdapter.NewMetrics("whatsapp_checker")

	// Application services (use cases)
	controller := application.NewSessionController(
		waClient,
		sessionRepo,
		terminal.NewQRPresenter(os.Stdout),
		metrics,
		application.ControllerConfig{
			ClientID:       conf.WhatsApp.ClientName,
			ReadyTimeout:   conf.WhatsApp.ReadyTimeout,
			WatchdogDelay:  conf.WhatsApp.WatchdogDelay,
			ReconnectDelay: conf.WhatsApp.ReconnectDelay,
		},
	)
	queue := application.NewQueryQueue(
		application.WithRateLimit(conf.WhatsApp.QueriesPerSecond),
		application.WithQueueMetrics(metrics),
	)
	normalizer := domain.PhoneNormalizer{
		CountryCode:  conf.WhatsApp.CountryCode,
		TrunkPrefix:  conf.WhatsApp.TrunkPrefix,
		DomainSuffix: conf.WhatsApp.DomainSuffix,
	}
	srv := application.NewWhatsAppCheckerService(controller, queue, normalizer, metrics)
	reporter := application.NewHealthReporter(controller, queue, application.HealthReporterConfig{
		SupportPhone: conf.Health.SupportPhone,
		DomainSuffix: conf.WhatsApp.DomainSuffix,
		Interval:     conf.Health.Interval(),
		InitialDelay: conf.Health.InitialDelay,
	})

	// Input adapter (HTTP handler)
	hdl := httpAdapter.New(srv, srv)

	app := fiber.New(fiber.Config{ErrorHandler: httpAdapter.ErrorHandler})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept,Authorization",
	}))
	if conf.API.Token == "" {
		logrus.Warn("API_TOKEN not configured, every protected request will be rejected")
	}
	app.Get("/swagger/*", swagger.HandlerDefault) // default
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	hdl.Register(app, conf.API.Token)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		logrus.Println("Gracefull shut down ...")
		reporter.Stop()
		queue.Close()
		controller.Stop()
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("Error when shutdown server: %v", err)
		}
	}()

	// the server answers 503 until the session is ready
	go func() {
		if err := controller.Start(ctx); err != nil {
			logrus.Errorf("Error initializing WhatsApp: %v", err)
		}
	}()
	reporter.Start()

	logrus.Println("Listening on port: ", conf.App.Port)
	return app.Listen(":" + conf.App.Port)
}
