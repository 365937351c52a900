package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jefersonOS/barber-pro/internal/agent"
	"github.com/jefersonOS/barber-pro/internal/config"
	"github.com/jefersonOS/barber-pro/internal/email"
	agenttoolsHandler "github.com/jefersonOS/barber-pro/internal/handler/agenttools"
	appointmentHandler "github.com/jefersonOS/barber-pro/internal/handler/appointment"
	authHandler "github.com/jefersonOS/barber-pro/internal/handler/auth"
	catalogHandler "github.com/jefersonOS/barber-pro/internal/handler/catalog"
	healthHandler "github.com/jefersonOS/barber-pro/internal/handler/health"
	internalHandler "github.com/jefersonOS/barber-pro/internal/handler/internalapi"
	paymentHandler "github.com/jefersonOS/barber-pro/internal/handler/payment"
	prometheusHandler "github.com/jefersonOS/barber-pro/internal/handler/prometheus"
	"github.com/jefersonOS/barber-pro/internal/middleware"
	"github.com/jefersonOS/barber-pro/internal/repository/postgres"
	"github.com/jefersonOS/barber-pro/internal/router"
	authService "github.com/jefersonOS/barber-pro/internal/service/auth"
	availabilityService "github.com/jefersonOS/barber-pro/internal/service/availability"
	bookingService "github.com/jefersonOS/barber-pro/internal/service/booking"
	catalogService "github.com/jefersonOS/barber-pro/internal/service/catalog"
	lifecycleService "github.com/jefersonOS/barber-pro/internal/service/lifecycle"
	paymentService "github.com/jefersonOS/barber-pro/internal/service/payment"
	"github.com/jefersonOS/barber-pro/internal/whatsapp"
	"github.com/jefersonOS/barber-pro/pkg/auth"
	"github.com/jefersonOS/barber-pro/pkg/logger"
	"github.com/jefersonOS/barber-pro/pkg/metrics"
	"github.com/jefersonOS/barber-pro/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.NewLogger(&logger.Config{
		Level:      logger.InfoLevel,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	orgRepo := postgres.NewOrganizationRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)
	professionalRepo := postgres.NewProfessionalRepository(db)
	unitRepo := postgres.NewUnitRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	userRepo := postgres.NewUserRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	m := metrics.NewMetrics("barberpro", "api")

	// Outbound integrations
	stripeProvider := paymentService.NewStripeProvider(
		cfg.Stripe.SecretKey,
		cfg.Stripe.SuccessURL,
		cfg.Stripe.CancelURL,
	)
	whatsappClient := whatsapp.NewClient(cfg.WhatsApp.BaseURL, cfg.WhatsApp.APIKey, l)
	emailSvc := email.NewService(email.Config{
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
	})

	// Services
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	hasher := security.NewBcryptHasher(0)
	authSvc := authService.NewService(userRepo, jwtSvc, hasher)
	catalogSvc := catalogService.NewService(serviceRepo, professionalRepo, unitRepo)
	availabilitySvc := availabilityService.NewService(appointmentRepo, serviceRepo, orgRepo)
	bookingSvc := bookingService.NewService(appointmentRepo, outboxRepo, l, m)
	lifecycleSvc := lifecycleService.NewService(appointmentRepo, outboxRepo, l, m)
	paymentSvc := paymentService.NewService(
		appointmentRepo,
		paymentRepo,
		serviceRepo,
		orgRepo,
		outboxRepo,
		stripeProvider,
		whatsappClient,
		emailSvc,
		l,
		m,
	)
	dispatcher := agent.NewDispatcher(catalogSvc, availabilitySvc, bookingSvc, lifecycleSvc, paymentSvc)

	// Handlers
	authMW := middleware.NewAuthMiddleware(jwtSvc)
	metricsH := prometheusHandler.New()
	r := router.NewRouter(
		l,
		authMW,
		healthHandler.NewHandler(db),
		authHandler.NewHandler(authSvc),
		catalogHandler.NewHandler(catalogSvc),
		appointmentHandler.NewHandler(availabilitySvc, bookingSvc, lifecycleSvc),
		paymentHandler.NewHandler(paymentSvc, cfg.Stripe.WebhookSecret, cfg.Stripe.WebhookTolerance, l),
		internalHandler.NewHandler(lifecycleSvc, cfg.Internal.CronSecret),
		agenttoolsHandler.NewHandler(dispatcher, orgRepo, cfg.Internal.AgentSecret),
		metricsH,
		router.Config{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			RequestTimeout:   cfg.Server.RequestTimeout,
			CORS:             middleware.DefaultCORSConfig(),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		l.Info("starting api server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down api server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.Error(err, "forced shutdown")
	}
}
