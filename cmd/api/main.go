package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/carelink/dispatch-api/internal/config"
	"github.com/carelink/dispatch-api/internal/email"
	"github.com/carelink/dispatch-api/internal/filestore"
	"github.com/carelink/dispatch-api/internal/geocoding"
	authHandler "github.com/carelink/dispatch-api/internal/handler/auth"
	catalogHandler "github.com/carelink/dispatch-api/internal/handler/catalog"
	dispatchHandler "github.com/carelink/dispatch-api/internal/handler/dispatch"
	notificationHandler "github.com/carelink/dispatch-api/internal/handler/notification"
	patientHandler "github.com/carelink/dispatch-api/internal/handler/patient"
	professionalHandler "github.com/carelink/dispatch-api/internal/handler/professional"
	"github.com/carelink/dispatch-api/internal/middleware"
	"github.com/carelink/dispatch-api/internal/repository/postgres"
	"github.com/carelink/dispatch-api/internal/router"
	catalogService "github.com/carelink/dispatch-api/internal/service/catalog"
	dispatchService "github.com/carelink/dispatch-api/internal/service/dispatch"
	identityService "github.com/carelink/dispatch-api/internal/service/identity"
	notificationService "github.com/carelink/dispatch-api/internal/service/notification"
	patientService "github.com/carelink/dispatch-api/internal/service/patient"
	professionalService "github.com/carelink/dispatch-api/internal/service/professional"
	redisBroker "github.com/carelink/dispatch-api/pkg/messaging/redis"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Initialize message broker
	broker, err := redisBroker.NewRedisBroker(redisBroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer broker.Close()

	// Initialize file store
	files, err := filestore.NewLocalStore(cfg.Uploads.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize file store")
	}

	// Initialize repositories
	dispatchRepo := postgres.NewDispatchRepository(db)
	professionalRepo := postgres.NewProfessionalRepository(db)
	catalogRepo := postgres.NewCatalogRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	identityRepo := postgres.NewIdentityRepository(db)
	patientRepo := postgres.NewPatientRepository(db)

	// Initialize services
	registry := prometheus.NewRegistry()
	emailSvc := email.NewSMTPService(cfg.SMTP)
	notifSvc := notificationService.NewService(notificationRepo, emailSvc, broker, log.Logger)
	catalogSvc := catalogService.NewService(catalogRepo)
	professionalSvc := professionalService.NewService(professionalRepo, geocoding.Noop{}, log.Logger)
	identitySvc := identityService.NewService(identityRepo, professionalRepo, cfg.JWT)
	patientSvc := patientService.NewService(patientRepo)
	dispatchSvc := dispatchService.NewService(
		dispatchRepo,
		catalogRepo,
		notifSvc,
		files,
		dispatchService.NewMetrics(registry),
		log.Logger,
	)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(identitySvc)

	// Initialize handlers
	authH := authHandler.NewHandler(identitySvc)
	dispatchH := dispatchHandler.NewHandler(dispatchSvc)
	catalogH := catalogHandler.NewHandler(catalogSvc)
	professionalH := professionalHandler.NewHandler(professionalSvc)
	notificationH := notificationHandler.NewHandler(notifSvc)
	patientH := patientHandler.NewHandler(patientSvc)

	// Setup router
	r := router.NewRouter(
		authMiddleware,
		authH,
		dispatchH,
		catalogH,
		professionalH,
		notificationH,
		patientH,
		registry,
		router.Config{
			RateLimit:  rate.Limit(100),
			RateBurst:  200,
			CORSConfig: middleware.DefaultCORSConfig(),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
