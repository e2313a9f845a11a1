package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/carelink/dispatch-api/internal/config"
	"github.com/carelink/dispatch-api/internal/model"
	"github.com/carelink/dispatch-api/internal/repository/postgres"
	notificationService "github.com/carelink/dispatch-api/internal/service/notification"
	"github.com/carelink/dispatch-api/pkg/logger"
	"github.com/carelink/dispatch-api/pkg/messaging"
	redisBroker "github.com/carelink/dispatch-api/pkg/messaging/redis"
)

// The worker tails the per-service dispatch channels and relays each
// event to the log stream professional dashboards consume. It is the
// subscriber side of the realtime fan-out; the API only publishes.

type envelope struct {
	Type    string              `json:"type"`
	Payload model.DispatchEvent `json:"payload"`
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	lg := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		lg.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redisBroker.NewRedisBroker(redisBroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &log.Logger)
	if err != nil {
		lg.Fatal(err, "failed to connect to redis")
	}
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services, err := postgres.NewCatalogRepository(db).ListServices(ctx)
	if err != nil {
		lg.Fatal(err, "failed to list services")
	}

	setupHealthCheck(lg)

	var wg sync.WaitGroup
	for _, svc := range services {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			tailChannel(ctx, broker, name, lg)
		}(svc.Name)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	lg.Info("shutting down")
	cancel()
	wg.Wait()
}

func tailChannel(ctx context.Context, broker messaging.Broker, serviceName string, lg *logger.Logger) {
	channel := notificationService.Channel(serviceName)
	events, err := broker.Subscribe(ctx, channel)
	if err != nil {
		lg.Error(err, "failed to subscribe", "channel", channel)
		return
	}

	lg.Info("tailing dispatch channel", "channel", channel)
	for raw := range events {
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			lg.Error(err, "malformed dispatch event", "channel", channel)
			continue
		}
		lg.Info("dispatch event",
			"channel", channel,
			"type", env.Type,
			"request_id", env.Payload.ReferenceID,
			"patient", env.Payload.PatientName,
		)
	}
}

func setupHealthCheck(lg *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			lg.Error(err, "health check server failed")
		}
	}()
}
