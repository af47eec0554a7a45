package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	"arbpair/internal/config"
	"arbpair/internal/cooldown"
	"arbpair/internal/engine"
	"arbpair/internal/kv"
	"arbpair/internal/logging"
	"arbpair/internal/provider"
	"arbpair/internal/queue"
	"arbpair/internal/reconcile"
	"arbpair/internal/resultsapi"
	"arbpair/internal/session"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil && cfg == nil {
		panic(err)
	}

	workerID := "worker-" + uuid.NewString()[:8]
	l := logging.New(cfg.Logging.Level, cfg.Logging.Format).With("worker_id", workerID)
	slog.SetDefault(l)

	if err != nil {
		slog.Warn("Could not get `config.yaml` file. Will run with default values")
	}

	// The cooldown window is part of the contract with the upstream
	// scheduler; a deploy cannot shorten it.
	if v := os.Getenv("COOLDOWN_SECONDS"); v != "" {
		if n, convErr := strconv.Atoi(v); convErr != nil || n != cooldown.Seconds {
			slog.Warn("COOLDOWN_SECONDS ignored, window is fixed", "requested", v, "seconds", cooldown.Seconds)
		}
	}

	store, err := kv.Open(cfg.Redis.URL)
	if err != nil {
		slog.Error("kv.open", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelPing()
	if err := store.Ping(pingCtx); err != nil {
		slog.Error("kv.ping", "url", cfg.Redis.URL, "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(logging.WithLogger(context.Background(), l))
	defer cancel()

	cooldowns := cooldown.NewRegistry(store, nil)
	if err := cooldowns.Load(ctx); err != nil {
		slog.Error("cooldown.load", "err", err)
		os.Exit(1)
	}

	sessions := session.NewMemory(cfg.Sessions.Accounts...)
	gateway := provider.SerializePerAccount(provider.NewSimulator(nil))
	reporter := resultsapi.New(cfg.API.URL, cfg.API.TokenSecret, workerID)
	recorder := reconcile.NewRecorder(store, reporter, nil, cfg.Exposure.Cap)

	eng := engine.New(engine.Options{
		Store:        store,
		Gateway:      gateway,
		Sink:         reporter,
		Cooldowns:    cooldowns,
		Sessions:     sessions,
		Exposures:    recorder,
		PlaceTimeout: time.Duration(cfg.Provider.PlaceTimeoutSeconds) * time.Second,
	})

	consumer := queue.NewConsumer(store.Client(), cfg.Queue.Name, eng)

	// The reporter outlives the work context so events emitted by draining
	// watchers still reach the API.
	reporterCtx, stopReporter := context.WithCancel(logging.WithLogger(context.Background(), l))
	reporterDone := make(chan struct{})
	go func() {
		defer close(reporterDone)
		reporter.Run(reporterCtx)
	}()

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		consumer.Run(ctx)
	}()

	slog.Info("worker.started", "queue", cfg.Queue.Name, "accounts", sessions.Count(), "cooldowns", cooldowns.Len())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("worker.shutting_down")
	cancel()
	<-consumerDone
	eng.Wait()
	stopReporter()
	<-reporterDone
	slog.Info("worker.stopped")
}
