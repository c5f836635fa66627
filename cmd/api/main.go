package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"

	"github.com/teamup-app/teamup-backend/config"
	"github.com/teamup-app/teamup-backend/internal/auth"
	"github.com/teamup-app/teamup-backend/internal/bootstrap"
	"github.com/teamup-app/teamup-backend/internal/logging"
	"github.com/teamup-app/teamup-backend/internal/monitoring"
	notifservice "github.com/teamup-app/teamup-backend/internal/notifications/service"
	"github.com/teamup-app/teamup-backend/internal/offline"
)

const serviceName = "teamup-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("development", "info").WithError(err).Fatal("invalid configuration")
	}

	log := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var app *firebase.App
	if cfg.Firebase.HasCredentials() {
		app, err = auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			log.WithError(err).Fatal("failed to initialize Firebase")
		}
	} else {
		log.Warn("Firebase credentials not set: authentication and push notifications are disabled")
	}

	verifier, err := bootstrap.NewVerifier(ctx, app)
	if err != nil {
		log.WithError(err).Error("failed to create identity client, rejecting all credentials")
	}

	gw, err := bootstrap.OpenStore(ctx, bootstrap.StoreOptions{Config: cfg.Store, Firebase: app})
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}
	defer gw.Close()
	log.WithField("backend", cfg.Store.Backend).Info("store ready")

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis.URL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}

	var cache offline.Store = offline.NewMemoryStore()
	if rdb != nil {
		defer rdb.Close()
		cache = offline.NewRedisStore(rdb)
		log.Info("offline cache backed by redis")
	}
	policy, err := offline.DefaultPolicy(cfg.Offline)
	if err != nil {
		log.WithError(err).Fatal("invalid offline cache policy")
	}
	transport := offline.NewTransport(http.DefaultTransport, policy, cache)

	sink, err := monitoring.NewFileSink(cfg.Monitoring.Dir)
	if err != nil {
		log.WithError(err).Fatal("failed to open monitoring sink")
	}
	retention := monitoring.NewRetentionScheduler(sink, cfg.Monitoring.RetentionDays, log)
	if err := retention.Start(); err != nil {
		log.WithError(err).Fatal("failed to schedule monitoring retention")
	}

	dispatcher := notifservice.NewDispatcher(bootstrap.MessagingConnector(app), gw, cfg.Server.PublicURL)

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Config:      cfg,
		Logger:      log,
		Store:       gw,
		Verifier:    verifier,
		Dispatcher:  dispatcher,
		Sink:        sink,
		Transport:   transport,
		Redis:       rdb,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}

	retention.Stop()
	transport.Wait()
}
