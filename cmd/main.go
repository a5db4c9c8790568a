package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "awareness_bell/docs"
	"awareness_bell/internal/handlers"
	"awareness_bell/internal/logger"
	"awareness_bell/internal/metrics"
	"awareness_bell/internal/models"
	"awareness_bell/internal/notify"
	"awareness_bell/internal/quotes"
	"awareness_bell/internal/repository"
	"awareness_bell/internal/repository/db"
	"awareness_bell/internal/server"
	"awareness_bell/internal/service"

	"github.com/spf13/afero"
)

const shutdownTimeout = 10 * time.Second

// @title        Awareness Bell API
// @version      1.0
// @description  Quarter-hour bell with an hourly spoken quote.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := loadConfig()
	if err != nil {
		logger.Get(logger.Options{Level: logger.InfoLevel}).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.Log)
	defer func() { _ = log.Sync() }()

	sqlDB, err := db.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalw("failed to init sqlite", "path", cfg.DBPath, "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()
	repos := repository.NewRepository(sqlDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fs := afero.NewOsFs()
	m := metrics.New()
	hub := notify.NewHub(log)

	provider := loadQuotes(ctx, fs, cfg, log, hub)
	sink := buildSink(fs, cfg, log, hub)

	speech := service.NewSpeechWorker(service.SpeechDeps{
		Speaker:  sink,
		Events:   repos.EventRepo,
		Reporter: hub,
		Metrics:  m,
		Log:      log,
		Timeout:  cfg.SpeechTimeout,
	})
	controller := service.NewScheduleController(service.ControllerDeps{
		Sink:        sink,
		Quotes:      provider,
		Speech:      speech,
		Events:      repos.EventRepo,
		Reporter:    hub,
		Metrics:     m,
		Log:         log,
		ToneTimeout: cfg.ToneTimeout,
	})
	go speech.Run(ctx)
	go controller.Run(ctx)

	services := service.NewService(repos, service.Deps{
		Controller: controller,
		Quotes:     provider,
		Feed:       hub,
		Auth:       service.AuthConfig{SigningKey: signingKey(cfg, log), TokenTTL: cfg.TokenTTL},
	})

	if cfg.Autostart {
		if _, err := controller.Start(ctx); err != nil {
			log.Errorw("bell_autostart_failed", "err", err)
		}
	}

	apiHandler := handlers.NewHandler(services, log, m.Handler())
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	waitForShutdown(cancel, controller, srv, log)
}

// loadQuotes performs the initial load and starts the watcher. A failed
// load leaves the bank empty: tones still ring and each hourly quote
// reports the empty collection.
func loadQuotes(ctx context.Context, fs afero.Fs, cfg *settings, log *logger.Logger, hub *notify.Hub) *quotes.Provider {
	provider := quotes.NewProvider(fs, cfg.QuotesPath, log)
	if _, err := provider.Reload(); err != nil {
		log.Errorw("quotes_load_failed", "path", cfg.QuotesPath, "err", err)
		hub.Publish(notifyError(err))
	}
	if cfg.QuotesWatch {
		go func() {
			if err := provider.Watch(ctx); err != nil {
				log.Warnw("quotes_watch_disabled", "path", cfg.QuotesPath, "err", err)
			}
		}()
	}
	return provider
}

// buildSink constructs the audio adapters. Init failures are reported and
// retried on each use.
func buildSink(fs afero.Fs, cfg *settings, log *logger.Logger, hub *notify.Hub) *notify.Sink {
	tone, err := notify.NewTonePlayer(cfg.Tone, fs, nil)
	if err != nil {
		log.Warnw("tone_player_not_ready", "command", cfg.Tone.Command, "asset", cfg.Tone.Asset, "err", err)
		hub.Publish(notifyError(err))
	}
	voice, err := notify.NewSpeaker(cfg.Speech, nil)
	if err != nil {
		log.Warnw("speaker_not_ready", "command", cfg.Speech.Command, "err", err)
		hub.Publish(notifyError(err))
	}
	return &notify.Sink{Tone: tone, Voice: voice, Hub: hub}
}

func notifyError(err error) models.Notification {
	return models.Notification{Kind: models.NotificationError, Text: err.Error()}
}

// signingKey falls back to a random per-process key, which invalidates
// tokens on restart.
func signingKey(cfg *settings, log *logger.Logger) string {
	if cfg.SigningKey != "" {
		return cfg.SigningKey
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalw("failed to generate signing key", "err", err)
	}
	log.Warnw("auth.signing_key not set; using an ephemeral key")
	return hex.EncodeToString(buf)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		log.Infow("http_listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown blocks until SIGINT/SIGTERM, then stops the bell, the
// background workers and the HTTP server.
func waitForShutdown(cancel context.CancelFunc, controller *service.ScheduleController, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down...")

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if _, err := controller.Stop(ctx); err != nil {
		log.Errorw("bell_stop_failed", "err", err)
	}
	cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
