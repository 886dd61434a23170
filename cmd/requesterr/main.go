package main

import (
	"context"
	"encoding/hex"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/requesterr/requesterr/internal/api"
	"github.com/requesterr/requesterr/internal/config"
	"github.com/requesterr/requesterr/internal/crypto"
	"github.com/requesterr/requesterr/internal/database"
	"github.com/requesterr/requesterr/internal/database/sqlc"
	"github.com/requesterr/requesterr/internal/health"
	"github.com/requesterr/requesterr/internal/indexer"
	"github.com/requesterr/requesterr/internal/logger"
	"github.com/requesterr/requesterr/internal/notification"
	"github.com/requesterr/requesterr/internal/notification/webhook"
	"github.com/requesterr/requesterr/internal/reconcile"
	"github.com/requesterr/requesterr/internal/requests"
	"github.com/requesterr/requesterr/internal/scheduler"
	"github.com/requesterr/requesterr/internal/scheduler/tasks"
	"github.com/requesterr/requesterr/internal/services"
	"github.com/requesterr/requesterr/internal/synclock"
	"github.com/requesterr/requesterr/internal/watchlist"
	"github.com/requesterr/requesterr/internal/watchlist/plex"
	"github.com/requesterr/requesterr/internal/watchlist/trakt"
	"github.com/requesterr/requesterr/internal/websocket"
)

const (
	secretKeySetting  = "secret_key"
	secretSaltSetting = "secret_salt"

	webhookURLSetting        = "notify_webhook_url"
	traktClientIDSetting     = "trakt_client_id"
	traktClientSecretSetting = "trakt_client_secret"
)

func main() {
	// A missing .env is fine; it only exists in dev setups.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer log.Close()

	log.Info().
		Str("version", config.Version).
		Str("logLevel", cfg.Logging.Level).
		Msg("starting Requesterr")

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	log.Info().Msg("running database migrations")
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	queries := sqlc.New(db.Conn())
	ctx := context.Background()

	secrets, err := buildSecretStore(ctx, cfg, queries)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize secret store")
	}

	hub := websocket.NewHub()
	go hub.Run()

	directory := services.NewDirectory(queries, secrets, log.Logger)

	healthSvc := health.NewService(log.Logger)
	healthSvc.SetBroadcaster(hub)

	dispatcher := notification.NewDispatcher(log.Logger)
	registerNotifiers(ctx, dispatcher, queries, log.Logger)

	requestsSvc := requests.NewService(db.Conn(), log.Logger)
	requestsSvc.SetBroadcaster(requests.NewEventBroadcaster(hub))
	requestsSvc.SetDispatcher(dispatcher)

	lock := synclock.New(queries, reconcile.LockName, cfg.Sync.LockLease, log.Logger)
	engine := reconcile.NewEngine(cfg.Sync, directory, requestsSvc, lock, healthSvc, log.Logger)

	httpClient := &http.Client{Timeout: 30 * time.Second}
	plexClient := plex.NewClient(httpClient, log.Logger, config.Version)
	traktClient := buildTraktClient(ctx, queries, httpClient, log.Logger)
	importer := watchlist.NewImporter(queries, directory, requestsSvc, engine, plexClient, traktClient, healthSvc, log.Logger)

	indexerSvc := indexer.NewService(directory, log.Logger)

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}
	if err := tasks.RegisterRequestSyncTask(sched, engine, &cfg.Sync); err != nil {
		log.Fatal().Err(err).Msg("failed to register request sync task")
	}
	if err := tasks.RegisterWatchlistImportTask(sched, importer, &cfg.Watchlist); err != nil {
		log.Fatal().Err(err).Msg("failed to register watchlist import task")
	}
	sched.Start()

	server := api.NewServer(api.Deps{
		Requests:  requestsSvc,
		Engine:    engine,
		Directory: directory,
		Indexer:   indexerSvc,
		Health:    healthSvc,
		Scheduler: sched,
		Hub:       hub,
	}, cfg, log.Logger)

	go func() {
		addr := cfg.Server.Address()
		log.Info().Str("address", addr).Msg("HTTP server listening")
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	if err := sched.Stop(); err != nil {
		log.Warn().Err(err).Msg("scheduler shutdown failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("server shutdown failed")
	}

	log.Info().Msg("shutdown complete")
}

// buildSecretStore derives the credential encryption key. The passphrase
// comes from config when set; otherwise one is generated on first run and
// persisted so existing encrypted values stay readable across restarts.
// The salt always lives in the settings table next to the data it protects.
func buildSecretStore(ctx context.Context, cfg *config.Config, queries *sqlc.Queries) (*crypto.SecretStore, error) {
	passphrase := cfg.Secrets.Key
	if passphrase == "" {
		setting, err := queries.GetSetting(ctx, secretKeySetting)
		if err == nil && setting.Value != "" {
			passphrase = setting.Value
		} else {
			raw, err := crypto.GenerateSalt()
			if err != nil {
				return nil, err
			}
			passphrase = hex.EncodeToString(raw)
			if err := queries.UpsertSetting(ctx, sqlc.UpsertSettingParams{Key: secretKeySetting, Value: passphrase}); err != nil {
				return nil, err
			}
		}
	}

	var salt []byte
	setting, err := queries.GetSetting(ctx, secretSaltSetting)
	if err == nil && setting.Value != "" {
		salt, err = hex.DecodeString(setting.Value)
		if err != nil {
			return nil, err
		}
	} else {
		salt, err = crypto.GenerateSalt()
		if err != nil {
			return nil, err
		}
		if err := queries.UpsertSetting(ctx, sqlc.UpsertSettingParams{Key: secretSaltSetting, Value: hex.EncodeToString(salt)}); err != nil {
			return nil, err
		}
	}

	return crypto.NewSecretStore(passphrase, salt), nil
}

// registerNotifiers wires configured notification targets into the
// dispatcher. Only the outbound webhook is configurable today.
func registerNotifiers(ctx context.Context, dispatcher *notification.Dispatcher, queries *sqlc.Queries, log zerolog.Logger) {
	setting, err := queries.GetSetting(ctx, webhookURLSetting)
	if err != nil || setting.Value == "" {
		return
	}
	notifier := webhook.New("webhook", webhook.Settings{URL: setting.Value}, &http.Client{Timeout: 30 * time.Second}, log)
	dispatcher.Register(notifier)
	log.Info().Str("url", setting.Value).Msg("registered webhook notifier")
}

// buildTraktClient reads the Trakt application credentials from settings.
// Without them token refresh fails and Trakt watchlists are skipped, but
// Plex-only setups keep working.
func buildTraktClient(ctx context.Context, queries *sqlc.Queries, httpClient *http.Client, log zerolog.Logger) *trakt.Client {
	var clientID, clientSecret string
	if setting, err := queries.GetSetting(ctx, traktClientIDSetting); err == nil {
		clientID = setting.Value
	}
	if setting, err := queries.GetSetting(ctx, traktClientSecretSetting); err == nil {
		clientSecret = setting.Value
	}
	return trakt.NewClient(httpClient, clientID, clientSecret, log)
}
