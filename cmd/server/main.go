package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/tube_accounts/internal/assets"
	"github.com/Skotchmaster/tube_accounts/internal/config"
	"github.com/Skotchmaster/tube_accounts/internal/db"
	"github.com/Skotchmaster/tube_accounts/internal/events"
	"github.com/Skotchmaster/tube_accounts/internal/httpserver"
	"github.com/Skotchmaster/tube_accounts/internal/logging"
	"github.com/Skotchmaster/tube_accounts/internal/middleware"
	"github.com/Skotchmaster/tube_accounts/internal/migrations"
	"github.com/Skotchmaster/tube_accounts/internal/repo"
	"github.com/Skotchmaster/tube_accounts/internal/search"
	"github.com/Skotchmaster/tube_accounts/internal/service"
)

func main() {
	cfg := config.MustLoad()
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	ctx := context.Background()

	if err := migrations.Up(ctx, cfg.DatabaseURL); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	gdb, err := db.Open(ctx, cfg.DatabaseURL, db.DefaultPool())
	if err != nil {
		log.Fatalf("db init: %v", err)
	}
	users := repo.New(gdb)

	store, staticDir, err := newAssetStore(ctx, cfg)
	if err != nil {
		log.Fatalf("asset store: %v", err)
	}

	notify := &service.Notifier{Topic: cfg.KafkaTopic}

	var prod *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = events.NewProducer(cfg.KafkaBrokers)
		notify.Events = prod
	} else {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	if cfg.ES.URL != "" {
		esClient, err := search.NewClient(ctx, cfg.ES)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		notify.Index = search.NewChannelIndex(esClient, cfg.ES.Index)
	} else {
		logger.Warn("search_disabled", "reason", "ES_URL is empty")
	}

	tokens := service.NewTokenService(users, cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	session := service.NewSessionService(users, tokens, store, notify)
	profile := service.NewProfileService(users, store, notify)

	uploads, err := httpserver.NewTempUploads(cfg.UploadTempDir)
	if err != nil {
		log.Fatalf("uploads: %v", err)
	}

	e := httpserver.NewEcho(logger, config.CSV(cfg.CORSOrigin))
	httpserver.Register(e, &httpserver.Deps{
		Users: &httpserver.UsersHTTP{
			Session: session,
			Profile: profile,
			Uploads: uploads,
		},
		Auth:        middleware.RequireAuth(tokens.VerifyAccess, profile.CurrentUser),
		Ready:       func(ctx context.Context) error { return db.Ping(ctx, gdb) },
		MaxUploadMB: cfg.MaxUploadMB,
		StaticDir:   staticDir,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("http_listen", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db_close_failed", "error", err)
	}
	if prod != nil {
		if err := prod.Close(); err != nil {
			logger.Error("kafka_close_failed", "error", err)
		}
	}

	logger.Info("shutdown_complete")
}

// newAssetStore picks the storage backend; the second value is the directory
// to serve under /static when files stay on local disk.
func newAssetStore(ctx context.Context, cfg *config.Config) (service.AssetStore, string, error) {
	switch cfg.Assets.Store {
	case "s3":
		s, err := assets.NewS3Store(ctx, assets.S3Options{
			Bucket:    cfg.Assets.S3Bucket,
			Region:    cfg.Assets.S3Region,
			AccessKey: cfg.Assets.S3AccessKey,
			SecretKey: cfg.Assets.S3SecretKey,
			Endpoint:  cfg.Assets.S3Endpoint,
			BaseURL:   cfg.Assets.BaseURL,
		})
		return s, "", err
	case "local", "":
		base := cfg.Assets.BaseURL
		if base == "" {
			base = fmt.Sprintf("http://localhost:%d/static", cfg.ServerPort)
		}
		s, err := assets.NewLocalStore(cfg.Assets.LocalDir, base)
		return s, cfg.Assets.LocalDir, err
	default:
		return nil, "", fmt.Errorf("unknown asset store %q", cfg.Assets.Store)
	}
}
