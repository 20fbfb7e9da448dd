package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"folio/api/internal/app"
	"folio/api/internal/blob"
	"folio/api/internal/config"
	"folio/api/internal/logging"
)

func main() {
	log := logging.New()
	defer func() { _ = log.Sync() }()

	cfg := config.Load()
	ctx := context.Background()

	var blobs blob.ObjectStore
	switch cfg.BlobBackend {
	case "minio":
		store, err := blob.NewMinioStore(ctx, blob.MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			log.Fatal("object store connection failed", zap.Error(err))
		}
		log.Info("using MinIO blob backend", zap.String("bucket", cfg.MinioBucket))
		blobs = store
	case "postgres":
		db, err := blob.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("database connection failed", zap.Error(err))
		}
		defer db.Close()
		store := blob.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			log.Fatal("schema setup failed", zap.Error(err))
		}
		log.Info("using Postgres blob backend")
		blobs = store
	case "memory":
		log.Warn("using in-memory blob backend; content will not survive restart")
		blobs = blob.NewMemoryStore()
	default:
		log.Fatal("unknown blob backend", zap.String("backend", cfg.BlobBackend))
	}

	if cfg.AdminToken == "" {
		log.Warn("ADMIN_TOKEN is not set; all content writes will be rejected")
	}

	service := app.New(cfg, blobs)
	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin, log)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Folio content API listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
}
