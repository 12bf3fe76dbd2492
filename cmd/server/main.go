package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"filevault/internal/archive"
	"filevault/internal/auth"
	"filevault/internal/config"
	"filevault/internal/domain/storage"
	"filevault/internal/handler"
	"filevault/internal/middleware"
	"filevault/internal/policy"
	"filevault/internal/repository/postgres"
	"filevault/internal/service"
	localstorage "filevault/internal/storage"
)

func main() {
	// Load .env file if present (dev convenience, prod uses real env vars)
	_ = godotenv.Load()

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	if err := postgres.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		return err
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	verifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		return err
	}
	defer verifier.Close()

	policies, err := policy.NewRegistry()
	if err != nil {
		return err
	}

	blobs, err := newBlobStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	archiveStore, err := localstorage.NewArchiveStore(cfg.ArchiveDir)
	if err != nil {
		return err
	}

	// Repositories
	repoCfg := &postgres.RepositoryConfig{Pool: pool, Logger: logger}
	folderRepo := postgres.NewFolderRepository(repoCfg)
	fileRepo := postgres.NewFileRepository(repoCfg)
	jobRepo := postgres.NewArchiveJobRepository(repoCfg)
	txManager := postgres.NewTransactionManager(pool)

	// Archive engine
	worker := archive.NewWorker(jobRepo, fileRepo, blobs, archiveStore,
		cfg.ArchiveQueueSize, cfg.ArchiveScanInterval, logger)
	worker.Start(ctx)
	defer worker.Stop()

	sweeper := archive.NewSweeper(jobRepo, archiveStore,
		cfg.ArchiveRetention, cfg.SweepInterval, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	// Services
	folderService := service.NewFolderService(folderRepo, fileRepo, blobs, txManager, logger)
	fileService := service.NewFileService(fileRepo, folderRepo, blobs, policies, logger)
	treeService := service.NewTreeService(folderRepo, fileRepo, logger)
	archiveService := archive.NewArchiveService(jobRepo, archiveStore, worker, logger)

	// Handlers
	folderHandler := handler.NewFolderHandler(folderService, logger)
	fileHandler := handler.NewFileHandler(fileService, logger)
	archiveHandler := handler.NewArchiveHandler(archiveService, logger)
	treeHandler := handler.NewTreeHandler(treeService, logger)
	healthHandler := handler.NewHealthHandler(pool)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Check)

	mux.HandleFunc("GET /api/folders", folderHandler.ListChildren)
	mux.HandleFunc("POST /api/folders", folderHandler.Create)
	mux.HandleFunc("GET /api/folders/{id}", folderHandler.Get)
	mux.HandleFunc("GET /api/folders/{id}/children", folderHandler.ListChildren)
	mux.HandleFunc("GET /api/folders/{id}/breadcrumbs", folderHandler.Breadcrumbs)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.Delete)

	mux.HandleFunc("POST /api/files", fileHandler.Upload)
	mux.HandleFunc("GET /api/files/recent", fileHandler.ListRecent)
	mux.HandleFunc("GET /api/files/{id}", fileHandler.Get)
	mux.HandleFunc("GET /api/files/{id}/download", fileHandler.Download)
	mux.HandleFunc("PATCH /api/files/{id}", fileHandler.Move)
	mux.HandleFunc("DELETE /api/files/{id}", fileHandler.Delete)

	mux.HandleFunc("POST /api/archives", archiveHandler.Submit)
	mux.HandleFunc("GET /api/archives/{id}", archiveHandler.GetStatus)
	mux.HandleFunc("GET /api/archives/{id}/download", archiveHandler.Download)

	mux.HandleFunc("GET /api/tree", treeHandler.Get)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	var root http.Handler = mux
	root = middleware.AuthMiddleware(verifier)(root)
	root = middleware.Recovery(logger)(root)
	root = corsMiddleware.Handler(root)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return nil
}

// newBlobStore builds the configured blob storage backend
func newBlobStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.BlobStore, error) {
	switch cfg.StorageDriver {
	case "s3":
		logger.Info("using s3 blob storage", "bucket", cfg.S3Bucket, "endpoint", cfg.S3Endpoint)
		return localstorage.NewS3BlobStore(ctx, localstorage.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		logger.Info("using filesystem blob storage", "dir", cfg.StorageDir)
		return localstorage.NewFileSystemStore(cfg.StorageDir)
	}
}
