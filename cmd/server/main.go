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

	"github.com/joho/godotenv"

	"folioscan/internal/app"
	"folioscan/internal/config"
	"folioscan/internal/handler"
	"folioscan/internal/logger"
	"folioscan/internal/port"
	"folioscan/internal/repository/postgres"
	"folioscan/internal/router"
	"folioscan/internal/service"
	s3storage "folioscan/internal/storage/s3"

	_ "folioscan/internal/ocr/claude"
	_ "folioscan/internal/ocr/gemini"
	_ "folioscan/internal/ocr/openai"
	_ "folioscan/internal/ocr/tesseract"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	lg := logger.New()
	if err := lg.Configure(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.MaxAge); err != nil {
		return fmt.Errorf("failed to configure logger: %w", err)
	}
	logger.SetGlobal(lg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Run log and ticker aliases are optional
	var (
		runRepo   port.ExtractionRunRepository
		aliasRepo port.TickerAliasRepository
		healthH   *handler.HealthHandler
	)
	if cfg.DB.Enabled {
		db, err := postgres.NewDB(ctx, &cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		runRepo = postgres.NewExtractionRunRepo(db)
		aliasRepo = postgres.NewTickerAliasRepo(db)
		healthH = handler.NewHealthHandler(db)
	} else {
		healthH = handler.NewHealthHandler(nil)
	}

	mapper := app.LoadMapper(ctx, aliasRepo, lg)
	extractor, err := app.NewExtractor(cfg, mapper)
	if err != nil {
		return fmt.Errorf("failed to initialize OCR providers: %w", err)
	}
	pipeline, err := app.NewPipeline(cfg, extractor, mapper, lg)
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	var storage port.ObjectStorage
	if cfg.Archive.Enabled {
		storage, err = s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	portfolioSvc := service.NewPortfolioService(pipeline, storage, runRepo, cfg, lg)
	portfolioH := handler.NewPortfolioHandler(portfolioSvc)

	r := router.Setup(portfolioH, healthH, cfg.CORS.AllowedOrigins, lg)

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           r,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.WithComponent("server").WithFields(logger.Fields{
			"addr":       cfg.Server.Port,
			"env":        cfg.Server.Environment,
			"provider":   cfg.OCR.PrimaryConfig().Provider,
			"batch_size": cfg.Batch.Size,
		}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	lg.WithComponent("server").Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
