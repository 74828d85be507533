package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"constellation-backend/internal/application/explorer"
	"constellation-backend/internal/config"
	"constellation-backend/internal/domain/graph"
	"constellation-backend/internal/domain/puzzle"
	"constellation-backend/internal/infrastructure/analysis"
	"constellation-backend/internal/infrastructure/layout"
	"constellation-backend/internal/infrastructure/source"
	httpapi "constellation-backend/internal/interfaces/http"
	"constellation-backend/internal/observability"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Environment)
	if err != nil {
		return err
	}
	defer logger.Sync()

	metrics := observability.NewCollector("constellation")

	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	watcher, err := config.NewWatcher(cfg, configPath, logger.Named("config"))
	if err != nil {
		return err
	}
	defer watcher.Stop()

	questions, err := puzzle.LoadQuestions(cfg.Puzzle.QuestionsPath)
	if err != nil {
		logger.Warn("curated questions unavailable, every round falls back to search", zap.Error(err))
		questions = map[graph.Category][]puzzle.Question{}
	}

	var describer analysis.Describer
	if cfg.Analysis.Enabled {
		d, err := analysis.NewOpenAIDescriber(cfg.Analysis, logger.Named("analysis"))
		if err != nil {
			logger.Warn("analysis service disabled", zap.Error(err))
		} else {
			describer = d
		}
	}

	svc := explorer.New(explorer.Options{
		Loader:    source.NewFileLoader(cfg.Datasets, logger.Named("source")),
		Describer: describer,
		Layout:    layout.Passthrough{},
		Config:    cfg,
		Questions: questions,
		Metrics:   metrics,
		Logger:    logger,
	})
	watcher.OnReload(func(next *config.Config) {
		svc.UpdateConfig(next)
		if d, ok := describer.(*analysis.OpenAIDescriber); ok && d != nil {
			d.Apply(next.Analysis)
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, category := range []graph.Category{graph.CategorySocial, graph.CategoryTopic} {
		if err := svc.LoadDataset(ctx, category); err != nil {
			return err
		}
	}

	handler := httpapi.NewHandler(svc, logger.Named("http"))
	router := httpapi.NewRouter(handler, cfg.Server, logger.Named("http"), metrics)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
