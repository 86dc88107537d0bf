package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/doctrans/internal/analysis"
	"github.com/dgallion1/doctrans/internal/api"
	"github.com/dgallion1/doctrans/internal/blobstore"
	"github.com/dgallion1/doctrans/internal/config"
	"github.com/dgallion1/doctrans/internal/images"
	"github.com/dgallion1/doctrans/internal/pipeline"
	"github.com/dgallion1/doctrans/internal/translate"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients. The analysis client is optional: without an
	// endpoint the extractor falls back to local text extraction and
	// figure detection is disabled.
	var analysisClient *analysis.Client
	if cfg.AnalysisEndpoint != "" {
		analysisClient = analysis.NewClient(cfg.AnalysisEndpoint, cfg.AnalysisAPIKey, cfg.AnalysisModelID)
	} else {
		log.Warn("no analysis endpoint configured, running with local extraction only")
	}
	extractor := analysis.NewExtractor(analysisClient, cfg.PDFFallbackPdftotext, log)

	store := blobstore.NewClient(cfg.BlobstoreURL, cfg.BlobstoreAPIKey)
	collector := images.NewCollector(store, cfg.MaxConcurrentUpload, log)

	llm := translate.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	translator := translate.NewOrchestrator(llm, cfg.MaxConcurrentTranslate, log)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, extractor, collector, translator, store, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, llm, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		store.Close()
	}()

	log.Info("starting doctrans", "port", cfg.Port, "model", cfg.OpenAIModel)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
