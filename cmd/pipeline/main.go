package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"climate-migration-pipeline/internal/acquire"
	"climate-migration-pipeline/internal/adapter/censusapi"
	"climate-migration-pipeline/internal/adapter/csvstore"
	"climate-migration-pipeline/internal/adapter/datacommons"
	"climate-migration-pipeline/internal/adapter/httpserver"
	"climate-migration-pipeline/internal/adapter/postgres"
	"climate-migration-pipeline/internal/clean"
	"climate-migration-pipeline/internal/config"
	"climate-migration-pipeline/internal/observability"
	"climate-migration-pipeline/internal/pipeline"
)

func main() {
	stageList := flag.String("stages", "acquire,clean,forecast,project,upload",
		"comma-separated pipeline stages to run, in order")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	layout := csvstore.NewLayout(cfg.DataDir)

	census := censusapi.NewClient(cfg.CensusAPIKey, cfg.CensusTimeout, logger)
	dcClient := datacommons.NewClient(cfg.DataCommonsAPIKey, cfg.DataCommonsTimeout, metrics, logger)
	series := datacommons.NewCachedProvider(dcClient, cfg.DataCommonsCacheSize, metrics)

	acquirer := acquire.New(census, series, layout, cfg.DownloadWorkers, metrics, logger)
	cleaner := clean.New(layout, logger)

	var store *postgres.Store
	if cfg.PostgresEnabled {
		store, err = postgres.Open(cfg, metrics, logger)
		if err != nil {
			logger.Error("postgres connect failed", "error", err)
			os.Exit(1)
		}
	}

	available := map[string]pipeline.Stage{
		"acquire":  pipeline.NamedStage("acquire", acquirer.Run),
		"clean":    pipeline.NamedStage("clean", cleaner.Run),
		"forecast": pipeline.NewForecaster(layout, logger),
		"project":  pipeline.NewProjector(layout, metrics, logger),
	}
	if store != nil {
		available["upload"] = pipeline.NewUploader(store, layout, logger)
	}

	stages, err := selectStages(*stageList, available, logger)
	if err != nil {
		logger.Error("invalid stage selection", "error", err)
		os.Exit(1)
	}

	p := pipeline.New(logger, metrics, stages...)
	srv := httpserver.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	res, runErr := p.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("postgres close error", "error", err)
		}
	}

	switch {
	case errors.Is(runErr, context.Canceled):
		logger.Info("pipeline interrupted", "completed_stages", len(res.Stages))
	case runErr != nil:
		logger.Error("pipeline failed", "error", runErr)
		os.Exit(1)
	default:
		logger.Info("pipeline complete", "stages", len(res.Stages), "duration", res.Duration())
	}
}

// selectStages resolves the -stages flag against the wired stages. Upload is
// soft: without a configured database it drops out with a warning so the
// default stage list works on a bare checkout.
func selectStages(list string, available map[string]pipeline.Stage, logger *slog.Logger) ([]pipeline.Stage, error) {
	var stages []pipeline.Stage
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		st, ok := available[name]
		if !ok {
			if name == "upload" {
				logger.Warn("upload stage skipped, postgres is not configured")
				continue
			}
			return nil, fmt.Errorf("unknown stage %q (valid: acquire, clean, forecast, project, upload)", name)
		}
		stages = append(stages, st)
	}
	if len(stages) == 0 {
		return nil, errors.New("no stages selected")
	}
	return stages, nil
}
