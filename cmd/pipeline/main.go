package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/rchrostowski/elorevnightlightproject/internal/config"
	"github.com/rchrostowski/elorevnightlightproject/internal/infrastructure"
	"github.com/rchrostowski/elorevnightlightproject/internal/pipeline"
)

func main() {
	configFile := flag.String("config", "", "path to YAML config file (overrides NIGHTLIGHTS_CONFIG_FILE)")
	clusterBy := flag.String("cluster", "", "standard-error clustering: none, ticker, county, or yearmonth")
	flag.Parse()

	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	if *configFile != "" {
		os.Setenv("NIGHTLIGHTS_CONFIG_FILE", *configFile)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *clusterBy != "" {
		cfg.Pipeline.ClusterBy = *clusterBy
		if !cfg.Cluster().IsValid() {
			fmt.Fprintf(os.Stderr, "invalid -cluster value %q\n", *clusterBy)
			os.Exit(1)
		}
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service := pipeline.NewService(logger, cfg, nil)
	result, err := service.Run(ctx)
	if err != nil {
		logger.Error("pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("pipeline finished",
		slog.String("run_id", result.RunID),
		slog.Int("panel_rows", result.Summary.PanelRows),
		slog.Int("complete_rows", result.Summary.CompleteRows),
		slog.Int("rejections", result.Summary.Rejections),
		slog.Float64("coefficient", result.Regression.Coefficient),
		slog.Float64("t_stat", result.Regression.TStat))
}
