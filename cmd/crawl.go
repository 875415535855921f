package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hydrocare/harvester/internal/api"
	"github.com/hydrocare/harvester/internal/clock"
	iconfig "github.com/hydrocare/harvester/internal/config"
	"github.com/hydrocare/harvester/internal/crawler"
	"github.com/hydrocare/harvester/internal/export"
	"github.com/hydrocare/harvester/internal/fetcher"
	"github.com/hydrocare/harvester/internal/id/uuid"
	"github.com/hydrocare/harvester/internal/logging"
	"github.com/hydrocare/harvester/internal/progress"
	"github.com/hydrocare/harvester/internal/state"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Walk the listing and append new or changed articles",
	RunE:  runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, _ []string) error {
	cfg, err := iconfig.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush on exit

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.ListenAddr != "" {
		api.NewServer(cfg.Metrics.ListenAddr, logger.Named("api")).Start(ctx)
	}

	statePath := state.Path(cfg.Output.Dir, cfg.Output.Name)
	var store *state.Store
	if cfg.Crawl.Resume {
		store, err = state.Load(statePath)
		if err != nil {
			return err
		}
	} else {
		store = state.New(statePath)
	}

	sinks, err := buildSinks(cfg)
	if err != nil {
		return err
	}
	defer closeSinks(sinks, logger)

	fetch := fetcher.New(fetcher.Config{
		UserAgent:     cfg.Crawl.UserAgent,
		Delay:         cfg.Delay(),
		Retries:       cfg.Crawl.Retries,
		Timeout:       cfg.Timeout(),
		RespectRobots: cfg.Crawl.RespectRobots,
	}, logger.Named("fetcher"))

	emitter := progress.NewFanout(
		progress.NewLogSink(logger.Named("progress")),
		progress.NewMetricsSink(),
	)

	engine := crawler.New(cfg, fetch, store, sinks, emitter, clock.System{}, uuid.New(), logger.Named("crawler"))

	sum, runErr := engine.Run(ctx)
	fmt.Fprintf(cmd.OutOrStdout(), "pages: %d  new: %d  updated: %d  skipped: %d  failed: %d  written: %d\n",
		sum.Pages, sum.New, sum.Updated, sum.Skipped, sum.Failed, sum.Written())

	if errors.Is(runErr, context.Canceled) {
		// Interrupts are a normal way to stop; state is already saved.
		logger.Info("crawl interrupted, state saved", zap.Int("pages", sum.Pages))
		return nil
	}
	return runErr
}

func buildSinks(cfg iconfig.Config) ([]export.Sink, error) {
	jl, err := export.NewJSONL(export.JSONLPath(cfg.Output.Dir, cfg.Output.Name))
	if err != nil {
		return nil, err
	}
	sinks := []export.Sink{jl}

	if cfg.Crawl.CSV {
		cs, err := export.NewCSV(export.CSVPath(cfg.Output.Dir, cfg.Output.Name))
		if err != nil {
			jl.Close()
			return nil, err
		}
		sinks = append(sinks, cs)
	}
	return sinks, nil
}

func closeSinks(sinks []export.Sink, logger *zap.Logger) {
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			logger.Warn("closing export sink", zap.Error(err))
		}
	}
}
