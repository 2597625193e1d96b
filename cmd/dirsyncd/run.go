package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/kubex/rubix-dirsync/directory"
	"github.com/kubex/rubix-dirsync/dirsync"
	"github.com/kubex/rubix-dirsync/observability"
	"github.com/kubex/rubix-dirsync/store"
)

func runCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the reconciliation loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			provider, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = provider.Close() }()

			engine := buildEngine(ctx)

			if cfg.Metrics.Addr != "" {
				go serveMetrics(ctx, cfg.Metrics.Addr)
			}

			if once || cfg.Sync.interval == 0 {
				return runPass(ctx, engine, provider)
			}

			log.Info().Str("interval", cfg.Sync.interval.String()).Msg("starting reconciliation loop")
			ticker := time.NewTicker(cfg.Sync.interval)
			defer ticker.Stop()

			for {
				if err := runPass(ctx, engine, provider); err != nil && !errors.Is(err, context.Canceled) {
					log.Error().Err(err).Msg("reconciliation pass failed")
				}
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Run a single pass and exit")
	return cmd
}

// openStore loads the storage provider definition, connects it and runs
// schema setup when the provider supports it.
func openStore() (store.Provider, error) {
	definition, err := os.ReadFile(cfg.Store.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("read store config: %w", err)
	}
	provider, err := store.Load(definition)
	if err != nil {
		return nil, err
	}

	if init, ok := provider.(interface{ Initialize() error }); ok {
		if err := init.Initialize(); err != nil {
			return nil, fmt.Errorf("initialize store: %w", err)
		}
		return provider, nil
	}
	if err := provider.Connect(); err != nil {
		return nil, fmt.Errorf("connect store: %w", err)
	}
	return provider, nil
}

func buildEngine(ctx context.Context) *dirsync.Engine {
	var tokens oauth2.TokenSource
	if cfg.Directory.TokenURL != "" {
		tokens = directory.ClientCredentials(ctx, cfg.Directory.TokenURL,
			cfg.Directory.ClientID, cfg.Directory.ClientSecret, cfg.Directory.Scopes)
	}
	client := directory.New(cfg.Directory.BaseURL, tokens)

	opts := []dirsync.EngineOption{dirsync.WithLogger(log.Logger)}
	if cfg.Sync.DryRun {
		opts = append(opts, dirsync.WithDryRun(true))
	}
	if cfg.Sync.LookupConcurrency > 0 {
		opts = append(opts, dirsync.WithLookupConcurrency(cfg.Sync.LookupConcurrency))
	}
	return dirsync.NewEngine(client, opts...)
}

func runPass(ctx context.Context, engine *dirsync.Engine, provider store.Provider) error {
	records, err := provider.GetMappingRecords(cfg.Store.Partition)
	if err != nil {
		return fmt.Errorf("load mapping records: %w", err)
	}

	report := engine.Run(ctx, records)
	observability.ObservePass(report)

	for _, record := range report.Records {
		if err := provider.AppendSyncActivity(dirsync.ActivityFromReport(record)); err != nil {
			log.Warn().Err(err).Msg("unable to store sync activity")
		}
	}

	log.Info().
		Int("records", len(report.Records)).
		Int("synced", report.Synced()).
		Int("skipped", report.Skipped()).
		Int("failed", report.Failed()).
		Dur("duration", report.Duration).
		Msg("reconciliation pass complete")
	return ctx.Err()
}

func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.MetricsHandler())
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("metrics endpoint listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("metrics endpoint failed")
	}
}
