package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"suiswap/internal/config"
	"suiswap/internal/events"
	"suiswap/internal/model"
	"suiswap/internal/storage"
	"suiswap/internal/storage/postgres"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Subscribe to pool events and store them",
		RunE:  runWatch,
	}

	cmd.Flags().String("ws", "", "Sui websocket URL")
	cmd.Flags().StringSlice("event-type", nil, "Move event types to match (comma-separated)")
	cmd.Flags().StringSlice("event-package", nil, "package ids to match (comma-separated)")
	cmd.Flags().StringSlice("event-sender", nil, "sender addresses to match (comma-separated)")
	cmd.Flags().String("match", "any", "combine filters with any or all")
	cmd.Flags().String("out", "./data/events.jsonl", "output events JSONL (ignored with --pg-dsn)")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN")
	cmd.Flags().Int("batch-size", 50, "events per storage batch")
	cmd.Flags().Duration("flush-interval", 5*time.Second, "maximum time events wait before being stored")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	return cmd
}

func watchFilter(cfg config.WatchConfig) (events.Filter, error) {
	var filters []events.Filter
	for _, t := range cfg.EventTypes {
		filters = append(filters, events.MoveEventType(t))
	}
	for _, p := range cfg.EventPackages {
		filters = append(filters, events.Package(p))
	}
	for _, s := range cfg.Senders {
		filters = append(filters, events.Sender(s))
	}
	if len(filters) == 0 && cfg.Package != "" {
		filters = append(filters, events.Package(cfg.Package))
	}
	return events.Combine(filters, cfg.MatchAll)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWatch(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.WSURL == "" {
		return fmt.Errorf("ws url is required")
	}
	filter, err := watchFilter(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	var sink storage.Storage
	var onFlush func(ctx context.Context, last model.EventRecord)
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}

		stateName := fmt.Sprintf("watch:%s", cfg.WSURL)
		if ts, ok, err := store.LoadState(ctx, stateName); err != nil {
			return fmt.Errorf("load watch state: %w", err)
		} else if ok {
			// the subscription only delivers live events, nothing is replayed
			logger.Info("previous watch progress (informational)", zap.Uint64("last_timestamp_ms", ts))
		}
		onFlush = func(ctx context.Context, last model.EventRecord) {
			if err := store.SaveState(ctx, stateName, last.TimestampMs); err != nil {
				logger.Warn("save watch state failed", zap.Error(err))
			}
		}
		sink = store
	} else {
		sink = storage.NewJsonlStorage(cfg.Out)
	}

	recorder := events.NewRecorder(sink, cfg.BatchSize, logger)
	recorder.OnFlush = onFlush

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	flushed := make(chan struct{})
	go func() {
		defer close(flushed)
		recorder.Run(runCtx, cfg.FlushInterval)
	}()

	sub, err := events.Subscribe(ctx, events.Options{
		URL:     cfg.WSURL,
		Filter:  filter,
		OnEvent: recorder.Handle,
		OnError: func(err error) { logger.Warn("event stream error", zap.Error(err)) },
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	logger.Info("watch start",
		zap.String("ws", cfg.WSURL),
		zap.Any("filter", filter),
		zap.Bool("postgres", cfg.PGDSN != ""),
		zap.String("out", cfg.Out),
		zap.Int("batch_size", cfg.BatchSize),
	)

	var subErr error
	select {
	case <-ctx.Done():
		subErr = sub.Unsubscribe()
	case <-sub.Done():
		subErr = sub.Err()
	}

	cancel()
	<-flushed
	logger.Info("watch stopped", zap.Int("stored", recorder.Stored()))
	return subErr
}
