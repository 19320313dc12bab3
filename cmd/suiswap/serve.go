package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"suiswap/internal/api"
	"suiswap/internal/config"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pool client over HTTP",
		RunE:  runServe,
	}
	addPoolFlags(cmd.Flags())
	cmd.Flags().String("listen", "127.0.0.1:8080", "HTTP listen address")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := openSession(ctx, cfg.Config)
	if err != nil {
		return err
	}
	defer s.Close()

	if overview, err := s.service.Overview(ctx); err != nil {
		s.logger.Warn("initial pool read failed", zap.Error(err))
	} else {
		s.logger.Info("pool loaded",
			zap.String("pool", overview.PoolID),
			zap.String("sui_reserve", overview.SuiReserve),
			zap.String("usdc_reserve", overview.UsdcReserve),
			zap.String("lp_supply", overview.LPSupply),
		)
	}

	if cfg.APIToken == "" {
		s.logger.Warn("api-token not set, signed routes are disabled")
	}
	server := api.NewServer(s.service, cfg.Listen, cfg.APIToken, s.logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down http server")
	return server.Stop(shutdownCtx)
}
