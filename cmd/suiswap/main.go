package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"suiswap/internal/config"
	"suiswap/internal/pool"
	"suiswap/internal/sui"
)

func main() {
	root := &cobra.Command{
		Use:          "suiswap",
		Short:        "Client for the SUI/USDC constant-product pool",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	root.AddCommand(newPoolCmd(), newFeesCmd(), newBalancesCmd(), newQuoteCmd())
	root.AddCommand(newSwapCmd(), newAddLiquidityCmd(), newRemoveLiquidityCmd(), newCollectFeesCmd())
	root.AddCommand(newWatchCmd(), newServeCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// addPoolFlags registers the flags every pool-facing command shares.
func addPoolFlags(flags *pflag.FlagSet) {
	flags.String("rpc", "", "Sui JSON-RPC URL")
	flags.String("package", "", "pool package id")
	flags.String("pool", "", "pool object id")
	flags.String("admin", "", "pool admin address")
	flags.String("sender", "", "address used for read-only simulations when no key is configured")
	flags.String("sui-type", pool.SuiCoinType, "SUI coin type")
	flags.String("usdc-type", "", "USDC coin type")
	flags.String("lp-type", "", "LP coin type")
	flags.Uint8("sui-decimals", 9, "SUI decimals")
	flags.Uint8("usdc-decimals", 6, "USDC decimals")
	flags.Uint8("lp-decimals", 0, "LP decimals")
	flags.Uint64("gas-budget", 50_000_000, "gas budget in MIST")
	flags.Int("cache-size", 16, "pool state cache entries")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
}

// session is a connected pool facade plus what was needed to build it.
type session struct {
	cfg     config.Config
	logger  *zap.Logger
	client  *sui.Client
	service *pool.Service
	signer  sui.Signer
}

func (s *session) Close() {
	s.client.Close()
	_ = s.logger.Sync()
}

func openSession(ctx context.Context, cfg config.Config) (*session, error) {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	poolCfg, err := cfg.PoolConfig()
	if err != nil {
		return nil, err
	}
	signer, err := cfg.Signer()
	if err != nil {
		return nil, err
	}

	client, err := sui.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	service, err := pool.NewService(client, signer, poolCfg, logger)
	if err != nil {
		client.Close()
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, client: client, service: service, signer: signer}, nil
}

func loadSession(cmd *cobra.Command) (*session, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	return openSession(cmd.Context(), cfg)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
