package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"suiswap/internal/model"
	"suiswap/internal/pool"
)

func newSwapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Swap SUI for USDC or USDC for SUI with 0.5% slippage protection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rawDir, _ := cmd.Flags().GetString("direction")
			payAmount, _ := cmd.Flags().GetString("amount")
			dir, err := pool.ParseDirection(rawDir)
			if err != nil {
				return err
			}
			return runTrade(cmd, func(ctx context.Context, svc *pool.Service) (model.TxResult, error) {
				return svc.Swap(ctx, dir, payAmount)
			})
		},
	}
	addPoolFlags(cmd.Flags())
	cmd.Flags().String("direction", "sui-to-usdc", "swap direction (sui-to-usdc, usdc-to-sui)")
	cmd.Flags().String("amount", "", "amount to pay")
	return cmd
}

func newAddLiquidityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-liquidity",
		Short: "Deposit SUI and USDC for LP tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			suiAmount, _ := cmd.Flags().GetString("sui")
			usdcAmount, _ := cmd.Flags().GetString("usdc")
			return runTrade(cmd, func(ctx context.Context, svc *pool.Service) (model.TxResult, error) {
				return svc.AddLiquidity(ctx, suiAmount, usdcAmount)
			})
		},
	}
	addPoolFlags(cmd.Flags())
	cmd.Flags().String("sui", "", "SUI amount to deposit")
	cmd.Flags().String("usdc", "", "USDC amount to deposit")
	return cmd
}

func newRemoveLiquidityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove-liquidity",
		Short: "Burn LP tokens for a pro-rata share of the reserves",
		RunE: func(cmd *cobra.Command, _ []string) error {
			lpAmount, _ := cmd.Flags().GetString("lp")
			return runTrade(cmd, func(ctx context.Context, svc *pool.Service) (model.TxResult, error) {
				return svc.RemoveLiquidity(ctx, lpAmount)
			})
		},
	}
	addPoolFlags(cmd.Flags())
	cmd.Flags().String("lp", "", "LP amount to burn")
	return cmd
}

func newCollectFeesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect-fees",
		Short: "Collect accumulated protocol fees (pool admin only)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTrade(cmd, func(ctx context.Context, svc *pool.Service) (model.TxResult, error) {
				return svc.CollectFees(ctx)
			})
		},
	}
	addPoolFlags(cmd.Flags())
	return cmd
}

// runTrade submits one signed operation, then prints its result and the
// sender's refreshed balances.
func runTrade(cmd *cobra.Command, op func(ctx context.Context, svc *pool.Service) (model.TxResult, error)) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if s.signer == nil {
		return fmt.Errorf("private key is required (set SUISWAP_PRIVATE_KEY or private-key in the config file)")
	}

	ctx := cmd.Context()
	res, err := op(ctx, s.service)
	if err != nil {
		s.logger.Error("operation failed", zap.String("command", cmd.Name()), zap.Error(err))
		return err
	}

	balances, err := s.service.Balances(ctx, s.signer.Address())
	if err != nil {
		s.logger.Warn("refresh balances failed", zap.Error(err))
		return printJSON(cmd.OutOrStdout(), res)
	}
	return printJSON(cmd.OutOrStdout(), map[string]interface{}{"result": res, "balances": balances})
}
