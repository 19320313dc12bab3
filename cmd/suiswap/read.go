package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"suiswap/internal/model"
	"suiswap/internal/pool"
	"suiswap/internal/sui"
)

func newPoolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Show pool reserves and LP supply",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			overview, err := s.service.Overview(cmd.Context())
			if err != nil {
				return err
			}
			snap, err := s.service.PoolState(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{"overview": overview, "raw": snap})
		},
	}
	addPoolFlags(cmd.Flags())
	return cmd
}

func newFeesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fees",
		Short: "Show accumulated protocol fees",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			fees, err := s.service.Fees(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), fees)
		},
	}
	addPoolFlags(cmd.Flags())
	return cmd
}

func newBalancesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balances [address]",
		Short: "Show SUI, USDC and LP balances of an address (defaults to the configured key)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			owner, err := s.owner(args)
			if err != nil {
				return err
			}
			balances, err := s.service.Balances(cmd.Context(), owner)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), balances)
		},
	}
	addPoolFlags(cmd.Flags())
	return cmd
}

func (s *session) owner(args []string) (sui.Address, error) {
	if len(args) > 0 {
		return sui.ParseAddress(args[0])
	}
	if s.signer != nil {
		return s.signer.Address(), nil
	}
	if s.cfg.Sender != "" {
		return sui.ParseAddress(s.cfg.Sender)
	}
	return sui.Address{}, fmt.Errorf("address argument required when no private key is configured")
}

func newQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a swap or an LP deposit",
		Long: "Quote a swap (--direction, --amount) or an LP deposit (--sui, --usdc).\n" +
			"With -i, amounts are read line by line from stdin and re-quoted once input settles.",
		RunE: runQuote,
	}
	addPoolFlags(cmd.Flags())
	cmd.Flags().String("direction", "sui-to-usdc", "swap direction (sui-to-usdc, usdc-to-sui)")
	cmd.Flags().String("amount", "", "amount to pay")
	cmd.Flags().String("sui", "", "SUI amount for an LP quote")
	cmd.Flags().String("usdc", "", "USDC amount for an LP quote")
	cmd.Flags().BoolP("interactive", "i", false, "read amounts from stdin")
	cmd.Flags().Duration("debounce", pool.DefaultDebounce, "quiet period before re-quoting in interactive mode")
	return cmd
}

func runQuote(cmd *cobra.Command, _ []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	suiAmount, _ := cmd.Flags().GetString("sui")
	usdcAmount, _ := cmd.Flags().GetString("usdc")
	if suiAmount != "" || usdcAmount != "" {
		return printJSON(cmd.OutOrStdout(), s.service.QuoteLP(cmd.Context(), suiAmount, usdcAmount))
	}

	rawDir, _ := cmd.Flags().GetString("direction")
	dir, err := pool.ParseDirection(rawDir)
	if err != nil {
		return err
	}

	interactive, _ := cmd.Flags().GetBool("interactive")
	if !interactive {
		payAmount, _ := cmd.Flags().GetString("amount")
		return printJSON(cmd.OutOrStdout(), s.service.QuoteSwap(cmd.Context(), dir, payAmount))
	}
	return s.interactiveQuote(cmd, dir)
}

// interactiveQuote re-quotes each settled stdin line. Results for lines that
// were superseded while their simulation ran are dropped.
func (s *session) interactiveQuote(cmd *cobra.Command, dir pool.Direction) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	out := cmd.OutOrStdout()
	done := make(chan struct{})
	var (
		mu    sync.Mutex
		final string
	)
	debouncer := pool.NewDebouncer(s.cfg.Debounce,
		func(ctx context.Context, input string) model.Quote {
			return s.service.QuoteSwap(ctx, dir, input)
		},
		func(input string, q model.Quote) {
			fmt.Fprintf(out, "%s %s -> %s (min %d)\n", input, dir, q.Receive, q.MinOut)
			mu.Lock()
			defer mu.Unlock()
			if final != "" && input == final {
				final = ""
				close(done)
			}
		},
	)
	defer debouncer.Stop()

	fmt.Fprintf(out, "enter %s amounts, ctrl-d to quit\n", dir)
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	var last string
read:
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				break read
			}
			if line = strings.TrimSpace(line); line == "" {
				continue
			}
			last = line
			debouncer.Update(ctx, line)
		}
	}
	select {
	case err := <-scanErr:
		if err != nil {
			return err
		}
	default:
	}
	if last == "" {
		return nil
	}

	// quote the final line once more and wait for it before exiting
	mu.Lock()
	final = last
	mu.Unlock()
	debouncer.Update(ctx, last)
	s.logger.Debug("waiting for final quote", zap.String("amount", last))
	select {
	case <-done:
	case <-ctx.Done():
	}
	return nil
}
