package pool

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"suiswap/internal/amount"
	"suiswap/internal/bcs"
	"suiswap/internal/model"
	"suiswap/internal/sui"
)

// ErrValidation marks failures detected on the client before anything is submitted.
var ErrValidation = errors.New("validation failed")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

const maxGasCoins = 255

// Chain is the subset of the Sui RPC the pool facade depends on.
type Chain interface {
	GetObject(ctx context.Context, id sui.Address) (*sui.ObjectData, error)
	SharedVersion(ctx context.Context, id sui.Address) (uint64, error)
	GetCoins(ctx context.Context, owner sui.Address, coinType string) ([]sui.Coin, error)
	DevInspect(ctx context.Context, sender sui.Address, kind []byte) (*sui.DevInspectResults, error)
	ReferenceGasPrice(ctx context.Context) (uint64, error)
	Execute(ctx context.Context, txBytes []byte, signature string) (*sui.TransactionBlockResponse, error)
}

// Config identifies the pool contract and its tokens.
type Config struct {
	Package sui.Address
	Pool    sui.Address
	Admin   sui.Address
	// Sender is used for simulations when no signer is configured.
	Sender    sui.Address
	Sui       model.TokenMeta
	Usdc      model.TokenMeta
	LP        model.TokenMeta
	GasBudget uint64
	CacheSize int
}

// Service is the pool client facade: quotes, reads and signed operations.
type Service struct {
	chain  Chain
	signer sui.Signer
	cfg    Config
	cache  *StateCache
	logger *zap.Logger
}

// NewService creates a facade. signer may be nil for read-only use.
func NewService(chain Chain, signer sui.Signer, cfg Config, logger *zap.Logger) (*Service, error) {
	if chain == nil {
		return nil, errors.New("chain is required")
	}
	if cfg.Package.IsZero() || cfg.Pool.IsZero() {
		return nil, errors.New("package and pool ids are required")
	}
	if cfg.Sui.CoinType == "" {
		cfg.Sui.CoinType = SuiCoinType
	}
	if cfg.GasBudget == 0 {
		cfg.GasBudget = 50_000_000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, err := NewStateCache(cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{chain: chain, signer: signer, cfg: cfg, cache: cache, logger: logger}, nil
}

// Cache exposes the pool-state cache.
func (s *Service) Cache() *StateCache {
	return s.cache
}

// Tokens returns the configured pool tokens.
func (s *Service) Tokens() (model.TokenMeta, model.TokenMeta, model.TokenMeta) {
	return s.cfg.Sui, s.cfg.Usdc, s.cfg.LP
}

func (s *Service) payToken(dir Direction) model.TokenMeta {
	if dir == SuiToUsdc {
		return s.cfg.Sui
	}
	return s.cfg.Usdc
}

func (s *Service) receiveToken(dir Direction) model.TokenMeta {
	if dir == SuiToUsdc {
		return s.cfg.Usdc
	}
	return s.cfg.Sui
}

func (s *Service) inspectSender() sui.Address {
	if s.signer != nil {
		return s.signer.Address()
	}
	return s.cfg.Sender
}

// QuoteSwap simulates a swap of payAmount in the given direction. Invalid or
// zero input yields a zero quote without touching the network, and simulation
// failures are logged and reported as a zero quote.
func (s *Service) QuoteSwap(ctx context.Context, dir Direction, payAmount string) model.Quote {
	q := model.Quote{
		Direction: string(dir),
		PayAmount: payAmount,
		Receive:   amount.FormatUint64(0, s.receiveToken(dir).Decimals),
	}
	raw, err := amount.ToRawUint64(payAmount, s.payToken(dir).Decimals)
	if err != nil || raw == 0 {
		return q
	}
	q.RawIn = raw

	out, err := s.simulateSwap(ctx, dir, raw)
	if err != nil {
		s.logger.Warn("swap quote failed", zap.String("direction", string(dir)), zap.Uint64("raw_in", raw), zap.Error(err))
		return q
	}
	q.RawOut = out
	q.Receive = amount.FormatUint64(out, s.receiveToken(dir).Decimals)
	q.MinOut = amount.MinOut(out)
	return q
}

// QuoteLP simulates the LP tokens minted for a deposit, degrading to zero like QuoteSwap.
func (s *Service) QuoteLP(ctx context.Context, suiAmount, usdcAmount string) model.LPQuote {
	var q model.LPQuote
	rawSui, errSui := amount.ToRawUint64(suiAmount, s.cfg.Sui.Decimals)
	rawUsdc, errUsdc := amount.ToRawUint64(usdcAmount, s.cfg.Usdc.Decimals)
	if errSui != nil || errUsdc != nil || rawSui == 0 || rawUsdc == 0 {
		return q
	}
	q.RawSui, q.RawUsdc = rawSui, rawUsdc

	lp, err := s.simulateLP(ctx, rawSui, rawUsdc)
	if err != nil {
		s.logger.Warn("lp quote failed", zap.Uint64("raw_sui", rawSui), zap.Uint64("raw_usdc", rawUsdc), zap.Error(err))
		return q
	}
	q.Expected = lp
	q.MinOut = amount.MinOut(lp)
	return q
}

// Fees reads the accumulated protocol fees.
func (s *Service) Fees(ctx context.Context) (model.Fees, error) {
	values, err := s.inspect(ctx, fnGetFees, func(tx *sui.Transaction) []sui.Argument { return nil }, 2)
	if err != nil {
		return model.Fees{}, fmt.Errorf("read fees: %w", err)
	}
	return model.Fees{
		Sui:         values[0],
		Usdc:        values[1],
		SuiDisplay:  amount.FormatUint64(values[0], s.cfg.Sui.Decimals),
		UsdcDisplay: amount.FormatUint64(values[1], s.cfg.Usdc.Decimals),
	}, nil
}

// PoolState returns the pool snapshot, served from cache until invalidated.
func (s *Service) PoolState(ctx context.Context) (model.PoolSnapshot, error) {
	key := ObjectKey(s.cfg.Pool)
	if snap, ok := s.cache.Get(key); ok {
		return snap, nil
	}
	snap, err := s.readSnapshot(ctx)
	if err != nil {
		return model.PoolSnapshot{}, err
	}
	s.cache.Put(key, snap)
	return snap, nil
}

// Overview renders the pool snapshot for display.
func (s *Service) Overview(ctx context.Context) (model.PoolOverview, error) {
	snap, err := s.PoolState(ctx)
	if err != nil {
		return model.PoolOverview{}, err
	}
	return model.PoolOverview{
		PoolID:      snap.PoolID,
		SuiReserve:  amount.FormatFixed(new(big.Int).SetUint64(snap.SuiReserve), s.cfg.Sui.Decimals, 2),
		UsdcReserve: amount.FormatFixed(new(big.Int).SetUint64(snap.UsdcReserve), s.cfg.Usdc.Decimals, 2),
		LPSupply:    amount.GroupThousands(new(big.Int).SetUint64(snap.LPSupply)),
	}, nil
}

func (s *Service) readSnapshot(ctx context.Context) (model.PoolSnapshot, error) {
	obj, err := s.chain.GetObject(ctx, s.cfg.Pool)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("read pool: %w", err)
	}
	return parseSnapshot(obj)
}

// Balances sums the account's SUI, USDC and LP coins.
func (s *Service) Balances(ctx context.Context, owner sui.Address) (model.Balances, error) {
	tokens := []model.TokenMeta{s.cfg.Sui, s.cfg.Usdc, s.cfg.LP}
	totals := make([]*big.Int, len(tokens))

	g, gctx := errgroup.WithContext(ctx)
	for i, token := range tokens {
		i, token := i, token
		g.Go(func() error {
			coins, err := s.chain.GetCoins(gctx, owner, token.CoinType)
			if err != nil {
				return err
			}
			totals[i] = sumCoins(coins)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.Balances{}, fmt.Errorf("read balances: %w", err)
	}

	return model.Balances{
		Address:     owner.String(),
		Sui:         totals[0].String(),
		Usdc:        totals[1].String(),
		LP:          totals[2].String(),
		SuiDisplay:  amount.FormatBalance(totals[0], tokens[0].Decimals),
		UsdcDisplay: amount.FormatBalance(totals[1], tokens[1].Decimals),
		LPDisplay:   amount.FormatBalance(totals[2], tokens[2].Decimals),
	}, nil
}

func sumCoins(coins []sui.Coin) *big.Int {
	total := new(big.Int)
	for _, c := range coins {
		total.Add(total, new(big.Int).SetUint64(uint64(c.Balance)))
	}
	return total
}

// Swap pays payAmount of the direction's input token into the pool with a
// minimum-out bound of the simulated quote less slippage.
func (s *Service) Swap(ctx context.Context, dir Direction, payAmount string) (model.TxResult, error) {
	owner, err := s.requireSigner()
	if err != nil {
		return model.TxResult{}, err
	}
	pay := s.payToken(dir)
	raw, err := parsePositive(payAmount, pay)
	if err != nil {
		return model.TxResult{}, err
	}

	coins, err := s.spendableCoins(ctx, owner, pay, raw)
	if err != nil {
		return model.TxResult{}, err
	}

	quote, err := s.simulateSwap(ctx, dir, raw)
	if err != nil {
		return model.TxResult{}, fmt.Errorf("quote swap: %w", err)
	}
	minOut := amount.MinOut(quote)

	tx := sui.NewTransaction()
	poolArg, err := s.poolArg(ctx, tx, true)
	if err != nil {
		return model.TxResult{}, err
	}
	var gasCoins []sui.Coin
	var payCoin sui.Argument
	if pay.CoinType == s.cfg.Sui.CoinType {
		payCoin = tx.SplitCoins(sui.GasCoin, tx.PureU64(raw))[0]
		gasCoins = coins
	} else {
		payCoin, err = splitFrom(tx, coins, raw)
		if err != nil {
			return model.TxResult{}, err
		}
	}
	tx.MoveCall(s.cfg.Package, moduleName, dir.swapFunction(), poolArg, payCoin, tx.PureU64(minOut))

	result := model.TxResult{
		Operation: "swap",
		Bounds:    map[string]uint64{dir.minOutName(): minOut},
	}
	return s.submit(ctx, owner, tx, gasCoins, result)
}

// AddLiquidity deposits both tokens with a minimum LP-out bound.
func (s *Service) AddLiquidity(ctx context.Context, suiAmount, usdcAmount string) (model.TxResult, error) {
	owner, err := s.requireSigner()
	if err != nil {
		return model.TxResult{}, err
	}
	rawSui, errSui := amount.ToRawUint64(suiAmount, s.cfg.Sui.Decimals)
	rawUsdc, errUsdc := amount.ToRawUint64(usdcAmount, s.cfg.Usdc.Decimals)
	if errSui != nil || errUsdc != nil || rawSui == 0 || rawUsdc == 0 {
		return model.TxResult{}, invalidf("both amounts must be greater than zero")
	}

	var suiCoins, usdcCoins []sui.Coin
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		suiCoins, err = s.spendableCoins(gctx, owner, s.cfg.Sui, rawSui)
		return err
	})
	g.Go(func() error {
		var err error
		usdcCoins, err = s.spendableCoins(gctx, owner, s.cfg.Usdc, rawUsdc)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.TxResult{}, err
	}

	expected, err := s.simulateLP(ctx, rawSui, rawUsdc)
	if err != nil {
		return model.TxResult{}, fmt.Errorf("quote lp: %w", err)
	}
	minLP := amount.MinOut(expected)

	tx := sui.NewTransaction()
	poolArg, err := s.poolArg(ctx, tx, true)
	if err != nil {
		return model.TxResult{}, err
	}
	suiCoin := tx.SplitCoins(sui.GasCoin, tx.PureU64(rawSui))[0]
	usdcCoin, err := splitFrom(tx, usdcCoins, rawUsdc)
	if err != nil {
		return model.TxResult{}, err
	}
	tx.MoveCall(s.cfg.Package, moduleName, fnAddLiquidity, poolArg, suiCoin, usdcCoin, tx.PureU64(minLP))

	result := model.TxResult{
		Operation: "add_liquidity",
		Bounds:    map[string]uint64{"min_lp_out": minLP},
	}
	return s.submit(ctx, owner, tx, suiCoins, result)
}

// RemoveLiquidity burns lpAmount with per-token minimums derived from a fresh
// pool read. With zero LP supply both minimums are zero.
func (s *Service) RemoveLiquidity(ctx context.Context, lpAmount string) (model.TxResult, error) {
	owner, err := s.requireSigner()
	if err != nil {
		return model.TxResult{}, err
	}
	raw, err := parsePositive(lpAmount, s.cfg.LP)
	if err != nil {
		return model.TxResult{}, err
	}

	lpCoins, err := s.spendableCoins(ctx, owner, s.cfg.LP, raw)
	if err != nil {
		return model.TxResult{}, err
	}

	snap, err := s.readSnapshot(ctx)
	if err != nil {
		return model.TxResult{}, err
	}
	minSui, minUsdc := RemoveMinimums(raw, snap)

	tx := sui.NewTransaction()
	poolArg, err := s.poolArg(ctx, tx, true)
	if err != nil {
		return model.TxResult{}, err
	}
	lpCoin, err := splitFrom(tx, lpCoins, raw)
	if err != nil {
		return model.TxResult{}, err
	}
	tx.MoveCall(s.cfg.Package, moduleName, fnRemoveLiquidity, poolArg, lpCoin, tx.PureU64(minSui), tx.PureU64(minUsdc))

	result := model.TxResult{
		Operation: "remove_liquidity",
		Bounds:    map[string]uint64{"min_sui_out": minSui, "min_usdc_out": minUsdc},
	}
	return s.submit(ctx, owner, tx, nil, result)
}

// RemoveMinimums returns the slippage-bounded SUI and USDC payouts for burning lp.
func RemoveMinimums(lp uint64, snap model.PoolSnapshot) (uint64, uint64) {
	expectedSui := amount.ProRata(lp, snap.SuiReserve, snap.LPSupply)
	expectedUsdc := amount.ProRata(lp, snap.UsdcReserve, snap.LPSupply)
	return amount.MinOut(expectedSui), amount.MinOut(expectedUsdc)
}

// CollectFees withdraws all accrued fees. The admin check is a client-side
// convenience; the contract enforces authorization.
func (s *Service) CollectFees(ctx context.Context) (model.TxResult, error) {
	owner, err := s.requireSigner()
	if err != nil {
		return model.TxResult{}, err
	}
	if !s.IsAdmin(owner) {
		return model.TxResult{}, invalidf("%s is not the pool admin", owner)
	}

	fees, err := s.Fees(ctx)
	if err != nil {
		return model.TxResult{}, err
	}
	if fees.Sui == 0 && fees.Usdc == 0 {
		return model.TxResult{}, invalidf("no fees to collect")
	}

	tx := sui.NewTransaction()
	poolArg, err := s.poolArg(ctx, tx, true)
	if err != nil {
		return model.TxResult{}, err
	}
	tx.MoveCall(s.cfg.Package, moduleName, fnCollectFees, poolArg)

	return s.submit(ctx, owner, tx, nil, model.TxResult{Operation: "collect_fees"})
}

// IsAdmin reports whether addr is the configured admin.
func (s *Service) IsAdmin(addr sui.Address) bool {
	return !s.cfg.Admin.IsZero() && addr == s.cfg.Admin
}

func (s *Service) requireSigner() (sui.Address, error) {
	if s.signer == nil {
		return sui.Address{}, invalidf("no signing key configured")
	}
	return s.signer.Address(), nil
}

func parsePositive(input string, token model.TokenMeta) (uint64, error) {
	raw, err := amount.ToRawUint64(input, token.Decimals)
	if err != nil {
		return 0, invalidf("%s amount: %v", token.Symbol, err)
	}
	if raw == 0 {
		return 0, invalidf("%s amount must be greater than zero", token.Symbol)
	}
	return raw, nil
}

// spendableCoins fetches owner's coins of token and checks they cover need.
func (s *Service) spendableCoins(ctx context.Context, owner sui.Address, token model.TokenMeta, need uint64) ([]sui.Coin, error) {
	coins, err := s.chain.GetCoins(ctx, owner, token.CoinType)
	if err != nil {
		return nil, fmt.Errorf("read %s coins: %w", token.Symbol, err)
	}
	if len(coins) == 0 {
		return nil, invalidf("no spendable %s coins", token.Symbol)
	}
	if sumCoins(coins).Cmp(new(big.Int).SetUint64(need)) < 0 {
		return nil, invalidf("insufficient %s balance", token.Symbol)
	}
	return coins, nil
}

// splitFrom merges all coins into the first and splits value off it.
func splitFrom(tx *sui.Transaction, coins []sui.Coin, value uint64) (sui.Argument, error) {
	refs := make([]sui.Argument, 0, len(coins))
	for _, c := range coins {
		ref, err := sui.CoinRef(c)
		if err != nil {
			return sui.Argument{}, err
		}
		refs = append(refs, tx.OwnedObject(ref))
	}
	if len(refs) > 1 {
		tx.MergeCoins(refs[0], refs[1:]...)
	}
	return tx.SplitCoins(refs[0], tx.PureU64(value))[0], nil
}

func (s *Service) poolArg(ctx context.Context, tx *sui.Transaction, mutable bool) (sui.Argument, error) {
	version, err := s.chain.SharedVersion(ctx, s.cfg.Pool)
	if err != nil {
		return sui.Argument{}, fmt.Errorf("pool shared version: %w", err)
	}
	return tx.SharedObject(s.cfg.Pool, version, mutable), nil
}

func (s *Service) simulateSwap(ctx context.Context, dir Direction, raw uint64) (uint64, error) {
	values, err := s.inspect(ctx, dir.quoteFunction(), func(tx *sui.Transaction) []sui.Argument {
		return []sui.Argument{tx.PureU64(raw)}
	}, 1)
	if err != nil {
		return 0, err
	}
	return values[0], nil
}

func (s *Service) simulateLP(ctx context.Context, rawSui, rawUsdc uint64) (uint64, error) {
	values, err := s.inspect(ctx, fnLPForAmounts, func(tx *sui.Transaction) []sui.Argument {
		return []sui.Argument{tx.PureU64(rawSui), tx.PureU64(rawUsdc)}
	}, 1)
	if err != nil {
		return 0, err
	}
	return values[0], nil
}

// inspect dev-inspects function(pool, extra...) and decodes want u64 return values.
func (s *Service) inspect(ctx context.Context, function string, extra func(tx *sui.Transaction) []sui.Argument, want int) ([]uint64, error) {
	tx := sui.NewTransaction()
	poolArg, err := s.poolArg(ctx, tx, false)
	if err != nil {
		return nil, err
	}
	args := append([]sui.Argument{poolArg}, extra(tx)...)
	tx.MoveCall(s.cfg.Package, moduleName, function, args...)

	res, err := s.chain.DevInspect(ctx, s.inspectSender(), tx.Kind())
	if err != nil {
		return nil, err
	}
	if len(res.Results) == 0 || len(res.Results[0].ReturnValues) < want {
		return nil, fmt.Errorf("%s: expected %d return values", function, want)
	}

	out := make([]uint64, want)
	for i := 0; i < want; i++ {
		v, err := bcs.DecodeU64(res.Results[0].ReturnValues[i].Bytes)
		if err != nil {
			return nil, fmt.Errorf("%s return %d: %w", function, i, err)
		}
		out[i] = v
	}
	return out, nil
}

// submit signs and executes tx, paying gas from gasCoins or, when nil, from
// the owner's SUI coins. On success the pool cache entry is invalidated.
func (s *Service) submit(ctx context.Context, owner sui.Address, tx *sui.Transaction, gasCoins []sui.Coin, result model.TxResult) (model.TxResult, error) {
	if gasCoins == nil {
		coins, err := s.chain.GetCoins(ctx, owner, s.cfg.Sui.CoinType)
		if err != nil {
			return result, fmt.Errorf("read gas coins: %w", err)
		}
		if len(coins) == 0 {
			return result, invalidf("no SUI coins to pay gas")
		}
		gasCoins = coins
	}
	if len(gasCoins) > maxGasCoins {
		gasCoins = gasCoins[:maxGasCoins]
	}
	payment := make([]sui.ObjectRef, 0, len(gasCoins))
	for _, c := range gasCoins {
		ref, err := sui.CoinRef(c)
		if err != nil {
			return result, err
		}
		payment = append(payment, ref)
	}

	price, err := s.chain.ReferenceGasPrice(ctx)
	if err != nil {
		return result, err
	}
	txBytes, err := tx.Build(owner, sui.GasData{Payment: payment, Owner: owner, Price: price, Budget: s.cfg.GasBudget})
	if err != nil {
		return result, fmt.Errorf("build %s: %w", result.Operation, err)
	}
	sig, err := s.signer.Sign(txBytes)
	if err != nil {
		return result, fmt.Errorf("sign %s: %w", result.Operation, err)
	}

	resp, err := s.chain.Execute(ctx, txBytes, sig)
	if err != nil {
		s.logger.Error("transaction submit failed", zap.String("operation", result.Operation), zap.Error(err))
		return result, fmt.Errorf("%s failed: %w", result.Operation, err)
	}
	result.Digest = resp.Digest
	if resp.Effects != nil {
		result.Status = resp.Effects.Status.Status
	}
	if !resp.Succeeded() {
		reason := ""
		if resp.Effects != nil {
			reason = resp.Effects.Status.Error
		}
		s.logger.Error("transaction failed", zap.String("operation", result.Operation), zap.String("digest", resp.Digest), zap.String("reason", reason))
		return result, fmt.Errorf("%s failed: %s %s", result.Operation, result.Status, reason)
	}

	s.cache.Invalidate(ObjectKey(s.cfg.Pool))
	s.logger.Info("transaction executed",
		zap.String("operation", result.Operation),
		zap.String("digest", resp.Digest),
		zap.Any("bounds", result.Bounds),
	)
	return result, nil
}
