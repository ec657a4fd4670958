package trader

import (
	"context"
	"errors"

	"github.com/trungthanh-tran/solana-trade-simulator/internal/config"
	"github.com/trungthanh-tran/solana-trade-simulator/internal/jupiter"
	"github.com/trungthanh-tran/solana-trade-simulator/internal/ledger"
	"github.com/trungthanh-tran/solana-trade-simulator/internal/models"
	"github.com/trungthanh-tran/solana-trade-simulator/internal/pnl"
	"go.uber.org/zap"
)

// TradeResult is the outcome of a successful buy or sell.
type TradeResult struct {
	Trade models.Trade `json:"trade"`
	// Price is the effective base-per-asset price of this trade. Zero when
	// the provider returned a degenerate quote.
	Price float64 `json:"price"`
}

// Service orchestrates buy/sell intents: one quote, then one ledger append.
// It holds no per-request state; every method is safe for concurrent use.
type Service struct {
	cfg    *config.Trading
	logger *zap.Logger
	quotes jupiter.QuoteClientInterface
	store  ledger.Store
}

// NewService creates a new trade orchestrator.
func NewService(cfg *config.Trading, logger *zap.Logger, quotes jupiter.QuoteClientInterface, store ledger.Store) *Service {
	return &Service{
		cfg:    cfg,
		logger: logger,
		quotes: quotes,
		store:  store,
	}
}

// slippage substitutes the configured default when the caller passed no
// tolerance of their own.
func (s *Service) slippage(bps int) int {
	if bps <= 0 {
		return s.cfg.DefaultSlippageBps
	}
	return bps
}

// Buy spends baseAmount of the base currency on the given mint.
func (s *Service) Buy(ctx context.Context, mint string, baseAmount float64, slippageBps int) (*TradeResult, error) {
	slippageBps = s.slippage(slippageBps)
	if err := validateIntent(mint, baseAmount, slippageBps); err != nil {
		return nil, err
	}

	outAmount, err := s.quotes.GetQuote(ctx, s.cfg.BaseMint, mint, baseAmount, slippageBps)
	if err != nil {
		return nil, newError(KindQuoteUnavailable, "buy quote for mint %s: %w", mint, err)
	}

	trade := models.Trade{
		Kind:         models.TradeKindBuy,
		Mint:         mint,
		InputToken:   s.cfg.BaseSymbol,
		InputAmount:  baseAmount,
		OutputToken:  s.cfg.AssetSymbol,
		OutputAmount: outAmount,
		SlippageBps:  slippageBps,
	}
	return s.record(ctx, trade)
}

// Sell trades assetAmount of the mint back into the base currency.
func (s *Service) Sell(ctx context.Context, mint string, assetAmount float64, slippageBps int) (*TradeResult, error) {
	slippageBps = s.slippage(slippageBps)
	if err := validateIntent(mint, assetAmount, slippageBps); err != nil {
		return nil, err
	}

	outAmount, err := s.quotes.GetQuote(ctx, mint, s.cfg.BaseMint, assetAmount, slippageBps)
	if err != nil {
		return nil, newError(KindQuoteUnavailable, "sell quote for mint %s: %w", mint, err)
	}

	trade := models.Trade{
		Kind:         models.TradeKindSell,
		Mint:         mint,
		InputToken:   s.cfg.AssetSymbol,
		InputAmount:  assetAmount,
		OutputToken:  s.cfg.BaseSymbol,
		OutputAmount: outAmount,
		SlippageBps:  slippageBps,
	}
	return s.record(ctx, trade)
}

// SellAll sells the entire remaining position for the mint.
func (s *Service) SellAll(ctx context.Context, mint string, slippageBps int) (*TradeResult, error) {
	if mint == "" {
		return nil, newError(KindInvalidInput, "mint must not be empty")
	}

	trades, err := s.store.ByMint(ctx, mint)
	if err != nil {
		return nil, newError(KindStorageFailure, "position lookup for mint %s: %w", mint, err)
	}

	remaining := pnl.Fold(mint, trades).Remaining()
	if remaining <= 0 {
		return nil, newError(KindNoHoldings, "no tokens held for mint %s", mint)
	}

	return s.Sell(ctx, mint, remaining, slippageBps)
}

// PnL computes realized and unrealized profit for the mint's ledger history.
func (s *Service) PnL(ctx context.Context, mint string) (*pnl.Result, error) {
	if mint == "" {
		return nil, newError(KindInvalidInput, "mint must not be empty")
	}

	trades, err := s.store.ByMint(ctx, mint)
	if err != nil {
		return nil, newError(KindStorageFailure, "ledger read for mint %s: %w", mint, err)
	}

	quoteFn := func(mint string, amount float64) (float64, error) {
		return s.quotes.GetQuote(ctx, mint, s.cfg.BaseMint, amount, s.cfg.DefaultSlippageBps)
	}

	result, err := pnl.Compute(mint, trades, quoteFn)
	if err != nil {
		if errors.Is(err, pnl.ErrNoTrades) {
			return nil, newError(KindNoTrades, "pnl for mint %s: %w", mint, err)
		}
		return nil, newError(KindStorageFailure, "pnl for mint %s: %w", mint, err)
	}

	if !result.UnrealizedAvailable {
		s.logger.Warn("Open position could not be valued, reporting realized PnL only",
			zap.String("mint", mint),
			zap.Float64("remaining_asset", result.RemainingAsset),
		)
	}
	return &result, nil
}

// record appends the trade to the ledger after a final cancellation check.
// The check keeps an abandoned request from committing a write on the back
// of a quote the caller never saw.
func (s *Service) record(ctx context.Context, trade models.Trade) (*TradeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, newError(KindQuoteUnavailable, "request abandoned before append: %w", err)
	}

	stored, err := s.store.Append(ctx, trade)
	if err != nil {
		return nil, newError(KindStorageFailure, "ledger append for mint %s: %w", trade.Mint, err)
	}

	price := 0.0
	switch {
	case stored.Kind == models.TradeKindBuy && stored.OutputAmount > 0:
		price = stored.InputAmount / stored.OutputAmount
	case stored.Kind == models.TradeKindSell && stored.InputAmount > 0:
		price = stored.OutputAmount / stored.InputAmount
	}

	s.logger.Info("Trade recorded",
		zap.Uint("trade_id", stored.ID),
		zap.String("kind", string(stored.Kind)),
		zap.String("mint", stored.Mint),
		zap.Float64("input_amount", stored.InputAmount),
		zap.Float64("output_amount", stored.OutputAmount),
	)

	return &TradeResult{Trade: stored, Price: price}, nil
}

func validateIntent(mint string, amount float64, slippageBps int) error {
	if mint == "" {
		return newError(KindInvalidInput, "mint must not be empty")
	}
	if amount <= 0 {
		return newError(KindInvalidInput, "amount must be positive, got %f", amount)
	}
	if slippageBps < 0 || slippageBps > 10000 {
		return newError(KindInvalidInput, "slippage must be within 0-10000 bps, got %d", slippageBps)
	}
	return nil
}
