// Package pnl derives profit-and-loss figures from a slice of ledger trades
// using an average-cost-basis model. It performs no I/O of its own; the only
// external dependency is an optional quote lookup for valuing the open
// position, injected as a function.
package pnl

import (
	"errors"

	"github.com/trungthanh-tran/solana-trade-simulator/internal/models"
)

// ErrNoTrades is returned when PnL is requested for a mint with no ledger entries.
var ErrNoTrades = errors.New("no trades found for this mint")

// QuoteFunc values an asset amount in the base currency.
type QuoteFunc func(mint string, amount float64) (float64, error)

// Result carries the PnL figures together with every intermediate aggregate,
// so callers can audit the numbers rather than trust the final ones.
type Result struct {
	Mint              string  `json:"mint"`
	TotalBaseSpent    float64 `json:"total_base_spent"`
	TotalAssetBought  float64 `json:"total_asset_bought"`
	TotalBaseReceived float64 `json:"total_base_received"`
	TotalAssetSold    float64 `json:"total_asset_sold"`
	RemainingAsset    float64 `json:"remaining_asset"`
	AvgBuyPrice       float64 `json:"avg_buy_price"`
	RealizedPnL       float64 `json:"realized_pnl"`
	UnrealizedPnL     float64 `json:"unrealized_pnl"`
	// UnrealizedAvailable is false when the open position could not be
	// valued because the quote lookup failed. UnrealizedPnL is zero in
	// that case and TotalPnL covers the realized part only.
	UnrealizedAvailable bool    `json:"unrealized_available"`
	TotalPnL            float64 `json:"total_pnl"`
}

// Fold accumulates the trades of one mint into a position. Trades must be in
// ledger id order; the fold itself is order-insensitive but downstream
// consumers rely on that convention.
func Fold(mint string, trades []models.Trade) models.Position {
	pos := models.Position{Mint: mint}
	for _, trade := range trades {
		switch trade.Kind {
		case models.TradeKindBuy:
			pos.TotalBaseSpent += trade.InputAmount
			pos.TotalAssetBought += trade.OutputAmount
		case models.TradeKindSell:
			pos.TotalBaseReceived += trade.OutputAmount
			pos.TotalAssetSold += trade.InputAmount
		}
	}
	return pos
}

// Compute calculates realized and unrealized PnL for the given trades.
//
// Realized PnL attributes an average cost to the sold fraction of all buys.
// Unrealized PnL values the remaining position at a fresh quote; when the
// quote lookup fails the computation degrades to realized-only and flags
// the degradation via UnrealizedAvailable instead of failing outright.
func Compute(mint string, trades []models.Trade, quote QuoteFunc) (Result, error) {
	if len(trades) == 0 {
		return Result{}, ErrNoTrades
	}

	pos := Fold(mint, trades)

	soldFraction := 0.0
	avgBuyPrice := 0.0
	if pos.TotalAssetBought > 0 {
		soldFraction = pos.TotalAssetSold / pos.TotalAssetBought
		avgBuyPrice = pos.TotalBaseSpent / pos.TotalAssetBought
	}
	costOfSold := pos.TotalBaseSpent * soldFraction
	realized := pos.TotalBaseReceived - costOfSold

	remaining := pos.Remaining()
	unrealized := 0.0
	unrealizedAvailable := true
	if remaining > 0 && quote != nil {
		currentValue, err := quote(mint, remaining)
		if err != nil {
			unrealizedAvailable = false
		} else {
			unrealized = currentValue - avgBuyPrice*remaining
		}
	}

	return Result{
		Mint:                mint,
		TotalBaseSpent:      pos.TotalBaseSpent,
		TotalAssetBought:    pos.TotalAssetBought,
		TotalBaseReceived:   pos.TotalBaseReceived,
		TotalAssetSold:      pos.TotalAssetSold,
		RemainingAsset:      remaining,
		AvgBuyPrice:         avgBuyPrice,
		RealizedPnL:         realized,
		UnrealizedPnL:       unrealized,
		UnrealizedAvailable: unrealizedAvailable,
		TotalPnL:            realized + unrealized,
	}, nil
}
