package pnl

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trungthanh-tran/solana-trade-simulator/internal/models"
)

const mint = "CAMINT"

func buy(baseIn, assetOut float64) models.Trade {
	return models.Trade{
		Kind:         models.TradeKindBuy,
		Mint:         mint,
		InputToken:   "SOL",
		InputAmount:  baseIn,
		OutputToken:  "CA",
		OutputAmount: assetOut,
	}
}

func sell(assetIn, baseOut float64) models.Trade {
	return models.Trade{
		Kind:         models.TradeKindSell,
		Mint:         mint,
		InputToken:   "CA",
		InputAmount:  assetIn,
		OutputToken:  "SOL",
		OutputAmount: baseOut,
	}
}

func fixedQuote(value float64) QuoteFunc {
	return func(string, float64) (float64, error) { return value, nil }
}

func failingQuote(string, float64) (float64, error) {
	return 0, errors.New("quote provider down")
}

func TestComputeNoTrades(t *testing.T) {
	_, err := Compute(mint, nil, fixedQuote(1))
	assert.ErrorIs(t, err, ErrNoTrades)
}

func TestComputeFullRoundTrip(t *testing.T) {
	// Buy 1.0 SOL -> 2.0 CA, then sell all 2.0 CA for 1.5 SOL.
	trades := []models.Trade{
		buy(1.0, 2.0),
		sell(2.0, 1.5),
	}

	result, err := Compute(mint, trades, func(string, float64) (float64, error) {
		t.Fatal("quote must not be requested for a flat position")
		return 0, nil
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.5, result.RealizedPnL, 1e-12)
	assert.Equal(t, 0.0, result.UnrealizedPnL)
	assert.True(t, result.UnrealizedAvailable)
	assert.InDelta(t, 0.5, result.TotalPnL, 1e-12)
	assert.Equal(t, 0.0, result.RemainingAsset)
}

func TestComputePartialSellWithOpenPosition(t *testing.T) {
	// Two buys: 1.0 SOL -> 2.0 CA and 3.0 SOL -> 6.0 CA (avg price 0.5),
	// then sell 4.0 CA for 2.5 SOL. Remaining 4.0 CA quoted at 1.8 SOL.
	trades := []models.Trade{
		buy(1.0, 2.0),
		buy(3.0, 6.0),
		sell(4.0, 2.5),
	}

	result, err := Compute(mint, trades, fixedQuote(1.8))
	require.NoError(t, err)

	assert.InDelta(t, 4.0, result.TotalBaseSpent, 1e-12)
	assert.InDelta(t, 8.0, result.TotalAssetBought, 1e-12)
	assert.InDelta(t, 2.5, result.TotalBaseReceived, 1e-12)
	assert.InDelta(t, 4.0, result.TotalAssetSold, 1e-12)
	assert.InDelta(t, 0.5, result.AvgBuyPrice, 1e-12)
	assert.InDelta(t, 0.5, result.RealizedPnL, 1e-12)
	assert.InDelta(t, 4.0, result.RemainingAsset, 1e-12)
	assert.InDelta(t, -0.2, result.UnrealizedPnL, 1e-12)
	assert.True(t, result.UnrealizedAvailable)
	assert.InDelta(t, 0.3, result.TotalPnL, 1e-12)
}

func TestComputeQuoteFailureDegradesToRealized(t *testing.T) {
	trades := []models.Trade{
		buy(2.0, 4.0),
		sell(1.0, 0.8),
	}

	result, err := Compute(mint, trades, failingQuote)
	require.NoError(t, err)

	assert.False(t, result.UnrealizedAvailable)
	assert.Equal(t, 0.0, result.UnrealizedPnL)
	assert.InDelta(t, 0.8-2.0*0.25, result.RealizedPnL, 1e-12)
	assert.InDelta(t, result.RealizedPnL, result.TotalPnL, 1e-12)
}

func TestComputeNegativeRemainingReported(t *testing.T) {
	// Sells exceed recorded buys: remaining goes negative and must be
	// reported, not clamped; no quote is requested.
	trades := []models.Trade{
		buy(1.0, 2.0),
		sell(3.0, 2.0),
	}

	result, err := Compute(mint, trades, func(string, float64) (float64, error) {
		t.Fatal("quote must not be requested for a non-positive position")
		return 0, nil
	})
	require.NoError(t, err)

	assert.InDelta(t, -1.0, result.RemainingAsset, 1e-12)
	assert.Equal(t, 0.0, result.UnrealizedPnL)
	assert.True(t, result.UnrealizedAvailable)
}

func TestComputeSellsWithoutBuys(t *testing.T) {
	// Zero buys guards the divisions: sold fraction and avg price are 0,
	// realized PnL is just the proceeds.
	trades := []models.Trade{sell(2.0, 1.5)}

	result, err := Compute(mint, trades, nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.AvgBuyPrice)
	assert.InDelta(t, 1.5, result.RealizedPnL, 1e-12)
	assert.InDelta(t, -2.0, result.RemainingAsset, 1e-12)
}

func TestComputeZeroOutputBuyAccepted(t *testing.T) {
	// A degenerate quote can record a buy with zero output. The record is
	// market data, not an error, and must flow through the fold.
	trades := []models.Trade{buy(1.0, 0.0)}

	result, err := Compute(mint, trades, nil)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, result.TotalBaseSpent, 1e-12)
	assert.Equal(t, 0.0, result.TotalAssetBought)
	assert.Equal(t, 0.0, result.RealizedPnL)
}

func TestRealizedPnLFormulaProperty(t *testing.T) {
	// realized = received - spent * sold/bought must hold for arbitrary
	// buy/sell sequences with at least one buy.
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(10)
		trades := []models.Trade{buy(1+rng.Float64()*10, 1+rng.Float64()*10)}
		for j := 1; j < n; j++ {
			if rng.Intn(2) == 0 {
				trades = append(trades, buy(rng.Float64()*10, rng.Float64()*10))
			} else {
				trades = append(trades, sell(rng.Float64()*10, rng.Float64()*10))
			}
		}

		pos := Fold(mint, trades)
		result, err := Compute(mint, trades, failingQuote)
		require.NoError(t, err)

		expected := pos.TotalBaseReceived - pos.TotalBaseSpent*(pos.TotalAssetSold/pos.TotalAssetBought)
		assert.InDelta(t, expected, result.RealizedPnL, 1e-9)
	}
}
