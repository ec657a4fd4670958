package models

import "time"

// TradeKind distinguishes the two directions a trade can take.
type TradeKind string

const (
	TradeKindBuy  TradeKind = "buy"
	TradeKindSell TradeKind = "sell"
)

// Trade is one immutable entry in the trade ledger. Records are only ever
// appended; corrections are made by appending a compensating trade.
type Trade struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Kind         TradeKind `gorm:"not null;index:ix_trades_kind" json:"kind"`
	Mint         string    `gorm:"not null;index:ix_trades_mint" json:"mint"`
	InputToken   string    `gorm:"not null" json:"input_token"`
	InputAmount  float64   `gorm:"not null" json:"input_amount"`
	OutputToken  string    `gorm:"not null" json:"output_token"`
	OutputAmount float64   `gorm:"not null" json:"output_amount"`
	Timestamp    time.Time `gorm:"not null" json:"timestamp"`
	SlippageBps  int       `gorm:"not null" json:"slippage_bps"`
}
