package models

// Position is the running total of all ledger entries for one mint.
// It is derived by folding trades in id order and is never persisted.
type Position struct {
	Mint              string  `json:"mint"`
	TotalBaseSpent    float64 `json:"total_base_spent"`
	TotalAssetBought  float64 `json:"total_asset_bought"`
	TotalBaseReceived float64 `json:"total_base_received"`
	TotalAssetSold    float64 `json:"total_asset_sold"`
}

// Remaining returns the asset quantity still held. A negative value means
// recorded sells exceed recorded buys and is reported as-is so callers can
// detect the inconsistency.
func (p Position) Remaining() float64 {
	return p.TotalAssetBought - p.TotalAssetSold
}
