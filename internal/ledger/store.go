package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/trungthanh-tran/solana-trade-simulator/internal/models"
	"gorm.io/gorm"
)

// Store is the append-only trade ledger. There is deliberately no update or
// delete: corrections are appended as compensating trades.
type Store interface {
	// Append persists the trade and returns it with the store-assigned id.
	// The write is durable before Append returns. A zero Timestamp is
	// replaced with the current time.
	Append(ctx context.Context, trade models.Trade) (models.Trade, error)

	// ByMint returns every trade for the mint in ascending id order.
	// An empty slice, not an error, when no trades exist.
	ByMint(ctx context.Context, mint string) ([]models.Trade, error)
}

// GormStore implements Store on a GORM-managed database. Id assignment is
// serialized by the database's autoincrement primary key, so concurrent
// appends never share an id or lose a record.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

// NewGormStore creates a ledger store backed by the given database handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Append(ctx context.Context, trade models.Trade) (models.Trade, error) {
	if trade.ID != 0 {
		return models.Trade{}, fmt.Errorf("ledger append: id must be unset, got %d", trade.ID)
	}
	if trade.Timestamp.IsZero() {
		trade.Timestamp = time.Now()
	}

	if err := s.db.WithContext(ctx).Create(&trade).Error; err != nil {
		return models.Trade{}, fmt.Errorf("ledger append: %w", err)
	}
	return trade, nil
}

func (s *GormStore) ByMint(ctx context.Context, mint string) ([]models.Trade, error) {
	var trades []models.Trade
	err := s.db.WithContext(ctx).
		Where("mint = ?", mint).
		Order("id ASC").
		Find(&trades).Error
	if err != nil {
		return nil, fmt.Errorf("ledger query for mint %s: %w", mint, err)
	}
	return trades, nil
}
