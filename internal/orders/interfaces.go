package orders

import (
	"context"
	"time"

	"github.com/agrogas/agrogas-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository defines persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	ListOrders(ctx context.Context) ([]models.Order, error)
}

// Inventory is the record stock the ledger draws from. Both calls run inside
// the caller's transaction.
type Inventory interface {
	Lock(ctx context.Context, tx *gorm.DB, ids []int64) (map[int64]models.Record, error)
	Decrement(ctx context.Context, tx *gorm.DB, id int64, qty float64) (bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Recorder receives ledger outcomes; *metrics.OrderMetrics satisfies it.
type Recorder interface {
	ObservePlaced(totalKg float64, elapsed time.Duration)
	ObserveFailure(code string, elapsed time.Duration)
}
