package records

import (
	"context"
	"sort"

	"github.com/agrogas/agrogas-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Inventory exposes the locked-read and guarded-decrement pair the order
// ledger needs, bound to the caller's transaction.
type Inventory struct {
	repo Repository
}

func NewInventory(repo Repository) *Inventory {
	return &Inventory{repo: repo}
}

// Lock row-locks the distinct ids and returns the records found, keyed by id.
func (i *Inventory) Lock(ctx context.Context, tx *gorm.DB, ids []int64) (map[int64]models.Record, error) {
	distinct := uniqueSorted(ids)
	found, err := i.repo.WithTx(tx).LockByIDs(ctx, distinct)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]models.Record, len(found))
	for _, rec := range found {
		out[rec.ID] = rec
	}
	return out, nil
}

// Decrement draws qty from the record inside tx.
func (i *Inventory) Decrement(ctx context.Context, tx *gorm.DB, id int64, qty float64) (bool, error) {
	return i.repo.WithTx(tx).DecrementAvailable(ctx, id, qty)
}

func uniqueSorted(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}
