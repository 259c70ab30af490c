package records

import (
	"context"

	"github.com/agrogas/agrogas-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// availableExpr mirrors models.Record.Available in SQL.
const availableExpr = "COALESCE(available_kg, mass_kg, 0)"

// Repository defines persistence operations for farmer records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.Record) error
	List(ctx context.Context) ([]models.Record, error)
	FindByID(ctx context.Context, id int64) (*models.Record, error)
	LockByIDs(ctx context.Context, ids []int64) ([]models.Record, error)
	DecrementAvailable(ctx context.Context, id int64, qty float64) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a records repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// List returns every record, newest first.
func (r *repository) List(ctx context.Context) ([]models.Record, error) {
	var out []models.Record
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Record, error) {
	var record models.Record
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// LockByIDs reads the given records with SELECT ... FOR UPDATE in ascending id
// order, so concurrent callers always acquire row locks in the same sequence.
// Missing ids are simply absent from the result. Must run inside a transaction.
func (r *repository) LockByIDs(ctx context.Context, ids []int64) ([]models.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []models.Record
	if err := lockedByIDs(r.db.WithContext(ctx), ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// lockedByIDs scopes q to ids in ascending order with an exclusive row lock.
// sqlite serializes writers per database and has no row locks.
func lockedByIDs(q *gorm.DB, ids []int64) *gorm.DB {
	if q.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}
	return q.Where("id IN ?", ids).Order("id ASC")
}

// DecrementAvailable subtracts qty from the record's availability, flooring at
// zero. The update only applies while availability still covers qty; false
// means it did not, and nothing changed.
func (r *repository) DecrementAvailable(ctx context.Context, id int64, qty float64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Record{}).
		Where("id = ?", id).
		Where(availableExpr+" >= ?", qty).
		UpdateColumn("available_kg", gorm.Expr(
			"CASE WHEN "+availableExpr+" - ? < 0 THEN 0 ELSE "+availableExpr+" - ? END", qty, qty,
		))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
