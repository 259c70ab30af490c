package pricing

import (
	"context"

	"github.com/agrogas/agrogas-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository reads and writes the pricing row.
type Repository interface {
	Current(ctx context.Context) (*models.PricingConfig, error)
	Create(ctx context.Context, cfg *models.PricingConfig) error
	Save(ctx context.Context, cfg *models.PricingConfig) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Current returns the oldest row; gorm.ErrRecordNotFound when none exists yet.
func (r *repository) Current(ctx context.Context) (*models.PricingConfig, error) {
	var cfg models.PricingConfig
	if err := r.db.WithContext(ctx).Order("id ASC").First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *repository) Create(ctx context.Context, cfg *models.PricingConfig) error {
	return r.db.WithContext(ctx).Create(cfg).Error
}

func (r *repository) Save(ctx context.Context, cfg *models.PricingConfig) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}
