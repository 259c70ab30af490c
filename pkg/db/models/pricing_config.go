package models

import "time"

// PricingConfig is the single row of tunable estimate parameters.
type PricingConfig struct {
	ID                     int64     `gorm:"column:id;primaryKey;autoIncrement"`
	PricePerM3             float64   `gorm:"column:price_per_m3;not null"`
	DefaultYieldPerKgVS    float64   `gorm:"column:default_yield_per_kgvs;not null"`
	DefaultMethaneFraction float64   `gorm:"column:default_methane_fraction;not null"`
	UpdatedAt              time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
