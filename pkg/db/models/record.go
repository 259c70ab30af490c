package models

import (
	"time"

	"github.com/agrogas/agrogas-backend/pkg/enums"
)

// Record is a farmer's biomass submission. AvailableKg starts equal to MassKg
// and only ever decreases as orders draw from it.
type Record struct {
	ID                int64            `gorm:"column:id;primaryKey;autoIncrement"`
	FarmerName        string           `gorm:"column:farmer_name;not null"`
	Location          string           `gorm:"column:location;not null"`
	Phone             string           `gorm:"column:phone;not null"`
	MassKg            *float64         `gorm:"column:mass_kg"`
	AvailableKg       *float64         `gorm:"column:available_kg"`
	MassSource        enums.MassSource `gorm:"column:mass_source;not null;default:'none'"`
	MoisturePercent   *float64         `gorm:"column:moisture_percent"`
	VSFraction        *float64         `gorm:"column:vs_fraction"`
	PredictedM3Biogas *float64         `gorm:"column:predicted_m3_biogas"`
	RevenueEstimate   *float64         `gorm:"column:revenue_estimate"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
}

// Available is the quantity an order may draw: available_kg, falling back to
// mass_kg for rows written before availability was tracked, else zero.
func (r Record) Available() float64 {
	switch {
	case r.AvailableKg != nil:
		return *r.AvailableKg
	case r.MassKg != nil:
		return *r.MassKg
	default:
		return 0
	}
}

// UnitPrice is the per-kg price implied by the revenue estimate. Records
// without a usable mass or revenue price at zero.
func (r Record) UnitPrice() float64 {
	if r.MassKg == nil || *r.MassKg == 0 || r.RevenueEstimate == nil || *r.RevenueEstimate == 0 {
		return 0
	}
	return *r.RevenueEstimate / *r.MassKg
}
