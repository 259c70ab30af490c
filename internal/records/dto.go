package records

import (
	"time"

	"github.com/agrogas/agrogas-backend/pkg/db/models"
	"github.com/agrogas/agrogas-backend/pkg/enums"
)

// CreateRecordInput is a farmer submission. The three pointer figures are
// required; the inference outputs are optional.
type CreateRecordInput struct {
	FarmerName        string   `json:"farmer_name" validate:"notblank"`
	Location          string   `json:"location" validate:"notblank"`
	Phone             string   `json:"phone" validate:"notblank"`
	MassKg            *float64 `json:"mass_kg" validate:"required,gte=0"`
	PredictedM3Biogas *float64 `json:"predicted_m3_biogas" validate:"required,gte=0"`
	RevenueEstimate   *float64 `json:"revenue_estimate" validate:"required,gte=0"`
	MoisturePercent   *float64 `json:"moisture_percent" validate:"omitempty,gte=0,lte=100"`
	VSFraction        *float64 `json:"vs_fraction" validate:"omitempty,gte=0,lte=1"`
	MassSource        string   `json:"mass_source" validate:"omitempty,oneof=measured predicted none"`
}

// RecordDTO is the transport shape of a record.
type RecordDTO struct {
	ID                int64            `json:"id"`
	FarmerName        string           `json:"farmer_name"`
	Location          string           `json:"location"`
	Phone             string           `json:"phone"`
	MassKg            *float64         `json:"mass_kg"`
	AvailableKg       *float64         `json:"available_kg"`
	MassSource        enums.MassSource `json:"mass_source"`
	MoisturePercent   *float64         `json:"moisture_percent"`
	VSFraction        *float64         `json:"vs_fraction"`
	PredictedM3Biogas *float64         `json:"predicted_m3_biogas"`
	RevenueEstimate   *float64         `json:"revenue_estimate"`
	UnitPrice         float64          `json:"unit_price"`
	Timestamp         time.Time        `json:"timestamp"`
}

func FromModel(r *models.Record) *RecordDTO {
	if r == nil {
		return nil
	}
	return &RecordDTO{
		ID:                r.ID,
		FarmerName:        r.FarmerName,
		Location:          r.Location,
		Phone:             r.Phone,
		MassKg:            r.MassKg,
		AvailableKg:       r.AvailableKg,
		MassSource:        r.MassSource,
		MoisturePercent:   r.MoisturePercent,
		VSFraction:        r.VSFraction,
		PredictedM3Biogas: r.PredictedM3Biogas,
		RevenueEstimate:   r.RevenueEstimate,
		UnitPrice:         r.UnitPrice(),
		Timestamp:         r.CreatedAt,
	}
}
