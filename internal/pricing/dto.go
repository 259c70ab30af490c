package pricing

import "github.com/agrogas/agrogas-backend/pkg/db/models"

// ConfigDTO keeps the upper-case keys existing admin clients already send.
type ConfigDTO struct {
	PricePerM3             float64 `json:"PRICE_PER_M3"`
	DefaultYieldPerKgVS    float64 `json:"DEFAULT_YIELD_PER_KGVS"`
	DefaultMethaneFraction float64 `json:"DEFAULT_METHANE_FRACTION"`
}

type UpdateConfigInput struct {
	PricePerM3             *float64 `json:"PRICE_PER_M3" validate:"required,gte=0"`
	DefaultYieldPerKgVS    *float64 `json:"DEFAULT_YIELD_PER_KGVS" validate:"required,gte=0"`
	DefaultMethaneFraction *float64 `json:"DEFAULT_METHANE_FRACTION" validate:"required,gte=0,lte=1"`
}

// EstimateInput carries the inference outputs plus an optional scale reading.
type EstimateInput struct {
	MassKg          *float64 `json:"mass_kg"`
	MoisturePercent float64  `json:"moisture_percent"`
	VSFraction      float64  `json:"vs_fraction"`
}

type EstimateDTO struct {
	Crop              string  `json:"crop"`
	MassKg            float64 `json:"mass_kg"`
	MassSource        string  `json:"mass_source"`
	MoisturePercent   float64 `json:"moisture_percent"`
	VSFraction        float64 `json:"vs_fraction"`
	PredictedM3Biogas float64 `json:"predicted_m3_biogas"`
	PredictedM3CH4    float64 `json:"predicted_m3_ch4"`
	PricePerM3        float64 `json:"price_per_m3"`
	RevenueEstimate   float64 `json:"revenue_estimate"`
	Recommendation    string  `json:"recommendation"`
}

func FromModel(cfg *models.PricingConfig) ConfigDTO {
	return ConfigDTO{
		PricePerM3:             cfg.PricePerM3,
		DefaultYieldPerKgVS:    cfg.DefaultYieldPerKgVS,
		DefaultMethaneFraction: cfg.DefaultMethaneFraction,
	}
}
