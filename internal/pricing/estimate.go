package pricing

import (
	"math"

	"github.com/agrogas/agrogas-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

const (
	cropBanana = "banana"

	recommendChop = "Chop <20mm"
	recommendDry  = "Dry slightly before feed"

	// VS fractions above this break down faster once chopped.
	chopThreshold = 0.6
)

// estimate derives gas volume and revenue from a measured mass and the
// predicted composition, using the current pricing row.
func estimate(cfg ConfigDTO, in EstimateInput) EstimateDTO {
	moisture := clamp(in.MoisturePercent, 0, 100)
	vs := clamp(in.VSFraction, 0, 1)

	mass := 0.0
	source := enums.MassSourceNone
	if in.MassKg != nil {
		mass = *in.MassKg
		source = enums.MassSourceMeasured
	}

	biogas := 0.0
	if mass != 0 && vs != 0 {
		biogas = round(mass*vs*cfg.DefaultYieldPerKgVS, 3)
	}
	methane := round(biogas*cfg.DefaultMethaneFraction, 3)
	revenue := round(biogas*cfg.PricePerM3, 2)

	rec := recommendDry
	if vs > chopThreshold {
		rec = recommendChop
	}

	return EstimateDTO{
		Crop:              cropBanana,
		MassKg:            round(mass, 3),
		MassSource:        source.String(),
		MoisturePercent:   moisture,
		VSFraction:        vs,
		PredictedM3Biogas: biogas,
		PredictedM3CH4:    methane,
		PricePerM3:        cfg.PricePerM3,
		RevenueEstimate:   revenue,
		Recommendation:    rec,
	}
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v):
		return lo
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
