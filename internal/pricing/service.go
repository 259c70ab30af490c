package pricing

import (
	"context"
	"fmt"
	"math"

	"github.com/agrogas/agrogas-backend/pkg/config"
	"github.com/agrogas/agrogas-backend/pkg/db"
	"github.com/agrogas/agrogas-backend/pkg/db/models"
	pkgerrors "github.com/agrogas/agrogas-backend/pkg/errors"
)

// Service owns the global pricing parameters and the estimate built on them.
type Service interface {
	GetConfig(ctx context.Context) (ConfigDTO, error)
	UpdateConfig(ctx context.Context, input UpdateConfigInput) (ConfigDTO, error)
	Estimate(ctx context.Context, input EstimateInput) (*EstimateDTO, error)
}

type service struct {
	repo     Repository
	defaults config.PricingConfig
}

// NewService builds the pricing service. defaults seed the row the first
// time it is read.
func NewService(repo Repository, defaults config.PricingConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	return &service{repo: repo, defaults: defaults}, nil
}

func (s *service) GetConfig(ctx context.Context) (ConfigDTO, error) {
	cfg, err := s.current(ctx)
	if err != nil {
		return ConfigDTO{}, err
	}
	return FromModel(cfg), nil
}

func (s *service) UpdateConfig(ctx context.Context, input UpdateConfigInput) (ConfigDTO, error) {
	if err := validateUpdate(input); err != nil {
		return ConfigDTO{}, err
	}
	cfg, err := s.current(ctx)
	if err != nil {
		return ConfigDTO{}, err
	}
	cfg.PricePerM3 = *input.PricePerM3
	cfg.DefaultYieldPerKgVS = *input.DefaultYieldPerKgVS
	cfg.DefaultMethaneFraction = *input.DefaultMethaneFraction
	if err := s.repo.Save(ctx, cfg); err != nil {
		return ConfigDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save pricing config")
	}
	return FromModel(cfg), nil
}

// Estimate always reads the stored row so admin edits apply to the next call.
func (s *service) Estimate(ctx context.Context, input EstimateInput) (*EstimateDTO, error) {
	if input.MassKg != nil && (math.IsNaN(*input.MassKg) || *input.MassKg < 0) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mass_kg must be >= 0").
			WithDetails(map[string]any{"field": "mass_kg", "rule": "gte"})
	}
	cfg, err := s.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	out := estimate(cfg, input)
	return &out, nil
}

func (s *service) current(ctx context.Context) (*models.PricingConfig, error) {
	cfg, err := s.repo.Current(ctx)
	if err == nil {
		return cfg, nil
	}
	if !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pricing config")
	}
	seed := &models.PricingConfig{
		PricePerM3:             s.defaults.PricePerM3,
		DefaultYieldPerKgVS:    s.defaults.DefaultYieldPerKgVS,
		DefaultMethaneFraction: s.defaults.DefaultMethaneFraction,
	}
	if err := s.repo.Create(ctx, seed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seed pricing config")
	}
	return seed, nil
}

func validateUpdate(in UpdateConfigInput) error {
	fields := []struct {
		name     string
		value    *float64
		min, max float64
	}{
		{"PRICE_PER_M3", in.PricePerM3, 0, math.MaxFloat64},
		{"DEFAULT_YIELD_PER_KGVS", in.DefaultYieldPerKgVS, 0, math.MaxFloat64},
		{"DEFAULT_METHANE_FRACTION", in.DefaultMethaneFraction, 0, 1},
	}
	for _, f := range fields {
		if f.value == nil {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "missing: %s", f.name).
				WithDetails(map[string]any{"field": f.name, "rule": "required"})
		}
		if v := *f.value; math.IsNaN(v) || v < f.min || v > f.max {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "%s out of range", f.name).
				WithDetails(map[string]any{"field": f.name, "rule": "range", "min": f.min, "max": f.max})
		}
	}
	return nil
}
