package controllers

import (
	"net/http"

	"github.com/agrogas/agrogas-backend/api/responses"
	"github.com/agrogas/agrogas-backend/api/validators"
	"github.com/agrogas/agrogas-backend/internal/pricing"
	pkgerrors "github.com/agrogas/agrogas-backend/pkg/errors"
	"github.com/agrogas/agrogas-backend/pkg/logger"
)

// Estimate turns inference outputs into a biogas and revenue projection
// using the live pricing row.
func Estimate(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		var body pricing.EstimateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out, err := svc.Estimate(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func AdminGetConfig(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}
		cfg, err := svc.GetConfig(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cfg)
	}
}

func AdminUpdateConfig(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		var body pricing.UpdateConfigInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cfg, err := svc.UpdateConfig(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"price_per_m3":             cfg.PricePerM3,
				"default_yield_per_kgvs":   cfg.DefaultYieldPerKgVS,
				"default_methane_fraction": cfg.DefaultMethaneFraction,
			})
			logg.Info(ctx, "pricing.config_updated")
		}
		responses.WriteSuccess(w, cfg)
	}
}
