package records

import (
	"context"
	"fmt"
	"strings"

	"github.com/agrogas/agrogas-backend/pkg/db"
	"github.com/agrogas/agrogas-backend/pkg/db/models"
	"github.com/agrogas/agrogas-backend/pkg/enums"
	pkgerrors "github.com/agrogas/agrogas-backend/pkg/errors"
)

// Service manages farmer submissions.
type Service interface {
	CreateRecord(ctx context.Context, input CreateRecordInput) (*RecordDTO, error)
	ListRecords(ctx context.Context) ([]RecordDTO, error)
	GetRecord(ctx context.Context, id int64) (*RecordDTO, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("records repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateRecord(ctx context.Context, input CreateRecordInput) (*RecordDTO, error) {
	record, err := buildRecord(input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save record")
	}
	return FromModel(record), nil
}

func (s *service) ListRecords(ctx context.Context) ([]RecordDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list records")
	}
	out := make([]RecordDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) GetRecord(ctx context.Context, id int64) (*RecordDTO, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "record %d not found", id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load record")
	}
	return FromModel(rec), nil
}

// buildRecord expects input already checked against its validate tags.
func buildRecord(input CreateRecordInput) (*models.Record, error) {
	if input.MassKg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mass_kg is required").
			WithDetails(map[string]any{"field": "mass_kg", "rule": "required"})
	}

	source := enums.MassSourceMeasured
	if input.MassSource != "" {
		parsed, err := enums.ParseMassSource(input.MassSource)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid mass_source").
				WithDetails(map[string]any{"field": "mass_source", "rule": "oneof"})
		}
		source = parsed
	}

	mass, available := *input.MassKg, *input.MassKg
	return &models.Record{
		FarmerName:        strings.TrimSpace(input.FarmerName),
		Location:          strings.TrimSpace(input.Location),
		Phone:             strings.TrimSpace(input.Phone),
		MassKg:            &mass,
		AvailableKg:       &available,
		MassSource:        source,
		MoisturePercent:   input.MoisturePercent,
		VSFraction:        input.VSFraction,
		PredictedM3Biogas: input.PredictedM3Biogas,
		RevenueEstimate:   input.RevenueEstimate,
	}, nil
}
