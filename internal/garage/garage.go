// Package garage orchestrates the identification and comparison pipeline:
// prompt construction, oracle calls, sanitization, validation, and storage
// all compose here so callers work with clean domain values only.
package garage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"carspotter/internal/oracle"
	"carspotter/internal/prompt"
	"carspotter/internal/sanitize"
	"carspotter/internal/schema"
	"carspotter/internal/store"
	"carspotter/internal/types"
)

// Service wires the oracle, the validator and the record store into the
// user-facing operations.
type Service struct {
	oracle    oracle.Client
	store     *store.RecordStore
	validator *schema.Validator
	log       *zap.Logger
}

// New builds a Service. A nil logger is replaced with a no-op one.
func New(oracleClient oracle.Client, recordStore *store.RecordStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		oracle:    oracleClient,
		store:     recordStore,
		validator: schema.New(log),
		log:       log,
	}
}

// DetectVehicle identifies the vehicle in a photograph. The raw oracle
// answer goes through sanitization and validation before anything is
// returned.
func (s *Service) DetectVehicle(ctx context.Context, image []byte, mimeType string) (types.VehicleIdentification, error) {
	var zero types.VehicleIdentification
	if len(image) == 0 {
		return zero, &types.ValidationError{Reason: "no image data provided"}
	}

	raw, err := s.oracle.IdentifyFromImage(ctx, image, mimeType, prompt.Identification())
	if err != nil {
		return zero, err
	}

	clean, err := sanitize.Sanitize(raw)
	if err != nil {
		return zero, err
	}

	ident, err := s.validator.ValidateIdentification([]byte(clean))
	if err != nil {
		return zero, err
	}

	s.log.Info("vehicle detected",
		zap.String("brand", ident.Brand),
		zap.String("model", ident.Model),
		zap.Int("year", ident.Year))
	return ident, nil
}

// FetchSpecification asks the oracle for the full four-section
// specification of an identified vehicle.
func (s *Service) FetchSpecification(ctx context.Context, ident types.VehicleIdentification) (types.VehicleSpecification, error) {
	var zero types.VehicleSpecification
	if ident.Incomplete() {
		return zero, &types.ValidationError{Reason: "identification is incomplete: brand, model and year are required"}
	}

	raw, err := s.oracle.GenerateText(ctx, prompt.Specification(ident))
	if err != nil {
		return zero, err
	}

	clean, err := sanitize.Sanitize(raw)
	if err != nil {
		return zero, err
	}

	spec, err := s.validator.ValidateSpecification([]byte(clean))
	if err != nil {
		return zero, err
	}

	// The oracle occasionally answers about a close sibling of the
	// requested vehicle. Surface the drift but keep the answer.
	answered := types.VehicleIdentification{
		Brand: spec.BasicInfo.Brand,
		Model: spec.BasicInfo.Model,
		Year:  spec.BasicInfo.Year,
		Type:  spec.BasicInfo.Type,
	}
	if !answered.IsEmpty() && !answered.SameVehicle(ident) {
		s.log.Warn("specification identity differs from request",
			zap.String("requested", ident.IdentityKey()),
			zap.String("answered", answered.IdentityKey()))
	}

	return spec, nil
}

// SaveRecord persists an identified vehicle with its specification and
// optional source image. Saving the same (brand, model, year) twice is
// rejected before touching the store.
func (s *Service) SaveRecord(ident types.VehicleIdentification, spec types.VehicleSpecification, image []byte) (*types.VehicleRecord, error) {
	if ident.Incomplete() {
		return nil, &types.ValidationError{Reason: "cannot save a record with an incomplete identification"}
	}

	existing, err := s.store.FindByIdentity(ident)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &types.ValidationError{
			Reason: fmt.Sprintf("vehicle %s %s %d already stored as record %d",
				ident.Brand, ident.Model, ident.Year, existing.ID),
		}
	}

	rec, err := s.store.Create(ident, spec, image)
	if err != nil {
		return nil, err
	}
	s.log.Info("record saved", zap.Int64("id", rec.ID), zap.String("identity", ident.IdentityKey()))
	return rec, nil
}

// ListRecords returns all stored records, oldest first.
func (s *Service) ListRecords() ([]types.VehicleRecord, error) {
	return s.store.ListAll()
}

// GetRecord loads one record by ID, or (nil, nil) when absent.
func (s *Service) GetRecord(id int64) (*types.VehicleRecord, error) {
	return s.store.Get(id)
}

// DeleteRecord removes a stored record. Removing an absent ID succeeds;
// the returned bool reports whether anything was deleted.
func (s *Service) DeleteRecord(id int64) (bool, error) {
	return s.store.DeleteByID(id)
}

// CompareRecords asks the oracle for a dimension-by-dimension comparison
// of two stored records. Both records must exist and must describe
// different vehicles; those preconditions are checked before any oracle
// call is made.
func (s *Service) CompareRecords(ctx context.Context, idA, idB int64) (types.ComparisonReport, error) {
	var zero types.ComparisonReport

	recA, err := s.store.Get(idA)
	if err != nil {
		return zero, err
	}
	if recA == nil {
		return zero, &types.ValidationError{Reason: fmt.Sprintf("record %d not found", idA)}
	}
	recB, err := s.store.Get(idB)
	if err != nil {
		return zero, err
	}
	if recB == nil {
		return zero, &types.ValidationError{Reason: fmt.Sprintf("record %d not found", idB)}
	}
	if recA.Identification.SameVehicle(recB.Identification) {
		return zero, &types.ValidationError{
			Reason: fmt.Sprintf("records %d and %d describe the same vehicle", idA, idB),
		}
	}

	instruction := prompt.Comparison(
		recA.Identification, recB.Identification,
		recA.Specification, recB.Specification,
	)
	raw, err := s.oracle.GenerateText(ctx, instruction)
	if err != nil {
		return zero, err
	}

	clean, err := sanitize.Sanitize(raw)
	if err != nil {
		return zero, err
	}

	report, err := s.validator.ValidateComparison([]byte(clean))
	if err != nil {
		return zero, err
	}
	report.RecordA = idA
	report.RecordB = idB

	s.log.Info("comparison complete",
		zap.Int64("record_a", idA),
		zap.Int64("record_b", idB),
		zap.Int("dimensions", len(report.Dimensions)))
	return report, nil
}

// ListBrandModels queries the oracle for the model catalog of a brand.
func (s *Service) ListBrandModels(ctx context.Context, brand string) ([]types.BrandModel, error) {
	if brand == "" {
		return nil, &types.ValidationError{Reason: "brand is required"}
	}

	raw, err := s.oracle.GenerateText(ctx, prompt.BrandModels(brand))
	if err != nil {
		return nil, err
	}
	clean, err := sanitize.Sanitize(raw)
	if err != nil {
		return nil, err
	}
	return s.validator.ValidateBrandModels([]byte(clean))
}

// ListVehicleTypes queries the oracle for the known vehicle body types.
func (s *Service) ListVehicleTypes(ctx context.Context) ([]string, error) {
	raw, err := s.oracle.GenerateText(ctx, prompt.VehicleTypes())
	if err != nil {
		return nil, err
	}
	clean, err := sanitize.Sanitize(raw)
	if err != nil {
		return nil, err
	}
	return s.validator.ValidateVehicleTypes([]byte(clean))
}
