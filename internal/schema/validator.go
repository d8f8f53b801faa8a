// Package schema parses sanitized oracle JSON and checks it against the
// required field sets of the three record shapes. Parse failures and shape
// failures are distinguished so the caller can decide between re-prompting
// the oracle and aborting.
package schema

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"carspotter/internal/types"
)

// Validator checks sanitized JSON against the record shapes. It logs
// recoverable oddities (defaulted feature lists, identity drift) but never
// swallows hard failures.
type Validator struct {
	log *zap.Logger
}

// New returns a Validator. A nil logger is replaced with a no-op one.
func New(log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{log: log}
}

// decodeObject parses data into a generic map, keeping numbers as
// json.Number so year coercion can distinguish 2022 from 2022.7.
func decodeObject(data []byte, shape string) (map[string]interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var obj map[string]interface{}
	if err := dec.Decode(&obj); err != nil {
		return nil, &types.SchemaError{Kind: types.SchemaParse, Shape: shape, Err: err}
	}
	return obj, nil
}

// ValidateIdentification checks for the four identification keys and coerces
// the year to a positive 4-digit integer.
func (v *Validator) ValidateIdentification(data []byte) (types.VehicleIdentification, error) {
	obj, err := decodeObject(data, "identification")
	if err != nil {
		return types.VehicleIdentification{}, err
	}

	missing := missingKeys(obj, "brand", "model", "year", "type")
	if len(missing) > 0 {
		return types.VehicleIdentification{}, &types.SchemaError{
			Kind: types.SchemaShape, Shape: "identification", Missing: missing,
		}
	}

	id := types.VehicleIdentification{
		Brand: types.CoerceString(obj["brand"]),
		Model: types.CoerceString(obj["model"]),
		Type:  types.CoerceString(obj["type"]),
	}
	year, ok := types.CoerceYear(obj["year"])
	if !ok {
		return types.VehicleIdentification{}, &types.SchemaError{
			Kind: types.SchemaShape, Shape: "identification", Missing: []string{"year"},
		}
	}
	id.Year = year

	if id.Brand == "" || id.Model == "" || id.Type == "" {
		return types.VehicleIdentification{}, &types.SchemaError{
			Kind: types.SchemaShape, Shape: "identification",
			Missing: emptyFields(map[string]string{"brand": id.Brand, "model": id.Model, "type": id.Type}),
		}
	}
	return id, nil
}

// ValidateSpecification checks the four mandatory sections and builds the
// typed specification. The three feature lists default to empty slices with
// a logged warning when absent; their parent sections never do.
func (v *Validator) ValidateSpecification(data []byte) (types.VehicleSpecification, error) {
	obj, err := decodeObject(data, "specification")
	if err != nil {
		return types.VehicleSpecification{}, err
	}

	missing := missingKeys(obj, "basic_info", "performance", "technical_specs", "features")
	if len(missing) > 0 {
		return types.VehicleSpecification{}, &types.SchemaError{
			Kind: types.SchemaShape, Shape: "specification", Missing: missing,
		}
	}

	sections := make(map[string]map[string]interface{}, 4)
	for _, key := range []string{"basic_info", "performance", "technical_specs", "features"} {
		section, ok := obj[key].(map[string]interface{})
		if !ok {
			return types.VehicleSpecification{}, &types.SchemaError{
				Kind: types.SchemaShape, Shape: "specification", Missing: []string{key},
			}
		}
		sections[key] = section
	}

	basic := sections["basic_info"]
	spec := types.VehicleSpecification{
		BasicInfo: types.BasicInfo{
			Brand: types.CoerceString(basic["brand"]),
			Model: types.CoerceString(basic["model"]),
			Type:  types.CoerceString(basic["type"]),
		},
	}
	if year, ok := types.CoerceYear(basic["year"]); ok {
		spec.BasicInfo.Year = year
	}

	perf := sections["performance"]
	spec.Performance = types.Performance{
		FuelConsumption: types.CoerceString(perf["fuel_consumption"]),
		EngineSize:      types.CoerceString(perf["engine_size"]),
		Cylinders:       types.CoerceString(perf["cylinders"]),
		Transmission:    types.CoerceString(perf["transmission"]),
		FuelType:        types.CoerceString(perf["fuel_type"]),
		Horsepower:      types.CoerceString(perf["horsepower"]),
		Torque:          types.CoerceString(perf["torque"]),
		TopSpeed:        types.CoerceString(perf["top_speed"]),
		Acceleration:    types.CoerceString(perf["acceleration"]),
	}

	tech := sections["technical_specs"]
	spec.TechnicalSpecs = types.TechnicalSpecs{
		Length:          types.CoerceString(tech["length"]),
		Width:           types.CoerceString(tech["width"]),
		Height:          types.CoerceString(tech["height"]),
		Wheelbase:       types.CoerceString(tech["wheelbase"]),
		Weight:          types.CoerceString(tech["weight"]),
		SeatingCapacity: types.CoerceString(tech["seating_capacity"]),
		TrunkCapacity:   types.CoerceString(tech["trunk_capacity"]),
	}

	feat := sections["features"]
	spec.Features = types.Features{
		PriceRange:         types.CoerceString(feat["price_range"]),
		SafetyFeatures:     v.featureList(feat, "safety_features"),
		ComfortFeatures:    v.featureList(feat, "comfort_features"),
		TechnologyFeatures: v.featureList(feat, "technology_features"),
	}

	return spec, nil
}

// featureList extracts one of the three equipment lists, defaulting an
// absent or non-array value to empty.
func (v *Validator) featureList(features map[string]interface{}, key string) []string {
	raw, present := features[key]
	if !present || raw == nil {
		v.log.Warn("feature list absent, defaulting to empty", zap.String("key", key))
		return []string{}
	}
	list, ok := types.CoerceStringSlice(raw)
	if !ok {
		v.log.Warn("feature list has unexpected type, defaulting to empty", zap.String("key", key))
		return []string{}
	}
	return list
}

// ValidateComparison requires only that the response parses as a JSON
// object; the comparison dimensions are carried generically. Top-level
// values that are not objects are ignored.
func (v *Validator) ValidateComparison(data []byte) (types.ComparisonReport, error) {
	obj, err := decodeObject(data, "comparison")
	if err != nil {
		return types.ComparisonReport{}, err
	}

	report := types.ComparisonReport{
		Dimensions: make(map[string]types.ComparisonDimension),
	}
	for name, raw := range obj {
		dim, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		report.Dimensions[name] = types.ComparisonDimension{
			VehicleA: types.CoerceString(dim["vehicle_a"]),
			VehicleB: types.CoerceString(dim["vehicle_b"]),
			Winner:   types.CoerceString(dim["winner"]),
			Reason:   types.CoerceString(dim["reason"]),
		}
	}
	return report, nil
}

// ValidateBrandModels parses a {"models": [...]} catalog response.
func (v *Validator) ValidateBrandModels(data []byte) ([]types.BrandModel, error) {
	obj, err := decodeObject(data, "models")
	if err != nil {
		return nil, err
	}
	raw, ok := obj["models"].([]interface{})
	if !ok {
		return nil, &types.SchemaError{Kind: types.SchemaShape, Shape: "models", Missing: []string{"models"}}
	}
	models := make([]types.BrandModel, 0, len(raw))
	for _, item := range raw {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		years, _ := types.CoerceStringSlice(entry["years"])
		models = append(models, types.BrandModel{
			Name:  types.CoerceString(entry["name"]),
			Years: years,
			Type:  types.CoerceString(entry["type"]),
		})
	}
	return models, nil
}

// ValidateVehicleTypes parses a {"types": [...]} catalog response.
func (v *Validator) ValidateVehicleTypes(data []byte) ([]string, error) {
	obj, err := decodeObject(data, "types")
	if err != nil {
		return nil, err
	}
	list, ok := types.CoerceStringSlice(obj["types"])
	if !ok {
		return nil, &types.SchemaError{Kind: types.SchemaShape, Shape: "types", Missing: []string{"types"}}
	}
	return list, nil
}

func missingKeys(obj map[string]interface{}, keys ...string) []string {
	var missing []string
	for _, key := range keys {
		if val, ok := obj[key]; !ok || val == nil {
			missing = append(missing, key)
		}
	}
	return missing
}

func emptyFields(fields map[string]string) []string {
	var empty []string
	for name, val := range fields {
		if val == "" {
			empty = append(empty, name)
		}
	}
	return empty
}
