// Package types holds the domain records shared across the pipeline and the
// error taxonomy every layer reports through.
package types

import (
	"fmt"
	"strings"
)

// VehicleIdentification is what the oracle produces from a photograph:
// the minimal identity of a vehicle.
type VehicleIdentification struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
	Year  int    `json:"year"`
	Type  string `json:"type"`
}

// IsEmpty reports whether the identification carries no usable identity.
func (v VehicleIdentification) IsEmpty() bool {
	return strings.TrimSpace(v.Brand) == "" &&
		strings.TrimSpace(v.Model) == "" &&
		v.Year == 0
}

// Incomplete reports whether any identity field is blank. A partially
// filled identification is not storable and not specific enough to request
// a specification for.
func (v VehicleIdentification) Incomplete() bool {
	return strings.TrimSpace(v.Brand) == "" ||
		strings.TrimSpace(v.Model) == "" ||
		v.Year == 0
}

// IdentityKey returns the normalized (brand, model, year) key used for
// de-duplication. Case and surrounding whitespace are ignored.
func (v VehicleIdentification) IdentityKey() string {
	brand := strings.ToLower(strings.TrimSpace(v.Brand))
	model := strings.ToLower(strings.TrimSpace(v.Model))
	return fmt.Sprintf("%s|%s|%d", brand, model, v.Year)
}

// SameVehicle reports whether two identifications describe the same
// (brand, model, year) identity.
func (v VehicleIdentification) SameVehicle(other VehicleIdentification) bool {
	return v.IdentityKey() == other.IdentityKey()
}

// BasicInfo mirrors VehicleIdentification inside a full specification so the
// caller can cross-check that the oracle answered about the requested vehicle.
type BasicInfo struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
	Year  int    `json:"year"`
	Type  string `json:"type"`
}

// Performance holds drivetrain and performance figures. Values are kept as
// display strings because the oracle mixes units into them ("8.5 L/100km").
type Performance struct {
	FuelConsumption string `json:"fuel_consumption"`
	EngineSize      string `json:"engine_size"`
	Cylinders       string `json:"cylinders"`
	Transmission    string `json:"transmission"`
	FuelType        string `json:"fuel_type"`
	Horsepower      string `json:"horsepower"`
	Torque          string `json:"torque"`
	TopSpeed        string `json:"top_speed"`
	Acceleration    string `json:"acceleration"`
}

// TechnicalSpecs holds body dimensions and capacities.
type TechnicalSpecs struct {
	Length          string `json:"length"`
	Width           string `json:"width"`
	Height          string `json:"height"`
	Wheelbase       string `json:"wheelbase"`
	Weight          string `json:"weight"`
	SeatingCapacity string `json:"seating_capacity"`
	TrunkCapacity   string `json:"trunk_capacity"`
}

// Features holds pricing and the three equipment lists. The lists are always
// non-nil after validation; an absent list defaults to empty.
type Features struct {
	PriceRange         string   `json:"price_range"`
	SafetyFeatures     []string `json:"safety_features"`
	ComfortFeatures    []string `json:"comfort_features"`
	TechnologyFeatures []string `json:"technology_features"`
}

// VehicleSpecification is the full four-section record the oracle
// synthesizes for an identified vehicle.
type VehicleSpecification struct {
	BasicInfo      BasicInfo      `json:"basic_info"`
	Performance    Performance    `json:"performance"`
	TechnicalSpecs TechnicalSpecs `json:"technical_specs"`
	Features       Features       `json:"features"`
}

// VehicleRecord is a persisted vehicle: identification plus specification
// plus the optional source image. IDs are assigned by the store at creation
// time, ascend monotonically and are never reused.
type VehicleRecord struct {
	ID             int64                 `json:"id"`
	Identification VehicleIdentification `json:"identification"`
	Specification  VehicleSpecification  `json:"specification"`
	Image          []byte                `json:"image,omitempty"`
}

// ComparisonDimension is one axis of a two-vehicle comparison: what each
// vehicle offers, which one wins, and why.
type ComparisonDimension struct {
	VehicleA string `json:"vehicle_a"`
	VehicleB string `json:"vehicle_b"`
	Winner   string `json:"winner"`
	Reason   string `json:"reason"`
}

// ComparisonReport is the transient result of comparing two stored records.
// Dimensions are keyed by whatever axes the oracle returned; the report is
// never persisted and is recomputed on demand.
type ComparisonReport struct {
	RecordA    int64                          `json:"record_a"`
	RecordB    int64                          `json:"record_b"`
	Dimensions map[string]ComparisonDimension `json:"dimensions"`
}

// BrandModel is one entry of a brand's model catalog, produced by a
// text-only oracle query.
type BrandModel struct {
	Name  string   `json:"name"`
	Years []string `json:"years"`
	Type  string   `json:"type"`
}
