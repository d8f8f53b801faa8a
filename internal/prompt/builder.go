// Package prompt renders the instruction texts sent to the oracle. Every
// template pins the exact JSON shape the downstream validator expects and
// forbids surrounding prose; the oracle ignores that often enough that the
// sanitizer exists, but a tight contract keeps the noise rare.
//
// Construction is pure: no validation beyond what the signatures enforce,
// no side effects.
package prompt

import (
	"encoding/json"
	"fmt"

	"carspotter/internal/types"
)

const identificationTemplate = `Analyze the image and identify the car information. The response must be in JSON format only, with no additional text before or after the JSON.

Required format:
{
    "brand": "brand name",
    "model": "model name",
    "year": manufacturing year as a 4-digit integer,
    "type": "car type"
}

Be specific about the model and year if possible.
Do not include any text before or after the JSON.`

// Identification returns the instruction text for the image-identification
// call. The image itself travels separately, already encoded in the
// transport format the oracle expects.
func Identification() string {
	return identificationTemplate
}

const specificationTemplate = `Provide detailed specifications for the %d %s %s. The response must be in JSON format only, with no additional text before or after the JSON.

Required format:
{
    "basic_info": {
        "brand": "%s",
        "model": "%s",
        "year": %d,
        "type": "car type"
    },
    "performance": {
        "fuel_consumption": "fuel consumption (L/100km)",
        "engine_size": "engine size (cc)",
        "cylinders": "number of cylinders",
        "transmission": "transmission type",
        "fuel_type": "fuel type",
        "horsepower": "horsepower",
        "torque": "torque (Nm)",
        "top_speed": "top speed (km/h)",
        "acceleration": "0-100 km/h (seconds)"
    },
    "technical_specs": {
        "length": "length (mm)",
        "width": "width (mm)",
        "height": "height (mm)",
        "wheelbase": "wheelbase (mm)",
        "weight": "weight (kg)",
        "seating_capacity": "seating capacity",
        "trunk_capacity": "trunk capacity (L)"
    },
    "features": {
        "price_range": "price range (USD)",
        "safety_features": ["string"],
        "comfort_features": ["string"],
        "technology_features": ["string"]
    }
}

Important:
- Use the exact brand, model and year values as provided above
- If any value is unknown, use null
- Return ONLY the JSON object, no additional text`

// Specification returns the instruction text requesting the four-section
// specification for an identified vehicle. The brand, model and year are
// interpolated literally so the response can be cross-checked against the
// request.
func Specification(id types.VehicleIdentification) string {
	return fmt.Sprintf(specificationTemplate,
		id.Year, id.Brand, id.Model,
		id.Brand, id.Model, id.Year)
}

const comparisonTemplate = `Compare these two cars and provide a detailed analysis.

Car 1 (%d %s %s):
%s

Car 2 (%d %s %s):
%s

The response must be a JSON object with exactly these top-level keys:
{
    "performance": {"vehicle_a": "findings for car 1", "vehicle_b": "findings for car 2", "winner": "vehicle_a or vehicle_b", "reason": "rationale"},
    "efficiency": {"vehicle_a": "...", "vehicle_b": "...", "winner": "...", "reason": "..."},
    "maintenance": {"vehicle_a": "...", "vehicle_b": "...", "winner": "...", "reason": "..."},
    "value": {"vehicle_a": "...", "vehicle_b": "...", "winner": "...", "reason": "..."},
    "final_recommendation": {"vehicle_a": "...", "vehicle_b": "...", "winner": "...", "reason": "..."}
}

Each dimension must declare a winner ("vehicle_a" or "vehicle_b") and a reason.
Return ONLY the JSON object, no additional text before or after it.`

// Comparison returns the instruction text for a two-vehicle comparison.
// The stored specifications are embedded verbatim as indented JSON so the
// oracle reasons over known data rather than its own recollection.
func Comparison(idA, idB types.VehicleIdentification, specA, specB types.VehicleSpecification) string {
	return fmt.Sprintf(comparisonTemplate,
		idA.Year, idA.Brand, idA.Model, marshalSpec(specA),
		idB.Year, idB.Brand, idB.Model, marshalSpec(specB))
}

func marshalSpec(spec types.VehicleSpecification) string {
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		// VehicleSpecification contains nothing unmarshalable; this is
		// unreachable short of memory corruption.
		return "{}"
	}
	return string(data)
}

const brandModelsTemplate = `List all car models produced by %s as a JSON object. The response must be in JSON format only, with no additional text before or after the JSON.

Required format:
{
    "models": [
        {
            "name": "model name",
            "years": ["production years"],
            "type": "car type"
        }
    ]
}

Return ONLY the JSON object, no additional text.`

// BrandModels returns the instruction text for a brand's model catalog.
func BrandModels(brand string) string {
	return fmt.Sprintf(brandModelsTemplate, brand)
}

const vehicleTypesTemplate = `List the common car body types as a JSON object. The response must be in JSON format only, with no additional text before or after the JSON.

Required format:
{
    "types": ["Sedan", "SUV", "..."]
}

Return ONLY the JSON object, no additional text.`

// VehicleTypes returns the instruction text for the car-type catalog.
func VehicleTypes() string {
	return vehicleTypesTemplate
}
