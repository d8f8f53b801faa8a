package garage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carspotter/internal/store"
	"carspotter/internal/types"
)

// fakeOracle replays canned answers and counts calls, so tests can assert
// which pipeline stages actually reached the oracle.
type fakeOracle struct {
	identifyAnswer string
	identifyErr    error
	textAnswers    []string
	textErr        error

	identifyCalls int
	textCalls     int
	lastPrompt    string
}

func (f *fakeOracle) IdentifyFromImage(ctx context.Context, image []byte, mimeType, instruction string) (string, error) {
	f.identifyCalls++
	f.lastPrompt = instruction
	if f.identifyErr != nil {
		return "", f.identifyErr
	}
	return f.identifyAnswer, nil
}

func (f *fakeOracle) GenerateText(ctx context.Context, instruction string) (string, error) {
	f.textCalls++
	f.lastPrompt = instruction
	if f.textErr != nil {
		return "", f.textErr
	}
	if len(f.textAnswers) == 0 {
		return "", fmt.Errorf("fakeOracle: no answer queued")
	}
	answer := f.textAnswers[0]
	f.textAnswers = f.textAnswers[1:]
	return answer, nil
}

func newTestService(t *testing.T, o *fakeOracle) *Service {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "garage.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(o, s, nil)
}

const corollaIdentJSON = `{"brand": "Toyota", "model": "Corolla", "year": 2022, "type": "Sedan"}`

func specJSONFor(brand, model string, year int) string {
	return fmt.Sprintf(`{
		"basic_info": {"brand": %q, "model": %q, "year": %d, "type": "Sedan"},
		"performance": {"fuel_consumption": "6.0L/100km", "engine_size": "2.0L", "cylinders": "4",
			"transmission": "CVT", "fuel_type": "Gasoline", "horsepower": "169 HP",
			"torque": "151 lb-ft", "top_speed": "190 km/h", "acceleration": "8.1s 0-100km/h"},
		"technical_specs": {"length": "4630mm", "width": "1780mm", "height": "1435mm",
			"wheelbase": "2700mm", "weight": "1355kg", "seating_capacity": "5", "trunk_capacity": "371L"},
		"features": {"price_range": "$22,000 - $28,000",
			"safety_features": ["ABS", "Lane Assist"],
			"comfort_features": ["Dual-zone A/C"],
			"technology_features": ["CarPlay"]}
	}`, brand, model, year)
}

func TestDetectVehicle_NoisyOracleAnswer(t *testing.T) {
	o := &fakeOracle{
		identifyAnswer: "Sure! Here is the identification:\n```json\n" + corollaIdentJSON + "\n```\nLet me know if you need more.",
	}
	svc := newTestService(t, o)

	ident, err := svc.DetectVehicle(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "Toyota", ident.Brand)
	assert.Equal(t, "Corolla", ident.Model)
	assert.Equal(t, 2022, ident.Year)
	assert.Equal(t, 1, o.identifyCalls)
}

func TestDetectVehicle_EmptyImage(t *testing.T) {
	o := &fakeOracle{}
	svc := newTestService(t, o)

	_, err := svc.DetectVehicle(context.Background(), nil, "image/jpeg")
	var valErr *types.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Zero(t, o.identifyCalls, "validation must reject before the oracle is reached")
}

func TestDetectVehicle_OracleDown(t *testing.T) {
	o := &fakeOracle{identifyErr: &types.OracleError{Op: "identify", Err: errors.New("connection refused")}}
	svc := newTestService(t, o)

	_, err := svc.DetectVehicle(context.Background(), []byte{0x01}, "image/jpeg")
	var oracleErr *types.OracleError
	require.ErrorAs(t, err, &oracleErr)
}

func TestDetectVehicle_GarbageAnswer(t *testing.T) {
	o := &fakeOracle{identifyAnswer: "I cannot see any vehicle in this image."}
	svc := newTestService(t, o)

	_, err := svc.DetectVehicle(context.Background(), []byte{0x01}, "image/jpeg")
	var sanErr *types.SanitizationError
	require.ErrorAs(t, err, &sanErr)
}

func TestFetchSpecification(t *testing.T) {
	o := &fakeOracle{textAnswers: []string{specJSONFor("Toyota", "Corolla", 2022)}}
	svc := newTestService(t, o)

	ident := types.VehicleIdentification{Brand: "Toyota", Model: "Corolla", Year: 2022, Type: "Sedan"}
	spec, err := svc.FetchSpecification(context.Background(), ident)
	require.NoError(t, err)
	assert.Equal(t, "169 HP", spec.Performance.Horsepower)
	assert.Equal(t, []string{"ABS", "Lane Assist"}, spec.Features.SafetyFeatures)
	assert.Contains(t, o.lastPrompt, "2022 Toyota Corolla")
}

func TestFetchSpecification_EmptyIdentification(t *testing.T) {
	o := &fakeOracle{}
	svc := newTestService(t, o)

	_, err := svc.FetchSpecification(context.Background(), types.VehicleIdentification{})
	var valErr *types.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Zero(t, o.textCalls)
}

func TestSaveRecord_DuplicateRejected(t *testing.T) {
	o := &fakeOracle{}
	svc := newTestService(t, o)

	ident := types.VehicleIdentification{Brand: "Toyota", Model: "Corolla", Year: 2022, Type: "Sedan"}
	_, err := svc.SaveRecord(ident, types.VehicleSpecification{}, nil)
	require.NoError(t, err)

	// Same identity with different casing is still a duplicate.
	dup := types.VehicleIdentification{Brand: "TOYOTA", Model: "corolla", Year: 2022, Type: "Sedan"}
	_, err = svc.SaveRecord(dup, types.VehicleSpecification{}, nil)
	var valErr *types.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Reason, "already stored")
}

func TestSaveRecord_EmptyIdentification(t *testing.T) {
	svc := newTestService(t, &fakeOracle{})

	_, err := svc.SaveRecord(types.VehicleIdentification{}, types.VehicleSpecification{}, nil)
	var valErr *types.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestSaveRecord_PartialIdentificationRejected(t *testing.T) {
	svc := newTestService(t, &fakeOracle{})

	partials := []types.VehicleIdentification{
		{Model: "Corolla", Year: 2022, Type: "Sedan"},
		{Brand: "Toyota", Year: 2022, Type: "Sedan"},
		{Brand: "Toyota", Model: "Corolla", Type: "Sedan"},
	}
	for _, ident := range partials {
		_, err := svc.SaveRecord(ident, types.VehicleSpecification{}, nil)
		var valErr *types.ValidationError
		require.ErrorAs(t, err, &valErr)
	}

	records, err := svc.ListRecords()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetchSpecification_PartialIdentificationRejected(t *testing.T) {
	o := &fakeOracle{}
	svc := newTestService(t, o)

	_, err := svc.FetchSpecification(context.Background(), types.VehicleIdentification{
		Brand: "Toyota", Year: 2022, Type: "Sedan",
	})
	var valErr *types.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Zero(t, o.textCalls)
}

// Full happy path: photo in, identification out, specification fetched,
// record saved and listed.
func TestEndToEnd_DetectFetchSave(t *testing.T) {
	o := &fakeOracle{
		identifyAnswer: "```json\n" + corollaIdentJSON + "\n```",
		textAnswers:    []string{specJSONFor("Toyota", "Corolla", 2022)},
	}
	svc := newTestService(t, o)
	ctx := context.Background()

	image := []byte{0xFF, 0xD8, 0xFF}
	ident, err := svc.DetectVehicle(ctx, image, "image/jpeg")
	require.NoError(t, err)

	spec, err := svc.FetchSpecification(ctx, ident)
	require.NoError(t, err)

	rec, err := svc.SaveRecord(ident, spec, image)
	require.NoError(t, err)
	assert.Positive(t, rec.ID)

	records, err := svc.ListRecords()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)
	assert.Equal(t, "Corolla", records[0].Identification.Model)
	assert.Equal(t, image, records[0].Image)
}

// A messy oracle answer with prose around the JSON still yields a clean
// identification, and a later delete leaves the store consistent.
func TestEndToEnd_MessyAnswerAndDelete(t *testing.T) {
	o := &fakeOracle{
		identifyAnswer: "Looking at the image, the vehicle appears to be: " + corollaIdentJSON + " Hope that helps!",
		textAnswers:    []string{specJSONFor("Toyota", "Corolla", 2022)},
	}
	svc := newTestService(t, o)
	ctx := context.Background()

	ident, err := svc.DetectVehicle(ctx, []byte{0x01}, "image/jpeg")
	require.NoError(t, err)

	spec, err := svc.FetchSpecification(ctx, ident)
	require.NoError(t, err)

	rec, err := svc.SaveRecord(ident, spec, nil)
	require.NoError(t, err)

	removed, err := svc.DeleteRecord(rec.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	// Deleting again is harmless.
	removed, err = svc.DeleteRecord(rec.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	records, err := svc.ListRecords()
	require.NoError(t, err)
	assert.Empty(t, records)
}

// Two distinct stored vehicles compare cleanly; the report carries the
// record IDs and the oracle's dimensions.
func TestEndToEnd_Compare(t *testing.T) {
	comparisonJSON := `{
		"performance": {"vehicle_a": "169 HP", "vehicle_b": "158 HP", "winner": "vehicle_a", "reason": "more power"},
		"efficiency": {"vehicle_a": "6.0L/100km", "vehicle_b": "6.6L/100km", "winner": "vehicle_a", "reason": "lower consumption"},
		"final_recommendation": {"vehicle_a": "", "vehicle_b": "", "winner": "vehicle_a", "reason": "better overall"}
	}`
	o := &fakeOracle{textAnswers: []string{"```json\n" + comparisonJSON + "\n```"}}
	svc := newTestService(t, o)

	recA, err := svc.SaveRecord(
		types.VehicleIdentification{Brand: "Toyota", Model: "Corolla", Year: 2022, Type: "Sedan"},
		types.VehicleSpecification{}, nil)
	require.NoError(t, err)
	recB, err := svc.SaveRecord(
		types.VehicleIdentification{Brand: "Honda", Model: "Civic", Year: 2022, Type: "Sedan"},
		types.VehicleSpecification{}, nil)
	require.NoError(t, err)

	report, err := svc.CompareRecords(context.Background(), recA.ID, recB.ID)
	require.NoError(t, err)
	assert.Equal(t, recA.ID, report.RecordA)
	assert.Equal(t, recB.ID, report.RecordB)
	require.Contains(t, report.Dimensions, "performance")
	assert.Equal(t, "vehicle_a", report.Dimensions["performance"].Winner)
	assert.Equal(t, "more power", report.Dimensions["performance"].Reason)

	// The prompt should carry both vehicles.
	assert.True(t, strings.Contains(o.lastPrompt, "Corolla") && strings.Contains(o.lastPrompt, "Civic"))
}

func TestCompareRecords_SameVehicleRejectedBeforeOracle(t *testing.T) {
	o := &fakeOracle{}
	svc := newTestService(t, o)

	recA, err := svc.SaveRecord(
		types.VehicleIdentification{Brand: "Toyota", Model: "Corolla", Year: 2022, Type: "Sedan"},
		types.VehicleSpecification{}, nil)
	require.NoError(t, err)

	// Comparing a record to itself is the degenerate same-vehicle case.
	_, err = svc.CompareRecords(context.Background(), recA.ID, recA.ID)
	var valErr *types.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Zero(t, o.textCalls, "precondition failure must not reach the oracle")
}

func TestCompareRecords_MissingRecord(t *testing.T) {
	o := &fakeOracle{}
	svc := newTestService(t, o)

	recA, err := svc.SaveRecord(
		types.VehicleIdentification{Brand: "Toyota", Model: "Corolla", Year: 2022, Type: "Sedan"},
		types.VehicleSpecification{}, nil)
	require.NoError(t, err)

	_, err = svc.CompareRecords(context.Background(), recA.ID, 999)
	var valErr *types.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Reason, "999")
	assert.Zero(t, o.textCalls)
}

func TestListBrandModels(t *testing.T) {
	o := &fakeOracle{textAnswers: []string{`{"models": [
		{"name": "Corolla", "years": ["2020", "2021", "2022"], "type": "Sedan"},
		{"name": "RAV4", "years": ["2021", "2022"], "type": "SUV"}
	]}`}}
	svc := newTestService(t, o)

	models, err := svc.ListBrandModels(context.Background(), "Toyota")
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "Corolla", models[0].Name)
	assert.Equal(t, "SUV", models[1].Type)
	assert.Contains(t, o.lastPrompt, "Toyota")
}

func TestListBrandModels_EmptyBrand(t *testing.T) {
	o := &fakeOracle{}
	svc := newTestService(t, o)

	_, err := svc.ListBrandModels(context.Background(), "")
	var valErr *types.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Zero(t, o.textCalls)
}

func TestListVehicleTypes(t *testing.T) {
	o := &fakeOracle{textAnswers: []string{`{"types": ["Sedan", "SUV", "Pickup", "Coupe"]}`}}
	svc := newTestService(t, o)

	vtypes, err := svc.ListVehicleTypes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Sedan", "SUV", "Pickup", "Coupe"}, vtypes)
}
