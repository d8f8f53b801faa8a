package store

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carspotter/internal/types"
)

func openTestStore(t *testing.T) *RecordStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "vehicles.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleIdent() types.VehicleIdentification {
	return types.VehicleIdentification{
		Brand: "Toyota",
		Model: "Corolla",
		Year:  2022,
		Type:  "Sedan",
	}
}

func sampleSpec() types.VehicleSpecification {
	return types.VehicleSpecification{
		BasicInfo: types.BasicInfo{
			Brand: "Toyota",
			Model: "Corolla",
			Year:  2022,
			Type:  "Sedan",
		},
		Performance: types.Performance{
			FuelConsumption: "6.0L/100km",
			Horsepower:      "169 HP",
			FuelType:        "Gasoline",
		},
		TechnicalSpecs: types.TechnicalSpecs{
			Length:          "4630mm",
			SeatingCapacity: "5",
		},
		Features: types.Features{
			PriceRange:         "$22,000 - $28,000",
			SafetyFeatures:     []string{"ABS", "Lane Assist"},
			ComfortFeatures:    []string{"Dual-zone A/C"},
			TechnologyFeatures: []string{"CarPlay"},
		},
	}
}

func TestRecordStore_CreateAndGet(t *testing.T) {
	s := openTestStore(t)

	image := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02}
	created, err := s.Create(sampleIdent(), sampleSpec(), image)
	require.NoError(t, err)
	assert.Positive(t, created.ID)

	loaded, err := s.Get(created.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	if diff := cmp.Diff(created, loaded); diff != "" {
		t.Errorf("round-trip mismatch (-created +loaded):\n%s", diff)
	}
}

func TestRecordStore_GetMissing(t *testing.T) {
	s := openTestStore(t)

	rec, err := s.Get(999)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRecordStore_NilImage(t *testing.T) {
	s := openTestStore(t)

	created, err := s.Create(sampleIdent(), sampleSpec(), nil)
	require.NoError(t, err)

	loaded, err := s.Get(created.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Empty(t, loaded.Image)
}

func TestRecordStore_ListAllOrdering(t *testing.T) {
	s := openTestStore(t)

	first := sampleIdent()
	second := types.VehicleIdentification{Brand: "Honda", Model: "Civic", Year: 2023, Type: "Sedan"}
	third := types.VehicleIdentification{Brand: "Ford", Model: "F-150", Year: 2021, Type: "Pickup"}

	for _, ident := range []types.VehicleIdentification{first, second, third} {
		_, err := s.Create(ident, sampleSpec(), nil)
		require.NoError(t, err)
	}

	records, err := s.ListAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Toyota", records[0].Identification.Brand)
	assert.Equal(t, "Honda", records[1].Identification.Brand)
	assert.Equal(t, "Ford", records[2].Identification.Brand)
	assert.Less(t, records[0].ID, records[1].ID)
	assert.Less(t, records[1].ID, records[2].ID)
}

func TestRecordStore_ListAllEmpty(t *testing.T) {
	s := openTestStore(t)

	records, err := s.ListAll()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecordStore_DeleteIdempotent(t *testing.T) {
	s := openTestStore(t)

	created, err := s.Create(sampleIdent(), sampleSpec(), nil)
	require.NoError(t, err)

	removed, err := s.DeleteByID(created.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	// Deleting again succeeds but removes nothing.
	removed, err = s.DeleteByID(created.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	rec, err := s.Get(created.ID)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRecordStore_DeleteDoesNotRecycleIDs(t *testing.T) {
	s := openTestStore(t)

	first, err := s.Create(sampleIdent(), sampleSpec(), nil)
	require.NoError(t, err)
	_, err = s.DeleteByID(first.ID)
	require.NoError(t, err)

	second, err := s.Create(sampleIdent(), sampleSpec(), nil)
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
}

func TestRecordStore_FindByIdentity(t *testing.T) {
	s := openTestStore(t)

	created, err := s.Create(sampleIdent(), sampleSpec(), nil)
	require.NoError(t, err)

	// Identity matching is case-insensitive on brand and model.
	found, err := s.FindByIdentity(types.VehicleIdentification{
		Brand: "TOYOTA", Model: "corolla", Year: 2022, Type: "Sedan",
	})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	// A different year is a different vehicle.
	found, err = s.FindByIdentity(types.VehicleIdentification{
		Brand: "Toyota", Model: "Corolla", Year: 2020, Type: "Sedan",
	})
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestRecordStore_Count(t *testing.T) {
	s := openTestStore(t)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = s.Create(sampleIdent(), sampleSpec(), nil)
	require.NoError(t, err)

	n, err = s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecordStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vehicles.db")

	s, err := Open(path, nil)
	require.NoError(t, err)
	created, err := s.Create(sampleIdent(), sampleSpec(), []byte{0x01})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open(path, nil)
	require.NoError(t, err)
	defer s2.Close()

	loaded, err := s2.Get(created.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Corolla", loaded.Identification.Model)
	assert.Equal(t, []byte{0x01}, loaded.Image)
}
