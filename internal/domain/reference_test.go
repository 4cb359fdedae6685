package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReference(t *testing.T) {
	ref, err := NewReference([]City{
		{ID: "b", Name: "Shanghai", Province: "Shanghai"},
		{ID: "a", Name: "Beijing", Province: "Beijing"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, ref.Len())

	cities := ref.Cities()
	require.Len(t, cities, 2)
	assert.Equal(t, "a", cities[0].ID)

	c, ok := ref.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, "Shanghai", c.Name)

	_, err = NewReference([]City{{ID: "a"}, {ID: "a"}})
	assert.ErrorContains(t, err, "duplicate")

	_, err = NewReference([]City{{Name: "nameless"}})
	assert.ErrorContains(t, err, "no id")
}

func TestReference_Province(t *testing.T) {
	ref, err := NewReference([]City{
		{ID: "a", Province: "Zhejiang"},
		{ID: "blank"},
	})
	require.NoError(t, err)

	p, err := ref.Province("a")
	require.NoError(t, err)
	assert.Equal(t, "Zhejiang", p)

	for _, id := range []string{"blank", "unknown"} {
		_, err := ref.Province(id)
		var merr *MappingError
		require.True(t, errors.As(err, &merr), id)
		assert.Equal(t, id, merr.CityID)
	}
}

func TestReference_CheckProvinces(t *testing.T) {
	ref, err := NewReference([]City{{ID: "a", Province: "Zhejiang"}})
	require.NoError(t, err)

	require.NoError(t, ref.CheckProvinces([]string{"a", "a"}))

	err = ref.CheckProvinces([]string{"z", "a", "m", "z"})
	var merr *MappingError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, "m", merr.CityID)
	assert.Equal(t, []string{"z"}, merr.Others)
	assert.Contains(t, err.Error(), `"m"`)
	assert.Contains(t, err.Error(), "z")
}

func TestEmptyInputError_Is(t *testing.T) {
	err := error(&EmptyInputError{Input: "daily_data.csv"})
	assert.True(t, errors.Is(err, ErrEmptyInput))
	assert.Contains(t, err.Error(), "daily_data.csv")
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(2024, 2))
	assert.Equal(t, 28, DaysIn(2023, 2))
	assert.Equal(t, 31, DaysIn(2024, 12))
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity("yearly")
	require.NoError(t, err)
	assert.Equal(t, GranularityYearly, g)

	_, err = ParseGranularity("weekly")
	assert.Error(t, err)
}
