package energy

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxCoversTotal(t *testing.T) {
	sum := 0
	for _, m := range Max {
		sum += m
	}
	require.GreaterOrEqual(t, sum, Total)
	require.True(t, Balanced.Valid())
}

func TestParseCategory(t *testing.T) {
	for _, c := range All {
		got, ok := ParseCategory(c.String())
		require.True(t, ok)
		assert.Equal(t, c, got)
	}
	_, ok := ParseCategory("sparkle")
	assert.False(t, ok)
	got, ok := ParseCategory(" EDGE ")
	assert.True(t, ok)
	assert.Equal(t, Edge, got)
}

func TestRanked(t *testing.T) {
	d := Distribution{3, 5, 5, 2, 6, 0}
	assert.Equal(t, []Category{Drama, Playful, Romantic, Classic, Utility, Edge}, d.Ranked())
	assert.Equal(t, Drama, d.Dominant())
}

func TestRepair(t *testing.T) {
	cases := []Distribution{
		{21, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0},
		{-3, 12, 8, 7, 6, 5},
		{10, 8, 8, 7, 6, 5},
	}
	for _, d := range cases {
		r := d.Repair()
		assert.True(t, r.Valid(), "Repair(%v) = %v", d, r)
	}
	valid := Distribution{5, 4, 4, 3, 3, 2}
	assert.Equal(t, valid, valid.Repair())
}

func TestDistributionJSON(t *testing.T) {
	d := Distribution{5, 4, 4, 3, 3, 2}
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"classic":5,"playful":4,"romantic":4,"utility":3,"drama":3,"edge":2}`, string(data))

	var back Distribution
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d, back)

	assert.Error(t, json.Unmarshal([]byte(`{"sparkle":3}`), &back))
}

func TestSingleCategoryIsInvalid(t *testing.T) {
	d := Distribution{21, 0, 0, 0, 0, 0}
	assert.False(t, d.Valid())
}
