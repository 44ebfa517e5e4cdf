package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string  `validate:"required"`
	Kind  string  `validate:"oneof=a b"`
	Score float64 `validate:"gte=0,lte=1"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, Struct(sample{Name: "x", Kind: "a", Score: 0.5}))

	err := Struct(sample{Kind: "c", Score: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample.Name is required")
	assert.Contains(t, err.Error(), "sample.Kind must be one of [a b]")
	assert.Contains(t, err.Error(), "sample.Score must be <= 1")
}

func TestGetIsSingleton(t *testing.T) {
	assert.Same(t, Get(), Get())
}
