package catalog

import (
	"testing"

	"github.com/matst80/slask-catalog/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestBuildMetadata(t *testing.T) {
	meta := BuildMetadata(brandedItems())

	assert.Equal(t, 5, meta.Total)
	assert.Equal(t, types.AvailabilityData{InStock: 3, OutOfStock: 2}, meta.Availability)
	assert.Equal(t, types.PriceRange{Min: 20, Max: 100}, meta.PriceRange)
	assert.Equal(t, []types.ValueCount{
		{Value: "Acme", Count: 2},
		{Value: "Globex", Count: 1},
		{Value: "Initech", Count: 1},
	}, meta.Brands)
	assert.Equal(t, []types.ValueCount{
		{Value: "Hats", Count: 2},
		{Value: "Shoes", Count: 2},
	}, meta.Categories)
	assert.Equal(t, [6]int{1, 1, 0, 1, 1, 1}, meta.Ratings)
}

func TestBuildMetadataEmpty(t *testing.T) {
	meta := BuildMetadata(nil)
	assert.Zero(t, meta.Total)
	assert.Empty(t, meta.Brands)
	assert.Equal(t, types.PriceRange{}, meta.PriceRange)
}
