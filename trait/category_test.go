package trait

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategories_Order(t *testing.T) {
	assert.Equal(t, []Category{
		CategoryExecutionSpace,
		CategoryGraphKernel,
		CategoryIndexType,
		CategoryIterationPattern,
		CategoryLaunchBounds,
		CategoryOccupancyControl,
		CategorySchedule,
		CategoryWorkItemProperty,
		CategoryWorkTag,
	}, Categories())
}

func TestParseCategory(t *testing.T) {
	for _, cat := range Categories() {
		got, err := ParseCategory(cat.String())
		require.NoError(t, err)
		assert.Equal(t, cat, got)
	}

	got, err := ParseCategory(" Work-Tag ")
	require.NoError(t, err)
	assert.Equal(t, CategoryWorkTag, got)

	_, err = ParseCategory("color")
	assert.Error(t, err)
}

func TestCategory_String(t *testing.T) {
	assert.Equal(t, "index_type", CategoryIndexType.String())
	assert.Equal(t, "category(42)", Category(42).String())

	_, err := Category(42).MarshalText()
	assert.Error(t, err)
}
