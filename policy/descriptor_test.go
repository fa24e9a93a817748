package policy

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/policytraits/trait"
)

func TestDescriptor_With(t *testing.T) {
	base, err := Resolve(trait.Cuda, trait.Static)
	require.NoError(t, err)

	dynamic, err := base.With(trait.Dynamic)
	require.NoError(t, err)
	assert.Equal(t, trait.Dynamic, dynamic.Schedule())
	assert.Equal(t, trait.Cuda, dynamic.ExecutionSpace())
	assert.Equal(t, trait.Static, base.Schedule(), "original is unchanged")

	tagged, err := dynamic.With(trait.WorkTag{Name: "Init"})
	require.NoError(t, err)
	assert.Equal(t, []trait.Item{trait.Cuda, trait.Dynamic, trait.WorkTag{Name: "Init"}}, tagged.Explicit())

	// Changing the execution space recomputes the defaulted index type.
	host, err := tagged.With(trait.OpenMP)
	require.NoError(t, err)
	assert.Equal(t, trait.Uint64, host.IndexType())

	_, err = base.With(3.14)
	var unrecognized *trait.UnrecognizedTraitError
	assert.True(t, errors.As(err, &unrecognized))
}

func TestDescriptor_WithVoid(t *testing.T) {
	d, err := Resolve(trait.Cuda, trait.Dynamic)
	require.NoError(t, err)

	same, err := d.With(trait.Void{})
	require.NoError(t, err)
	assert.True(t, d.Equal(same))
	assert.Equal(t, []trait.Item{trait.Cuda, trait.Dynamic}, same.Explicit())
}

func TestDescriptor_Without(t *testing.T) {
	d, err := Resolve(trait.Cuda, trait.Dynamic, trait.Int64)
	require.NoError(t, err)

	reverted, err := d.Without(trait.CategoryIndexType)
	require.NoError(t, err)
	assert.Equal(t, trait.Uint32, reverted.IndexType())
	assert.False(t, reverted.IsExplicit(trait.CategoryIndexType))

	unchanged, err := d.Without(trait.CategoryWorkTag)
	require.NoError(t, err)
	assert.True(t, d.Equal(unchanged))

	_, err = d.Without(trait.Category(-1))
	assert.Error(t, err)
}

func TestDescriptor_ZeroValue(t *testing.T) {
	var d Descriptor
	assert.True(t, d.IsZero())

	_, err := d.With(trait.Dynamic)
	assert.Error(t, err)
	_, err = d.Without(trait.CategorySchedule)
	assert.Error(t, err)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestDescriptor_MarshalJSON(t *testing.T) {
	d, err := Resolve(trait.Cuda, trait.IndexType{Of: trait.Int32})
	require.NoError(t, err)

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var entries []map[string]string
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, trait.NumCategories)

	assert.Equal(t, map[string]string{"category": "execution_space", "value": "Cuda", "provenance": "explicit"}, entries[0])
	assert.Equal(t, map[string]string{"category": "index_type", "value": "IndexType<int32>", "provenance": "explicit"}, entries[2])
	assert.Equal(t, map[string]string{"category": "schedule", "value": "static", "provenance": "defaulted"}, entries[6])
}

func TestDescriptor_Report(t *testing.T) {
	d, err := Resolve(trait.PropertyHintHeavyWeight)
	require.NoError(t, err)

	report := d.Report()
	require.Len(t, report, trait.NumCategories)
	for i, e := range report {
		assert.Equal(t, trait.Category(i), e.Category)
	}
	assert.Equal(t, "heavy_weight", report[trait.CategoryWorkItemProperty].Value)
	assert.Equal(t, Explicit, report[trait.CategoryWorkItemProperty].Provenance)
	assert.Equal(t, "Policy[heavy_weight]", d.String())
}
