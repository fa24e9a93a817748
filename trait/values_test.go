package trait

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntegral(t *testing.T) {
	tests := []struct {
		in      string
		want    Integral
		wantErr bool
	}{
		{"int32", Int32, false},
		{"int", Int32, false},
		{"long", Int64, false},
		{"unsigned", Uint32, false},
		{"size_t", Uint64, false},
		{"UINT64", Uint64, false},
		{"float", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseIntegral(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIntegral_Width(t *testing.T) {
	assert.Equal(t, 32, Uint32.Bits())
	assert.Equal(t, 64, Int64.Bits())
	assert.Equal(t, 0, Integral(0).Bits())
}

func TestParseExecutionSpace(t *testing.T) {
	space, err := ParseExecutionSpace("cuda")
	require.NoError(t, err)
	assert.Equal(t, Cuda, space)
	assert.Equal(t, Uint32, space.SizeType)

	_, err = ParseExecutionSpace("quantum")
	assert.Error(t, err)
}

func TestWorkItemProperty(t *testing.T) {
	p := PropertyHintLightWeight | PropertyHintIrregular
	assert.True(t, p.Has(PropertyHintIrregular))
	assert.False(t, p.Has(PropertyHintHeavyWeight))
	assert.Equal(t, "light_weight|irregular", p.String())
	assert.Equal(t, "none", PropertyNone.String())

	parsed, err := ParseWorkItemProperty("irregular | light_weight")
	require.NoError(t, err)
	assert.Equal(t, p, parsed)

	_, err = ParseWorkItemProperty("feather_weight")
	assert.Error(t, err)
}

func TestParseSchedule(t *testing.T) {
	s, err := ParseSchedule("Dynamic")
	require.NoError(t, err)
	assert.Equal(t, Dynamic, s)

	_, err = ParseSchedule("guided")
	assert.Error(t, err)
}

func TestWorkTag_String(t *testing.T) {
	assert.Equal(t, "void", WorkTag{}.String())
	assert.Equal(t, "Init", WorkTag{Name: "Init"}.String())
}

func TestValidity(t *testing.T) {
	assert.True(t, Cuda.IsValid())
	assert.False(t, ExecutionSpace{Name: "Cuda"}.IsValid())
	assert.True(t, IndexType{Of: Int32}.IsValid())
	assert.False(t, IndexType{}.IsValid())
	assert.True(t, Dynamic.IsValid())
	assert.False(t, Schedule(2).IsValid())
	assert.False(t, DesiredOccupancy{Percent: 101}.IsValid())
	assert.True(t, IterationPattern{Rank: 3}.IsValid())
	assert.False(t, IterationPattern{Rank: 3, Inner: Iterate(-1)}.IsValid())
	assert.True(t, (PropertyHintHeavyWeight | PropertyHintRegular).IsValid())
	assert.False(t, WorkItemProperty(1 << 8).IsValid())
}

func TestIterationPattern(t *testing.T) {
	assert.True(t, IterationPattern{}.IsZero())
	assert.Equal(t, "none", IterationPattern{}.String())
	assert.Equal(t, "Rank<2,left,right>", IterationPattern{Rank: 2, Outer: IterateLeft, Inner: IterateRight}.String())
}
