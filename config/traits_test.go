package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/c360studio/policytraits/trait"
)

func TestParseTrait(t *testing.T) {
	tests := []struct {
		kind  string
		value string
		want  trait.Item
	}{
		{"execution_space", "cuda", trait.Cuda},
		{"Execution-Space", " OpenMP ", trait.OpenMP},
		{"graph_kernel", "", trait.GraphKernel{}},
		{"graph_kernel", "true", trait.GraphKernel{}},
		{"index_type", "int32", trait.Int32},
		{"index_type", "IndexType<size_t>", trait.IndexType{Of: trait.Uint64}},
		{"iteration_pattern", "2", trait.IterationPattern{Rank: 2}},
		{"iteration_pattern", "3, left, right", trait.IterationPattern{Rank: 3, Outer: trait.IterateLeft, Inner: trait.IterateRight}},
		{"launch_bounds", "256", trait.LaunchBounds{MaxThreads: 256}},
		{"launch_bounds", "128,4", trait.LaunchBounds{MaxThreads: 128, MinBlocks: 4}},
		{"occupancy_control", "maximize", trait.MaximizeOccupancy{}},
		{"occupancy_control", "33%", trait.DesiredOccupancy{Percent: 33}},
		{"schedule", "dynamic", trait.Dynamic},
		{"work_item_property", "heavy_weight|irregular", trait.PropertyHintHeavyWeight | trait.PropertyHintIrregular},
		{"work_tag", "Init", trait.WorkTag{Name: "Init"}},
		{"void", "", trait.Void{}},
	}

	for _, tt := range tests {
		t.Run(tt.kind+"="+tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTrait(tt.kind, tt.value))
		})
	}
}

func TestParseTrait_Opaque(t *testing.T) {
	tests := []struct {
		kind  string
		value string
	}{
		{"color", "red"},
		{"execution_space", "abacus"},
		{"graph_kernel", "false"},
		{"index_type", "float"},
		{"index_type", "IndexType<float>"},
		{"iteration_pattern", "1"},
		{"iteration_pattern", "2,up"},
		{"iteration_pattern", ""},
		{"launch_bounds", "-1"},
		{"launch_bounds", "1,2,3"},
		{"occupancy_control", "0"},
		{"occupancy_control", "101%"},
		{"schedule", "guided"},
		{"work_item_property", "fast"},
		{"work_tag", ""},
	}

	for _, tt := range tests {
		t.Run(tt.kind+"="+tt.value, func(t *testing.T) {
			assert.Equal(t, trait.Opaque{Kind: tt.kind, Value: tt.value}, ParseTrait(tt.kind, tt.value))
		})
	}
}
