package config

import (
	"strconv"
	"strings"

	"github.com/c360studio/policytraits/trait"
)

// KindVoid is the document spelling of the legacy trait.Void placeholder.
const KindVoid = "void"

// ParseTrait converts a document trait entry to a trait item. Entries that
// cannot be interpreted become trait.Opaque so that resolution reports them
// as unrecognized traits rather than failing at load time.
//
// Value formats by kind:
//
//	execution_space     serial | openmp | cuda | ...
//	graph_kernel        "" | true
//	index_type          int32 | IndexType<int32> | ...
//	iteration_pattern   rank[,outer[,inner]]     e.g. 2,left,right
//	launch_bounds       max_threads[,min_blocks]
//	occupancy_control   maximize | 1..100[%]
//	schedule            static | dynamic
//	work_item_property  light_weight|irregular | none
//	work_tag            any non-empty name
//	void                (ignored)
func ParseTrait(kind, value string) trait.Item {
	opaque := trait.Opaque{Kind: kind, Value: value}
	value = strings.TrimSpace(value)

	if strings.EqualFold(strings.TrimSpace(kind), KindVoid) {
		return trait.Void{}
	}

	cat, err := trait.ParseCategory(kind)
	if err != nil {
		return opaque
	}

	var (
		item trait.Item
		ok   bool
	)
	switch cat {
	case trait.CategoryExecutionSpace:
		space, err := trait.ParseExecutionSpace(value)
		item, ok = space, err == nil
	case trait.CategoryGraphKernel:
		item, ok = trait.GraphKernel{}, value == "" || strings.EqualFold(value, "true")
	case trait.CategoryIndexType:
		item, ok = parseIndexType(value)
	case trait.CategoryIterationPattern:
		item, ok = parseIterationPattern(value)
	case trait.CategoryLaunchBounds:
		item, ok = parseLaunchBounds(value)
	case trait.CategoryOccupancyControl:
		item, ok = parseOccupancy(value)
	case trait.CategorySchedule:
		s, err := trait.ParseSchedule(value)
		item, ok = s, err == nil
	case trait.CategoryWorkItemProperty:
		p, err := trait.ParseWorkItemProperty(value)
		item, ok = p, err == nil
	case trait.CategoryWorkTag:
		item, ok = trait.WorkTag{Name: value}, value != ""
	}

	if !ok {
		return opaque
	}
	return item
}

func parseIndexType(value string) (trait.Item, bool) {
	lower := strings.ToLower(value)
	if strings.HasPrefix(lower, "indextype<") && strings.HasSuffix(lower, ">") {
		of, err := trait.ParseIntegral(value[len("indextype<") : len(value)-1])
		return trait.IndexType{Of: of}, err == nil
	}
	of, err := trait.ParseIntegral(value)
	return of, err == nil
}

func parseIterationPattern(value string) (trait.Item, bool) {
	parts := splitList(value)
	if len(parts) == 0 || len(parts) > 3 {
		return nil, false
	}
	rank, err := strconv.Atoi(parts[0])
	if err != nil || rank < trait.MinRank || rank > trait.MaxRank {
		return nil, false
	}
	p := trait.IterationPattern{Rank: rank}
	if len(parts) > 1 {
		if p.Outer, err = trait.ParseIterate(parts[1]); err != nil {
			return nil, false
		}
	}
	if len(parts) > 2 {
		if p.Inner, err = trait.ParseIterate(parts[2]); err != nil {
			return nil, false
		}
	}
	return p, true
}

func parseLaunchBounds(value string) (trait.Item, bool) {
	parts := splitList(value)
	if len(parts) == 0 || len(parts) > 2 {
		return nil, false
	}
	var b trait.LaunchBounds
	maxThreads, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return nil, false
	}
	b.MaxThreads = uint(maxThreads)
	if len(parts) == 2 {
		minBlocks, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return nil, false
		}
		b.MinBlocks = uint(minBlocks)
	}
	return b, true
}

func parseOccupancy(value string) (trait.Item, bool) {
	if strings.EqualFold(value, "maximize") {
		return trait.MaximizeOccupancy{}, true
	}
	percent, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
	if err != nil {
		return nil, false
	}
	o := trait.DesiredOccupancy{Percent: percent}
	return o, o.IsValid()
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
