// Package trait defines the closed set of execution policy trait categories,
// the trait item values callers supply, and the registry that classifies items
// into categories and computes per-category defaults.
package trait

import (
	"fmt"
	"strings"
)

// Category identifies one aspect of an execution policy.
// The set is closed; its declaration order is the registry order.
type Category int

const (
	CategoryExecutionSpace Category = iota
	CategoryGraphKernel
	CategoryIndexType
	CategoryIterationPattern
	CategoryLaunchBounds
	CategoryOccupancyControl
	CategorySchedule
	CategoryWorkItemProperty
	CategoryWorkTag

	// NumCategories is the number of categories. Not a category itself.
	NumCategories int = iota
)

var categoryNames = [NumCategories]string{
	CategoryExecutionSpace:   "execution_space",
	CategoryGraphKernel:      "graph_kernel",
	CategoryIndexType:        "index_type",
	CategoryIterationPattern: "iteration_pattern",
	CategoryLaunchBounds:     "launch_bounds",
	CategoryOccupancyControl: "occupancy_control",
	CategorySchedule:         "schedule",
	CategoryWorkItemProperty: "work_item_property",
	CategoryWorkTag:          "work_tag",
}

// Categories returns every category in registry order.
func Categories() []Category {
	cats := make([]Category, NumCategories)
	for i := range cats {
		cats[i] = Category(i)
	}
	return cats
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	return c >= 0 && int(c) < NumCategories
}

// String returns the snake_case name of the category.
func (c Category) String() string {
	if !c.IsValid() {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if !c.IsValid() {
		return nil, fmt.Errorf("invalid category %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory converts a category name to a Category.
// Hyphens and case are ignored, so "Work-Tag" parses as CategoryWorkTag.
func ParseCategory(s string) (Category, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("unknown trait category %q", s)
}
