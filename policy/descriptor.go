package policy

import (
	"encoding/json"
	"fmt"

	"github.com/c360studio/policytraits/trait"
)

// Provenance records where a category's value came from.
type Provenance int

const (
	// Defaulted values were computed by the category's specification.
	Defaulted Provenance = iota
	// Explicit values were supplied by the caller.
	Explicit
)

func (p Provenance) String() string {
	if p == Explicit {
		return "explicit"
	}
	return "defaulted"
}

// MarshalText implements encoding.TextMarshaler.
func (p Provenance) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Descriptor is a fully resolved execution policy. Every category holds a
// value. The zero Descriptor is not valid; obtain one from a Resolver.
type Descriptor struct {
	reg   *trait.Registry
	slots [trait.NumCategories]slot
}

func newDescriptor(reg *trait.Registry, p *partial) Descriptor {
	return Descriptor{reg: reg, slots: p.slots}
}

// IsZero reports whether d was never resolved.
func (d Descriptor) IsZero() bool {
	return d.reg == nil
}

// Registry returns the registry d was resolved against.
func (d Descriptor) Registry() *trait.Registry {
	return d.reg
}

// Value returns the resolved value of cat.
func (d Descriptor) Value(cat trait.Category) trait.Item {
	if !cat.IsValid() {
		return nil
	}
	return d.slots[cat].value
}

// Provenance reports whether cat was set explicitly or defaulted.
func (d Descriptor) Provenance(cat trait.Category) Provenance {
	if cat.IsValid() && d.slots[cat].explicit {
		return Explicit
	}
	return Defaulted
}

// IsExplicit reports whether the caller supplied cat.
func (d Descriptor) IsExplicit(cat trait.Category) bool {
	return d.Provenance(cat) == Explicit
}

// Explicit returns the caller-supplied items in registry order.
func (d Descriptor) Explicit() []trait.Item {
	var items []trait.Item
	for _, s := range d.slots {
		if s.explicit {
			items = append(items, s.value)
		}
	}
	return items
}

// ExecutionSpace returns the resolved execution space.
func (d Descriptor) ExecutionSpace() trait.ExecutionSpace {
	space, _ := d.slots[trait.CategoryExecutionSpace].value.(trait.ExecutionSpace)
	return space
}

// IsGraphKernel reports whether the policy was marked as a graph kernel.
func (d Descriptor) IsGraphKernel() bool {
	_, ok := d.slots[trait.CategoryGraphKernel].value.(trait.GraphKernel)
	return ok
}

// IndexType returns the integral index type regardless of the form in which
// it was supplied.
func (d Descriptor) IndexType() trait.Integral {
	switch v := d.slots[trait.CategoryIndexType].value.(type) {
	case trait.Integral:
		return v
	case trait.IndexType:
		return v.Of
	}
	return 0
}

// IndexTrait returns the index type as it is stored: the caller's item when
// explicit, a plain trait.Integral when defaulted.
func (d Descriptor) IndexTrait() trait.Item {
	return d.slots[trait.CategoryIndexType].value
}

// IterationPattern returns the iteration pattern; zero if none was requested.
func (d Descriptor) IterationPattern() trait.IterationPattern {
	p, _ := d.slots[trait.CategoryIterationPattern].value.(trait.IterationPattern)
	return p
}

// LaunchBounds returns the launch bounds; zero if unbounded.
func (d Descriptor) LaunchBounds() trait.LaunchBounds {
	b, _ := d.slots[trait.CategoryLaunchBounds].value.(trait.LaunchBounds)
	return b
}

// OccupancyControl returns either a trait.DesiredOccupancy or a trait.MaximizeOccupancy.
func (d Descriptor) OccupancyControl() trait.Item {
	return d.slots[trait.CategoryOccupancyControl].value
}

// DesiredOccupancy returns the requested occupancy percentage, if any.
func (d Descriptor) DesiredOccupancy() (int, bool) {
	o, ok := d.slots[trait.CategoryOccupancyControl].value.(trait.DesiredOccupancy)
	return o.Percent, ok
}

// Schedule returns the scheduling strategy.
func (d Descriptor) Schedule() trait.Schedule {
	s, _ := d.slots[trait.CategorySchedule].value.(trait.Schedule)
	return s
}

// WorkItemProperty returns the work item hints.
func (d Descriptor) WorkItemProperty() trait.WorkItemProperty {
	p, _ := d.slots[trait.CategoryWorkItemProperty].value.(trait.WorkItemProperty)
	return p
}

// WorkTag returns the work tag; zero when untagged.
func (d Descriptor) WorkTag() trait.WorkTag {
	w, _ := d.slots[trait.CategoryWorkTag].value.(trait.WorkTag)
	return w
}

// Equal reports whether d and other hold the same value and provenance for
// every category.
func (d Descriptor) Equal(other Descriptor) bool {
	return d.slots == other.slots
}

// With returns a new descriptor with item added, replacing any explicit
// item of the same category. A trait.Void item returns d unchanged.
func (d Descriptor) With(item trait.Item) (Descriptor, error) {
	if d.IsZero() {
		return Descriptor{}, fmt.Errorf("with %v: descriptor not resolved", item)
	}
	if _, ok := item.(trait.Void); ok {
		return d, nil
	}
	cat, err := d.reg.Classify(item)
	if err != nil {
		return Descriptor{}, err
	}
	return d.rebuild(cat, item)
}

// Without returns a new descriptor in which cat reverts to its default.
func (d Descriptor) Without(cat trait.Category) (Descriptor, error) {
	if d.IsZero() {
		return Descriptor{}, fmt.Errorf("without %s: descriptor not resolved", cat)
	}
	if !cat.IsValid() {
		return Descriptor{}, fmt.Errorf("without: invalid category %d", int(cat))
	}
	return d.rebuild(cat, nil)
}

// rebuild reruns the merge with d's explicit items, replacing the item for
// cat with replacement, or dropping it when replacement is nil.
func (d Descriptor) rebuild(cat trait.Category, replacement trait.Item) (Descriptor, error) {
	items := make([]trait.Item, 0, trait.NumCategories)
	for c, s := range d.slots {
		if trait.Category(c) == cat || !s.explicit {
			continue
		}
		items = append(items, s.value)
	}
	if replacement != nil {
		items = append(items, replacement)
	}
	return resolve(d.reg, items)
}

// Entry is one category of a descriptor report.
type Entry struct {
	Category   trait.Category `json:"category"`
	Value      string         `json:"value"`
	Provenance Provenance     `json:"provenance"`
}

// Report lists every category in registry order with its value and provenance.
func (d Descriptor) Report() []Entry {
	entries := make([]Entry, 0, trait.NumCategories)
	for c, s := range d.slots {
		entries = append(entries, Entry{
			Category:   trait.Category(c),
			Value:      fmt.Sprint(s.value),
			Provenance: d.Provenance(trait.Category(c)),
		})
	}
	return entries
}

// MarshalJSON encodes the descriptor as its report.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Report())
}

// String summarises the explicit traits of the descriptor.
func (d Descriptor) String() string {
	return fmt.Sprintf("Policy%v", d.Explicit())
}
