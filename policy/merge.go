package policy

import (
	"github.com/c360studio/policytraits/trait"
)

// slot holds the resolution state of one category.
type slot struct {
	value    trait.Item
	set      bool
	explicit bool
}

// partial is the per-merge resolution. It is owned by a single merge and
// discarded once a Descriptor is built from it.
type partial struct {
	slots    [trait.NumCategories]slot
	explicit int
}

// Lookup implements trait.Resolution.
func (p *partial) Lookup(cat trait.Category) (trait.Item, bool) {
	if !cat.IsValid() || !p.slots[cat].set {
		return nil, false
	}
	return p.slots[cat].value, true
}

func (p *partial) setExplicit(cat trait.Category, item trait.Item) {
	p.slots[cat] = slot{value: item, set: true, explicit: true}
	p.explicit++
}

// folder walks the caller's items and assigns each to its category. The
// first error ends the merge; a folder that returned an error is not reused.
type folder struct {
	reg *trait.Registry
	p   partial
}

// add classifies item and records it. A Void item is skipped.
func (f *folder) add(item trait.Item) error {
	if _, ok := item.(trait.Void); ok {
		return nil
	}

	cat, err := f.reg.Classify(item)
	if err != nil {
		return err
	}

	if existing := f.p.slots[cat]; existing.set {
		return &DuplicateTraitError{Category: cat, First: existing.value, Second: item}
	}

	f.p.setExplicit(cat, item)
	return nil
}

// fold merges every item and returns the partial resolution, or the first error.
func fold(reg *trait.Registry, items []trait.Item) (*partial, error) {
	f := &folder{reg: reg}
	for _, item := range items {
		if err := f.add(item); err != nil {
			return nil, err
		}
	}
	return &f.p, nil
}
