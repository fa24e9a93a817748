package policy

import (
	"github.com/c360studio/policytraits/trait"
)

// fillDefaults installs a default for every unset category. Independent
// defaults are filled first, in registry order; dependent defaults follow and
// may read any category resolved in the first pass.
func fillDefaults(reg *trait.Registry, p *partial) {
	dependent := make([]trait.Specification, 0, 1)

	for _, cat := range reg.Categories() {
		if p.slots[cat].set {
			continue
		}
		spec := reg.Spec(cat)
		if len(spec.DependsOn()) > 0 {
			dependent = append(dependent, spec)
			continue
		}
		p.slots[cat] = slot{value: spec.Default(p), set: true}
	}

	for _, spec := range dependent {
		p.slots[spec.Category()] = slot{value: spec.Default(p), set: true}
	}

	normalizeIndexType(p)
}

// normalizeIndexType reports a defaulted index type as a plain integral.
// An explicit item keeps the caller's form.
func normalizeIndexType(p *partial) {
	s := &p.slots[trait.CategoryIndexType]
	if s.explicit {
		return
	}
	if wrapped, ok := s.value.(trait.IndexType); ok {
		s.value = wrapped.Of
	}
}
