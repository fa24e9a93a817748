package policy

import (
	"log/slog"

	"github.com/c360studio/policytraits/trait"
)

// Operation names passed to an Observer.
const (
	OpResolve = "resolve"
	OpConvert = "convert"
)

// Observer is notified once per Resolve or Convert call.
type Observer interface {
	ObserveResolution(op string, explicit int, err error)
}

// Resolver resolves trait items against a registry. A Resolver holds no
// mutable state and may be shared between goroutines.
type Resolver struct {
	reg      *trait.Registry
	logger   *slog.Logger
	observer Observer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithObserver sets an observer for resolution outcomes.
func WithObserver(o Observer) Option {
	return func(r *Resolver) {
		r.observer = o
	}
}

// NewResolver creates a resolver for reg. A nil reg uses trait.Default().
func NewResolver(reg *trait.Registry, opts ...Option) *Resolver {
	if reg == nil {
		reg = trait.Default()
	}
	r := &Resolver{reg: reg}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Registry returns the registry the resolver classifies against.
func (r *Resolver) Registry() *trait.Registry {
	return r.reg
}

// Resolve merges items into a descriptor, filling every category the items
// leave unset with its default. Item order does not affect the result.
func (r *Resolver) Resolve(items ...trait.Item) (Descriptor, error) {
	d, err := resolve(r.reg, items)
	r.finish(OpResolve, len(d.Explicit()), err)
	if err != nil {
		return Descriptor{}, err
	}
	r.logResolved(OpResolve, d)
	return d, nil
}

// Legacy returns the descriptor for a policy declared without traits. It is
// identical to Resolve with no items.
func (r *Resolver) Legacy() Descriptor {
	p := &partial{}
	fillDefaults(r.reg, p)
	return newDescriptor(r.reg, p)
}

// Convert builds the descriptor described by the destination items dst,
// carrying over every category src set explicitly that dst does not.
// Categories dst sets keep dst's value. If such a category does not allow
// conversion and src set it explicitly to something else, Convert returns an
// *IncompatiblePolicyError. Defaulted categories are recomputed.
func (r *Resolver) Convert(src Descriptor, dst ...trait.Item) (Descriptor, error) {
	p, err := fold(r.reg, dst)
	if err != nil {
		r.finish(OpConvert, 0, err)
		return Descriptor{}, err
	}

	for _, cat := range r.reg.Categories() {
		from := src.slots[cat]
		if !from.explicit {
			continue
		}
		to := p.slots[cat]
		if !to.set {
			p.setExplicit(cat, from.value)
			continue
		}
		if !r.reg.Spec(cat).Convertible() && to.value != from.value {
			err := &IncompatiblePolicyError{Category: cat, From: from.value, To: to.value}
			r.finish(OpConvert, p.explicit, err)
			return Descriptor{}, err
		}
	}

	fillDefaults(r.reg, p)
	d := newDescriptor(r.reg, p)
	r.finish(OpConvert, p.explicit, nil)
	r.logResolved(OpConvert, d)
	return d, nil
}

func (r *Resolver) finish(op string, explicit int, err error) {
	if err != nil {
		r.logger.Debug("Policy resolution failed", "operation", op, "error", err)
	}
	if r.observer != nil {
		r.observer.ObserveResolution(op, explicit, err)
	}
}

func (r *Resolver) logResolved(op string, d Descriptor) {
	r.logger.Debug("Policy resolved",
		"operation", op,
		"execution_space", d.ExecutionSpace().Name,
		"index_type", d.IndexType().String(),
		"index_bits", d.IndexType().Bits(),
		"schedule", d.Schedule().String(),
		"explicit", len(d.Explicit()))
}

// resolve runs a merge with no logging or observer. Used by Descriptor's
// With and Without.
func resolve(reg *trait.Registry, items []trait.Item) (Descriptor, error) {
	p, err := fold(reg, items)
	if err != nil {
		return Descriptor{}, err
	}
	fillDefaults(reg, p)
	return newDescriptor(reg, p), nil
}

// Resolve merges items using the shared default registry.
func Resolve(items ...trait.Item) (Descriptor, error) {
	return resolve(trait.Default(), items)
}
