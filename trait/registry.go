package trait

import "sync"

// Registry is the ordered, immutable list of trait specifications. A
// Registry is safe for concurrent use; nothing mutates it after NewRegistry
// returns.
type Registry struct {
	specs [NumCategories]Specification
}

// Option configures a Registry under construction.
type Option func(*registryOptions)

type registryOptions struct {
	defaultSpace   ExecutionSpace
	nonConvertible map[Category]bool
}

// WithDefaultExecutionSpace sets the execution space used when a policy
// names none. Serial if unset.
func WithDefaultExecutionSpace(space ExecutionSpace) Option {
	return func(o *registryOptions) {
		o.defaultSpace = space
	}
}

// WithNonConvertible marks categories whose explicit values may not be
// overwritten by a conversion.
func WithNonConvertible(cats ...Category) Option {
	return func(o *registryOptions) {
		for _, c := range cats {
			o.nonConvertible[c] = true
		}
	}
}

// NewRegistry builds a registry containing the built-in specification for
// every category.
func NewRegistry(opts ...Option) *Registry {
	o := registryOptions{
		defaultSpace:   Serial,
		nonConvertible: make(map[Category]bool),
	}
	for _, opt := range opts {
		opt(&o)
	}

	base := func(c Category) baseSpec {
		return baseSpec{category: c, convertible: !o.nonConvertible[c]}
	}

	r := &Registry{}
	r.specs[CategoryExecutionSpace] = executionSpaceSpec{baseSpec: base(CategoryExecutionSpace), fallback: o.defaultSpace}
	r.specs[CategoryGraphKernel] = graphKernelSpec{base(CategoryGraphKernel)}
	r.specs[CategoryIndexType] = indexTypeSpec{base(CategoryIndexType)}
	r.specs[CategoryIterationPattern] = iterationPatternSpec{base(CategoryIterationPattern)}
	r.specs[CategoryLaunchBounds] = launchBoundsSpec{base(CategoryLaunchBounds)}
	r.specs[CategoryOccupancyControl] = occupancyControlSpec{base(CategoryOccupancyControl)}
	r.specs[CategorySchedule] = scheduleSpec{base(CategorySchedule)}
	r.specs[CategoryWorkItemProperty] = workItemPropertySpec{base(CategoryWorkItemProperty)}
	r.specs[CategoryWorkTag] = workTagSpec{base(CategoryWorkTag)}
	return r
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry built with no options.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Categories returns the registered categories in registry order.
func (r *Registry) Categories() []Category {
	return Categories()
}

// Spec returns the specification registered for cat, or nil if cat is not
// a known category.
func (r *Registry) Spec(cat Category) Specification {
	if !cat.IsValid() {
		return nil
	}
	return r.specs[cat]
}

// Classify returns the first category, in registry order, whose
// specification accepts item.
func (r *Registry) Classify(item Item) (Category, error) {
	for _, spec := range r.specs {
		if spec.Matches(item) {
			return spec.Category(), nil
		}
	}
	return 0, &UnrecognizedTraitError{Item: item}
}

// DefaultExecutionSpace returns the execution space used when a policy names none.
func (r *Registry) DefaultExecutionSpace() ExecutionSpace {
	return r.specs[CategoryExecutionSpace].(executionSpaceSpec).fallback
}
