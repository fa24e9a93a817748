package trait

// Resolution is a read-only view of a partially resolved policy. Dependent
// defaults read the categories they depend on through it.
type Resolution interface {
	// Lookup returns the value resolved for cat so far.
	Lookup(cat Category) (Item, bool)
}

// Specification describes one trait category: which items belong to it,
// what it defaults to and whether descriptors may convert across it.
type Specification interface {
	Category() Category

	// Matches reports whether item belongs to this category.
	Matches(item Item) bool

	// Default computes the value used when no item was supplied. The
	// categories listed by DependsOn are resolved before Default is called.
	Default(r Resolution) Item

	// DependsOn lists the categories Default reads. Empty for independent
	// defaults.
	DependsOn() []Category

	// Convertible reports whether a descriptor may be converted into one
	// that explicitly sets this category to a different value.
	Convertible() bool
}

// baseSpec carries the fields shared by every built-in specification.
type baseSpec struct {
	category    Category
	convertible bool
}

func (b baseSpec) Category() Category    { return b.category }
func (b baseSpec) DependsOn() []Category { return nil }
func (b baseSpec) Convertible() bool     { return b.convertible }

type executionSpaceSpec struct {
	baseSpec
	fallback ExecutionSpace
}

func (s executionSpaceSpec) Matches(item Item) bool {
	space, ok := item.(ExecutionSpace)
	return ok && space.IsValid()
}

func (s executionSpaceSpec) Default(Resolution) Item { return s.fallback }

type graphKernelSpec struct{ baseSpec }

func (graphKernelSpec) Matches(item Item) bool {
	_, ok := item.(GraphKernel)
	return ok
}

// Default reports an ordinary kernel; only the GraphKernel marker sets it.
func (graphKernelSpec) Default(Resolution) Item { return NotGraphKernel{} }

// indexTypeSpec defaults to the size type of the resolved execution space,
// in the wrapped IndexType form.
type indexTypeSpec struct{ baseSpec }

func (indexTypeSpec) Matches(item Item) bool {
	switch v := item.(type) {
	case IndexType:
		return v.IsValid()
	case Integral:
		return v.IsValid()
	}
	return false
}

func (indexTypeSpec) DependsOn() []Category {
	return []Category{CategoryExecutionSpace}
}

func (indexTypeSpec) Default(r Resolution) Item {
	if v, ok := r.Lookup(CategoryExecutionSpace); ok {
		if space, ok := v.(ExecutionSpace); ok && space.IsValid() {
			return IndexType{Of: space.SizeType}
		}
	}
	return IndexType{Of: Int64}
}

type iterationPatternSpec struct{ baseSpec }

func (iterationPatternSpec) Matches(item Item) bool {
	p, ok := item.(IterationPattern)
	return ok && p.IsValid()
}

func (iterationPatternSpec) Default(Resolution) Item { return IterationPattern{} }

type launchBoundsSpec struct{ baseSpec }

func (launchBoundsSpec) Matches(item Item) bool {
	_, ok := item.(LaunchBounds)
	return ok
}

func (launchBoundsSpec) Default(Resolution) Item { return LaunchBounds{} }

type occupancyControlSpec struct{ baseSpec }

func (occupancyControlSpec) Matches(item Item) bool {
	switch v := item.(type) {
	case DesiredOccupancy:
		return v.IsValid()
	case MaximizeOccupancy:
		return true
	}
	return false
}

func (occupancyControlSpec) Default(Resolution) Item { return MaximizeOccupancy{} }

type scheduleSpec struct{ baseSpec }

func (scheduleSpec) Matches(item Item) bool {
	s, ok := item.(Schedule)
	return ok && s.IsValid()
}

func (scheduleSpec) Default(Resolution) Item { return Static }

type workItemPropertySpec struct{ baseSpec }

func (workItemPropertySpec) Matches(item Item) bool {
	p, ok := item.(WorkItemProperty)
	return ok && p.IsValid()
}

func (workItemPropertySpec) Default(Resolution) Item { return PropertyNone }

type workTagSpec struct{ baseSpec }

func (workTagSpec) Matches(item Item) bool {
	_, ok := item.(WorkTag)
	return ok
}

func (workTagSpec) Default(Resolution) Item { return WorkTag{} }
