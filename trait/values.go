package trait

import (
	"fmt"
	"strings"
)

// Item is a single caller-supplied trait. Any value may be passed; values that
// no registered category accepts are rejected by Registry.Classify.
type Item = any

// Integral is a plain integral index type.
type Integral int

const (
	Int32 Integral = iota + 1
	Int64
	Uint32
	Uint64
)

var integralNames = map[Integral]string{
	Int32:  "int32",
	Int64:  "int64",
	Uint32: "uint32",
	Uint64: "uint64",
}

// IsValid reports whether i is a known integral type.
func (i Integral) IsValid() bool {
	_, ok := integralNames[i]
	return ok
}

// Bits returns the width of the integral type.
func (i Integral) Bits() int {
	switch i {
	case Int32, Uint32:
		return 32
	case Int64, Uint64:
		return 64
	}
	return 0
}

func (i Integral) String() string {
	if name, ok := integralNames[i]; ok {
		return name
	}
	return fmt.Sprintf("integral(%d)", int(i))
}

// ParseIntegral converts a type name to an Integral. Common C-style aliases
// ("int", "long", "unsigned", "size_t") are accepted.
func ParseIntegral(s string) (Integral, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int32", "int", "int32_t":
		return Int32, nil
	case "int64", "long", "int64_t", "ptrdiff_t":
		return Int64, nil
	case "uint32", "unsigned", "uint32_t":
		return Uint32, nil
	case "uint64", "uint64_t", "size_t":
		return Uint64, nil
	}
	return 0, fmt.Errorf("unknown integral type %q", s)
}

// IndexType is the wrapped marker form of an index type trait. A bare
// Integral is accepted for the same category.
type IndexType struct {
	Of Integral
}

// IsValid reports whether the wrapped integral is known.
func (t IndexType) IsValid() bool {
	return t.Of.IsValid()
}

func (t IndexType) String() string {
	return "IndexType<" + t.Of.String() + ">"
}

// ExecutionSpace names the backend a policy runs on together with the size
// type the backend uses for its extents.
type ExecutionSpace struct {
	Name     string
	SizeType Integral
}

// Predefined execution spaces.
var (
	Serial       = ExecutionSpace{Name: "Serial", SizeType: Uint64}
	OpenMP       = ExecutionSpace{Name: "OpenMP", SizeType: Uint64}
	Threads      = ExecutionSpace{Name: "Threads", SizeType: Uint64}
	HPX          = ExecutionSpace{Name: "HPX", SizeType: Uint64}
	Cuda         = ExecutionSpace{Name: "Cuda", SizeType: Uint32}
	HIP          = ExecutionSpace{Name: "HIP", SizeType: Uint32}
	SYCL         = ExecutionSpace{Name: "SYCL", SizeType: Uint64}
	OpenMPTarget = ExecutionSpace{Name: "OpenMPTarget", SizeType: Uint64}
)

// ExecutionSpaces returns the predefined execution spaces.
func ExecutionSpaces() []ExecutionSpace {
	return []ExecutionSpace{Serial, OpenMP, Threads, HPX, Cuda, HIP, SYCL, OpenMPTarget}
}

// ParseExecutionSpace looks up a predefined execution space by name, ignoring case.
func ParseExecutionSpace(s string) (ExecutionSpace, error) {
	for _, space := range ExecutionSpaces() {
		if strings.EqualFold(space.Name, strings.TrimSpace(s)) {
			return space, nil
		}
	}
	return ExecutionSpace{}, fmt.Errorf("unknown execution space %q", s)
}

// IsValid reports whether e is named and has a known size type.
func (e ExecutionSpace) IsValid() bool {
	return e.Name != "" && e.SizeType.IsValid()
}

func (e ExecutionSpace) String() string {
	return e.Name
}

// Iterate is the traversal order of one level of a multidimensional range.
type Iterate int

const (
	IterateDefault Iterate = iota
	IterateLeft
	IterateRight
)

// IsValid reports whether it is one of the known orders.
func (it Iterate) IsValid() bool {
	return it >= IterateDefault && it <= IterateRight
}

func (it Iterate) String() string {
	switch it {
	case IterateLeft:
		return "left"
	case IterateRight:
		return "right"
	}
	return "default"
}

// ParseIterate converts "left", "right" or "default" to an Iterate.
func ParseIterate(s string) (Iterate, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return IterateDefault, nil
	case "left":
		return IterateLeft, nil
	case "right":
		return IterateRight, nil
	}
	return 0, fmt.Errorf("unknown iterate order %q", s)
}

// Rank bounds of a multidimensional iteration.
const (
	MinRank = 2
	MaxRank = 8
)

// IterationPattern describes a multidimensional iteration. The zero value
// means no pattern was requested.
type IterationPattern struct {
	Rank  int
	Outer Iterate
	Inner Iterate
}

// IsValid reports whether p is a requestable pattern. The zero value is not.
func (p IterationPattern) IsValid() bool {
	return p.Rank >= MinRank && p.Rank <= MaxRank && p.Outer.IsValid() && p.Inner.IsValid()
}

// IsZero reports whether no pattern is set.
func (p IterationPattern) IsZero() bool {
	return p == IterationPattern{}
}

func (p IterationPattern) String() string {
	if p.IsZero() {
		return "none"
	}
	return fmt.Sprintf("Rank<%d,%s,%s>", p.Rank, p.Outer, p.Inner)
}

// LaunchBounds caps the threads per block and requests a minimum number of
// resident blocks. Zero fields mean unbounded.
type LaunchBounds struct {
	MaxThreads uint
	MinBlocks  uint
}

func (b LaunchBounds) String() string {
	return fmt.Sprintf("LaunchBounds<%d,%d>", b.MaxThreads, b.MinBlocks)
}

// DesiredOccupancy requests a target occupancy percentage in [1, 100].
type DesiredOccupancy struct {
	Percent int
}

// IsValid reports whether the percentage is in range.
func (o DesiredOccupancy) IsValid() bool {
	return o.Percent >= 1 && o.Percent <= 100
}

func (o DesiredOccupancy) String() string {
	return fmt.Sprintf("DesiredOccupancy<%d%%>", o.Percent)
}

// MaximizeOccupancy leaves occupancy to the backend. It is the default.
type MaximizeOccupancy struct{}

func (MaximizeOccupancy) String() string {
	return "MaximizeOccupancy"
}

// Schedule selects the iteration scheduling strategy.
type Schedule int

const (
	Static Schedule = iota
	Dynamic
)

// IsValid reports whether s is Static or Dynamic.
func (s Schedule) IsValid() bool {
	return s == Static || s == Dynamic
}

func (s Schedule) String() string {
	if s == Dynamic {
		return "dynamic"
	}
	return "static"
}

// ParseSchedule converts "static" or "dynamic" to a Schedule.
func ParseSchedule(s string) (Schedule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "static":
		return Static, nil
	case "dynamic":
		return Dynamic, nil
	}
	return 0, fmt.Errorf("unknown schedule %q", s)
}

// WorkItemProperty is a set of hints about the cost of each work item.
type WorkItemProperty uint

const (
	PropertyNone            WorkItemProperty = 0
	PropertyHintLightWeight WorkItemProperty = 1 << iota
	PropertyHintHeavyWeight
	PropertyHintRegular
	PropertyHintIrregular
)

var propertyNames = []struct {
	bit  WorkItemProperty
	name string
}{
	{PropertyHintLightWeight, "light_weight"},
	{PropertyHintHeavyWeight, "heavy_weight"},
	{PropertyHintRegular, "regular"},
	{PropertyHintIrregular, "irregular"},
}

// knownProperties is the union of every defined hint bit.
const knownProperties = PropertyHintLightWeight | PropertyHintHeavyWeight | PropertyHintRegular | PropertyHintIrregular

// IsValid reports whether p sets only defined hint bits.
func (p WorkItemProperty) IsValid() bool {
	return p&^knownProperties == 0
}

// Has reports whether every bit in q is set in p.
func (p WorkItemProperty) Has(q WorkItemProperty) bool {
	return p&q == q
}

func (p WorkItemProperty) String() string {
	if p == PropertyNone {
		return "none"
	}
	var parts []string
	for _, pn := range propertyNames {
		if p.Has(pn.bit) {
			parts = append(parts, pn.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseWorkItemProperty parses a "|" separated list of property names.
func ParseWorkItemProperty(s string) (WorkItemProperty, error) {
	var p WorkItemProperty
	for _, part := range strings.Split(s, "|") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" || part == "none" {
			continue
		}
		found := false
		for _, pn := range propertyNames {
			if pn.name == part {
				p |= pn.bit
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown work item property %q", part)
		}
	}
	return p, nil
}

// WorkTag distinguishes overloads of a functor's operator. The zero value
// means untagged.
type WorkTag struct {
	Name string
}

func (w WorkTag) String() string {
	if w.Name == "" {
		return "void"
	}
	return w.Name
}

// GraphKernel marks a policy as a node of a kernel graph.
type GraphKernel struct{}

func (GraphKernel) String() string {
	return "IsGraphKernel"
}

// NotGraphKernel is the graph kernel category's default: the policy is an
// ordinary kernel. Callers never supply it.
type NotGraphKernel struct{}

func (NotGraphKernel) String() string {
	return "NotGraphKernel"
}

// Void is the legacy "no trait" placeholder. It belongs to no category and
// is skipped when traits are merged.
type Void struct{}

func (Void) String() string {
	return "void"
}

// Opaque carries a trait that could not be interpreted, such as an unknown
// kind read from a policy document. No category accepts it.
type Opaque struct {
	Kind  string
	Value string
}

func (o Opaque) String() string {
	return o.Kind + "=" + o.Value
}
