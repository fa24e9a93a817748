package policy

import (
	"fmt"

	"github.com/c360studio/policytraits/trait"
)

// DuplicateTraitError is returned when two items classify into the same category.
type DuplicateTraitError struct {
	Category trait.Category
	First    trait.Item
	Second   trait.Item
}

func (e *DuplicateTraitError) Error() string {
	return fmt.Sprintf("duplicate %s trait: %v conflicts with %v", e.Category, e.Second, e.First)
}

// IncompatiblePolicyError is returned when a conversion would replace an
// explicit value of a category that does not allow conversion.
type IncompatiblePolicyError struct {
	Category trait.Category
	From     trait.Item
	To       trait.Item
}

func (e *IncompatiblePolicyError) Error() string {
	return fmt.Sprintf("cannot convert %s from %v to %v", e.Category, e.From, e.To)
}
