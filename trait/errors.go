package trait

import "fmt"

// UnrecognizedTraitError is returned when an item matches no registered category.
type UnrecognizedTraitError struct {
	Item Item
}

func (e *UnrecognizedTraitError) Error() string {
	return fmt.Sprintf("unrecognized policy trait %v (%T)", e.Item, e.Item)
}
