// Package policy resolves an unordered list of trait items into an
// immutable execution policy Descriptor.
//
// Resolution runs in three steps:
//
//	items -> classify (trait.Registry) -> fold into a partial resolution
//	      -> fill defaults (independent first, then dependent) -> Descriptor
//
// The fold rejects items no category accepts and rejects a second item for a
// category that is already set. The result never depends on item order. The
// default index type is derived from the resolved execution space and is
// reported as a plain trait.Integral; an explicit index type item is kept
// exactly as supplied.
//
// Descriptors are values. With, Without and Resolver.Convert build new
// descriptors by rerunning the merge; nothing mutates an existing one.
package policy
