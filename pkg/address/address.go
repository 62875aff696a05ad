// Package address maps a possibly stale reference to a response or reply onto
// its current position in a server-side array.
//
// Positions are not stable across concurrent edits: a delete splices the array
// and shifts every later entry. A Key carries the stable identity of the entry
// (its id, or failing that its author and creation time) so that a client can
// re-derive the position from the latest snapshot before issuing a mutation.
package address

import "time"

// Key identifies a response or reply independently of its position.
type Key struct {
	ID        string
	AuthorID  string
	CreatedAt time.Time
}

// Keyed is implemented by anything that can be addressed by Key.
type Keyed interface {
	AddressKey() Key
}

// IsZero reports whether the key carries no identity at all.
func (k Key) IsZero() bool {
	return k.ID == "" && k.AuthorID == "" && k.CreatedAt.IsZero()
}

// Matches compares by id when both sides have one, otherwise by (author, createdAt).
func (k Key) Matches(other Key) bool {
	if k.ID != "" && other.ID != "" {
		return k.ID == other.ID
	}
	if k.AuthorID == "" || k.CreatedAt.IsZero() {
		return false
	}
	return k.AuthorID == other.AuthorID && k.CreatedAt.Equal(other.CreatedAt)
}

// Resolution is the outcome of resolving one level.
type Resolution struct {
	Index int
	Found bool
}

// Locate returns the position of the first entry matching key.
func Locate[T Keyed](items []T, key Key) (int, bool) {
	if key.IsZero() {
		return -1, false
	}
	for i, item := range items {
		if key.Matches(item.AddressKey()) {
			return i, true
		}
	}
	return -1, false
}

// Resolve is Locate with a best-effort fallback: when nothing matches, the
// originally known position is returned with Found=false. The fallback may
// point at the wrong entry; the server re-validates before mutating.
func Resolve[T Keyed](items []T, key Key, fallback int) Resolution {
	if i, ok := Locate(items, key); ok {
		return Resolution{Index: i, Found: true}
	}
	return Resolution{Index: fallback, Found: false}
}

// NestedResolution addresses a reply inside a response.
type NestedResolution struct {
	Parent Resolution
	Child  Resolution
}

// Found reports whether both levels were matched by identity.
func (r NestedResolution) Found() bool {
	return r.Parent.Found && r.Child.Found
}

// Usable reports whether the indices can be sent to the server at all.
func (r NestedResolution) Usable() bool {
	return r.Parent.Index >= 0 && r.Child.Index >= 0
}

// ResolveNested resolves the parent first and the child inside the resolved
// parent. A parent that cannot be found yields -1/-1 instead of a fallback:
// the children of whatever now sits at the old parent position are unrelated.
func ResolveNested[P Keyed, C Keyed](
	parents []P,
	parentKey Key,
	parentFallback int,
	children func(P) []C,
	childKey Key,
	childFallback int,
) NestedResolution {
	parent, ok := Locate(parents, parentKey)
	if !ok {
		if !parentKey.IsZero() || parentFallback < 0 || parentFallback >= len(parents) {
			return NestedResolution{
				Parent: Resolution{Index: -1},
				Child:  Resolution{Index: -1},
			}
		}
		// Nothing to match on: trust the known position.
		parent = parentFallback
	}

	return NestedResolution{
		Parent: Resolution{Index: parent, Found: ok},
		Child:  Resolve(children(parents[parent]), childKey, childFallback),
	}
}

// InRange reports whether i is a valid index into a slice of length n.
func InRange(i, n int) bool {
	return i >= 0 && i < n
}
