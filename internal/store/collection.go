package store

import "slices"

// Entity is anything with a server-assigned id.
type Entity interface {
	EntityID() string
}

// The helpers below never modify their input, so a previous store value
// stays valid after a reduce.

func replaceAll[T Entity](items []T) []T {
	if items == nil {
		return []T{}
	}
	return slices.Clone(items)
}

func appendItem[T Entity](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, items...)
	return append(out, item)
}

// replaceByID swaps the entry with item's id in place. Unknown ids are not
// inserted.
func replaceByID[T Entity](items []T, item T) []T {
	i := slices.IndexFunc(items, func(e T) bool { return e.EntityID() == item.EntityID() })
	if i < 0 {
		return items
	}
	out := slices.Clone(items)
	out[i] = item
	return out
}

func removeByID[T Entity](items []T, id string) []T {
	if !slices.ContainsFunc(items, func(e T) bool { return e.EntityID() == id }) {
		return items
	}
	return slices.DeleteFunc(slices.Clone(items), func(e T) bool { return e.EntityID() == id })
}
