package artwork

import "sort"

// Resolve expands an item's validated tag map into the concrete slot list
// for the tracked types. Types resolve in canonical order no matter how
// the caller ordered trackedTypes.
//
// Single-index types always yield exactly one slot, present iff the item
// carries a tag for it. Backdrop yields one slot per tagged index in
// ascending index order; when the item has no backdrops at all, a single
// absent slot at index 0 stands in so the summary table still gets a
// Backdrop cell for the item.
//
// Resolve is a pure function of (item, trackedTypes).
func Resolve(item *Item, trackedTypes []Type) []Slot {
	var slots []Slot
	for _, t := range Tracked(trackedTypes) {
		if !t.MultiIndex() {
			tag, ok := item.Tags[t][0]
			slots = append(slots, Slot{Type: t, Index: 0, Present: ok, Tag: tag})
			continue
		}

		indexes := make([]int, 0, len(item.Tags[t]))
		for idx := range item.Tags[t] {
			indexes = append(indexes, idx)
		}
		if len(indexes) == 0 {
			slots = append(slots, Slot{Type: t, Index: 0})
			continue
		}
		sort.Ints(indexes)
		for _, idx := range indexes {
			slots = append(slots, Slot{Type: t, Index: idx, Present: true, Tag: item.Tags[t][idx]})
		}
	}
	return slots
}
