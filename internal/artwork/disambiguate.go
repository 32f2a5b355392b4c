package artwork

import "strconv"

// Disambiguate assigns a display title to every item in the run.
//
// Movies always get " (year)" appended so HTML output and export folder
// names stay consistent, even when the title is unique. Other kinds only
// get the year when another item in the run shares the exact raw title;
// collisions are computed over the whole run, not per section.
//
// Items with the same title and the same (or no) year keep identical
// display titles. That ambiguity is accepted; there is no tertiary
// tie-break.
func Disambiguate(items []*Item) {
	counts := make(map[string]int, len(items))
	for _, it := range items {
		counts[it.Title]++
	}

	for _, it := range items {
		title := it.Title
		if it.Year > 0 && (it.Kind == KindMovie || counts[it.Title] > 1) {
			title = title + " (" + strconv.Itoa(it.Year) + ")"
		}
		it.DisplayTitle = title
	}
}
