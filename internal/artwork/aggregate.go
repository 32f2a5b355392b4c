package artwork

// Aggregate folds per-item slot lists into report rows plus the run-level
// summary. Row order follows the catalog order of items; Aggregate never
// re-sorts, so repeated runs against an unchanged catalog produce
// identical ordering.
//
// HasMissing and HasLowRes are independent: an item with every image
// present but one undersized reports HasMissing=false, HasLowRes=true.
func Aggregate(items []*Item, slotsByItem map[string][]Slot) ([]Row, Summary) {
	rows := make([]Row, 0, len(items))
	summary := Summary{Items: len(items)}

	for _, it := range items {
		row := Row{Item: it, Slots: slotsByItem[it.ID]}
		for _, s := range row.Slots {
			if !s.Present {
				row.HasMissing = true
			} else if s.LowRes {
				row.HasLowRes = true
			}
		}
		if row.HasMissing {
			summary.Missing++
		}
		if row.HasLowRes {
			summary.LowRes++
		}
		if !row.HasMissing && !row.HasLowRes {
			summary.Complete++
		}
		rows = append(rows, row)
	}
	return rows, summary
}
