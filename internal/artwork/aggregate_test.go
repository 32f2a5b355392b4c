package artwork

import "testing"

func TestAggregateFlags(t *testing.T) {
	items := []*Item{
		{ID: "complete", Title: "A"},
		{ID: "missing", Title: "B"},
		{ID: "lowres", Title: "C"},
		{ID: "both", Title: "D"},
	}
	slots := map[string][]Slot{
		"complete": {
			{Type: TypePrimary, Present: true, DimsKnown: true, Width: 600, Height: 900},
		},
		"missing": {
			{Type: TypePrimary, Present: true, DimsKnown: true, Width: 600, Height: 900},
			{Type: TypeBackdrop, Present: false},
		},
		"lowres": {
			{Type: TypePrimary, Present: true, DimsKnown: true, Width: 100, Height: 100, LowRes: true},
		},
		"both": {
			{Type: TypePrimary, Present: true, LowRes: true, DimsKnown: true, Width: 10, Height: 10},
			{Type: TypeLogo, Present: false},
		},
	}

	rows, summary := Aggregate(items, slots)

	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}

	tests := []struct {
		idx         int
		wantMissing bool
		wantLowRes  bool
	}{
		{0, false, false},
		{1, true, false},
		{2, false, true},
		{3, true, true},
	}
	for _, tt := range tests {
		row := rows[tt.idx]
		if row.HasMissing != tt.wantMissing {
			t.Errorf("row %s: HasMissing = %v, want %v", row.Item.ID, row.HasMissing, tt.wantMissing)
		}
		if row.HasLowRes != tt.wantLowRes {
			t.Errorf("row %s: HasLowRes = %v, want %v", row.Item.ID, row.HasLowRes, tt.wantLowRes)
		}
	}

	if summary.Items != 4 || summary.Complete != 1 || summary.Missing != 2 || summary.LowRes != 2 {
		t.Errorf("summary = %+v, want Items=4 Complete=1 Missing=2 LowRes=2", summary)
	}
}

func TestAggregateIndependentFlags(t *testing.T) {
	// All images present but one undersized: missing=false, lowres=true.
	items := []*Item{{ID: "x", Title: "X"}}
	slots := map[string][]Slot{
		"x": {
			{Type: TypePrimary, Present: true, DimsKnown: true, Width: 2000, Height: 3000},
			{Type: TypeBackdrop, Present: true, DimsKnown: true, Width: 320, Height: 180, LowRes: true},
		},
	}

	rows, _ := Aggregate(items, slots)

	if rows[0].HasMissing {
		t.Error("HasMissing should be false when every slot is present")
	}
	if !rows[0].HasLowRes {
		t.Error("HasLowRes should be true with one undersized slot")
	}
}

func TestAggregatePreservesCatalogOrder(t *testing.T) {
	items := []*Item{
		{ID: "z", Title: "Zebra"},
		{ID: "a", Title: "Aardvark"},
		{ID: "m", Title: "Marmot"},
	}

	rows, _ := Aggregate(items, map[string][]Slot{})

	for i, it := range items {
		if rows[i].Item.ID != it.ID {
			t.Errorf("row %d: expected item %s, got %s", i, it.ID, rows[i].Item.ID)
		}
	}
}
