package artwork

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		slot       Slot
		thresholds Thresholds
		wantLowRes bool
	}{
		{
			name:       "both dimensions above thresholds",
			slot:       Slot{Present: true, DimsKnown: true, Width: 1920, Height: 1080},
			thresholds: Thresholds{MinWidth: 1280, MinHeight: 720},
			wantLowRes: false,
		},
		{
			name:       "width below threshold",
			slot:       Slot{Present: true, DimsKnown: true, Width: 640, Height: 1080},
			thresholds: Thresholds{MinWidth: 1280, MinHeight: 720},
			wantLowRes: true,
		},
		{
			name:       "height below threshold",
			slot:       Slot{Present: true, DimsKnown: true, Width: 1920, Height: 480},
			thresholds: Thresholds{MinWidth: 1280, MinHeight: 720},
			wantLowRes: true,
		},
		{
			name:       "width threshold zero never flags",
			slot:       Slot{Present: true, DimsKnown: true, Width: 1, Height: 1080},
			thresholds: Thresholds{MinWidth: 0, MinHeight: 720},
			wantLowRes: false,
		},
		{
			name:       "unset thresholds never flag",
			slot:       Slot{Present: true, DimsKnown: true, Width: 1, Height: 1},
			thresholds: Thresholds{},
			wantLowRes: false,
		},
		{
			name:       "exact threshold is not low",
			slot:       Slot{Present: true, DimsKnown: true, Width: 1280, Height: 720},
			thresholds: Thresholds{MinWidth: 1280, MinHeight: 720},
			wantLowRes: false,
		},
		{
			name:       "absent slot never flagged",
			slot:       Slot{Present: false},
			thresholds: Thresholds{MinWidth: 1280, MinHeight: 720},
			wantLowRes: false,
		},
		{
			name:       "unknown dimensions never flagged",
			slot:       Slot{Present: true, DimsKnown: false},
			thresholds: Thresholds{MinWidth: 1280, MinHeight: 720},
			wantLowRes: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := tt.slot
			Classify(&slot, tt.thresholds)
			if slot.LowRes != tt.wantLowRes {
				t.Errorf("Classify() LowRes = %v, want %v", slot.LowRes, tt.wantLowRes)
			}
		})
	}
}

func TestClassifyClearsStaleFlag(t *testing.T) {
	slot := Slot{Present: true, DimsKnown: true, Width: 1920, Height: 1080, LowRes: true}
	Classify(&slot, Thresholds{})
	if slot.LowRes {
		t.Error("expected stale low-res flag to be cleared")
	}
}

func TestThresholdsEnabled(t *testing.T) {
	if (Thresholds{}).Enabled() {
		t.Error("zero thresholds should be disabled")
	}
	if !(Thresholds{MinWidth: 100}).Enabled() {
		t.Error("width-only thresholds should be enabled")
	}
	if !(Thresholds{MinHeight: 100}).Enabled() {
		t.Error("height-only thresholds should be enabled")
	}
}
