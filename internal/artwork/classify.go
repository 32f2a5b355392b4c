package artwork

// Classify sets the low-resolution flag on a slot from its measured
// dimensions. Only present slots with known dimensions are evaluated; an
// absent slot or a slot whose dimensions could not be fetched is never
// flagged. Each threshold applies independently and a zero threshold
// disables that check.
func Classify(slot *Slot, thresholds Thresholds) {
	slot.LowRes = false
	if !slot.Present || !slot.DimsKnown {
		return
	}
	if thresholds.MinWidth > 0 && slot.Width < thresholds.MinWidth {
		slot.LowRes = true
	}
	if thresholds.MinHeight > 0 && slot.Height < thresholds.MinHeight {
		slot.LowRes = true
	}
}
