package pricing

// Tier prices the one-hour block starting at HourMark, expressed as minutes
// since midnight. A court's table holds at most one tier per hour mark.
type Tier struct {
	HourMark  int
	UnitPrice float64
}

// Quote returns the cost of the half-open interval
// [startMinutes, startMinutes+durationMinutes) against the tier table.
// Each tier covers [HourMark, HourMark+60) and bills proportionally for the
// minutes it overlaps. Minutes covered by no tier cost nothing: sparse
// tables are valid and gaps are free, not an error.
func Quote(tiers []Tier, startMinutes, durationMinutes int) float64 {
	if durationMinutes <= 0 {
		return 0
	}

	endMinutes := startMinutes + durationMinutes

	var total float64
	for _, tier := range tiers {
		tierEnd := tier.HourMark + 60

		overlapStart := max(startMinutes, tier.HourMark)
		overlapEnd := min(endMinutes, tierEnd)

		if overlap := overlapEnd - overlapStart; overlap > 0 {
			total += float64(overlap) / 60 * tier.UnitPrice
		}
	}

	return total
}
