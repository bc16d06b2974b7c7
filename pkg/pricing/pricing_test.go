package pricing

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestQuoteProportionalTiers(t *testing.T) {
	tiers := []Tier{
		{HourMark: 360, UnitPrice: 400}, // 06:00
		{HourMark: 420, UnitPrice: 500}, // 07:00
	}

	cases := []struct {
		name     string
		start    int
		duration int
		want     float64
	}{
		{"full first hour", 360, 60, 400},
		{"full second hour", 420, 60, 500},
		{"spanning both hours", 390, 60, 0.5*400 + 0.5*500},
		{"half past into both", 390, 90, 0.5*400 + 500},
		{"quarter hour", 360, 15, 100},
		{"two full hours", 360, 120, 900},
		{"before any tier", 300, 60, 0},
		{"after last tier", 480, 60, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Quote(tiers, tc.start, tc.duration)
			if !almostEqual(got, tc.want) {
				t.Errorf("Quote(start=%d, duration=%d) = %v, want %v", tc.start, tc.duration, got, tc.want)
			}
		})
	}
}

func TestQuoteGapHoursAreFree(t *testing.T) {
	// Tier at 06:00 and 08:00 with nothing configured for 07:00.
	tiers := []Tier{
		{HourMark: 360, UnitPrice: 400},
		{HourMark: 480, UnitPrice: 600},
	}

	// 06:00-09:00 crosses the unpriced 07:00 hour.
	got := Quote(tiers, 360, 180)
	want := 400.0 + 0 + 600.0
	if !almostEqual(got, want) {
		t.Errorf("Quote across gap = %v, want %v", got, want)
	}
}

func TestQuoteAdditivity(t *testing.T) {
	tiers := []Tier{
		{HourMark: 360, UnitPrice: 400},
		{HourMark: 420, UnitPrice: 500},
		{HourMark: 480, UnitPrice: 650},
	}

	// Splitting a slot at any point never changes the total.
	for start := 330; start <= 480; start += 15 {
		for duration := 30; duration <= 180; duration += 30 {
			whole := Quote(tiers, start, duration)
			for split := 15; split < duration; split += 15 {
				parts := Quote(tiers, start, split) + Quote(tiers, start+split, duration-split)
				if !almostEqual(whole, parts) {
					t.Fatalf("split at %d: Quote(%d, %d) = %v but parts sum to %v",
						split, start, duration, whole, parts)
				}
			}
		}
	}
}

func TestQuoteDegenerateInputs(t *testing.T) {
	tiers := []Tier{{HourMark: 360, UnitPrice: 400}}

	if got := Quote(tiers, 360, 0); got != 0 {
		t.Errorf("zero duration should quote 0, got %v", got)
	}
	if got := Quote(tiers, 360, -30); got != 0 {
		t.Errorf("negative duration should quote 0, got %v", got)
	}
	if got := Quote(nil, 360, 60); got != 0 {
		t.Errorf("no tiers should quote 0, got %v", got)
	}
}
