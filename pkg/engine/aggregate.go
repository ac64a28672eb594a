package engine

import "math"

// Totals is the read-only projection of a ledger against its item's
// allocation targets.
type Totals struct {
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

// Aggregate sums quantities over every known record, roster-merged or
// not, and derives clamped progress toward the item's target. It is pure
// and safe to call on every mutation.
func Aggregate(records []Record, item ItemContext) Totals {
	total := 0
	for _, r := range records {
		total += r.Quantity
	}

	return Totals{
		Total:   total,
		Percent: percent(total, item.TargetMax()),
	}
}

func percent(total, targetMax int) int {
	if targetMax <= 0 {
		if total > 0 {
			return 100
		}

		return 0
	}

	p := int(math.Round(float64(total) / float64(targetMax) * 100))
	if p > 100 {
		p = 100
	}
	if p < 0 {
		p = 0
	}

	return p
}
