package service

// applyDiscountCents returns the amount after removing pct percent,
// rounding down. Integer division keeps every intermediate value in
// minor currency units. Percentages past 100 clamp to a free price,
// the result is never negative.
func applyDiscountCents(amount int64, pct int) int64 {
	if amount <= 0 || pct <= 0 {
		return amount
	}
	if pct >= 100 {
		return 0
	}
	return amount - amount*int64(pct)/100
}

// prorateCents scales a reference-period amount to days, rounding
// down.
func prorateCents(amount int64, days, referenceDays int) int64 {
	if amount <= 0 || days <= 0 || referenceDays <= 0 {
		return 0
	}
	if days == referenceDays {
		return amount
	}
	return amount * int64(days) / int64(referenceDays)
}
