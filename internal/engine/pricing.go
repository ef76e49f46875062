package engine

import "strings"

// RetentionFraction is the share of the paid price kept on cancellation:
// 12.5%, the middle of the mandated 10-15% band.
const RetentionFraction = 0.125

// ApplyDiscount returns the per-seat price after applying a discount code.
// An empty code or the "no code" sentinels leave the base price unchanged.
// A code matching the event's configured code (case-insensitive) subtracts
// percent of the base price, clamped to [0, basePrice]. A mismatched code is
// not an error; it simply does not discount.
func ApplyDiscount(basePrice float64, entered, configured string, percent int) float64 {
	if entered == "" {
		return basePrice
	}
	if strings.EqualFold(entered, "NA") || strings.EqualFold(entered, "X") {
		return basePrice
	}
	if configured != "" && strings.EqualFold(entered, configured) {
		disc := basePrice * float64(percent) / 100.0
		if disc < 0 {
			disc = 0
		}
		if disc > basePrice {
			disc = basePrice
		}
		return basePrice - disc
	}
	return basePrice
}

// Refund computes the amount returned for one cancelled seat at the price
// actually paid for it.
func Refund(pricePaid float64) float64 {
	return pricePaid * (1 - RetentionFraction)
}
