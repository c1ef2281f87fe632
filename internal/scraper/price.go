package scraper

import (
	"regexp"
	"strings"
)

// Discount conditions carried on promotion items.
const (
	CondOnePlusOne = "1+1"
	CondTwoPlusOne = "2+1"
	CondDiscount   = "할인"
)

var digitsRe = regexp.MustCompile(`\d+`)

// ParsePrice extracts the digits from arbitrary price text ("2,500원" -> 2500).
// Returns 0 when no digits are present.
func ParsePrice(s string) int {
	parts := digitsRe.FindAllString(s, -1)
	if len(parts) == 0 {
		return 0
	}
	n := 0
	for _, p := range parts {
		for _, r := range p {
			n = n*10 + int(r-'0')
		}
	}
	return n
}

// NormalizePromo derives the effective per-unit price and the total paid at
// the till from the shelf price and the promotion condition. Integer won,
// floor division.
//
//	1+1: pay one, take two  -> effective = base/2,   total = base
//	2+1: pay two, take three -> effective = base*2/3, total = base*2
//	anything else            -> effective = base,     total = base
func NormalizePromo(basePrice int, condition string) (effective, salePrice int) {
	switch {
	case strings.Contains(condition, CondOnePlusOne):
		return basePrice / 2, basePrice
	case strings.Contains(condition, CondTwoPlusOne):
		return basePrice * 2 / 3, basePrice * 2
	default:
		return basePrice, basePrice
	}
}

// GetCount returns how many units the buyer walks away with under a condition.
func GetCount(condition string) int {
	switch {
	case strings.Contains(condition, CondOnePlusOne):
		return 2
	case strings.Contains(condition, CondTwoPlusOne):
		return 3
	default:
		return 1
	}
}

// UnitPrice computes the comparable per-unit price for an item whose capacity
// is known. Volumes and weights are reported per 100 units; liters and
// kilograms are scaled into ml/g first. Counted units (개, 매, ...) are
// reported per single unit. A non-positive capacity falls back to the
// effective price itself.
func UnitPrice(effective, unitValue int, unitType string) (pricePerUnit int, reference string) {
	if unitValue <= 0 {
		return effective, "개당"
	}

	ut := strings.ToLower(strings.TrimSpace(unitType))
	switch ut {
	case "l", "리터":
		unitValue *= 1000
		ut = "ml"
	case "kg":
		unitValue *= 1000
		ut = "g"
	}

	switch ut {
	case "ml", "g", "mg":
		return effective * 100 / unitValue, "100" + ut + "당"
	case "":
		return effective / unitValue, "개당"
	default:
		return effective / unitValue, ut + "당"
	}
}
