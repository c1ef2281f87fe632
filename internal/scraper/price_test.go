package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	assert.Equal(t, 2500, ParsePrice("2,500원"))
	assert.Equal(t, 12000, ParsePrice("12,000"))
	assert.Equal(t, 1800, ParsePrice("  1,800 원 "))
	assert.Equal(t, 3500, ParsePrice(`"3500"`))
	assert.Equal(t, 0, ParsePrice("가격 미정"))
	assert.Equal(t, 0, ParsePrice(""))
}

func TestNormalizePromo(t *testing.T) {
	effective, total := NormalizePromo(2000, CondOnePlusOne)
	assert.Equal(t, 1000, effective)
	assert.Equal(t, 2000, total)

	effective, total = NormalizePromo(1500, CondTwoPlusOne)
	assert.Equal(t, 1000, effective)
	assert.Equal(t, 3000, total)

	// Floor division on odd prices
	effective, _ = NormalizePromo(1999, CondOnePlusOne)
	assert.Equal(t, 999, effective)

	effective, total = NormalizePromo(1200, CondDiscount)
	assert.Equal(t, 1200, effective)
	assert.Equal(t, 1200, total)

	// Condition text with decoration still matches
	effective, _ = NormalizePromo(2000, "행사 1+1")
	assert.Equal(t, 1000, effective)
}

func TestGetCount(t *testing.T) {
	assert.Equal(t, 2, GetCount(CondOnePlusOne))
	assert.Equal(t, 3, GetCount(CondTwoPlusOne))
	assert.Equal(t, 1, GetCount(CondDiscount))
	assert.Equal(t, 1, GetCount(""))
}

func TestUnitPrice(t *testing.T) {
	// 500ml drink at 1000 won effective -> 200 won per 100ml
	price, ref := UnitPrice(1000, 500, "ml")
	assert.Equal(t, 200, price)
	assert.Equal(t, "100ml당", ref)

	// 1L scales to 1000ml
	price, ref = UnitPrice(2000, 1, "L")
	assert.Equal(t, 200, price)
	assert.Equal(t, "100ml당", ref)

	// 1kg scales to 1000g
	price, ref = UnitPrice(5000, 1, "kg")
	assert.Equal(t, 500, price)
	assert.Equal(t, "100g당", ref)

	// Counted units are per piece
	price, ref = UnitPrice(3000, 6, "개")
	assert.Equal(t, 500, price)
	assert.Equal(t, "개당", ref)

	// Unknown capacity falls back to the effective price
	price, ref = UnitPrice(1500, 0, "")
	assert.Equal(t, 1500, price)
	assert.Equal(t, "개당", ref)
}
