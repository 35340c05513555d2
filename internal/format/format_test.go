package format

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsneelabh/shopeasy/pkg/catalog"
)

func TestMoney(t *testing.T) {
	usd, err := NewMoney("usd", "en", 2)
	require.NoError(t, err)
	assert.Equal(t, "USD", usd.Currency())
	assert.Equal(t, "$1,234.50", usd.Format(1234.5))
	assert.Equal(t, "$0.99", usd.Format(0.99))
	assert.Equal(t, "-$5.00", usd.Format(-5))
	assert.Equal(t, "$295.59", usd.FormatDecimal(decimal.RequireFromString("295.585")))

	inr, err := NewMoney("INR", "en-IN", 0)
	require.NoError(t, err)
	assert.Equal(t, "₹2,490", inr.Format(2490.4))
}

func TestMoney_Invalid(t *testing.T) {
	_, err := NewMoney("XYZW", "en", 2)
	assert.Error(t, err)
	_, err = NewMoney("USD", "not a locale!", 2)
	assert.Error(t, err)
}

func TestCategory(t *testing.T) {
	assert.Equal(t, "Men's Clothing", Category("men's clothing"))
	assert.Equal(t, "Jewelery", Category("jewelery"))
	assert.Equal(t, "All", Category(catalog.CategoryAll))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "No description available", Truncate("", DescriptionLimit))
	assert.Equal(t, "short", Truncate("short", DescriptionLimit))

	long := strings.Repeat("é", 120)
	got := Truncate(long, DescriptionLimit)
	assert.Equal(t, strings.Repeat("é", 100)+"...", got)
}

func TestStars(t *testing.T) {
	tests := map[float64]string{
		0:   "☆☆☆☆☆",
		3.9: "★★★⯪☆",
		4.4: "★★★★☆",
		5:   "★★★★★",
		7:   "★★★★★",
		-1:  "☆☆☆☆☆",
	}
	for rate, want := range tests {
		assert.Equal(t, want, Stars(rate), "rate %v", rate)
		assert.Equal(t, 5, len([]rune(Stars(rate))))
	}
	assert.Equal(t, "★★★★☆ 4.1 (120)", Rating(catalog.Rating{Rate: 4.1, Count: 120}))
}

func TestQuantityMessage(t *testing.T) {
	assert.Empty(t, QuantityMessage(1))
	assert.Empty(t, QuantityMessage(7))
	assert.Equal(t, "Only a few left at this quantity", QuantityMessage(8))
	assert.Equal(t, "Only a few left at this quantity", QuantityMessage(9))
	assert.Equal(t, "Maximum quantity reached", QuantityMessage(10))
}

func TestBadgeAndDiscount(t *testing.T) {
	assert.Equal(t, "[Sale]", Badge(catalog.BadgeSale))
	assert.Empty(t, Badge(catalog.BadgeNone))
	assert.Equal(t, "-25%", Discount(25))
	assert.Empty(t, Discount(0))
}

func TestSavings(t *testing.T) {
	p := catalog.EnrichedProduct{
		CatalogEntry:    catalog.CatalogEntry{Price: 100},
		DiscountPercent: 20,
		CurrentPrice:    80,
	}
	assert.InDelta(t, 60.0, Savings(p, 3), 1e-9)
	p.DiscountPercent = 0
	assert.Zero(t, Savings(p, 3))
}
