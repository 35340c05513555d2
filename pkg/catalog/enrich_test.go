package catalog_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/itsneelabh/shopeasy/pkg/catalog"
)

// scriptedRand replays fixed draws in order
type scriptedRand struct {
	floats []float64
	ints   []int
}

func (s *scriptedRand) Float64() float64 {
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedRand) IntN(n int) int {
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v >= n {
		panic("scripted int out of range")
	}
	return v
}

func TestPickBadge(t *testing.T) {
	tests := []struct {
		draw float64
		want catalog.Badge
	}{
		{0.0, catalog.BadgeSale},
		{0.19, catalog.BadgeSale},
		{0.20, catalog.BadgeSale},
		{0.2000001, catalog.BadgeNew},
		{0.35, catalog.BadgeNew},
		{0.36, catalog.BadgePopular},
		{0.45, catalog.BadgePopular},
		{0.46, catalog.BadgeNone},
		{0.999999, catalog.BadgeNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, catalog.PickBadge(tt.draw), "draw %v", tt.draw)
	}
}

func TestBadgeLabel(t *testing.T) {
	assert.Equal(t, "Sale", catalog.BadgeSale.Label())
	assert.Equal(t, "New", catalog.BadgeNew.Label())
	assert.Equal(t, "Popular", catalog.BadgePopular.Label())
	assert.Equal(t, "", catalog.BadgeNone.Label())
}

func TestEnrichOne_Discounted(t *testing.T) {
	// discount roll, badge roll, featured roll; discount value, stock
	src := &scriptedRand{floats: []float64{0.9, 0.3, 0.8}, ints: []int{15, 41}}
	e := catalog.NewEnricher(src, 1)

	p := e.EnrichOne(catalog.CatalogEntry{ID: 7, Title: "Gold Plated Ring", Price: 200})

	assert.Equal(t, 25, p.DiscountPercent)
	assert.Equal(t, catalog.BadgeNew, p.Badge)
	assert.Equal(t, 42, p.Stock)
	assert.True(t, p.IsFeatured)
	assert.InDelta(t, 150.0, p.CurrentPrice, 1e-9)
	assert.True(t, p.Discounted())
}

func TestEnrichOne_NotDiscounted(t *testing.T) {
	src := &scriptedRand{floats: []float64{0.6, 0.99, 0.7}, ints: []int{0}}
	e := catalog.NewEnricher(src, 1)

	p := e.EnrichOne(catalog.CatalogEntry{ID: 1, Price: 129.99})

	assert.Zero(t, p.DiscountPercent, "0.6 is not above the threshold")
	assert.Equal(t, catalog.BadgeNone, p.Badge)
	assert.Equal(t, 1, p.Stock)
	assert.False(t, p.IsFeatured, "0.7 is not above the threshold")
	assert.Equal(t, p.Price, p.CurrentPrice)
}

func TestEnrich_ExchangeRate(t *testing.T) {
	src := &scriptedRand{floats: []float64{0.0, 0.5, 0.0}, ints: []int{9}}
	e := catalog.NewEnricher(src, 83)

	out := e.Enrich([]catalog.CatalogEntry{{ID: 3, Price: 10}})

	assert.Len(t, out, 1)
	assert.InDelta(t, 830.0, out[0].Price, 1e-9)
	assert.InDelta(t, 830.0, out[0].CurrentPrice, 1e-9)
}

func TestEnrich_NonFiniteRateIgnored(t *testing.T) {
	for _, rate := range []float64{math.NaN(), math.Inf(1)} {
		src := &scriptedRand{floats: []float64{0.6, 0.99, 0.7}, ints: []int{0}}
		p := catalog.NewEnricher(src, rate).EnrichOne(catalog.CatalogEntry{ID: 3, Price: 10})
		assert.Equal(t, 10.0, p.Price)
		assert.LessOrEqual(t, p.CurrentPrice, p.Price)
	}
}

func TestEnrich_SeededIsReproducible(t *testing.T) {
	entries := []catalog.CatalogEntry{{ID: 1, Price: 10}, {ID: 2, Price: 20}, {ID: 3, Price: 30}}

	a := catalog.NewEnricher(rand.New(rand.NewPCG(7, 11)), 1).Enrich(entries)
	b := catalog.NewEnricher(rand.New(rand.NewPCG(7, 11)), 1).Enrich(entries)

	assert.Equal(t, a, b)
}

func TestEnrich_Invariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("enriched products keep price and stock bounds", prop.ForAll(
		func(seed uint64, price float64, n int) bool {
			entries := make([]catalog.CatalogEntry, n)
			for i := range entries {
				entries[i] = catalog.CatalogEntry{ID: i + 1, Price: price}
			}
			out := catalog.NewEnricher(rand.New(rand.NewPCG(seed, seed^0x9e3779b9)), 1).Enrich(entries)
			if len(out) != n {
				return false
			}
			for _, p := range out {
				if p.CurrentPrice > p.Price {
					return false
				}
				if p.Stock < 1 || p.Stock > 100 {
					return false
				}
				if p.DiscountPercent != 0 && (p.DiscountPercent < 10 || p.DiscountPercent > 59) {
					return false
				}
				switch p.Badge {
				case catalog.BadgeSale, catalog.BadgeNew, catalog.BadgePopular, catalog.BadgeNone:
				default:
					return false
				}
			}
			return true
		},
		gen.UInt64(),
		gen.Float64Range(0, 10000),
		gen.IntRange(0, 40),
	))

	properties.TestingRun(t)
}
