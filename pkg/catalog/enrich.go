package catalog

import (
	"math"
	"math/rand/v2"
)

// RandSource supplies the randomness behind enrichment. *rand.Rand from
// math/rand/v2 satisfies it, so tests can pass a seeded generator.
type RandSource interface {
	Float64() float64
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) IntN(n int) int   { return rand.IntN(n) }

// badgeBuckets holds cumulative upper bounds; the first bound >= draw wins.
var badgeBuckets = []struct {
	badge Badge
	upper float64
}{
	{BadgeSale, 0.20},
	{BadgeNew, 0.35},
	{BadgePopular, 0.45},
	{BadgeNone, 1.00},
}

// PickBadge maps a uniform draw in [0,1) onto the weighted badge table
// {sale .20, new .15, popular .10, none .55}.
func PickBadge(draw float64) Badge {
	for _, b := range badgeBuckets {
		if draw <= b.upper {
			return b.badge
		}
	}
	return BadgeNone
}

// Enricher derives display fields for catalog entries
type Enricher struct {
	rand         RandSource
	exchangeRate float64
}

// NewEnricher creates an enricher. A nil src uses the process-wide
// generator; a non-positive rate disables currency conversion.
func NewEnricher(src RandSource, exchangeRate float64) *Enricher {
	if src == nil {
		src = globalRand{}
	}
	if !(exchangeRate > 0) || math.IsInf(exchangeRate, 1) {
		exchangeRate = 1
	}
	return &Enricher{rand: src, exchangeRate: exchangeRate}
}

// Enrich decorates every entry independently
func (e *Enricher) Enrich(entries []CatalogEntry) []EnrichedProduct {
	out := make([]EnrichedProduct, 0, len(entries))
	for _, entry := range entries {
		out = append(out, e.EnrichOne(entry))
	}
	return out
}

// EnrichOne converts the price into the display currency and assigns the
// discount, badge, stock and featured flag.
func (e *Enricher) EnrichOne(entry CatalogEntry) EnrichedProduct {
	entry.Price *= e.exchangeRate

	p := EnrichedProduct{CatalogEntry: entry}

	// 40% of products get a discount in [10,59]
	if e.rand.Float64() > 0.6 {
		p.DiscountPercent = e.rand.IntN(50) + 10
	}
	p.Badge = PickBadge(e.rand.Float64())
	p.Stock = e.rand.IntN(100) + 1
	p.IsFeatured = e.rand.Float64() > 0.7

	p.CurrentPrice = entry.Price
	if p.DiscountPercent > 0 {
		p.CurrentPrice = entry.Price * (1 - float64(p.DiscountPercent)/100)
	}
	return p
}
