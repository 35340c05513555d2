package format

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/itsneelabh/shopeasy/pkg/cart"
	"github.com/itsneelabh/shopeasy/pkg/catalog"
)

// DescriptionLimit is the card description length in characters
const DescriptionLimit = 100

const noDescription = "No description available"

var titleCaser = cases.Title(language.English, cases.NoLower)

// Category title-cases a category name: "men's clothing" -> "Men's Clothing"
func Category(category string) string {
	if category == catalog.CategoryAll {
		return "All"
	}
	return titleCaser.String(category)
}

// Truncate shortens s to max runes followed by "..."
func Truncate(s string, max int) string {
	if strings.TrimSpace(s) == "" {
		return noDescription
	}
	if max <= 0 {
		max = DescriptionLimit
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

// Stars draws a five-star rating with a half star for fractions >= .5
func Stars(rate float64) string {
	rate = math.Max(0, math.Min(5, rate))
	full := int(math.Floor(rate))
	half := full < 5 && rate-float64(full) >= 0.5
	empty := 5 - full
	if half {
		empty--
	}
	var b strings.Builder
	b.WriteString(strings.Repeat("★", full))
	if half {
		b.WriteString("⯪")
	}
	b.WriteString(strings.Repeat("☆", empty))
	return b.String()
}

// Rating renders stars with the score and review count
func Rating(r catalog.Rating) string {
	return fmt.Sprintf("%s %.1f (%d)", Stars(r.Rate), r.Rate, r.Count)
}

// QuantityMessage warns as the quantity selector nears the per-product cap
func QuantityMessage(quantity int) string {
	switch {
	case quantity >= cart.MaxQuantity:
		return "Maximum quantity reached"
	case quantity >= cart.MaxQuantity-2:
		return "Only a few left at this quantity"
	default:
		return ""
	}
}

// Discount renders a discount badge such as "-25%"
func Discount(percent int) string {
	if percent <= 0 {
		return ""
	}
	return fmt.Sprintf("-%d%%", percent)
}

// Badge returns the badge text in brackets, or "" for no badge
func Badge(b catalog.Badge) string {
	if label := b.Label(); label != "" {
		return "[" + label + "]"
	}
	return ""
}

// Savings is what the shopper saves on quantity units of p
func Savings(p catalog.EnrichedProduct, quantity int) float64 {
	if !p.Discounted() || quantity < 1 {
		return 0
	}
	return (p.Price - p.CurrentPrice) * float64(quantity)
}
