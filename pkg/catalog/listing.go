package catalog

import (
	"strings"

	"golang.org/x/text/cases"
)

// PageSize is how many products one "load more" step reveals
const PageSize = 8

// CategoryAll selects every category in FilterByCategory
const CategoryAll = "all"

// FilterByCategory keeps products whose category matches exactly.
// An empty category or CategoryAll keeps everything.
func FilterByCategory(products []EnrichedProduct, category string) []EnrichedProduct {
	if category == "" || category == CategoryAll {
		return append([]EnrichedProduct(nil), products...)
	}
	var out []EnrichedProduct
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Search keeps products whose title, description or category contains term,
// ignoring case. A blank term keeps everything.
func Search(products []EnrichedProduct, term string) []EnrichedProduct {
	term = strings.TrimSpace(term)
	if term == "" {
		return append([]EnrichedProduct(nil), products...)
	}
	fold := cases.Fold()
	needle := fold.String(term)

	var out []EnrichedProduct
	for _, p := range products {
		if strings.Contains(fold.String(p.Title), needle) ||
			strings.Contains(fold.String(p.Description), needle) ||
			strings.Contains(fold.String(p.Category), needle) {
			out = append(out, p)
		}
	}
	return out
}

// Page returns the products visible after pages "load more" steps
// (pages >= 1) and whether more remain.
func Page(products []EnrichedProduct, pages int) (visible []EnrichedProduct, hasMore bool) {
	if pages < 1 {
		pages = 1
	}
	n := pages * PageSize
	if n >= len(products) {
		return products, false
	}
	return products[:n], true
}

// Related returns the first n products other than the one with id excluded
func Related(products []EnrichedProduct, excluded, n int) []EnrichedProduct {
	var out []EnrichedProduct
	for _, p := range products {
		if p.ID == excluded {
			continue
		}
		if len(out) == n {
			break
		}
		out = append(out, p)
	}
	return out
}

// Featured keeps products flagged as featured
func Featured(products []EnrichedProduct) []EnrichedProduct {
	var out []EnrichedProduct
	for _, p := range products {
		if p.IsFeatured {
			out = append(out, p)
		}
	}
	return out
}
