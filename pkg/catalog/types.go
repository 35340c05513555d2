package catalog

// Rating is the aggregate customer rating of a product
type Rating struct {
	Rate  float64 `json:"rate" yaml:"rate"`
	Count int     `json:"count" yaml:"count"`
}

// CatalogEntry is a product exactly as the catalog API describes it, with
// optional fields already resolved to their defaults.
type CatalogEntry struct {
	ID          int     `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description" yaml:"description"`
	Category    string  `json:"category" yaml:"category"`
	Price       float64 `json:"price" yaml:"price"`
	Image       string  `json:"image" yaml:"image"`
	Rating      Rating  `json:"rating" yaml:"rating"`
}

// Badge is a promotional label shown on a product card
type Badge string

const (
	BadgeSale    Badge = "sale"
	BadgeNew     Badge = "new"
	BadgePopular Badge = "popular"
	BadgeNone    Badge = ""
)

// Label returns the display text for the badge
func (b Badge) Label() string {
	switch b {
	case BadgeSale:
		return "Sale"
	case BadgeNew:
		return "New"
	case BadgePopular:
		return "Popular"
	default:
		return ""
	}
}

// EnrichedProduct is a catalog entry decorated with display-only fields.
// Those fields are regenerated on every network fetch and never persisted.
type EnrichedProduct struct {
	CatalogEntry

	DiscountPercent int     `json:"discount"`
	Badge           Badge   `json:"badge"`
	CurrentPrice    float64 `json:"currentPrice"`
	Stock           int     `json:"stock"`
	IsFeatured      bool    `json:"isFeatured"`
}

// Discounted reports whether the product is on sale
func (p EnrichedProduct) Discounted() bool {
	return p.DiscountPercent > 0
}

// wireRating mirrors the API's rating object where every field may be absent.
type wireRating struct {
	Rate  *float64 `json:"rate"`
	Count *float64 `json:"count"`
}

// wireEntry mirrors one API product. Pointer fields distinguish absent from
// zero and are resolved once by normalize.
type wireEntry struct {
	ID          *int        `json:"id"`
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	Category    *string     `json:"category"`
	Price       *float64    `json:"price"`
	Image       *string     `json:"image"`
	Rating      *wireRating `json:"rating"`
}

// normalize resolves optional fields. Entries without an id are unusable
// and reported with ok=false.
func (w wireEntry) normalize() (entry CatalogEntry, ok bool) {
	if w.ID == nil {
		return CatalogEntry{}, false
	}
	entry.ID = *w.ID
	entry.Title = deref(w.Title)
	entry.Description = deref(w.Description)
	entry.Category = deref(w.Category)
	entry.Image = deref(w.Image)
	if w.Price != nil && *w.Price > 0 {
		entry.Price = *w.Price
	}
	if w.Rating != nil {
		if w.Rating.Rate != nil {
			entry.Rating.Rate = *w.Rating.Rate
		}
		if w.Rating.Count != nil {
			entry.Rating.Count = int(*w.Rating.Count)
		}
	}
	return entry, true
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
