package cart

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gowebpki/jcs"
)

// MaxQuantity is the most units of one line item a cart may hold
const MaxQuantity = 10

// Variations maps an attribute name (size, color) to the chosen value
type Variations map[string]string

// Normalize drops attributes without a chosen value, so an unselected
// attribute and an absent one produce the same line item.
func (v Variations) Normalize() Variations {
	out := make(Variations, len(v))
	for name, value := range v {
		if value == "" || value == "null" {
			continue
		}
		out[name] = value
	}
	return out
}

// Encode returns base64 of the canonical (RFC 8785) JSON form of v
func (v Variations) Encode() (string, error) {
	raw, err := json.Marshal(v.Normalize())
	if err != nil {
		return "", err
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize variations: %w", err)
	}
	return base64.StdEncoding.EncodeToString(canonical), nil
}

// UniqueKey builds the line item key "<productID>-<encoded variations>"
func UniqueKey(productID int, v Variations) (string, error) {
	enc, err := v.Encode()
	if err != nil {
		return "", err
	}
	return strconv.Itoa(productID) + "-" + enc, nil
}

// Item is a request to put a product into the cart
type Item struct {
	ProductID  int
	Title      string
	Price      float64
	Image      string
	Quantity   int
	Variations Variations
}

// Validate checks the required fields
func (i Item) Validate() error {
	switch {
	case i.ProductID <= 0:
		return invalid("id", "Product id is required")
	case i.Title == "":
		return invalid("title", "Product title is required")
	case math.IsNaN(i.Price) || math.IsInf(i.Price, 0):
		return invalid("price", "Price must be a number")
	case i.Price < 0:
		return invalid("price", "Price cannot be negative")
	case i.Image == "":
		return invalid("image", "Product image is required")
	case i.Quantity < 1:
		return invalid("quantity", "Quantity must be at least 1")
	}
	return nil
}

// LineItem is one row of the cart. JSON field names match the stored
// shoppingCart record.
type LineItem struct {
	ProductID  int        `json:"id"`
	Title      string     `json:"title"`
	UnitPrice  float64    `json:"price"`
	Image      string     `json:"image"`
	Quantity   int        `json:"quantity"`
	Variations Variations `json:"variations"`
	TotalPrice float64    `json:"totalPrice"`
	UniqueKey  string     `json:"uniqueId"`
	AddedAt    time.Time  `json:"addedAt"`
}

// CanIncrement reports whether the increment control should be enabled
func (l LineItem) CanIncrement() bool {
	return l.Quantity < MaxQuantity
}

// CanDecrement reports whether the decrement control should be enabled.
// A single unit is removed with the remove control instead.
func (l LineItem) CanDecrement() bool {
	return l.Quantity > 1
}

func (l *LineItem) setQuantity(q int) {
	l.Quantity = q
	l.TotalPrice = l.UnitPrice * float64(q)
}
