package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/itsneelabh/shopeasy"
	"github.com/itsneelabh/shopeasy/internal/format"
	"github.com/itsneelabh/shopeasy/pkg/auth"
	"github.com/itsneelabh/shopeasy/pkg/cart"
)

const titleWidth = 40

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func renderProductGrid(w io.Writer, sf *shopeasy.Storefront, products []shopeasy.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tPRICE\tDEAL\tRATING\tSTOCK")
	for _, p := range products {
		price := sf.FormatPrice(p.CurrentPrice)
		deal := strings.TrimSpace(format.Discount(p.DiscountPercent) + " " + format.Badge(p.Badge))
		if p.IsFeatured {
			deal = strings.TrimSpace(deal + " *")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%d\n",
			p.ID,
			format.Truncate(p.Title, titleWidth),
			format.Category(p.Category),
			price,
			deal,
			format.Rating(p.Rating),
			p.Stock,
		)
	}
	_ = tw.Flush()
}

func renderProductDetail(w io.Writer, sf *shopeasy.Storefront, p shopeasy.Product, qty int, related []shopeasy.Product) {
	fmt.Fprintf(w, "%s %s\n", p.Title, format.Badge(p.Badge))
	fmt.Fprintf(w, "%s  |  %s\n", format.Category(p.Category), format.Rating(p.Rating))
	if p.Discounted() {
		fmt.Fprintf(w, "Price: %s  was %s  %s\n", sf.FormatPrice(p.CurrentPrice), sf.FormatPrice(p.Price), format.Discount(p.DiscountPercent))
	} else {
		fmt.Fprintf(w, "Price: %s\n", sf.FormatPrice(p.CurrentPrice))
	}
	fmt.Fprintf(w, "In stock: %d\n\n", p.Stock)
	fmt.Fprintln(w, format.Truncate(p.Description, len([]rune(p.Description))))

	if qty < 1 {
		qty = 1
	}
	if qty > cart.MaxQuantity {
		qty = cart.MaxQuantity
	}
	fmt.Fprintf(w, "\n%d x %s = %s", qty, sf.FormatPrice(p.CurrentPrice), sf.FormatPrice(p.CurrentPrice*float64(qty)))
	if savings := format.Savings(p, qty); savings > 0 {
		fmt.Fprintf(w, "  (you save %s)", sf.FormatPrice(savings))
	}
	fmt.Fprintln(w)
	if msg := format.QuantityMessage(qty); msg != "" {
		fmt.Fprintln(w, msg)
	}

	if len(related) > 0 {
		fmt.Fprintln(w, "\nRelated products")
		renderProductGrid(w, sf, related)
	}
}

func renderCategories(w io.Writer, categories []string) {
	sorted := append([]string(nil), categories...)
	sort.Strings(sorted)
	for _, c := range sorted {
		fmt.Fprintf(w, "%-20s %s\n", c, format.Category(c))
	}
}

func renderCart(w io.Writer, sf *shopeasy.Storefront) {
	items := sf.Cart().Items()
	if len(items) == 0 {
		fmt.Fprintln(w, "Your cart is empty")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "KEY\tITEM\tOPTIONS\tQTY\tUNIT\tTOTAL")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			item.UniqueKey,
			format.Truncate(item.Title, titleWidth),
			variationText(item.Variations),
			quantityText(item),
			sf.FormatPrice(item.UnitPrice),
			sf.FormatPrice(item.TotalPrice),
		)
	}
	_ = tw.Flush()

	s := sf.Cart().Summary()
	tw = newTable(w)
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Items\t%d\n", s.ItemCount)
	fmt.Fprintf(tw, "Subtotal\t%s\n", sf.FormatAmount(s.Subtotal))
	fmt.Fprintf(tw, "Tax (%s%%)\t%s\n", cart.TaxRate.Shift(2).String(), sf.FormatAmount(s.Tax))
	fmt.Fprintf(tw, "Total\t%s\n", sf.FormatAmount(s.Total))
	_ = tw.Flush()
}

// quantityText marks which of the -/+ controls are available
func quantityText(item cart.LineItem) string {
	minus, plus := "-", "+"
	if !item.CanDecrement() {
		minus = " "
	}
	if !item.CanIncrement() {
		plus = " "
	}
	return fmt.Sprintf("%s%d%s", minus, item.Quantity, plus)
}

func variationText(v cart.Variations) string {
	if len(v) == 0 {
		return ""
	}
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+v[k])
	}
	return strings.Join(parts, ",")
}

func renderSession(w io.Writer, s auth.Session) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Name\t%s\n", s.DisplayName)
	fmt.Fprintf(tw, "Email\t%s\n", s.Email)
	verified := "no"
	if s.EmailVerified {
		verified = "yes"
	}
	fmt.Fprintf(tw, "Verified\t%s\n", verified)
	if !s.ExpiresAt.IsZero() {
		fmt.Fprintf(tw, "Session until\t%s\n", s.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}
