package catalog

import (
	"strings"

	"github.com/atelierhome/storefront/internal/domain/pricing"
)

// PricedProduct is a product with its derived final prices attached. It is
// computed fresh on every catalog read and never persisted.
type PricedProduct struct {
	Product

	PriceFinal       int64            `json:"priceFinal"`
	PriceBySizeFinal map[string]int64 `json:"priceBySizeFinal,omitempty"`
	MinPriceFinal    int64            `json:"minPriceFinal"`
	MaxPriceFinal    int64            `json:"maxPriceFinal"`
}

// View is the public projection of a catalog: same brand, same product order,
// every product carrying final prices.
type View struct {
	Brand    Brand           `json:"brand"`
	Products []PricedProduct `json:"products"`
}

// Project derives the public view of the catalog. For every product it
// computes the flat final price, and when the product carries per-size base
// prices, a final price per size plus the min/max over those. All stored
// fields pass through unchanged and product order is preserved.
func Project(c *Catalog) *View {
	v := &View{
		Brand:    c.Brand,
		Products: make([]PricedProduct, len(c.Products)),
	}
	for i := range c.Products {
		v.Products[i] = priceProduct(c.Products[i], c.Brand.GlobalMarkupPercent)
	}
	return v
}

func priceProduct(p Product, markup int64) PricedProduct {
	pp := PricedProduct{
		Product:    p,
		PriceFinal: pricing.Final(p.BasePrice, p.DiscountPercent, markup),
	}
	pp.MinPriceFinal = pp.PriceFinal
	pp.MaxPriceFinal = pp.PriceFinal

	if len(p.BasePriceBySize) == 0 {
		return pp
	}

	pp.PriceBySizeFinal = make(map[string]int64, len(p.BasePriceBySize))
	first := true
	for size, base := range p.BasePriceBySize {
		final := pricing.Final(base, p.DiscountPercent, markup)
		pp.PriceBySizeFinal[size] = final
		if first || final < pp.MinPriceFinal {
			pp.MinPriceFinal = final
		}
		if first || final > pp.MaxPriceFinal {
			pp.MaxPriceFinal = final
		}
		first = false
	}
	return pp
}

// Filter returns the products matching both predicates, in input order.
// CategoryAll matches every category; a blank query matches every product,
// otherwise the query must appear case-insensitively in the name or the
// description.
func Filter(products []PricedProduct, category Category, query string) []PricedProduct {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]PricedProduct, 0, len(products))
	for _, p := range products {
		if category != CategoryAll && p.Category != category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}
