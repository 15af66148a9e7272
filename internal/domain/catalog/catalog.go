// Package catalog defines the persisted catalog document and its read-time
// projection into final displayed prices.
package catalog

import (
	"context"
	"regexp"
	"strings"

	"github.com/go-faster/errors"
)

// Category identifies a product's section of the collection.
type Category string

// Known categories. Filtering treats CategoryAll as a wildcard.
const (
	CategoryAll   Category = "all"
	CategorySofa  Category = "sofa"
	CategoryTable Category = "table"
	CategoryBed   Category = "bed"
	CategoryChair Category = "chair"
)

// Availability is the stock state shown to the customer.
type Availability string

const (
	AvailabilityInStock  Availability = "in"
	AvailabilityPreOrder Availability = "pre"
)

// Brand holds storefront-wide display and pricing settings.
type Brand struct {
	Currency            string `json:"currency"`
	GlobalMarkupPercent int64  `json:"globalMarkupPercent"`
}

// Product is a single catalog entry as persisted. Prices here are base
// prices: the discount and the brand markup are applied at read time.
//
// BasePriceBySize, when present, overrides BasePrice per size label. Its key
// set must stay in lockstep with Sizes; mutate sizes through SetSizes so the
// reconciliation cannot be skipped.
type Product struct {
	ID              string           `json:"id"`
	Slug            string           `json:"slug"`
	Category        Category         `json:"category"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	BasePrice       int64            `json:"basePrice"`
	BasePriceBySize map[string]int64 `json:"basePriceBySize,omitempty"`
	DiscountPercent int64            `json:"discountPercent"`
	Availability    Availability     `json:"availability"`
	Sizes           []string         `json:"sizes"`
	Colors          []string         `json:"colors"`
	Materials       []string         `json:"materials"`
	Photos          []string         `json:"photos"`
	Featured        bool             `json:"featured"`
}

// SetSizes replaces the product's size labels and reconciles BasePriceBySize:
// a size introduced here gets an entry at the current BasePrice, and entries
// for removed sizes are dropped.
func (p *Product) SetSizes(sizes []string) {
	p.Sizes = sizes

	if p.BasePriceBySize == nil {
		p.BasePriceBySize = make(map[string]int64, len(sizes))
	}
	keep := make(map[string]struct{}, len(sizes))
	for _, s := range sizes {
		keep[s] = struct{}{}
		if _, ok := p.BasePriceBySize[s]; !ok {
			p.BasePriceBySize[s] = p.BasePrice
		}
	}
	for k := range p.BasePriceBySize {
		if _, ok := keep[k]; !ok {
			delete(p.BasePriceBySize, k)
		}
	}
}

// Catalog is the whole persisted document: brand settings plus the ordered
// product list. It is the unit of both read and write.
type Catalog struct {
	Brand    Brand     `json:"brand"`
	Products []Product `json:"products"`
}

// ErrNilProducts is returned by stores when a replacement document carries a
// nil product list.
var ErrNilProducts = errors.New("catalog products must be a list")

// Store owns the persisted catalog document.
//
// Load reconstructs the document on every call; there is no caching layer.
// Replace swaps the whole document. There is deliberately no version check:
// concurrent admin writes resolve last-write-wins.
type Store interface {
	Load(ctx context.Context) (*Catalog, error)
	Replace(ctx context.Context, c *Catalog) error
}

var slugStrip = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Slugify derives a URL-safe slug from a product name: lowercased, runs of
// non-alphanumeric characters collapsed to single hyphens, edges trimmed.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugStrip.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
