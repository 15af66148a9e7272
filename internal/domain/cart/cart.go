// Package cart implements the shopping cart: an ordered list of line items
// keyed by product and variant, persisted through an injected storage port
// after every mutation.
package cart

import (
	"encoding/json"
	"sync"
)

// Quantity bounds for a single line. Anything outside is clamped, never
// rejected.
const (
	MinQty = 1
	MaxQty = 99
)

// Item is one cart line: a product variant with a quantity and the unit price
// captured at the moment it was added.
type Item struct {
	Key          string `json:"key"`
	ProductID    string `json:"productId"`
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Size         string `json:"size"`
	Color        string `json:"color"`
	Material     string `json:"material"`
	Availability string `json:"availability"`
	Price        int64  `json:"price"`
	Qty          int    `json:"qty"`
	Photo        string `json:"photo"`
}

// LineKey builds the natural identity of a cart line. Two adds with the same
// key merge into one line.
func LineKey(productID, size, color, material string) string {
	return productID + "__" + size + "__" + color + "__" + material
}

// Storage is the persistence port for cart state. Load returns the last saved
// payload (nil when nothing was saved yet); Save replaces it wholesale.
type Storage interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// Cart holds an ordered sequence of line items with unique keys. It never
// touches ambient storage: all persistence goes through the injected port,
// and a corrupt or missing payload hydrates to an empty cart.
type Cart struct {
	storage Storage

	mu    sync.Mutex
	items []Item
}

// New creates a cart hydrated from the storage port. Any load or decode
// failure, and any payload that is not a JSON array, yields an empty cart;
// no error is surfaced.
func New(storage Storage) *Cart {
	c := &Cart{storage: storage}

	data, err := storage.Load()
	if err != nil || len(data) == 0 {
		return c
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return c
	}
	c.items = items
	return c
}

// Add merges the item into the cart. An existing line with the same key gets
// its quantity bumped (capped at MaxQty) and keeps its other fields;
// otherwise the item is appended with quantity at least MinQty.
func (c *Cart) Add(item Item) {
	item.Key = LineKey(item.ProductID, item.Size, item.Color, item.Material)

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].Key == item.Key {
			c.items[i].Qty = clampQty(c.items[i].Qty + item.Qty)
			c.persist()
			return
		}
	}

	item.Qty = clampQty(item.Qty)
	c.items = append(c.items, item)
	c.persist()
}

// UpdateQty sets the quantity of the line with the given key, clamped to
// [MinQty, MaxQty]. Unknown keys are ignored.
func (c *Cart) UpdateQty(key string, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].Key == key {
			c.items[i].Qty = clampQty(qty)
			c.persist()
			return
		}
	}
}

// Remove deletes the line with the given key. Unknown keys are ignored.
func (c *Cart) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].Key == key {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.persist()
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.persist()
}

// Items returns a copy of the line sequence in insertion order.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Count is the total quantity across all lines, recomputed on every call.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, it := range c.items {
		n += it.Qty
	}
	return n
}

// Sum is the total price across all lines, recomputed on every call.
func (c *Cart) Sum() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var sum int64
	for _, it := range c.items {
		sum += int64(it.Qty) * it.Price
	}
	return sum
}

// persist writes the full line sequence to the storage port. Failures are
// swallowed: the in-memory state stays authoritative for this session.
// Caller must hold c.mu.
func (c *Cart) persist() {
	items := c.items
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return
	}
	_ = c.storage.Save(data)
}

func clampQty(q int) int {
	if q < MinQty {
		return MinQty
	}
	if q > MaxQty {
		return MaxQty
	}
	return q
}
