// Package order assembles customer orders from a cart snapshot and hands them
// to the notification sink. Orders are ephemeral: they exist only as the
// formatted message sent to the shop owner.
package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

// Payment method values accepted from the checkout form.
const (
	PaymentCOD  = "cod"
	PaymentCard = "card"
)

// Customer holds the checkout contact fields. Name, Phone, City and NPBranch
// are required; Payment and Comment are optional.
type Customer struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	City     string `json:"city"`
	NPBranch string `json:"npBranch"`
	Payment  string `json:"payment"`
	Comment  string `json:"comment"`
}

// FieldErrors maps a field name to its machine-readable failure reason.
type FieldErrors map[string]string

// Validate checks every required field and reports all failures together;
// it never stops at the first bad field.
func (c Customer) Validate() FieldErrors {
	fields := FieldErrors{}
	if strings.TrimSpace(c.Name) == "" {
		fields["name"] = "required"
	}
	if strings.TrimSpace(c.Phone) == "" {
		fields["phone"] = "required"
	}
	if strings.TrimSpace(c.City) == "" {
		fields["city"] = "required"
	}
	if strings.TrimSpace(c.NPBranch) == "" {
		fields["npBranch"] = "required"
	}
	return fields
}

// Item is one order line, copied from the cart at submission time.
type Item struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Size         string `json:"size"`
	Color        string `json:"color"`
	Material     string `json:"material"`
	Availability string `json:"availability"`
	Price        int64  `json:"price"`
	Qty          int    `json:"qty"`
}

// Order is the assembled submission payload.
type Order struct {
	ID       string
	Customer Customer
	Items    []Item
	Total    int64
	SiteURL  string
}

// ErrEmptyCart rejects a submission with no items, before any sink call.
var ErrEmptyCart = errors.New("cart is empty")

// ValidationError carries the per-field failures of a rejected submission.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	return fmt.Sprintf("invalid customer fields: %s", strings.Join(names, ", "))
}

// Sink delivers one formatted order message. Delivery is all-or-nothing.
type Sink interface {
	Send(ctx context.Context, text string) error
}
