package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/atelierhome/storefront/internal/domain/cart"
)

// Service validates submissions, assembles the order from the cart, and
// delivers it through the sink.
type Service struct {
	sink Sink
}

// NewService creates an order Service delivering through the given sink.
func NewService(sink Sink) *Service {
	return &Service{sink: sink}
}

// Submit places an order for the cart's current contents.
//
// The submission is rejected before any sink call when the cart is empty or
// any required customer field is blank; all field failures are reported
// together. The order carries a copy of the cart lines, so later cart
// mutations cannot alter a submitted order. The cart is cleared only after
// the sink confirms delivery; on sink failure it is left untouched so the
// customer can retry.
func (s *Service) Submit(ctx context.Context, customer Customer, c *cart.Cart, siteURL string) (*Order, error) {
	if c.Count() == 0 {
		return nil, ErrEmptyCart
	}
	if fields := customer.Validate(); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	lines := c.Items()
	items := make([]Item, len(lines))
	for i, line := range lines {
		items[i] = Item{
			ID:           line.ProductID,
			Name:         line.Name,
			Size:         line.Size,
			Color:        line.Color,
			Material:     line.Material,
			Availability: line.Availability,
			Price:        line.Price,
			Qty:          line.Qty,
		}
	}

	o := &Order{
		ID:       uuid.New().String(),
		Customer: customer,
		Items:    items,
		Total:    c.Sum(),
		SiteURL:  siteURL,
	}

	if err := s.sink.Send(ctx, FormatMessage(o)); err != nil {
		return nil, err
	}

	c.Clear()
	return o, nil
}

// FormatMessage renders an order as the plain-text message delivered to the
// shop owner. The layout matches what the owner's chat workflow expects, so
// treat it as a wire format.
func FormatMessage(o *Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🧾 Нове замовлення #%s\n\n", safe(o.ID))
	fmt.Fprintf(&b, "👤 Імʼя: %s\n", safe(orDash(o.Customer.Name)))
	fmt.Fprintf(&b, "📞 Телефон: %s\n", safe(orDash(o.Customer.Phone)))
	fmt.Fprintf(&b, "🏙 Місто: %s\n", safe(orDash(o.Customer.City)))
	fmt.Fprintf(&b, "📦 НП: %s\n", safe(orDash(o.Customer.NPBranch)))
	fmt.Fprintf(&b, "💳 Оплата: %s\n", paymentLabel(o.Customer.Payment))
	if o.Customer.Comment != "" {
		fmt.Fprintf(&b, "📝 Коментар: %s\n", safe(o.Customer.Comment))
	}
	b.WriteString("\n🛒 Товари:\n")

	for i, it := range o.Items {
		sum := int64(it.Qty) * it.Price
		fmt.Fprintf(&b, "%d) %s\n", i+1, safe(orDash(it.Name)))
		fmt.Fprintf(&b, "   • Опції: %s / %s / %s\n", safe(it.Size), safe(it.Color), safe(it.Material))
		fmt.Fprintf(&b, "   • Наявність: %s\n", safe(it.Availability))
		fmt.Fprintf(&b, "   • %d грн × %d = %d грн\n", it.Price, it.Qty, sum)
	}

	fmt.Fprintf(&b, "\n💰 Разом: %d грн", o.Total)
	if o.SiteURL != "" {
		fmt.Fprintf(&b, "\n\n🔗 %s", safe(o.SiteURL))
	}
	return b.String()
}

func paymentLabel(payment string) string {
	if payment == PaymentCOD {
		return "Накладений платіж"
	}
	return "Картка"
}

// safe strips angle brackets from interpolated user text so pasted markup
// cannot mangle the message.
func safe(s string) string {
	s = strings.ReplaceAll(s, "<", "")
	return strings.ReplaceAll(s, ">", "")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
