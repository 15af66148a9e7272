package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhome/storefront/internal/domain/cart"
)

// --- Mock sink ---

type mockSink struct {
	err   error
	sent  []string
	calls int
}

func (m *mockSink) Send(_ context.Context, text string) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, text)
	return nil
}

// --- Helpers ---

func validCustomer() Customer {
	return Customer{
		Name:     "Олександр",
		Phone:    "+380501234567",
		City:     "Київ",
		NPBranch: "12",
		Payment:  PaymentCOD,
	}
}

func filledCart() *cart.Cart {
	c := cart.New(cart.NewMemoryStorage())
	c.Add(cart.Item{
		ProductID: "p1", Name: "Sofa Verona", Size: "M", Color: "Red",
		Material: "Wood", Availability: "in", Price: 50, Qty: 2,
	})
	c.Add(cart.Item{
		ProductID: "p2", Name: "Oak table", Size: "L", Color: "Natural",
		Material: "Oak", Availability: "pre", Price: 120, Qty: 1,
	})
	return c
}

// --- Tests ---

func TestValidate_CollectsAllFailures(t *testing.T) {
	fields := Customer{Name: "  ", Phone: "", City: "\t", NPBranch: ""}.Validate()

	assert.Equal(t, FieldErrors{
		"name":     "required",
		"phone":    "required",
		"city":     "required",
		"npBranch": "required",
	}, fields)
}

func TestValidate_TrimsBeforeChecking(t *testing.T) {
	c := validCustomer()
	c.City = "   "

	fields := c.Validate()

	require.Len(t, fields, 1)
	assert.Contains(t, fields, "city")
}

func TestSubmit_EmptyCart(t *testing.T) {
	sink := &mockSink{}
	svc := NewService(sink)

	_, err := svc.Submit(context.Background(), validCustomer(), cart.New(cart.NewMemoryStorage()), "")

	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, sink.calls, "sink must not be called for an empty cart")
}

func TestSubmit_InvalidCustomer(t *testing.T) {
	sink := &mockSink{}
	svc := NewService(sink)
	c := filledCart()

	_, err := svc.Submit(context.Background(), Customer{}, c, "")

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Fields, 4)
	assert.Zero(t, sink.calls)
	assert.Equal(t, 3, c.Count(), "cart untouched on rejection")
}

func TestSubmit_Success(t *testing.T) {
	sink := &mockSink{}
	svc := NewService(sink)
	c := filledCart()

	o, err := svc.Submit(context.Background(), validCustomer(), c, "https://shop.example/checkout")

	require.NoError(t, err)
	require.Len(t, o.Items, 2)
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, int64(220), o.Total)
	assert.Equal(t, 1, sink.calls)
	assert.Empty(t, c.Items(), "cart cleared exactly once after delivery")
}

func TestSubmit_SinkFailureLeavesCart(t *testing.T) {
	sink := &mockSink{err: errors.New("telegram unreachable")}
	svc := NewService(sink)
	c := filledCart()

	_, err := svc.Submit(context.Background(), validCustomer(), c, "")

	require.Error(t, err)
	assert.Equal(t, 3, c.Count(), "cart must survive a failed delivery for retry")
}

func TestSubmit_OrderIsSnapshotCopy(t *testing.T) {
	sink := &mockSink{err: errors.New("down")}
	svc := NewService(sink)
	c := filledCart()

	_, _ = svc.Submit(context.Background(), validCustomer(), c, "")

	// Retry after mutating the cart: the new order reflects the new state,
	// and nothing in the first attempt aliased the cart's internals.
	c.UpdateQty(cart.LineKey("p1", "M", "Red", "Wood"), 5)
	sink.err = nil
	o, err := svc.Submit(context.Background(), validCustomer(), c, "")
	require.NoError(t, err)
	assert.Equal(t, 5, o.Items[0].Qty)
}

func TestFormatMessage(t *testing.T) {
	o := &Order{
		ID: "abc-123",
		Customer: Customer{
			Name: "Олександр", Phone: "+380501234567", City: "Київ",
			NPBranch: "12", Payment: PaymentCOD, Comment: "подзвонити <удень>",
		},
		Items: []Item{
			{ID: "p1", Name: "Sofa Verona", Size: "M", Color: "Red", Material: "Wood", Availability: "in", Price: 50, Qty: 2},
		},
		Total:   100,
		SiteURL: "https://shop.example/",
	}

	msg := FormatMessage(o)

	assert.Contains(t, msg, "Нове замовлення #abc-123")
	assert.Contains(t, msg, "👤 Імʼя: Олександр")
	assert.Contains(t, msg, "💳 Оплата: Накладений платіж")
	assert.Contains(t, msg, "📝 Коментар: подзвонити удень")
	assert.NotContains(t, msg, "<удень>")
	assert.Contains(t, msg, "1) Sofa Verona")
	assert.Contains(t, msg, "• 50 грн × 2 = 100 грн")
	assert.Contains(t, msg, "💰 Разом: 100 грн")
	assert.Contains(t, msg, "🔗 https://shop.example/")
}

func TestFormatMessage_CardPaymentAndDashes(t *testing.T) {
	o := &Order{
		Customer: Customer{Name: "A", Phone: "1", City: "B", NPBranch: "2", Payment: PaymentCard},
		Items:    []Item{{Qty: 1}},
	}

	msg := FormatMessage(o)

	assert.Contains(t, msg, "💳 Оплата: Картка")
	assert.Contains(t, msg, "1) -")
	assert.NotContains(t, msg, "Коментар")
}
