package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/atelierhome/storefront/internal/domain/cart"
	"github.com/atelierhome/storefront/internal/domain/order"
	"github.com/atelierhome/storefront/internal/telegram"
)

type orderItemRequest struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Size         string `json:"size"`
	Color        string `json:"color"`
	Material     string `json:"material"`
	Availability string `json:"availability"`
	Price        int64  `json:"price"`
	Qty          int    `json:"qty"`
}

type orderRequest struct {
	Customer order.Customer     `json:"customer"`
	Items    []orderItemRequest `json:"items"`
	SiteURL  string             `json:"siteUrl"`
}

// PlaceOrder validates and forwards a checkout submission to the shop owner.
//
// Submitted items are replayed through the cart model rather than trusted
// as-is, so duplicate variant lines merge and quantities land in bounds no
// matter what the client sent.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_body")
		return
	}

	var req orderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_body")
		return
	}

	c := cart.New(cart.NewMemoryStorage())
	for _, it := range req.Items {
		c.Add(cart.Item{
			ProductID:    it.ID,
			Name:         it.Name,
			Size:         it.Size,
			Color:        it.Color,
			Material:     it.Material,
			Availability: it.Availability,
			Price:        it.Price,
			Qty:          it.Qty,
		})
	}

	o, err := h.orders.Submit(r.Context(), req.Customer, c, req.SiteURL)
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("ok", func(e *jx.Encoder) { e.Bool(true) })
			e.Field("orderId", func(e *jx.Encoder) { e.Str(o.ID) })
		})
	})
}

// writeOrderError maps submission failures to response bodies. Sink failures
// stay generic: the customer only needs to know the order did not go through.
func (h *Handler) writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, order.ErrEmptyCart) {
		writeError(w, http.StatusBadRequest, "empty_cart")
		return
	}

	var vErr *order.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusBadRequest, func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("ok", func(e *jx.Encoder) { e.Bool(false) })
				e.Field("error", func(e *jx.Encoder) { e.Str("invalid_customer") })
				e.Field("fields", func(e *jx.Encoder) {
					e.Obj(func(e *jx.Encoder) {
						for field, reason := range vErr.Fields {
							e.Field(field, func(e *jx.Encoder) { e.Str(reason) })
						}
					})
				})
			})
		})
		return
	}

	if errors.Is(err, telegram.ErrNotConfigured) {
		zctx.From(r.Context()).Error("notification sink is not configured")
		writeError(w, http.StatusInternalServerError, "not_configured")
		return
	}

	zctx.From(r.Context()).Error("send order", zap.Error(err))
	writeErrorMessage(w, http.StatusInternalServerError, "send_failed", err.Error())
}

// TestTelegram sends a throwaway message so an operator can verify the bot
// wiring without placing an order. Admin-gated.
func (h *Handler) TestTelegram(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_body")
		return
	}

	text := "✅ TEST OK"
	if len(body) > 0 {
		var req struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(body, &req); err == nil && req.Text != "" {
			text = req.Text
		}
	}

	if err := h.sink.Send(r.Context(), text); err != nil {
		if errors.Is(err, telegram.ErrNotConfigured) {
			writeError(w, http.StatusInternalServerError, "not_configured")
			return
		}
		zctx.From(r.Context()).Error("send test message", zap.Error(err))
		writeErrorMessage(w, http.StatusInternalServerError, "send_failed", err.Error())
		return
	}
	writeOK(w)
}
