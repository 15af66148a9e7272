package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/atelierhome/storefront/internal/domain/catalog"
	"github.com/atelierhome/storefront/internal/storage/imagestore"
)

// AdminCatalog serves the stored document as-is: base prices, no projection.
// This is what the admin panel edits.
func (h *Handler) AdminCatalog(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.Load(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("load catalog", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "catalog_unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c)
}

// AdminReplaceCatalog swaps the whole stored document. The body's shape is
// checked before decoding so a malformed save reports a machine-readable
// reason instead of a partial write: a non-object body is bad_body, a missing
// or non-array products field is products_required.
func (h *Handler) AdminReplaceCatalog(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_body")
		return
	}

	if reason := catalogShapeError(body); reason != "" {
		writeError(w, http.StatusBadRequest, reason)
		return
	}

	var c catalog.Catalog
	if err := json.Unmarshal(body, &c); err != nil {
		writeError(w, http.StatusBadRequest, "bad_body")
		return
	}

	if err := h.store.Replace(r.Context(), &c); err != nil {
		zctx.From(r.Context()).Error("replace catalog", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	writeOK(w)
}

// AdminUpload ingests one base64 data-URL image and returns its serving URL.
// Uploads in a batch are independent: the admin panel sends them one request
// each, and a failure here does not affect files already stored.
func (h *Handler) AdminUpload(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_body")
		return
	}

	var req struct {
		DataURL string `json:"dataUrl"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_body")
		return
	}

	url, err := h.images.SaveDataURL(req.DataURL)
	if err != nil {
		if errors.Is(err, imagestore.ErrInvalidDataURL) {
			writeError(w, http.StatusBadRequest, "invalid_dataUrl")
			return
		}
		zctx.From(r.Context()).Error("store image", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "upload_failed")
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("ok", func(e *jx.Encoder) { e.Bool(true) })
			e.Field("url", func(e *jx.Encoder) { e.Str(url) })
		})
	})
}

var errProductsShape = errors.New("products is not an array")

// catalogShapeError walks the raw body with a streaming decoder and returns
// the rejection reason for a malformed catalog document, or "" when the shape
// is acceptable.
func catalogShapeError(body []byte) string {
	d := jx.DecodeBytes(body)
	if d.Next() != jx.Object {
		return "bad_body"
	}

	hasProducts := false
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key == "products" {
			if d.Next() != jx.Array {
				return errProductsShape
			}
			hasProducts = true
		}
		return d.Skip()
	})
	if err != nil {
		if errors.Is(err, errProductsShape) {
			return "products_required"
		}
		return "bad_body"
	}
	if !hasProducts {
		return "products_required"
	}
	return ""
}
