package handler

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/atelierhome/storefront/internal/domain/catalog"
)

// Catalog serves the full projected catalog: every product with its final
// prices derived from the stored base prices. The document is read and
// projected fresh on every request.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.Load(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("load catalog", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "catalog_unavailable")
		return
	}

	view := catalog.Project(c)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(view); err != nil {
		zctx.From(r.Context()).Error("encode catalog", zap.Error(err))
	}
}

// Diagnostics reports deployment flags the admin UI and smoke tests rely on.
func (h *Handler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	_, err := os.Stat(filepath.Join(h.cfg.ClientDist, "index.html"))
	hasClientDist := err == nil

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("ok", func(e *jx.Encoder) { e.Bool(true) })
			e.Field("hasTelegram", func(e *jx.Encoder) { e.Bool(h.sink.Configured()) })
			e.Field("hasAdminPass", func(e *jx.Encoder) { e.Bool(h.cfg.AdminPass != "") })
			e.Field("hasClientDist", func(e *jx.Encoder) { e.Bool(hasClientDist) })
		})
	})
}
