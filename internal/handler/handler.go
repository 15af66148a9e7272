// Package handler exposes the storefront HTTP surface: the public catalog and
// order endpoints, and the shared-secret-gated admin endpoints.
package handler

import (
	"net/http"

	"github.com/atelierhome/storefront/internal/domain/catalog"
	"github.com/atelierhome/storefront/internal/domain/order"
)

// ImageStore ingests an uploaded image and returns its serving URL.
type ImageStore interface {
	SaveDataURL(dataURL string) (string, error)
}

// NotificationSink is the order sink plus the configuration probe the
// diagnostics endpoint reports on.
type NotificationSink interface {
	order.Sink
	Configured() bool
}

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// AdminPass is the shared secret gating every admin endpoint. Empty means
	// the deployment is misconfigured: admin requests fail with a 500, not a 403.
	AdminPass string
	// MaxBodyBytes caps JSON request bodies. Upload payloads are base64 data
	// URLs, so this must comfortably exceed the largest accepted image.
	MaxBodyBytes int64
	// UploadDir is served under /uploads/.
	UploadDir string
	// ClientDist is the SPA build directory served as the site itself.
	ClientDist string
}

// Handler wires the domain services to their routes.
type Handler struct {
	cfg    Config
	store  catalog.Store
	images ImageStore
	orders *order.Service
	sink   NotificationSink
}

// New constructs a Handler with the required collaborators.
func New(cfg Config, store catalog.Store, images ImageStore, orders *order.Service, sink NotificationSink) *Handler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 15 << 20
	}
	return &Handler{
		cfg:    cfg,
		store:  store,
		images: images,
		orders: orders,
		sink:   sink,
	}
}

// Routes returns the full route table, including static file serving and the
// SPA fallback.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/catalog", h.Catalog)
	mux.HandleFunc("GET /api/health", h.Diagnostics)
	mux.HandleFunc("POST /api/order", h.PlaceOrder)

	mux.HandleFunc("POST /api/test-telegram", h.admin(h.TestTelegram))
	mux.HandleFunc("GET /api/admin/catalog", h.admin(h.AdminCatalog))
	mux.HandleFunc("POST /api/admin/catalog", h.admin(h.AdminReplaceCatalog))
	mux.HandleFunc("POST /api/admin/upload", h.admin(h.AdminUpload))

	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(h.cfg.UploadDir))))
	mux.Handle("/", h.spa())

	return mux
}
