package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-faster/sdk/zctx"
)

// adminPassHeader carries the shared secret on every admin request.
const adminPassHeader = "X-Admin-Pass"

// admin gates a handler behind the shared admin secret.
//
// Two distinct failure modes: a server with no secret configured answers 500
// (the deployment is broken, no credential could ever succeed), while a wrong
// or missing credential answers 403. The comparison is constant-time so the
// secret cannot be probed byte by byte.
func (h *Handler) admin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.cfg.AdminPass == "" {
			zctx.From(r.Context()).Error("admin secret is not configured")
			writeError(w, http.StatusInternalServerError, "admin_pass_not_set")
			return
		}

		pass := r.Header.Get(adminPassHeader)
		if subtle.ConstantTimeCompare([]byte(pass), []byte(h.cfg.AdminPass)) != 1 {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}

		next(w, r)
	}
}
