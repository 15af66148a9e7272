package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/jx"
)

// writeJSON renders a response built with a jx encoder.
func writeJSON(w http.ResponseWriter, status int, build func(e *jx.Encoder)) {
	var e jx.Encoder
	build(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeOK renders the canonical {"ok":true} success body.
func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("ok", func(e *jx.Encoder) { e.Bool(true) })
		})
	})
}

// writeError renders {"ok":false,"error":code}.
func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("ok", func(e *jx.Encoder) { e.Bool(false) })
			e.Field("error", func(e *jx.Encoder) { e.Str(code) })
		})
	})
}

// writeErrorMessage is writeError with a human-readable detail attached.
func writeErrorMessage(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("ok", func(e *jx.Encoder) { e.Bool(false) })
			e.Field("error", func(e *jx.Encoder) { e.Str(code) })
			e.Field("message", func(e *jx.Encoder) { e.Str(message) })
		})
	})
}

// readBody drains a size-capped request body.
func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
	return io.ReadAll(r.Body)
}
