package health

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

// Handler serves liveness and readiness probes.
type Handler struct {
	ready   atomic.Bool
	pending func() int64
}

// Status is the readiness response body.
type Status struct {
	Status  string `json:"status"`
	Pending int64  `json:"pending"`
}

// New returns a health handler. pending, when set, reports in-flight invocations.
func New(pending func() int64) *Handler {
	return &Handler{pending: pending}
}

// SetReady marks the handler as ready.
func (h *Handler) SetReady() {
	h.ready.Store(true)
}

// SetNotReady marks the handler as not ready.
func (h *Handler) SetNotReady() {
	h.ready.Store(false)
}

// Healthz handles liveness probes.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Readyz handles readiness probes.
func (h *Handler) Readyz(w http.ResponseWriter, _ *http.Request) {
	status := Status{Status: "ready"}
	code := http.StatusOK
	if !h.ready.Load() {
		status.Status = "not ready"
		code = http.StatusServiceUnavailable
	}
	if h.pending != nil {
		status.Pending = h.pending()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}
