package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	New(nil).Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("Healthz() = %d %q, want 200 ok", rec.Code, rec.Body.String())
	}
}

func TestReadyz(t *testing.T) {
	h := New(func() int64 { return 2 })

	probe := func() (int, Status) {
		rec := httptest.NewRecorder()
		h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		var status Status
		if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
			t.Fatalf("decode readyz body: %v", err)
		}
		return rec.Code, status
	}

	if code, status := probe(); code != http.StatusServiceUnavailable || status.Status != "not ready" {
		t.Errorf("Readyz() before SetReady = %d %+v", code, status)
	}
	h.SetReady()
	if code, status := probe(); code != http.StatusOK || status.Status != "ready" || status.Pending != 2 {
		t.Errorf("Readyz() after SetReady = %d %+v", code, status)
	}
	h.SetNotReady()
	if code, _ := probe(); code != http.StatusServiceUnavailable {
		t.Errorf("Readyz() after SetNotReady = %d", code)
	}
}
