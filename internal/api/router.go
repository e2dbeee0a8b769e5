// Package api exposes the health and metrics endpoints.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pable/faceitwatch/internal/monitor"
)

// StatusSource reports the poll loop state.
type StatusSource interface {
	Status() monitor.Status
}

type healthResponse struct {
	Status     string     `json:"status"`
	Monitoring string     `json:"monitoring"`
	Players    int        `json:"players"`
	Notified   int        `json:"notified"`
	Iterations int64      `json:"iterations"`
	LastPoll   *time.Time `json:"last_poll,omitempty"`
}

// NewRouter returns the HTTP handler serving /healthz and /metrics.
func NewRouter(src StatusSource) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthz(src))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

func healthz(src StatusSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := src.Status()
		resp := healthResponse{
			Status:     "ok",
			Monitoring: st.State.String(),
			Players:    st.Players,
			Notified:   st.Notified,
			Iterations: st.Iterations,
		}
		if !st.LastPoll.IsZero() {
			t := st.LastPoll.UTC()
			resp.LastPoll = &t
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}
