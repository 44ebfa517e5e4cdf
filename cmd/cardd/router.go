package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// catalogSizer reports whether a usable catalog is loaded.
type catalogSizer interface {
	Len() int
}

type health struct {
	Status string `json:"status"`
	Cards  int    `json:"cards"`
}

// newRouter serves the operational endpoints.
func newRouter(cat catalogSizer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		h := health{Status: "ok", Cards: cat.Len()}
		code := http.StatusOK
		if h.Cards == 0 {
			h.Status, code = "catalog unavailable", http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(h)
	})
	return r
}
