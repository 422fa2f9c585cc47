package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServer assembles the HTTP surface: Telegram webhook, health probe,
// Prometheus metrics, and the admin API.
func NewServer(port int, webhookPath string, webhook http.Handler, admin http.Handler) *http.Server {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	if webhook != nil {
		r.Post(webhookPath, webhook.ServeHTTP)
	}
	if admin != nil {
		r.Mount("/api/v1", admin)
	}

	return &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: r}
}
