// Package api assembles the HTTP surface.
package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gallerytab/server/internal/api/handlers"
	"github.com/gallerytab/server/internal/api/middleware"
	"github.com/gallerytab/server/internal/metrics"
	"github.com/gallerytab/server/internal/storage"
)

// Deps carries the constructed services the router wires into handlers.
type Deps struct {
	Fetcher  handlers.Fetcher
	History  handlers.History
	Settings handlers.Settings
	Catalog  handlers.Catalog
	Store    storage.Store
}

func NewRouter(deps Deps, env string, logger zerolog.Logger) http.Handler {
	artworkHandler := handlers.NewArtworkHandler(deps.Fetcher, deps.History, env)
	historyHandler := handlers.NewHistoryHandler(deps.History, env)
	sourcesHandler := handlers.NewSourcesHandler(deps.Catalog, deps.Settings, env)
	healthHandler := handlers.NewHealthHandler(deps.Store)

	mux := http.NewServeMux()
	mux.Handle("/healthz", http.HandlerFunc(healthHandler.Healthz))
	mux.Handle("/readyz", http.HandlerFunc(healthHandler.Readyz))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("/api/v1/artwork", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(artworkHandler.Get),
	}))
	mux.Handle("/api/v1/history", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(historyHandler.List),
		http.MethodDelete: http.HandlerFunc(historyHandler.Clear),
	}))
	mux.Handle("/api/v1/sources", methodMux(map[string]http.Handler{
		http.MethodGet:   http.HandlerFunc(sourcesHandler.List),
		http.MethodPatch: http.HandlerFunc(sourcesHandler.Update),
	}))

	var handler http.Handler = mux
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
