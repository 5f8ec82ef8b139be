package api

import "net/http"

// SetupRoutes configures all API routes on the mux.
func SetupRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("/api/aggregate", handler.AggregateHandler)
	mux.HandleFunc("/api/chat", handler.ChatHandler)
	mux.HandleFunc("/api/sources", handler.SourcesHandler)
	mux.HandleFunc("/api/info", handler.InfoHandler)
	mux.HandleFunc("/healthz", handler.HealthHandler)
}
