package api

import (
	"moving-quote-service/internal/api/handlers"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Deps struct {
	Availability handlers.AvailabilityService
	Quotes       handlers.QuoteService
	Distances    handlers.DistanceCache
	RulesCache   handlers.RulesCache
	DB           handlers.Pinger
	Log          *zap.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(handlers.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handlers.MethodNotAllowed)

	healthHandler := &handlers.HealthHandler{DB: deps.DB}
	availabilityHandler := &handlers.AvailabilityHandler{Service: deps.Availability}
	quoteHandler := &handlers.QuoteHandler{Service: deps.Quotes}
	adminHandler := &handlers.AdminHandler{Distances: deps.Distances, Rules: deps.RulesCache}

	r.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)
	r.HandleFunc("/availability", availabilityHandler.Get).Methods(http.MethodGet)
	r.HandleFunc("/quotes", quoteHandler.Create).Methods(http.MethodPost)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/cache", adminHandler.ClearDistanceCache).Methods(http.MethodDelete)
	admin.HandleFunc("/rules-cache", adminHandler.InvalidateRules).Methods(http.MethodDelete)

	// Middleware wraps the whole router so 404/405 responses are logged too.
	return requestIDMiddleware(loggingMiddleware(log)(r))
}
