package api

import (
	"freight-service/internal/api/handlers"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Dependencies struct {
	Freight  handlers.FreightCalculator
	Resolver handlers.PostalCodeResolver
	Bands    handlers.BandManager
	// Source for GET /metrics; nil serves the default registry.
	Gatherer prometheus.Gatherer
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers stay unaware of concrete adapters.
func NewRouter(deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	freight := &handlers.FreightHandler{Calculator: deps.Freight}
	postal := &handlers.PostalHandler{Resolver: deps.Resolver}
	bands := &handlers.BandHandler{Bands: deps.Bands}

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	mux.HandleFunc("GET /health", handlers.Health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /stores/{storeID}/freight", freight.Quote)
	mux.HandleFunc("GET /postal-codes/{cep}/coordinates", postal.Coordinates)

	mux.HandleFunc("GET /stores/{storeID}/bands", bands.List)
	mux.HandleFunc("POST /stores/{storeID}/bands", bands.Create)
	mux.HandleFunc("PUT /stores/{storeID}/bands/{bandID}", bands.Update)
	mux.HandleFunc("DELETE /stores/{storeID}/bands/{bandID}", bands.Delete)

	return requestMiddleware(recoverMiddleware(mux))
}
