package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/unklstewy/overhead/internal/metrics"
	"github.com/unklstewy/overhead/pkg/coordinates"
	"github.com/unklstewy/overhead/pkg/overhead"
)

// flightResolver is satisfied by *overhead.Service.
type flightResolver interface {
	Resolve(ctx context.Context, observer coordinates.Geographic) (*overhead.FlightSummary, error)
}

// Server holds the HTTP router and its dependencies
type Server struct {
	router   *chi.Mux
	resolver flightResolver
	metrics  *metrics.Collector
	origins  []string
}

func newServer(resolver flightResolver, collector *metrics.Collector, origins []string) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		resolver: resolver,
		metrics:  collector,
		origins:  origins,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/api/flight", s.handleGetFlight)
	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}
}

// handleGetFlight answers with the aircraft overhead lat/lon. Feed
// problems still produce 200 with an empty list.
func (s *Server) handleGetFlight(w http.ResponseWriter, r *http.Request) {
	observer, ok := parseObserver(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Missing lat or lon")
		return
	}

	summary, err := s.resolver.Resolve(r.Context(), observer)
	if errors.Is(err, overhead.ErrInvalidCoordinates) {
		respondError(w, http.StatusBadRequest, "Missing lat or lon")
		return
	}
	if err != nil {
		log.Printf("Error resolving flight: %v", err)
	}

	respondJSON(w, http.StatusOK, overhead.NewResponse(summary))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseObserver reads the lat and lon query values. Absent, unparsable,
// zero and NaN values are all treated as missing.
func parseObserver(r *http.Request) (coordinates.Geographic, bool) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return coordinates.Geographic{}, false
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		return coordinates.Geographic{}, false
	}
	observer := coordinates.Geographic{Latitude: lat, Longitude: lon}
	return observer, observer.Valid()
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
