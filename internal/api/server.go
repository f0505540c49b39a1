package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"periplo/pkg/logging"
	"periplo/pkg/version"
)

// NewServer wires the HTTP server. services reports per-dependency
// health states; the shutdown func is invoked after the shutdown
// endpoint has responded.
func NewServer(addr string, search *SearchHandler, munis *MunicipalityHandler,
	pois *POIHandler, stats *StatsHandler, cacheH *CacheHandler,
	services map[string]string, shutdown func()) *http.Server {

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler(services))
	mux.HandleFunc("GET /api/version", handleVersion)
	mux.HandleFunc("GET /api/log/latest", handleLogLatest)

	mux.HandleFunc("POST /api/search", search.HandleSearch)
	mux.HandleFunc("POST /api/municipalities", munis.HandleDiscover)
	mux.HandleFunc("POST /api/pois/enrich", pois.HandleEnrich)
	mux.HandleFunc("POST /api/analyze", pois.HandleAnalyze)

	mux.Handle("GET /api/stats", stats)
	mux.HandleFunc("POST /api/stats/reset", stats.HandleReset)
	mux.HandleFunc("POST /api/cache/invalidate", cacheH.HandleInvalidate)

	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Delay so the response flushes before listeners close.
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

type healthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Services map[string]string `json:"services"`
}

// healthServices are always reported, "operational" unless the caller
// says otherwise.
var healthServices = []string{
	"osm", "wiki_encyclopedia", "wikibase", "dbpedia",
	"reverse_geocoder", "enrichment",
}

func healthHandler(overrides map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := make(map[string]string, len(healthServices))
		for _, name := range healthServices {
			services[name] = "operational"
		}
		for name, state := range overrides {
			services[name] = state
		}
		writeJSON(w, http.StatusOK, healthResponse{
			Status:   "healthy",
			Version:  version.Version,
			Services: services,
		})
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}

func handleLogLatest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"lines": logging.GlobalLogCapture.Recent(20),
	})
}
