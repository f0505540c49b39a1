package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"periplo/internal/api"
	"periplo/pkg/cache"
	"periplo/pkg/config"
	"periplo/pkg/db"
	"periplo/pkg/dbpedia"
	"periplo/pkg/engine"
	"periplo/pkg/enrich"
	"periplo/pkg/llm"
	"periplo/pkg/llm/gemini"
	"periplo/pkg/llm/mock"
	"periplo/pkg/logging"
	"periplo/pkg/marine"
	"periplo/pkg/municipality"
	"periplo/pkg/nominatim"
	"periplo/pkg/overpass"
	"periplo/pkg/poi"
	"periplo/pkg/request"
	"periplo/pkg/startup"
	"periplo/pkg/store"
	"periplo/pkg/tracker"
	"periplo/pkg/version"
	"periplo/pkg/websearch"
	"periplo/pkg/wikidata"
	"periplo/pkg/wikipedia"
)

var initConfig = flag.Bool("init-config", false, "Generate default config file and exit")

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault("configs/periplo.yaml"); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated: configs/periplo.yaml")
		return
	}

	if err := run(context.Background(), "configs/periplo.yaml"); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Secrets live in .env during development; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("Periplo started", "version", version.Version)

	dbConn, err := db.Init(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbConn.Close()
	st := store.NewSQLiteStore(dbConn)

	if err := dbConn.PruneCache(30 * 24 * time.Hour); err != nil {
		slog.Warn("Request cache pruning failed", "error", err)
	}

	tr := tracker.New()
	reqClient := request.New(&cfg.Request, st, tr)

	llmProv, err := initLLM(cfg, tr)
	if err != nil {
		return err
	}
	llmUsable := cfg.LLM.Key != "" || cfg.LLM.Provider == "mock"

	eng, discoverer, enricher, overpassClient, results := buildPipeline(cfg, reqClient, llmProv, llmUsable)

	checks := []startup.Check{
		startup.CacheDirWritable(cfg.Cache.Dir),
		startup.StoreRoundTrip(st),
		startup.OverpassReachable(overpassClient),
	}
	if llmUsable {
		checks = append(checks, startup.LLMHealthy(llmProv))
	}
	if err := startup.Summarize(slog.Default(), startup.Run(ctx, checks)); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	return runServer(ctx, cfg, eng, discoverer, enricher, tr, st, results, llmUsable)
}

// buildPipeline wires the provider clients and the search engine.
func buildPipeline(cfg *config.Config, reqClient *request.Client, llmProv llm.Provider, llmUsable bool) (*engine.Engine, *municipality.Discoverer, *enrich.Enricher, *overpass.Client, *cache.ResultCache) {
	validator := poi.NewValidator()
	extractor := overpass.NewExtractor(validator)

	overpassClient := overpass.NewClient(reqClient, cfg.Search.OverpassURL)
	nominatimClient := nominatim.NewClient(reqClient, cfg.Search.NominatimURL, time.Duration(cfg.Search.ReverseTimeout))
	wpClient := wikipedia.NewClient(reqClient)
	wdClient := wikidata.NewClient(reqClient, cfg.Search.WikidataURL)
	dbpClient := dbpedia.NewClient(reqClient, cfg.Search.DBpediaURL)

	ddg := websearch.NewDDGClient(reqClient, cfg.Marine.SearchURL)
	var extra websearch.Engine
	if cfg.Marine.EnableGoogleCSE {
		g := websearch.NewGoogleCSE(reqClient, cfg.Marine.GoogleCSEEndpoint,
			os.Getenv("GOOGLE_CSE_KEY"), os.Getenv("GOOGLE_CSE_ID"))
		if g != nil {
			extra = g
			slog.Info("Google CSE wreck search enabled")
		} else {
			slog.Warn("Google CSE enabled but GOOGLE_CSE_KEY/GOOGLE_CSE_ID missing")
		}
	}
	var marineExtractor websearch.MarineExtractor
	if cfg.Marine.EnableLLMFilter && llmUsable {
		marineExtractor = enrich.NewMarineExtractor(llmProv, slog.With("component", "extractor"))
		slog.Info("Enhanced-mode LLM extraction enabled")
	}
	wreckSearcher := websearch.NewSearcher(&cfg.Marine, reqClient, ddg, extra,
		marineExtractor, slog.With("component", "websearch"))

	explorer := marine.NewExplorer(nominatimClient, overpassClient, extractor,
		wpClient, wdClient, dbpClient, wreckSearcher,
		cfg.Marine.ExtensionKm.Kilometers(), slog.With("component", "marine"))

	discoverer := municipality.NewDiscoverer(overpassClient, extractor, nominatimClient,
		slog.With("component", "municipality"))

	results := cache.NewResultCache(&cfg.Cache)

	var provForEnrich llm.Provider
	if llmUsable {
		provForEnrich = llmProv
	}
	enricher := enrich.NewEnricher(&cfg.Search, wpClient, wdClient,
		enrich.NewPortalScraper(reqClient, slog.With("component", "portals")),
		provForEnrich, slog.With("component", "enrich"))

	eng := engine.New(&cfg.Search, nominatimClient, overpassClient, extractor,
		wpClient, wdClient, discoverer, explorer, enricher, results,
		slog.With("component", "engine"))

	return eng, discoverer, enricher, overpassClient, results
}

func initLLM(cfg *config.Config, tr *tracker.Tracker) (llm.Provider, error) {
	switch cfg.LLM.Provider {
	case "mock":
		return mock.New(), nil
	case "", "gemini":
		return gemini.NewClient(cfg.LLM, tr)
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", cfg.LLM.Provider)
	}
}

func runServer(ctx context.Context, cfg *config.Config, eng *engine.Engine,
	discoverer *municipality.Discoverer, enricher *enrich.Enricher, tr *tracker.Tracker,
	st *store.SQLiteStore, results *cache.ResultCache, llmUsable bool) error {

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	services := map[string]string{}
	if !llmUsable {
		services["enrichment"] = "degraded"
	}

	srv := api.NewServer(cfg.Server.Address,
		api.NewSearchHandler(eng),
		api.NewMunicipalityHandler(discoverer),
		api.NewPOIHandler(enricher),
		api.NewStatsHandler(tr),
		api.NewCacheHandler(results, st),
		services,
		shutdownFunc,
	)
	srv.Handler = loggingMiddleware(srv.Handler)

	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.RequestLogger.Info("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
