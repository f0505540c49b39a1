package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Request RequestConfig `yaml:"request"`
	Cache   CacheConfig   `yaml:"cache"`
	DB      DBConfig      `yaml:"db"`
	Search  SearchConfig  `yaml:"search"`
	Marine  MarineConfig  `yaml:"marine"`
	LLM     LLMConfig     `yaml:"llm"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// RequestConfig holds HTTP request settings for upstream providers.
type RequestConfig struct {
	Retries int           `yaml:"retries"`
	Timeout Duration      `yaml:"timeout"`
	Backoff BackoffConfig `yaml:"backoff"`
}

// BackoffConfig holds exponential backoff settings.
type BackoffConfig struct {
	BaseDelay Duration `yaml:"base_delay"`
	MaxDelay  Duration `yaml:"max_delay"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	Dir             string   `yaml:"dir"`
	TTL             Duration `yaml:"ttl"`
	ForceInvalidate bool     `yaml:"force_invalidate"`
}

// DBConfig holds settings for the provider response cache database.
type DBConfig struct {
	Path string `yaml:"path"`
}

// SearchConfig holds settings for the search pipeline.
type SearchConfig struct {
	ProviderConcurrency int      `yaml:"provider_concurrency"`
	EnrichConcurrency   int      `yaml:"enrich_concurrency"`
	ExtendedEnrichment  bool     `yaml:"extended_enrichment"`
	OverpassURL         string   `yaml:"overpass_url"`
	WikidataURL         string   `yaml:"wikidata_url"`
	DBpediaURL          string   `yaml:"dbpedia_url"`
	NominatimURL        string   `yaml:"nominatim_url"`
	ReverseTimeout      Duration `yaml:"reverse_timeout"`
}

// MarineConfig holds settings for the marine sub-pipeline.
type MarineConfig struct {
	ExtensionKm       Distance `yaml:"extension_km"`
	MaxSitesPerTown   int      `yaml:"max_sites_per_town"`
	MaxWrecksPerPage  int      `yaml:"max_wrecks_per_page"`
	SearchURL         string   `yaml:"search_url"`
	GoogleCSEEndpoint string   `yaml:"google_cse_endpoint"`
	EnableGoogleCSE   bool     `yaml:"enable_google_cse"`
	EnableLLMFilter   bool     `yaml:"enable_llm_filter"`
	PageFetchTimeout  Duration `yaml:"page_fetch_timeout"`
}

// LLMConfig holds settings for the Large Language Model provider.
type LLMConfig struct {
	Provider string            `yaml:"provider"` // "gemini", "mock"
	Model    string            `yaml:"model"`
	Key      string            `yaml:"key"`
	Profiles map[string]string `yaml:"profiles"` // Map of intent -> model
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address: "localhost:8090",
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
		},
		Request: RequestConfig{
			Retries: 3,
			Timeout: Duration(10 * time.Second),
			Backoff: BackoffConfig{
				BaseDelay: Duration(2 * time.Second),
				MaxDelay:  Duration(30 * time.Second),
			},
		},
		Cache: CacheConfig{
			Dir: "./cache/semantic",
			TTL: Duration(24 * time.Hour),
		},
		DB: DBConfig{
			Path: "./data/periplo.db",
		},
		Search: SearchConfig{
			ProviderConcurrency: 4,
			EnrichConcurrency:   3,
			OverpassURL:         "https://overpass-api.de/api/interpreter",
			WikidataURL:         "https://query.wikidata.org/sparql",
			DBpediaURL:          "https://dbpedia.org/sparql",
			NominatimURL:        "https://nominatim.openstreetmap.org",
			ReverseTimeout:      Duration(3 * time.Second),
		},
		Marine: MarineConfig{
			ExtensionKm:      Distance(5000),
			MaxSitesPerTown:  3,
			MaxWrecksPerPage: 5,
			SearchURL:        "https://html.duckduckgo.com/html/",
			PageFetchTimeout: Duration(10 * time.Second),
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-flash-lite",
			Key:      "",
			Profiles: map[string]string{
				"enrichment": "gemini-2.5-flash-lite",
				"rewrite":    "gemini-2.5-flash",
			},
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT
// save back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		applyEnv(cfg)
		return cfg, nil
	}

	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv loads secrets and switches from the environment when the file
// leaves them empty.
func applyEnv(cfg *Config) {
	if cfg.LLM.Key == "" {
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			cfg.LLM.Key = key
		}
	}
	if os.Getenv("INVALIDATE_CACHE") == "true" {
		cfg.Cache.ForceInvalidate = true
	}
	if os.Getenv("ENABLE_CSE_DIVE_WRECK") == "true" {
		cfg.Marine.EnableGoogleCSE = true
	}
	if os.Getenv("ENABLE_LLM_FILTER") == "true" {
		cfg.Marine.EnableLLMFilter = true
	}
	if os.Getenv("ENABLE_EXTENDED_ENRICHMENT") == "true" {
		cfg.Search.ExtendedEnrichment = true
	}
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Periplo Configuration
# ---------------------
# Supported Units:
#   Duration: ns, us, ms, s, m, h, d (day), w (week)
#   Distance: m (meters), km (kilometers), nm (nautical miles)

`)
	data = append(header, data...)

	// Inject comments for enum fields.
	reProvider := regexp.MustCompile(`(?m)^(\s+)provider:`)
	data = reProvider.ReplaceAll(data, []byte("${1}# Options: gemini, mock\n${1}provider:"))

	reMode := regexp.MustCompile(`(?m)^(\s+)enable_google_cse:`)
	data = reMode.ReplaceAll(data, []byte("${1}# Routes diving-center queries through a Google CSE proxy when true\n${1}enable_google_cse:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return Save(path, DefaultConfig())
}
