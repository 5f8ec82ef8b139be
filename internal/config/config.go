package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config represents runtime configuration derived from environment variables.
// It is passed explicitly into the orchestrator and router at construction
// time; nothing reads ambient global state at call time.
type Config struct {
	Server      ServerConfig
	Logging     LoggingConfig
	Providers   ProvidersConfig
	Adapters    AdaptersConfig
	Aggregation AggregationConfig
	DatabaseURL string // optional; empty disables inference log persistence
}

// ServerConfig holds HTTP server runtime parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LoggingConfig represents structured logging configuration.
type LoggingConfig struct {
	Level  slog.Level
	Format string
}

// ProviderConfig holds the settings for one language-model backend.
type ProviderConfig struct {
	Enabled bool
	APIKey  string
	Model   string
	// Per-million-token rates used for cost accounting.
	InputRatePerMTok  float64
	OutputRatePerMTok float64
	Timeout           time.Duration
}

// Available reports whether the provider can be routed to.
func (p ProviderConfig) Available() bool {
	return p.Enabled && p.APIKey != ""
}

// ProvidersConfig holds both language-model backends.
type ProvidersConfig struct {
	Reasoning      ProviderConfig
	SearchGrounded ProviderConfig
}

// AdapterConfig holds the settings for one source adapter.
type AdapterConfig struct {
	Enabled bool
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// AdaptersConfig holds all source adapter settings.
type AdaptersConfig struct {
	Ticketing AdapterConfig
	Sports    AdapterConfig
	Curated   AdapterConfig
	Webscrape AdapterConfig
}

// AggregationConfig bounds one aggregation call.
type AggregationConfig struct {
	Deadline   time.Duration // shared deadline for the whole fan-out
	MaxResults int
}

const (
	defaultPort            = "8080"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultShutdownTimeout = 5 * time.Second

	defaultLogFormat = "json"

	defaultReasoningModel      = "claude-sonnet-4-20250514"
	defaultSearchGroundedModel = "gpt-4o-mini-search-preview"
	defaultProviderTimeout     = 60 * time.Second

	// Default per-million-token rates; override per deployment via env.
	defaultReasoningInputRate       = 3.00
	defaultReasoningOutputRate      = 15.00
	defaultSearchGroundedInputRate  = 0.15
	defaultSearchGroundedOutputRate = 0.60

	defaultAdapterTimeout      = 5 * time.Second
	defaultAggregationDeadline = 12 * time.Second
	defaultMaxResults          = 50
)

// Load reads configuration from environment variables, applying defaults when
// values are not provided or invalid.
func Load() (Config, error) {
	// Cloud Run sets PORT, but allow SERVER_PORT override for local dev
	port := getEnv("PORT", "")
	if port == "" {
		port = getEnv("SERVER_PORT", defaultPort)
	}

	cfg := Config{
		Server: ServerConfig{
			Port:            port,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:  slog.LevelInfo,
			Format: defaultLogFormat,
		},
		Providers: ProvidersConfig{
			Reasoning: ProviderConfig{
				Enabled:           getBool("REASONING_PROVIDER_ENABLED", true),
				APIKey:            os.Getenv("ANTHROPIC_API_KEY"),
				Model:             getEnv("REASONING_MODEL", defaultReasoningModel),
				InputRatePerMTok:  defaultReasoningInputRate,
				OutputRatePerMTok: defaultReasoningOutputRate,
				Timeout:           defaultProviderTimeout,
			},
			SearchGrounded: ProviderConfig{
				Enabled:           getBool("SEARCH_PROVIDER_ENABLED", true),
				APIKey:            os.Getenv("OPENAI_API_KEY"),
				Model:             getEnv("SEARCH_GROUNDED_MODEL", defaultSearchGroundedModel),
				InputRatePerMTok:  defaultSearchGroundedInputRate,
				OutputRatePerMTok: defaultSearchGroundedOutputRate,
				Timeout:           defaultProviderTimeout,
			},
		},
		Adapters: AdaptersConfig{
			Ticketing: AdapterConfig{
				Enabled: getBool("TICKETING_ENABLED", true),
				APIKey:  os.Getenv("TICKETING_API_KEY"),
				BaseURL: getEnv("TICKETING_BASE_URL", "https://app.ticketmaster.com"),
				Timeout: defaultAdapterTimeout,
			},
			Sports: AdapterConfig{
				Enabled: getBool("SPORTS_ENABLED", true),
				APIKey:  os.Getenv("SPORTS_API_KEY"),
				BaseURL: getEnv("SPORTS_BASE_URL", "https://api.sportsdata.example.com"),
				Timeout: defaultAdapterTimeout,
			},
			Curated: AdapterConfig{
				Enabled: getBool("CURATED_ENABLED", true),
				APIKey:  os.Getenv("CURATED_API_KEY"),
				BaseURL: getEnv("CURATED_BASE_URL", "https://api.locallistings.example.com"),
				Timeout: defaultAdapterTimeout,
			},
			Webscrape: AdapterConfig{
				Enabled: getBool("WEBSCRAPE_ENABLED", true),
				BaseURL: getEnv("WEBSCRAPE_BASE_URL", "https://events.example.com"),
				Timeout: defaultAdapterTimeout,
			},
		},
		Aggregation: AggregationConfig{
			Deadline:   defaultAggregationDeadline,
			MaxResults: defaultMaxResults,
		},
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}

	if v := os.Getenv("SERVER_READ_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_READ_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ReadTimeout = d
	}

	if v := os.Getenv("SERVER_WRITE_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_WRITE_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.WriteTimeout = d
	}

	if v := os.Getenv("SERVER_SHUTDOWN_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_SHUTDOWN_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ShutdownTimeout = d
	}

	if v := os.Getenv("ADAPTER_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ADAPTER_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Adapters.Ticketing.Timeout = d
		cfg.Adapters.Sports.Timeout = d
		cfg.Adapters.Curated.Timeout = d
		cfg.Adapters.Webscrape.Timeout = d
	}

	if v := os.Getenv("AGGREGATION_DEADLINE_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid AGGREGATION_DEADLINE_SECONDS: %w", err)
		}
		cfg.Aggregation.Deadline = d
	}

	if v := os.Getenv("PROVIDER_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PROVIDER_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Providers.Reasoning.Timeout = d
		cfg.Providers.SearchGrounded.Timeout = d
	}

	if v := os.Getenv("AGGREGATION_MAX_RESULTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid AGGREGATION_MAX_RESULTS: must be a positive integer")
		}
		cfg.Aggregation.MaxResults = n
	}

	if err := loadRate(&cfg.Providers.Reasoning.InputRatePerMTok, "REASONING_INPUT_RATE"); err != nil {
		return Config{}, err
	}
	if err := loadRate(&cfg.Providers.Reasoning.OutputRatePerMTok, "REASONING_OUTPUT_RATE"); err != nil {
		return Config{}, err
	}
	if err := loadRate(&cfg.Providers.SearchGrounded.InputRatePerMTok, "SEARCH_GROUNDED_INPUT_RATE"); err != nil {
		return Config{}, err
	}
	if err := loadRate(&cfg.Providers.SearchGrounded.OutputRatePerMTok, "SEARCH_GROUNDED_OUTPUT_RATE"); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.Logging.Level = level
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		switch v {
		case "json", "text":
			cfg.Logging.Format = v
		default:
			return Config{}, fmt.Errorf("invalid LOG_FORMAT: must be 'json' or 'text'")
		}
	}

	return cfg, nil
}

func loadRate(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	rate, err := strconv.ParseFloat(v, 64)
	if err != nil || rate < 0 {
		return fmt.Errorf("invalid %s: must be a non-negative number", key)
	}
	*dst = rate
	return nil
}

func parseSeconds(raw string) (time.Duration, error) {
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("must be a non-negative integer")
	}
	return time.Duration(seconds) * time.Second, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	switch os.Getenv(key) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return fallback
	}
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("must be one of debug, info, warn, error")
	}
}
