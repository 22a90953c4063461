package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/vire-backtest/internal/common"
	"github.com/bobmcallan/vire-backtest/internal/models"
)

// Config represents the application configuration.
type Config struct {
	Environment string               `toml:"environment"`
	Server      ServerConfig         `toml:"server"`
	Engine      EngineConfig         `toml:"engine"`
	Workspace   WorkspaceConfig      `toml:"workspace"`
	Logging     common.LoggingConfig `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// EngineConfig locates the remote backtest/scan engine.
type EngineConfig struct {
	URL        string  `toml:"url"`
	Timeout    string  `toml:"timeout"`
	RateLimit  float64 `toml:"rate_limit"`
	CatalogTTL string  `toml:"catalog_ttl"`
}

// GetTimeout parses Timeout, falling back to 60s.
func (c EngineConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 60*time.Second)
}

// GetCatalogTTL parses CatalogTTL, falling back to 10m.
func (c EngineConfig) GetCatalogTTL() time.Duration {
	return parseDuration(c.CatalogTTL, 10*time.Minute)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// WorkspaceConfig holds the editing policy and the initial run parameters.
type WorkspaceConfig struct {
	MaxPortfolios    int     `toml:"max_portfolios"`
	SuggestionLimit  int     `toml:"suggestion_limit"`
	DefaultBenchmark string  `toml:"default_benchmark"`
	InitialAmount    float64 `toml:"initial_amount"`
	Rebalancing      string  `toml:"rebalancing"`
	StartYear        int     `toml:"start_year"`
	Currency         string  `toml:"currency"`
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadDotEnv loads KEY=VALUE files into the process environment. Variables
// already set win. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}
	return nil
}

// applyEnvOverrides applies VIRE_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("VIRE_ENV"); env != "" {
		config.Environment = env
	}
	if port := os.Getenv("VIRE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("VIRE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if url := os.Getenv("VIRE_ENGINE_URL"); url != "" {
		config.Engine.URL = url
	}
	if timeout := os.Getenv("VIRE_ENGINE_TIMEOUT"); timeout != "" {
		config.Engine.Timeout = timeout
	}
	if rl := os.Getenv("VIRE_ENGINE_RATE_LIMIT"); rl != "" {
		if v, err := strconv.ParseFloat(rl, 64); err == nil {
			config.Engine.RateLimit = v
		}
	}
	if mp := os.Getenv("VIRE_MAX_PORTFOLIOS"); mp != "" {
		if v, err := strconv.Atoi(mp); err == nil {
			config.Workspace.MaxPortfolios = v
		}
	}
	if bm := os.Getenv("VIRE_DEFAULT_BENCHMARK"); bm != "" {
		config.Workspace.DefaultBenchmark = bm
	}
	if level := os.Getenv("VIRE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if outputs := os.Getenv("VIRE_LOG_OUTPUTS"); outputs != "" {
		config.Logging.Outputs = splitList(outputs)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host, engineURL string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
	if engineURL != "" {
		config.Engine.URL = engineURL
	}
}

// IsProduction reports whether the environment is production.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "prod" || env == "production"
}

// Validate returns a list of human-readable configuration problems.
func (c *Config) Validate() []string {
	var issues []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	if !strings.HasPrefix(c.Engine.URL, "http://") && !strings.HasPrefix(c.Engine.URL, "https://") {
		issues = append(issues, fmt.Sprintf("engine.url %q must be an http(s) URL", c.Engine.URL))
	}
	if c.Engine.RateLimit < 0 {
		issues = append(issues, "engine.rate_limit must not be negative")
	}
	if c.Workspace.MaxPortfolios < 1 {
		issues = append(issues, "workspace.max_portfolios must be at least 1")
	}
	if c.Workspace.SuggestionLimit < 1 {
		issues = append(issues, "workspace.suggestion_limit must be at least 1")
	}
	if c.Workspace.InitialAmount <= 0 {
		issues = append(issues, "workspace.initial_amount must be positive")
	}
	if !models.RebalancingPeriod(c.Workspace.Rebalancing).Valid() {
		issues = append(issues, fmt.Sprintf("workspace.rebalancing %q is not one of never, annually, quarterly, monthly", c.Workspace.Rebalancing))
	}
	if c.Workspace.StartYear < models.MinYear {
		issues = append(issues, fmt.Sprintf("workspace.start_year must be %d or later", models.MinYear))
	}
	return issues
}
