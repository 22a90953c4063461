package config

import "github.com/bobmcallan/vire-backtest/internal/common"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "dev",
		Server: ServerConfig{
			Port: 4251,
			Host: "localhost",
		},
		Engine: EngineConfig{
			URL:        "http://localhost:5000",
			Timeout:    "60s",
			RateLimit:  5,
			CatalogTTL: "10m",
		},
		Workspace: WorkspaceConfig{
			MaxPortfolios:    5,
			SuggestionLimit:  10,
			DefaultBenchmark: "SPY",
			InitialAmount:    10000,
			Rebalancing:      "annually",
			StartYear:        2015,
			Currency:         "USD",
		},
		Logging: common.LoggingConfig{
			Level:   "info",
			Outputs: []string{"console"},
		},
	}
}
