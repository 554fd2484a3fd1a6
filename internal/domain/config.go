// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

// Config is the application configuration, loaded by internal/config.
type Config struct {
	LogLevel      string `mapstructure:"logLevel"`
	LogPath       string `mapstructure:"logPath"`
	LogMaxSize    int    `mapstructure:"logMaxSize"`
	LogMaxBackups int    `mapstructure:"logMaxBackups"`

	DataDir        string `mapstructure:"dataDir"`
	DefinitionsDir string `mapstructure:"definitionsDir"`

	// MaxConcurrentSearches bounds the indexer fan-out worker pool
	MaxConcurrentSearches int `mapstructure:"maxConcurrentSearches"`
	// SearchTimeout is the overall budget for one aggregated search, seconds
	SearchTimeout int `mapstructure:"searchTimeout"`
	// IndexerTimeout bounds a single indexer call, seconds
	IndexerTimeout int `mapstructure:"indexerTimeout"`

	CacheEnabled    bool `mapstructure:"cacheEnabled"`
	CacheTTLMinutes int  `mapstructure:"cacheTTLMinutes"`

	MetricsEnabled bool   `mapstructure:"metricsEnabled"`
	MetricsHost    string `mapstructure:"metricsHost"`
	MetricsPort    int    `mapstructure:"metricsPort"`

	Version string
}
