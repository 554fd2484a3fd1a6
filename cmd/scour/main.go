// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/autobrr/scour/internal/buildinfo"
	"github.com/autobrr/scour/internal/config"
	"github.com/autobrr/scour/internal/database"
	"github.com/autobrr/scour/internal/domain"
	"github.com/autobrr/scour/internal/indexer"
	"github.com/autobrr/scour/internal/models"
	"github.com/autobrr/scour/internal/search"
)

func main() {
	config.InitDefaultLogger(buildinfo.Version)

	var rootCmd = &cobra.Command{
		Use:   "scour",
		Short: "Definition-driven torrent indexer search aggregator",
		Long: `scour - Search many torrent indexers at once using YAML site
definitions, with deduplication and quality-aware ranking.`,
	}

	rootCmd.Version = buildinfo.Version

	rootCmd.AddCommand(RunSearchCommand())
	rootCmd.AddCommand(RunVersionCommand(buildinfo.Version))
	rootCmd.AddCommand(RunGenerateConfigCommand())
	rootCmd.AddCommand(RunListIndexersCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func RunSearchCommand() *cobra.Command {
	var (
		configDir  string
		dataDir    string
		categories []int
		minSeeders int
		maxResults int
		noDedup    bool
		jsonOut    bool
	)

	command := &cobra.Command{
		Use:   "search <keywords>",
		Short: "Search all enabled indexers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New(configDir, buildinfo.Version)
			if err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}
			if dataDir != "" {
				cfg.SetDataDir(dataDir)
			}
			cfg.ApplyLogConfig()

			definitions, err := indexer.LoadDefinitions(cfg.GetDefinitionsDir())
			if err != nil {
				return fmt.Errorf("failed to load indexer definitions: %w", err)
			}
			if len(definitions) == 0 {
				return fmt.Errorf("no indexer definitions found in %s", cfg.GetDefinitionsDir())
			}

			opts := []search.Option{
				search.WithMaxConcurrent(cfg.Config.MaxConcurrentSearches),
				search.WithIndexerTimeout(time.Duration(cfg.Config.IndexerTimeout) * time.Second),
			}

			if cfg.Config.CacheEnabled {
				db, err := database.Open(cfg.GetDatabasePath())
				if err != nil {
					return fmt.Errorf("failed to initialize database: %w", err)
				}
				defer db.Close()

				ttl := time.Duration(cfg.Config.CacheTTLMinutes) * time.Minute
				opts = append(opts, search.WithCache(models.NewSearchCacheStore(db, ttl)))
			}

			if cfg.Config.MetricsEnabled {
				opts = append(opts, search.WithMetrics(search.NewMetrics()))
				go func() {
					addr := fmt.Sprintf("%s:%d", cfg.Config.MetricsHost, cfg.Config.MetricsPort)
					log.Info().Str("addr", addr).Msg("Starting metrics server")
					if err := http.ListenAndServe(addr, promhttp.Handler()); err != nil {
						log.Error().Err(err).Msg("Metrics server failed")
					}
				}()
			}

			transport := indexer.NewHTTPTransport(time.Duration(cfg.Config.IndexerTimeout) * time.Second)
			service := search.NewService(transport, opts...)

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Config.SearchTimeout)*time.Second)
			defer cancel()

			query := domain.SearchQuery{
				Keywords:     strings.Join(args, " "),
				Categories:   categories,
				MinSeeders:   minSeeders,
				MaxResults:   maxResults,
				DisableDedup: noDedup,
			}

			results := service.SearchAll(ctx, definitions, query)

			if jsonOut {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(results)
			}

			printResults(cmd, results)
			return nil
		},
	}

	command.Flags().StringVar(&configDir, "config-dir", "", "config directory path (default is OS-specific: ~/.config/scour/ or %APPDATA%\\scour\\)")
	command.Flags().StringVar(&dataDir, "data-dir", "", "data directory for database and other files (default is next to config file)")
	command.Flags().IntSliceVar(&categories, "categories", nil, "restrict the search to these category ids")
	command.Flags().IntVar(&minSeeders, "min-seeders", 0, "drop results with fewer seeders")
	command.Flags().IntVar(&maxResults, "max-results", 0, "cap the number of results returned (0 = unlimited)")
	command.Flags().BoolVar(&noDedup, "no-dedup", false, "keep duplicate results from different indexers")
	command.Flags().BoolVar(&jsonOut, "json", false, "print results as JSON")

	return command
}

func printResults(cmd *cobra.Command, results []domain.SearchResult) {
	if len(results) == 0 {
		cmd.Println("No results.")
		return
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tSIZE\tSEEDERS\tQUALITY\tINDEXER")
	for _, result := range results {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			result.Title,
			humanize.IBytes(uint64(result.Size)),
			result.Seeders,
			formatQuality(result.Quality),
			result.Indexer,
		)
	}
	w.Flush()
}

func formatQuality(quality domain.QualityInfo) string {
	parts := make([]string, 0, 4)
	if quality.Resolution != "" {
		parts = append(parts, quality.Resolution)
	}
	if quality.Source != "" {
		parts = append(parts, quality.Source)
	}
	if quality.HDR != "" {
		parts = append(parts, quality.HDR)
	}
	if quality.Proper {
		parts = append(parts, "PROPER")
	}
	if quality.Repack {
		parts = append(parts, "REPACK")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func RunVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of scour",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}

func RunGenerateConfigCommand() *cobra.Command {
	var configDir string

	command := &cobra.Command{
		Use:   "generate-config",
		Short: "Generate a default configuration file",
		Long: `Generate a default configuration file without running a search.

If no --config-dir is specified, uses the OS-specific default location:
- Linux/macOS: ~/.config/scour/config.toml
- Windows: %APPDATA%\scour\config.toml

You can specify either a directory path or a direct file path:
- Directory: scour generate-config --config-dir /path/to/config/
- File: scour generate-config --config-dir /path/to/myconfig.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var configPath string
			if configDir != "" {
				if strings.HasSuffix(strings.ToLower(configDir), ".toml") {
					configPath = configDir
				} else if info, err := os.Stat(configDir); err == nil && !info.IsDir() {
					configPath = configDir
				} else {
					configPath = filepath.Join(configDir, "config.toml")
				}
			} else {
				configPath = filepath.Join(config.GetDefaultConfigDir(), "config.toml")
			}

			if _, err := os.Stat(configPath); err == nil {
				cmd.Printf("Configuration file already exists at: %s\n", configPath)
				cmd.Println("Skipping generation to avoid overwriting existing configuration.")
				return nil
			}

			if err := config.WriteDefaultConfig(configPath); err != nil {
				return fmt.Errorf("failed to create configuration file: %w", err)
			}

			cmd.Printf("Configuration file created successfully at: %s\n", configPath)
			return nil
		},
	}

	command.Flags().StringVar(&configDir, "config-dir", "",
		"config directory or file path (defaults to OS-specific location)")

	return command
}

func RunListIndexersCommand() *cobra.Command {
	var configDir string

	command := &cobra.Command{
		Use:   "indexers",
		Short: "List the loaded indexer definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New(configDir, buildinfo.Version)
			if err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			definitions, err := indexer.LoadDefinitions(cfg.GetDefinitionsDir())
			if err != nil {
				return fmt.Errorf("failed to load indexer definitions: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPRIORITY\tENABLED\tLINK")
			for _, def := range definitions {
				link := ""
				if len(def.Links) > 0 {
					link = def.Links[0]
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%t\t%s\n", def.ID, def.Name, def.Priority, def.Enabled, link)
			}
			return w.Flush()
		},
	}

	command.Flags().StringVar(&configDir, "config-dir", "",
		"config directory or file path (defaults to OS-specific location)")

	return command
}
