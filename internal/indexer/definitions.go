// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package indexer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/autobrr/scour/internal/domain"
)

// LoadDefinitions reads every YAML indexer definition under dir. Malformed
// or invalid files are logged and skipped so one broken definition cannot
// take down the rest of the catalog.
func LoadDefinitions(dir string) ([]*domain.IndexerDefinition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading definitions dir %q", dir)
	}

	definitions := make([]*domain.IndexerDefinition, 0, len(entries))
	seen := make(map[string]string, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yml" && ext != ".yaml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		def, err := loadDefinition(path)
		if err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("Skipping indexer definition")
			continue
		}

		if prev, ok := seen[def.ID]; ok {
			log.Warn().
				Str("id", def.ID).
				Str("file", entry.Name()).
				Str("conflict", prev).
				Msg("Skipping indexer definition with duplicate id")
			continue
		}
		seen[def.ID] = entry.Name()
		definitions = append(definitions, def)
	}

	sort.SliceStable(definitions, func(i, j int) bool {
		return definitions[i].ID < definitions[j].ID
	})

	log.Info().Int("count", len(definitions)).Str("dir", dir).Msg("Loaded indexer definitions")
	return definitions, nil
}

func loadDefinition(path string) (*domain.IndexerDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %q", path)
	}

	var def domain.IndexerDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, errors.Wrapf(err, "parsing %q", path)
	}

	if err := validateDefinition(&def); err != nil {
		return nil, errors.Wrapf(err, "validating %q", path)
	}
	return &def, nil
}

func validateDefinition(def *domain.IndexerDefinition) error {
	if def.ID == "" {
		return errors.New("definition has no id")
	}
	if len(def.Links) == 0 {
		return errors.Errorf("definition %q has no links", def.ID)
	}
	if len(def.Search.Paths) == 0 {
		return errors.Errorf("definition %q has no search paths", def.ID)
	}
	if def.Search.Rows.Selector == "" {
		return errors.Errorf("definition %q has no rows selector", def.ID)
	}
	if _, ok := def.Search.Fields[domain.FieldTitle]; !ok {
		return errors.Errorf("definition %q is missing the title field", def.ID)
	}
	if _, ok := def.Search.Fields[domain.FieldDownload]; !ok {
		return errors.Errorf("definition %q is missing the download field", def.ID)
	}
	if def.Name == "" {
		def.Name = def.ID
	}
	return nil
}
