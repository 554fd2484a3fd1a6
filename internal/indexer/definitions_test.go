// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package indexer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDefinition = `
id: example
name: Example
links:
  - https://example.org/
priority: 5
enabled: true
caps:
  categories: [2000, 5000]
  modes: [search]
search:
  paths:
    - path: search/{{ .Keywords }}
  inputs:
    cat: "{{ .Categories }}"
  rows:
    selector: "table.results tr"
    skip: 1
  fields:
    title:
      selector: "td.name a"
    download:
      selector: "td.name a"
      attribute: href
  min_request_interval: 2s
`

func writeDefinition(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadDefinitions(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "example.yml", validDefinition)

	defs, err := LoadDefinitions(dir)
	require.NoError(t, err)
	require.Len(t, defs, 1)

	def := defs[0]
	assert.Equal(t, "example", def.ID)
	assert.Equal(t, "Example", def.Name)
	assert.Equal(t, 5, def.Priority)
	assert.True(t, def.Enabled)
	assert.Equal(t, []int{2000, 5000}, def.Caps.Categories)
	assert.Equal(t, 1, def.Search.Rows.Skip)
	assert.Equal(t, "href", def.Search.Fields["download"].Attribute)
	assert.Equal(t, float64(2), def.Search.MinRequestInterval.Duration().Seconds())
}

func TestLoadDefinitionsSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "good.yml", validDefinition)
	writeDefinition(t, dir, "broken.yml", "id: [unclosed")
	writeDefinition(t, dir, "incomplete.yml", "id: nolinks\nname: No Links")
	writeDefinition(t, dir, "ignored.txt", "not yaml at all")

	defs, err := LoadDefinitions(dir)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "example", defs[0].ID)
}

func TestLoadDefinitionsDuplicateID(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "a.yml", validDefinition)
	writeDefinition(t, dir, "b.yml", validDefinition)

	defs, err := LoadDefinitions(dir)
	require.NoError(t, err)
	assert.Len(t, defs, 1)
}

func TestLoadDefinitionsMissingDir(t *testing.T) {
	_, err := LoadDefinitions(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadDefinitionsNameDefaultsToID(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "noname.yml", `
id: noname
links: ["https://x.example/"]
search:
  paths:
    - path: search
  rows:
    selector: "tr"
  fields:
    title:
      selector: "a"
    download:
      selector: "a"
      attribute: href
`)

	defs, err := LoadDefinitions(dir)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "noname", defs[0].Name)
}
