// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// RawInputPrefix marks a search input value that must be substituted
// without URL escaping. The prefix itself is stripped before resolution.
const RawInputPrefix = "raw:"

// Well-known field names within a search spec. Title and download are
// required; a row missing either never becomes a result.
const (
	FieldTitle    = "title"
	FieldDownload = "download"
	FieldSize     = "size"
	FieldSeeders  = "seeders"
	FieldLeechers = "leechers"
	FieldCategory = "category"
	FieldDate     = "date"
)

// IndexerDefinition is the declarative description of one third-party
// search site: where it lives, what it can search, and how to turn a query
// into a request plus a response into rows. Definitions are loaded from
// YAML and treated as immutable after load.
type IndexerDefinition struct {
	ID       string       `yaml:"id"`
	Name     string       `yaml:"name"`
	Links    []string     `yaml:"links"`
	Priority int          `yaml:"priority"`
	Enabled  bool         `yaml:"enabled"`
	Caps     Capabilities `yaml:"caps"`
	Search   SearchSpec   `yaml:"search"`
}

// Capabilities declares what the site can serve.
type Capabilities struct {
	Categories []int    `yaml:"categories"`
	Modes      []string `yaml:"modes"`
}

// SearchSpec describes how to build a search request and how to pull
// structured rows out of the response body.
type SearchSpec struct {
	Paths              []SearchPath         `yaml:"paths"`
	Inputs             map[string]string    `yaml:"inputs"`
	Headers            map[string]string    `yaml:"headers"`
	Rows               RowsSpec             `yaml:"rows"`
	Fields             map[string]FieldSpec `yaml:"fields"`
	MinRequestInterval Duration             `yaml:"min_request_interval"`
	FollowRedirects    bool                 `yaml:"follow_redirects"`
}

// SearchPath is one candidate request path. An empty Categories list means
// the path serves any category.
type SearchPath struct {
	Path       string `yaml:"path"`
	Method     string `yaml:"method"`
	Categories []int  `yaml:"categories"`
}

// RowsSpec locates the repeating result elements. A selector starting with
// "$." is a JSON path; anything else is a CSS selector. Skip discards that
// many leading matches (table headers).
type RowsSpec struct {
	Selector string `yaml:"selector"`
	Skip     int    `yaml:"skip"`
}

// FieldSpec locates one value within a row. If Attribute is set the named
// HTML attribute is extracted instead of text content.
type FieldSpec struct {
	Selector  string   `yaml:"selector"`
	Attribute string   `yaml:"attribute"`
	Filters   []Filter `yaml:"filters"`
}

// Filter is a pure text transform applied to an extracted field value.
type Filter struct {
	Name string   `yaml:"name"`
	Args []string `yaml:"args"`
}

// Duration wraps time.Duration so definitions can write intervals either as
// Go duration strings ("10s") or plain seconds.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw == "" {
		*d = 0
		return nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}
