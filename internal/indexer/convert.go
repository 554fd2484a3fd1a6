// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package indexer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var sizePattern = regexp.MustCompile(`(?i)^([0-9]+(?:[.,][0-9]+)?)\s*(B|KB|KIB|MB|MIB|GB|GIB|TB|TIB)?$`)

// ParseSize converts a human-readable size like "1.5 GB" or "700 MiB" to
// bytes. Every unit multiplies by a power of 1024 regardless of the "i"
// spelling, matching how indexer sites actually report sizes. A bare number
// is already bytes; anything unparsable is 0.
func ParseSize(s string) int64 {
	match := sizePattern.FindStringSubmatch(strings.TrimSpace(s))
	if match == nil {
		return 0
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", "."), 64)
	if err != nil {
		return 0
	}

	var shift uint
	switch strings.ToUpper(match[2]) {
	case "", "B":
		shift = 0
	case "KB", "KIB":
		shift = 10
	case "MB", "MIB":
		shift = 20
	case "GB", "GIB":
		shift = 30
	case "TB", "TIB":
		shift = 40
	}

	return int64(value * float64(int64(1)<<shift))
}

// ParseCount parses a seeder/leecher style integer, defaulting to 0 on any
// failure. Thousands separators some sites render are tolerated.
func ParseCount(s string) int {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses an ISO-8601 style timestamp, returning nil when the
// value is absent or unparsable. Extraction never fails on a bad date.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}
