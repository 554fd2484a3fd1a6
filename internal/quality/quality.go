// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package quality derives normalized quality attributes from free-text
// release titles. Parsing is delegated to moistari/rls; this package maps
// its output onto the small vocabulary the ranking code understands.
package quality

import (
	"regexp"
	"strings"
	"sync"

	"github.com/moistari/rls"

	"github.com/autobrr/scour/internal/domain"
)

var (
	properPattern = regexp.MustCompile(`(?i)\bPROPER\b`)
	repackPattern = regexp.MustCompile(`(?i)\bREPACK\b`)
	remuxPattern  = regexp.MustCompile(`(?i)\bREMUX\b`)
	uhdPattern    = regexp.MustCompile(`(?i)\b(4k|uhd)\b`)
)

// hdrFormats in order of specificity; the first one present wins.
var hdrFormats = []struct {
	tag        string
	normalized string
}{
	{"DV", "DolbyVision"},
	{"DOLBYVISION", "DolbyVision"},
	{"HDR10+", "HDR10+"},
	{"HDR10PLUS", "HDR10+"},
	{"HDR10", "HDR10"},
	{"HDR", "HDR"},
}

const parseCacheLimit = 2048

var (
	parseCacheMu sync.Mutex
	parseCache   = make(map[string]domain.QualityInfo, parseCacheLimit)
)

// Extract parses quality attributes out of a release title. Every field is
// attempted independently; a title with no quality signal at all yields the
// zero QualityInfo, never an error.
func Extract(title string) domain.QualityInfo {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.QualityInfo{}
	}

	parseCacheMu.Lock()
	if cached, ok := parseCache[title]; ok {
		parseCacheMu.Unlock()
		return cached
	}
	parseCacheMu.Unlock()

	info := extract(title)

	parseCacheMu.Lock()
	if len(parseCache) >= parseCacheLimit {
		parseCache = make(map[string]domain.QualityInfo, parseCacheLimit)
	}
	parseCache[title] = info
	parseCacheMu.Unlock()

	return info
}

func extract(title string) domain.QualityInfo {
	release := rls.ParseString(title)

	info := domain.QualityInfo{
		Resolution: release.Resolution,
		Source:     release.Source,
		Proper:     properPattern.MatchString(title),
		Repack:     repackPattern.MatchString(title),
	}

	if info.Resolution == "" && uhdPattern.MatchString(title) {
		info.Resolution = "2160p"
	}

	// A remux is its own source tier, above the disc it was lifted from.
	if remuxPattern.MatchString(title) {
		info.Source = "REMUX"
	}

	if len(release.Codec) > 0 {
		info.Codec = release.Codec[0]
	}

	info.HDR = normalizeHDR(release.HDR)
	info.Audio = normalizeAudio(release.Audio, release.Channels)

	return info
}

func normalizeHDR(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	for _, format := range hdrFormats {
		for _, tag := range tags {
			if strings.EqualFold(tag, format.tag) {
				return format.normalized
			}
		}
	}
	return tags[0]
}

func normalizeAudio(tags []string, channels string) string {
	if len(tags) == 0 {
		return ""
	}
	audio := tags[0]
	if channels != "" {
		audio += " " + channels
	}
	return audio
}
