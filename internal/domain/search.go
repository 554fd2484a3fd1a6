// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"time"
)

// SearchQuery is the caller's request, fanned out to every enabled indexer.
type SearchQuery struct {
	// Keywords is the free-text search term
	Keywords string `json:"keywords"`
	// Categories restricts the search to these category IDs (optional)
	Categories []int `json:"categories,omitempty"`
	// Extra holds named parameters (season, episode, ...) referenced by
	// definitions as {{ .Query.<Name> }}
	Extra map[string]string `json:"extra,omitempty"`
	// MinSeeders drops results below this seeder count (0 = no minimum)
	MinSeeders int `json:"min_seeders,omitempty"`
	// MaxResults truncates the ranked list (0 = unlimited)
	MaxResults int `json:"max_results,omitempty"`
	// DisableDedup turns off cross-indexer deduplication; the zero value
	// keeps dedup on by default
	DisableDedup bool `json:"disable_dedup,omitempty"`
}

// SearchResult is a single release offered by one indexer. It is a value
// object: built once by the extractor and never mutated afterwards, so it
// is safe to share across aggregation goroutines.
type SearchResult struct {
	// Title of the release
	Title string `json:"title"`
	// DownloadURL is the magnet URI or direct link a download client consumes
	DownloadURL string `json:"download_url"`
	// Size in bytes (0 if unknown)
	Size int64 `json:"size"`
	// Seeders count
	Seeders int `json:"seeders"`
	// Leechers count
	Leechers int `json:"leechers"`
	// Indexer is the source indexer's name
	Indexer string `json:"indexer"`
	// Category ID reported by the indexer
	Category int `json:"category,omitempty"`
	// PublishDate is nil when the site did not expose a parseable date
	PublishDate *time.Time `json:"publish_date,omitempty"`
	// Quality parsed from the release title
	Quality QualityInfo `json:"quality"`
}

// QualityInfo holds the quality attributes parsed from a release title.
// Fields are independent; any of them may be empty when the title carries
// no signal for it.
type QualityInfo struct {
	// Resolution like "1080p" or "2160p"
	Resolution string `json:"resolution,omitempty"`
	// Source like "BluRay", "WEB-DL", "HDTV", "REMUX"
	Source string `json:"source,omitempty"`
	// Codec like "x265" or "AV1"
	Codec string `json:"codec,omitempty"`
	// Audio codec and channel tag like "DDP 5.1" or "TrueHD"
	Audio string `json:"audio,omitempty"`
	// HDR format like "HDR10+" or "DolbyVision"
	HDR string `json:"hdr,omitempty"`
	// Proper release flag
	Proper bool `json:"proper,omitempty"`
	// Repack release flag
	Repack bool `json:"repack,omitempty"`
}
