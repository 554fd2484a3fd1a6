// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package search

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/anacrolix/torrent/metainfo"

	"github.com/autobrr/scour/internal/domain"
)

// sizeBucket groups near-identical sizes so differently reported sizes of
// the same release still collide. 100 MB buckets, rounded to nearest.
const sizeBucket = 100 << 20

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// DedupKey returns the identity key used to collapse duplicate results.
// Magnet links dedup by info-hash, which survives renamed uploads across
// indexers. Everything else falls back to normalized title plus a coarse
// size bucket.
func DedupKey(result domain.SearchResult) string {
	if strings.HasPrefix(strings.ToLower(result.DownloadURL), "magnet:") {
		if magnet, err := metainfo.ParseMagnetUri(result.DownloadURL); err == nil {
			return "hash:" + strings.ToLower(magnet.InfoHash.HexString())
		}
	}

	title := nonAlphanumeric.ReplaceAllString(strings.ToLower(result.Title), " ")
	title = strings.TrimSpace(title)
	bucket := (result.Size + sizeBucket/2) / sizeBucket
	return fmt.Sprintf("%s|%d", title, bucket)
}

// Deduplicate collapses duplicates while preserving first-occurrence order.
// When two results collide, the one with strictly more seeders survives;
// on a tie the earlier result is kept.
func Deduplicate(results []domain.SearchResult) []domain.SearchResult {
	if len(results) < 2 {
		return results
	}

	position := make(map[string]int, len(results))
	deduped := make([]domain.SearchResult, 0, len(results))

	for _, result := range results {
		key := DedupKey(result)
		if idx, ok := position[key]; ok {
			if result.Seeders > deduped[idx].Seeders {
				deduped[idx] = result
			}
			continue
		}
		position[key] = len(deduped)
		deduped = append(deduped, result)
	}
	return deduped
}
