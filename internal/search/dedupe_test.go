// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/scour/internal/domain"
)

const (
	infoHashLower = "magnet:?xt=urn:btih:c12fe1c06bba254a9dc9f519b335aa7c1367a88a&dn=a"
	infoHashUpper = "magnet:?xt=urn:btih:C12FE1C06BBA254A9DC9F519B335AA7C1367A88A&dn=b"
	otherHash     = "magnet:?xt=urn:btih:aaaabbbbccccddddeeeeffff0000111122223333"
)

func TestDedupKeyMagnetCaseInsensitive(t *testing.T) {
	a := domain.SearchResult{Title: "Name One", DownloadURL: infoHashLower, Size: 100}
	b := domain.SearchResult{Title: "Totally Different", DownloadURL: infoHashUpper, Size: 999999}

	// Same info-hash collides regardless of case or differing title and size.
	assert.Equal(t, DedupKey(a), DedupKey(b))
}

func TestDedupKeyTitleAndSizeBucket(t *testing.T) {
	base := domain.SearchResult{
		Title:       "Some.Movie.2023.1080p",
		DownloadURL: "https://x.example/t/1",
		Size:        1610612736,
	}
	sameish := domain.SearchResult{
		Title:       "some movie 2023 1080P",
		DownloadURL: "https://y.example/t/2",
		Size:        base.Size + 20<<20,
	}
	differentSize := domain.SearchResult{
		Title:       base.Title,
		DownloadURL: "https://z.example/t/3",
		Size:        base.Size + 500<<20,
	}

	assert.Equal(t, DedupKey(base), DedupKey(sameish))
	assert.NotEqual(t, DedupKey(base), DedupKey(differentSize))
}

func TestDeduplicateKeepsHighestSeeders(t *testing.T) {
	results := []domain.SearchResult{
		{Title: "A", DownloadURL: infoHashLower, Seeders: 10, Indexer: "one"},
		{Title: "B", DownloadURL: otherHash, Seeders: 3, Indexer: "one"},
		{Title: "C", DownloadURL: infoHashUpper, Seeders: 50, Indexer: "two"},
	}

	deduped := Deduplicate(results)
	require.Len(t, deduped, 2)

	// The winner replaces the loser in place, preserving first-seen order.
	assert.Equal(t, "C", deduped[0].Title)
	assert.Equal(t, 50, deduped[0].Seeders)
	assert.Equal(t, "B", deduped[1].Title)
}

func TestDeduplicateTieKeepsFirst(t *testing.T) {
	results := []domain.SearchResult{
		{Title: "First", DownloadURL: infoHashLower, Seeders: 10, Indexer: "high-priority"},
		{Title: "Second", DownloadURL: infoHashUpper, Seeders: 10, Indexer: "low-priority"},
	}

	deduped := Deduplicate(results)
	require.Len(t, deduped, 1)
	assert.Equal(t, "First", deduped[0].Title)
	assert.Equal(t, "high-priority", deduped[0].Indexer)
}

func TestDeduplicateNoCollisions(t *testing.T) {
	results := []domain.SearchResult{
		{Title: "One", DownloadURL: "https://a.example/1", Size: 1 << 30},
		{Title: "Two", DownloadURL: "https://a.example/2", Size: 2 << 30},
	}

	assert.Len(t, Deduplicate(results), 2)
}

func TestDeduplicateShortInput(t *testing.T) {
	assert.Empty(t, Deduplicate(nil))

	one := []domain.SearchResult{{Title: "only", DownloadURL: "x"}}
	assert.Len(t, Deduplicate(one), 1)
}
