// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/scour/internal/database"
	"github.com/autobrr/scour/internal/domain"
)

func newTestStore(t *testing.T, ttl time.Duration) *SearchCacheStore {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewSearchCacheStore(db, ttl)
}

func sampleResults() []domain.SearchResult {
	return []domain.SearchResult{
		{
			Title:       "Some.Movie.2023.1080p.WEB-DL",
			DownloadURL: "https://x.example/t/1",
			Size:        1610612736,
			Seeders:     42,
			Indexer:     "example",
			Quality:     domain.QualityInfo{Resolution: "1080p", Source: "WEB-DL"},
		},
	}
}

func TestSearchCacheStoreRoundTrip(t *testing.T) {
	store := newTestStore(t, time.Minute)
	ctx := context.Background()

	store.Store(ctx, "key1", sampleResults())

	got, ok := store.Fetch(ctx, "key1")
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "Some.Movie.2023.1080p.WEB-DL", got[0].Title)
	assert.Equal(t, 42, got[0].Seeders)
	assert.Equal(t, "1080p", got[0].Quality.Resolution)
}

func TestSearchCacheStoreMiss(t *testing.T) {
	store := newTestStore(t, time.Minute)

	_, ok := store.Fetch(context.Background(), "absent")
	assert.False(t, ok)
}

func TestSearchCacheStoreOverwrite(t *testing.T) {
	store := newTestStore(t, time.Minute)
	ctx := context.Background()

	store.Store(ctx, "key1", sampleResults())

	updated := sampleResults()
	updated[0].Seeders = 99
	store.Store(ctx, "key1", updated)

	got, ok := store.Fetch(ctx, "key1")
	require.True(t, ok)
	assert.Equal(t, 99, got[0].Seeders)
}

func TestSearchCacheStoreExpiry(t *testing.T) {
	store := newTestStore(t, time.Millisecond)
	ctx := context.Background()

	store.Store(ctx, "short", sampleResults())
	time.Sleep(10 * time.Millisecond)

	_, ok := store.Fetch(ctx, "short")
	assert.False(t, ok)
}

func TestSearchCacheStoreCleanupExpired(t *testing.T) {
	store := newTestStore(t, time.Millisecond)
	ctx := context.Background()

	store.Store(ctx, "a", sampleResults())
	store.Store(ctx, "b", sampleResults())
	time.Sleep(10 * time.Millisecond)

	deleted, err := store.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestSearchCacheStoreFlushAndStats(t *testing.T) {
	store := newTestStore(t, time.Minute)
	ctx := context.Background()

	store.Store(ctx, "a", sampleResults())
	store.Store(ctx, "b", sampleResults())

	store.Fetch(ctx, "a")

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Entries)
	assert.GreaterOrEqual(t, stats.TotalHits, int64(1))
	assert.Greater(t, stats.ApproxSizeBytes, int64(0))

	deleted, err := store.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Entries)
}

func TestSearchCacheStoreEmptyKey(t *testing.T) {
	store := newTestStore(t, time.Minute)
	ctx := context.Background()

	store.Store(ctx, "", sampleResults())
	_, ok := store.Fetch(ctx, "")
	assert.False(t, ok)
}
