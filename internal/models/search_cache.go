// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package models contains the persistence layer.
package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/scour/internal/dbinterface"
	"github.com/autobrr/scour/internal/domain"
)

// SearchCacheEntry captures a cached aggregate search response.
type SearchCacheEntry struct {
	ID           int64
	CacheKey     string
	ResponseData []byte
	TotalResults int
	CachedAt     time.Time
	LastUsedAt   time.Time
	ExpiresAt    time.Time
	HitCount     int64
}

// SearchCacheStats provides aggregated cache metrics for observability.
type SearchCacheStats struct {
	Entries         int64      `json:"entries"`
	TotalHits       int64      `json:"totalHits"`
	ApproxSizeBytes int64      `json:"approxSizeBytes"`
	OldestCachedAt  *time.Time `json:"oldestCachedAt,omitempty"`
	NewestCachedAt  *time.Time `json:"newestCachedAt,omitempty"`
	LastUsedAt      *time.Time `json:"lastUsedAt,omitempty"`
}

// SearchCacheStore persists search cache entries.
type SearchCacheStore struct {
	db  dbinterface.Querier
	ttl time.Duration
}

// NewSearchCacheStore constructs a cache store with the given entry TTL.
func NewSearchCacheStore(db dbinterface.Querier, ttl time.Duration) *SearchCacheStore {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SearchCacheStore{db: db, ttl: ttl}
}

// Fetch returns cached results by cache key. Expired entries are deleted
// on read; hits bump last_used_at and hit_count.
func (s *SearchCacheStore) Fetch(ctx context.Context, cacheKey string) ([]domain.SearchResult, bool) {
	if strings.TrimSpace(cacheKey) == "" {
		return nil, false
	}

	const fetchQuery = `
		SELECT id, response_data, expires_at
		FROM search_cache
		WHERE cache_key = ?
	`

	var (
		id        int64
		response  []byte
		expiresAt time.Time
	)

	err := s.db.QueryRowContext(ctx, fetchQuery, cacheKey).Scan(&id, &response, &expiresAt)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Error().Err(err).Str("key", cacheKey).Msg("Search cache fetch failed")
		}
		return nil, false
	}

	if time.Now().UTC().After(expiresAt) {
		s.deleteEntry(ctx, id)
		return nil, false
	}

	var results []domain.SearchResult
	if err := json.Unmarshal(response, &results); err != nil {
		log.Error().Err(err).Str("key", cacheKey).Msg("Search cache entry is corrupt, dropping")
		s.deleteEntry(ctx, id)
		return nil, false
	}

	s.touchEntry(ctx, id)
	return results, true
}

// Store inserts or replaces the cached results for a cache key.
func (s *SearchCacheStore) Store(ctx context.Context, cacheKey string, results []domain.SearchResult) {
	if strings.TrimSpace(cacheKey) == "" {
		return
	}

	response, err := json.Marshal(results)
	if err != nil {
		log.Error().Err(err).Str("key", cacheKey).Msg("Search cache encode failed")
		return
	}

	now := time.Now().UTC()
	const query = `
		INSERT INTO search_cache (
			cache_key, response_data, total_results, cached_at, last_used_at, expires_at, hit_count
		) VALUES (?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(cache_key) DO UPDATE SET
			response_data = excluded.response_data,
			total_results = excluded.total_results,
			cached_at = excluded.cached_at,
			last_used_at = excluded.last_used_at,
			expires_at = excluded.expires_at
	`

	if _, err := s.db.ExecContext(
		ctx,
		query,
		cacheKey,
		response,
		len(results),
		now,
		now,
		now.Add(s.ttl),
	); err != nil {
		log.Error().Err(err).Str("key", cacheKey).Msg("Search cache store failed")
	}
}

// CleanupExpired removes all expired cache rows.
func (s *SearchCacheStore) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM search_cache WHERE expires_at <= CURRENT_TIMESTAMP`)
	if err != nil {
		return 0, fmt.Errorf("cleanup search cache: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cleanup search cache rows affected: %w", err)
	}
	return deleted, nil
}

// Flush removes every cache entry.
func (s *SearchCacheStore) Flush(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM search_cache`)
	if err != nil {
		return 0, fmt.Errorf("flush search cache: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("flush search cache rows affected: %w", err)
	}
	return deleted, nil
}

// Stats returns summary metrics for the search cache table.
func (s *SearchCacheStore) Stats(ctx context.Context) (*SearchCacheStats, error) {
	const query = `
		SELECT
			COUNT(*) AS entries,
			COALESCE(SUM(hit_count), 0) AS total_hits,
			COALESCE(SUM(LENGTH(response_data)), 0) AS approx_size,
			MIN(cached_at) AS oldest_cached,
			MAX(cached_at) AS newest_cached,
			MAX(last_used_at) AS last_used
		FROM search_cache
	`

	var (
		entries      int64
		totalHits    int64
		sizeBytes    int64
		oldestCached sql.NullTime
		newestCached sql.NullTime
		lastUsed     sql.NullTime
	)

	err := s.db.QueryRowContext(ctx, query).Scan(
		&entries,
		&totalHits,
		&sizeBytes,
		&oldestCached,
		&newestCached,
		&lastUsed,
	)
	if err != nil {
		return nil, fmt.Errorf("search cache stats: %w", err)
	}

	stats := &SearchCacheStats{
		Entries:         entries,
		TotalHits:       totalHits,
		ApproxSizeBytes: sizeBytes,
	}
	if oldestCached.Valid {
		t := oldestCached.Time.UTC()
		stats.OldestCachedAt = &t
	}
	if newestCached.Valid {
		t := newestCached.Time.UTC()
		stats.NewestCachedAt = &t
	}
	if lastUsed.Valid {
		t := lastUsed.Time.UTC()
		stats.LastUsedAt = &t
	}
	return stats, nil
}

func (s *SearchCacheStore) touchEntry(ctx context.Context, id int64) {
	now := time.Now().UTC()
	if _, err := s.db.ExecContext(
		ctx,
		`UPDATE search_cache SET last_used_at = ?, hit_count = hit_count + 1 WHERE id = ?`,
		now,
		id,
	); err != nil {
		log.Error().Err(err).Int64("id", id).Msg("Search cache touch failed")
	}
}

func (s *SearchCacheStore) deleteEntry(ctx context.Context, id int64) {
	_, _ = s.db.ExecContext(ctx, `DELETE FROM search_cache WHERE id = ?`, id)
}
