// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package search orchestrates fan-out across indexer definitions and the
// merge, dedup and ranking of their results.
package search

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/autobrr/scour/internal/domain"
	"github.com/autobrr/scour/internal/indexer"
)

const (
	defaultMaxConcurrent  = 10
	defaultIndexerTimeout = 20 * time.Second
)

// Cache stores aggregate search results keyed by query fingerprint. A nil
// Cache disables caching.
type Cache interface {
	Fetch(ctx context.Context, key string) ([]domain.SearchResult, bool)
	Store(ctx context.Context, key string, results []domain.SearchResult)
}

// Service runs searches against a catalog of indexer definitions.
type Service struct {
	transport      indexer.Transport
	limiter        *indexer.RateLimiter
	cache          Cache
	metrics        *Metrics
	maxConcurrent  int64
	indexerTimeout time.Duration
}

type Option func(*Service)

func WithCache(cache Cache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithMetrics(metrics *Metrics) Option {
	return func(s *Service) { s.metrics = metrics }
}

func WithMaxConcurrent(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxConcurrent = int64(n)
		}
	}
}

func WithIndexerTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.indexerTimeout = timeout
		}
	}
}

func NewService(transport indexer.Transport, opts ...Option) *Service {
	s := &Service{
		transport:      transport,
		limiter:        indexer.NewRateLimiter(),
		maxConcurrent:  defaultMaxConcurrent,
		indexerTimeout: defaultIndexerTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchAll fans the query out to every enabled definition and returns the
// merged, deduplicated, ranked result set. Individual indexer failures are
// logged and absorbed; SearchAll itself never fails.
func (s *Service) SearchAll(ctx context.Context, definitions []*domain.IndexerDefinition, query domain.SearchQuery) []domain.SearchResult {
	started := time.Now()

	enabled := make([]*domain.IndexerDefinition, 0, len(definitions))
	for _, def := range definitions {
		if def.Enabled {
			enabled = append(enabled, def)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Priority < enabled[j].Priority
	})

	if len(enabled) == 0 {
		return []domain.SearchResult{}
	}

	cacheKey := fingerprint(enabled, query)
	if s.cache != nil {
		if cached, ok := s.cache.Fetch(ctx, cacheKey); ok {
			log.Debug().Str("key", cacheKey).Int("results", len(cached)).Msg("Search cache hit")
			return cached
		}
	}

	// contributions is indexed by definition position so the merge below
	// happens in priority order no matter which goroutine finishes first.
	contributions := make([][]domain.SearchResult, len(enabled))

	sem := semaphore.NewWeighted(s.maxConcurrent)
	var wg sync.WaitGroup

	for i, def := range enabled {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(i int, def *domain.IndexerDefinition) {
			defer wg.Done()
			defer sem.Release(1)
			contributions[i] = s.searchOne(ctx, def, query)
		}(i, def)
	}
	wg.Wait()

	merged := make([]domain.SearchResult, 0, 64)
	for _, contribution := range contributions {
		merged = append(merged, contribution...)
	}

	if !query.DisableDedup {
		merged = Deduplicate(merged)
	}

	if query.MinSeeders > 0 {
		filtered := merged[:0]
		for _, result := range merged {
			if result.Seeders >= query.MinSeeders {
				filtered = append(filtered, result)
			}
		}
		merged = filtered
	}

	SortByScore(merged)

	if query.MaxResults > 0 && len(merged) > query.MaxResults {
		merged = merged[:query.MaxResults]
	}

	if s.cache != nil {
		s.cache.Store(ctx, cacheKey, merged)
	}
	s.metrics.ObserveSearch(time.Since(started).Seconds(), len(merged))

	log.Info().
		Int("indexers", len(enabled)).
		Int("results", len(merged)).
		Dur("elapsed", time.Since(started)).
		Msg("Search completed")

	return merged
}

// searchOne runs the pipeline for a single indexer. Panics are recovered
// here so a crashing extractor removes one contribution, not the search.
func (s *Service) searchOne(ctx context.Context, def *domain.IndexerDefinition, query domain.SearchQuery) (results []domain.SearchResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("indexer", def.ID).
				Interface("panic", r).
				Msg("Indexer search panicked")
			s.metrics.ObserveFailure(def.ID, "panic")
			results = nil
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.indexerTimeout)
	defer cancel()

	if wait := s.limiter.NextWait(def.ID, def.Search.MinRequestInterval.Duration()); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			log.Debug().Str("indexer", def.ID).Msg("Timed out waiting for rate limit window")
			return nil
		}
	}

	req, err := indexer.BuildRequest(def, query, nil)
	if err != nil {
		s.reportFailure(def.ID, err)
		return nil
	}

	s.limiter.RecordRequest(def.ID)
	resp, err := s.transport.Do(ctx, req)
	if err != nil {
		// Cooldown escalation is reserved for rate-limit responses; a plain
		// connection failure must not back the site off for an hour.
		if domain.ClassifyError(err) == domain.ErrorKindRateLimited {
			s.limiter.RecordFailure(def.ID)
		}
		s.reportFailure(def.ID, err)
		return nil
	}

	if err := indexer.ValidateStatus(resp.StatusCode); err != nil {
		if domain.ClassifyError(err) == domain.ErrorKindRateLimited {
			s.limiter.RecordFailure(def.ID)
		}
		s.reportFailure(def.ID, err)
		return nil
	}
	s.limiter.RecordSuccess(def.ID)

	results, err = indexer.ExtractResults(def, resp.Body, def.Name)
	if err != nil {
		s.reportFailure(def.ID, err)
		return nil
	}

	log.Debug().Str("indexer", def.ID).Int("results", len(results)).Msg("Indexer search succeeded")
	return results
}

func (s *Service) reportFailure(indexerID string, err error) {
	kind := domain.ClassifyError(err)
	log.Warn().
		Err(err).
		Str("indexer", indexerID).
		Str("reason", kind.String()).
		Msg("Indexer search failed")
	s.metrics.ObserveFailure(indexerID, kind.String())
}

// fingerprint derives a stable cache key from the query and the set of
// definitions it will hit.
func fingerprint(definitions []*domain.IndexerDefinition, query domain.SearchQuery) string {
	digest := xxhash.New()
	digest.WriteString(query.Keywords)
	digest.WriteString("|")
	for _, cat := range query.Categories {
		digest.WriteString(strconv.Itoa(cat))
		digest.WriteString(",")
	}
	digest.WriteString("|")
	extraKeys := make([]string, 0, len(query.Extra))
	for key := range query.Extra {
		extraKeys = append(extraKeys, key)
	}
	sort.Strings(extraKeys)
	for _, key := range extraKeys {
		digest.WriteString(key)
		digest.WriteString("=")
		digest.WriteString(query.Extra[key])
		digest.WriteString("&")
	}
	digest.WriteString("|")
	digest.WriteString(strconv.Itoa(query.MinSeeders))
	digest.WriteString("|")
	digest.WriteString(strconv.Itoa(query.MaxResults))
	digest.WriteString("|")
	digest.WriteString(strconv.FormatBool(query.DisableDedup))
	digest.WriteString("|")
	ids := make([]string, 0, len(definitions))
	for _, def := range definitions {
		ids = append(ids, def.ID)
	}
	digest.WriteString(strings.Join(ids, ","))

	return fmt.Sprintf("%016x", digest.Sum64())
}
