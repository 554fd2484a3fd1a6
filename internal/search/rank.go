// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package search

import (
	"math"
	"sort"
	"strings"

	"github.com/autobrr/scour/internal/domain"
)

// Ranking combines release quality with swarm health. The weights and the
// seeder saturation point are deliberate tuning knobs, kept here in one
// place rather than scattered through the scoring code.
const (
	qualityWeight = 0.6
	seederWeight  = 0.4

	// seederSaturation is the seeder count past which more seeders stop
	// improving the score. The curve is logarithmic below it.
	seederSaturation = 10000

	// zeroSeederPenalty halves the score of dead torrents so a healthy
	// low-quality release outranks a pristine one nobody is seeding.
	zeroSeederPenalty = 0.5

	resolutionWeight = 0.55
	sourceWeight     = 0.35
	hdrBonus         = 0.05
	audioBonus       = 0.05
)

var resolutionTiers = map[string]float64{
	"2160p": 1.0,
	"1080p": 0.8,
	"720p":  0.6,
	"576p":  0.4,
	"480p":  0.3,
}

var sourceTiers = map[string]float64{
	"remux":  1.0,
	"bluray": 0.9,
	"web-dl": 0.8,
	"webdl":  0.8,
	"bdrip":  0.7,
	"webrip": 0.6,
	"hdtv":   0.4,
	"dvdrip": 0.3,
	"dvd":    0.3,
}

// Score computes the ranking score for a single result in [0, 1].
func Score(result domain.SearchResult) float64 {
	score := qualityWeight*qualityScore(result.Quality) + seederWeight*seederScore(result.Seeders)
	if result.Seeders == 0 {
		score *= zeroSeederPenalty
	}
	return score
}

func qualityScore(quality domain.QualityInfo) float64 {
	score := resolutionWeight * resolutionTiers[strings.ToLower(quality.Resolution)]
	score += sourceWeight * sourceTiers[strings.ToLower(quality.Source)]
	if quality.HDR != "" {
		score += hdrBonus
	}
	if quality.Audio != "" {
		score += audioBonus
	}
	if score > 1 {
		score = 1
	}
	return score
}

func seederScore(seeders int) float64 {
	if seeders <= 0 {
		return 0
	}
	score := math.Log1p(float64(seeders)) / math.Log1p(seederSaturation)
	if score > 1 {
		score = 1
	}
	return score
}

// SortByScore orders results best-first. The sort is stable so results
// with equal scores keep their merge order.
func SortByScore(results []domain.SearchResult) {
	scores := make([]float64, len(results))
	for i, result := range results {
		scores[i] = Score(result)
	}
	indexed := make([]int, len(results))
	for i := range indexed {
		indexed[i] = i
	}
	sort.SliceStable(indexed, func(a, b int) bool {
		return scores[indexed[a]] > scores[indexed[b]]
	})

	sorted := make([]domain.SearchResult, len(results))
	for i, idx := range indexed {
		sorted[i] = results[idx]
	}
	copy(results, sorted)
}
