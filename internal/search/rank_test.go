// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/autobrr/scour/internal/domain"
)

func result(title string, seeders int, quality domain.QualityInfo) domain.SearchResult {
	return domain.SearchResult{
		Title:   title,
		Seeders: seeders,
		Quality: quality,
	}
}

func TestScoreOrderingProperties(t *testing.T) {
	highQualityDead := result("uhd dead", 0, domain.QualityInfo{
		Resolution: "2160p",
		Source:     "BluRay",
		HDR:        "HDR10",
	})
	highQualityAlive := result("uhd alive", 10, domain.QualityInfo{
		Resolution: "2160p",
		Source:     "BluRay",
		HDR:        "HDR10",
	})
	lowQualityHealthy := result("sd healthy", 100, domain.QualityInfo{
		Resolution: "480p",
		Source:     "WEBRip",
	})

	// A healthy swarm on a modest release beats a dead pristine one.
	assert.Greater(t, Score(lowQualityHealthy), Score(highQualityDead))

	// With any seeders at all, the better release wins again.
	assert.Greater(t, Score(highQualityAlive), Score(lowQualityHealthy))
}

func TestScoreMonotonicInSeeders(t *testing.T) {
	quality := domain.QualityInfo{Resolution: "1080p", Source: "WEB-DL"}

	prev := Score(result("r", 0, quality))
	for _, seeders := range []int{1, 10, 100, 1000, 10000} {
		score := Score(result("r", seeders, quality))
		assert.Greater(t, score, prev)
		prev = score
	}
}

func TestScoreSaturates(t *testing.T) {
	quality := domain.QualityInfo{Resolution: "1080p", Source: "BluRay"}

	atSaturation := Score(result("r", 10000, quality))
	beyond := Score(result("r", 1000000, quality))
	assert.InDelta(t, atSaturation, beyond, 0.001)
}

func TestScoreBounds(t *testing.T) {
	best := result("best", 1000000, domain.QualityInfo{
		Resolution: "2160p",
		Source:     "REMUX",
		HDR:        "DolbyVision",
		Audio:      "TrueHD 7.1",
	})
	worst := result("worst", 0, domain.QualityInfo{})

	assert.LessOrEqual(t, Score(best), 1.0)
	assert.GreaterOrEqual(t, Score(worst), 0.0)
}

func TestSortByScoreStable(t *testing.T) {
	quality := domain.QualityInfo{Resolution: "1080p", Source: "WEB-DL"}
	results := []domain.SearchResult{
		result("first equal", 50, quality),
		result("second equal", 50, quality),
		result("winner", 5000, domain.QualityInfo{Resolution: "2160p", Source: "REMUX"}),
	}

	SortByScore(results)

	assert.Equal(t, "winner", results[0].Title)
	// Equal scores keep their original relative order.
	assert.Equal(t, "first equal", results[1].Title)
	assert.Equal(t, "second equal", results[2].Title)
}

func TestSortByScoreEmpty(t *testing.T) {
	SortByScore(nil)
	SortByScore([]domain.SearchResult{})
}
