// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks aggregate search behavior for the optional /metrics
// endpoint. A nil *Metrics disables collection; all methods tolerate nil.
type Metrics struct {
	searchesTotal   prometheus.Counter
	indexerFailures *prometheus.CounterVec
	searchDuration  prometheus.Histogram
	resultsReturned prometheus.Histogram
}

func NewMetrics() *Metrics {
	return &Metrics{
		searchesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scour_searches_total",
			Help: "Total number of aggregate searches executed",
		}),
		indexerFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scour_indexer_failures_total",
			Help: "Per-indexer search failures by reason",
		}, []string{"indexer", "reason"}),
		searchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "scour_search_duration_seconds",
			Help:    "Wall-clock duration of aggregate searches",
			Buckets: prometheus.DefBuckets,
		}),
		resultsReturned: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "scour_results_returned",
			Help:    "Number of results returned per aggregate search",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		}),
	}
}

func (m *Metrics) ObserveSearch(duration float64, results int) {
	if m == nil {
		return
	}
	m.searchesTotal.Inc()
	m.searchDuration.Observe(duration)
	m.resultsReturned.Observe(float64(results))
}

func (m *Metrics) ObserveFailure(indexer, reason string) {
	if m == nil {
		return
	}
	m.indexerFailures.WithLabelValues(indexer, reason).Inc()
}
