// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/scour/internal/domain"
)

func TestValidateStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected domain.ErrorKind
	}{
		{name: "200 ok", status: 200},
		{name: "204 ok", status: 204},
		{name: "401 connection", status: 401, expected: domain.ErrorKindConnection},
		{name: "403 connection", status: 403, expected: domain.ErrorKindConnection},
		{name: "429 rate limited", status: 429, expected: domain.ErrorKindRateLimited},
		{name: "500 search failed", status: 500, expected: domain.ErrorKindSearch},
		{name: "503 search failed", status: 503, expected: domain.ErrorKindSearch},
		{name: "404 search failed", status: 404, expected: domain.ErrorKindSearch},
		{name: "302 search failed", status: 302, expected: domain.ErrorKindSearch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStatus(tt.status)
			if tt.expected == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.expected, domain.ClassifyError(err))
		})
	}
}

func TestValidateStatusCarriesCode(t *testing.T) {
	err := ValidateStatus(503)
	require.Error(t, err)

	var indexerErr *domain.IndexerError
	require.ErrorAs(t, err, &indexerErr)
	assert.Equal(t, 503, indexerErr.StatusCode)
}
