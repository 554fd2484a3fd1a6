// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package indexer

import (
	"net/http"

	"github.com/autobrr/scour/internal/domain"
)

// ValidateStatus maps an HTTP status code to the error taxonomy before any
// body parsing happens. A malformed body behind a 200 is the extractor's
// problem, not validation's.
func ValidateStatus(status int) error {
	switch {
	case status >= http.StatusOK && status < http.StatusMultipleChoices:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.ConnectionError(status, nil)
	case status == http.StatusTooManyRequests:
		return domain.RateLimitedError(status)
	default:
		return domain.SearchError(status)
	}
}
