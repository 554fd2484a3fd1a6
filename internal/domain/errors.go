// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"errors"
	"fmt"
)

// ErrNoBaseLink is the only hard failure of request building: a definition
// without links gives us nothing to request against.
var ErrNoBaseLink = errors.New("indexer definition has no base link")

// ErrorKind classifies a per-indexer pipeline failure. The set is closed so
// callers can handle it exhaustively; none of these ever escape the
// aggregator boundary.
type ErrorKind int

const (
	// ErrorKindConnection covers network failures and auth rejections (401/403)
	ErrorKindConnection ErrorKind = iota + 1
	// ErrorKindRateLimited is an HTTP 429; the indexer should be backed off
	ErrorKindRateLimited
	// ErrorKindSearch covers server errors and any other unexpected status
	ErrorKindSearch
	// ErrorKindParse means the response body could not be interpreted at all
	ErrorKindParse
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindConnection:
		return "connection_failed"
	case ErrorKindRateLimited:
		return "rate_limited"
	case ErrorKindSearch:
		return "search_failed"
	case ErrorKindParse:
		return "parse_error"
	default:
		return "unknown"
	}
}

// IndexerError is a classified failure from one indexer's search pipeline.
// It preserves the HTTP status code where one was involved.
type IndexerError struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *IndexerError) Error() string {
	switch {
	case e.StatusCode > 0 && e.Err != nil:
		return fmt.Sprintf("%s (status %d): %v", e.Kind, e.StatusCode, e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s (status %d)", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *IndexerError) Unwrap() error {
	return e.Err
}

// Is matches any *IndexerError of the same kind, so
// errors.Is(err, domain.ErrRateLimited) works without comparing instances.
func (e *IndexerError) Is(target error) bool {
	t, ok := target.(*IndexerError)
	return ok && t.Kind == e.Kind
}

// Kind sentinels for errors.Is checks.
var (
	ErrConnectionFailed = &IndexerError{Kind: ErrorKindConnection}
	ErrRateLimited      = &IndexerError{Kind: ErrorKindRateLimited}
	ErrSearchFailed     = &IndexerError{Kind: ErrorKindSearch}
	ErrParseFailed      = &IndexerError{Kind: ErrorKindParse}
)

// ConnectionError wraps a transport-level failure or auth rejection.
func ConnectionError(statusCode int, err error) *IndexerError {
	return &IndexerError{Kind: ErrorKindConnection, StatusCode: statusCode, Err: err}
}

// RateLimitedError reports an HTTP 429 from the indexer.
func RateLimitedError(statusCode int) *IndexerError {
	return &IndexerError{Kind: ErrorKindRateLimited, StatusCode: statusCode}
}

// SearchError reports a server error or unexpected status code.
func SearchError(statusCode int) *IndexerError {
	return &IndexerError{Kind: ErrorKindSearch, StatusCode: statusCode}
}

// ParseError reports a response body the extractor could not interpret.
func ParseError(err error) *IndexerError {
	return &IndexerError{Kind: ErrorKindParse, Err: err}
}

// ClassifyError returns the kind of a pipeline error, defaulting unknown
// errors (timeouts, plain network errors) to connection failures.
func ClassifyError(err error) ErrorKind {
	var ie *IndexerError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return ErrorKindConnection
}
