// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package indexer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/scour/internal/buildinfo"
	"github.com/autobrr/scour/internal/domain"
)

// maxResponseBytes caps how much of an indexer response we are willing to
// read. Search pages are small; anything past this is a misbehaving server.
const maxResponseBytes = 10 << 20

// Response is the subset of an HTTP response the extraction pipeline needs.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// Transport executes a built request against an indexer. The interface
// exists so search orchestration can be tested without real servers.
type Transport interface {
	Do(ctx context.Context, req *BuiltRequest) (*Response, error)
}

// HTTPTransport is the production Transport. It keeps two clients because
// redirect policy is a per-definition setting and CheckRedirect is fixed
// per client.
type HTTPTransport struct {
	client           *http.Client
	noRedirectClient *http.Client
	retryAttempts    uint
	retryDelay       time.Duration
}

// NewHTTPTransport creates a transport with the given per-request timeout.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPTransport{
		client: &http.Client{
			Timeout: timeout,
		},
		noRedirectClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		retryAttempts: 3,
		retryDelay:    500 * time.Millisecond,
	}
}

func (t *HTTPTransport) Do(ctx context.Context, req *BuiltRequest) (*Response, error) {
	var resp *Response

	err := retry.Do(
		func() error {
			var err error
			resp, err = t.doOnce(ctx, req)
			return err
		},
		retry.Attempts(t.retryAttempts),
		retry.Delay(t.retryDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Debug().Err(err).Uint("attempt", n+1).Str("url", req.URL).Msg("Retrying indexer request")
		}),
	)
	if err != nil {
		return nil, domain.ConnectionError(0, err)
	}
	return resp, nil
}

func (t *HTTPTransport) doOnce(ctx context.Context, req *BuiltRequest) (*Response, error) {
	httpReq, err := buildHTTPRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	client := t.client
	if !req.FollowRedirects {
		client = t.noRedirectClient
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       body,
		Header:     httpResp.Header,
	}, nil
}

func buildHTTPRequest(ctx context.Context, req *BuiltRequest) (*http.Request, error) {
	method := req.Method
	targetURL := req.URL
	var body io.Reader

	if method == http.MethodPost {
		body = strings.NewReader(req.EncodedParams())
	} else if encoded := req.EncodedParams(); encoded != "" {
		separator := "?"
		if strings.Contains(targetURL, "?") {
			separator = "&"
		}
		targetURL += separator + encoded
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, targetURL, body)
	if err != nil {
		return nil, err
	}

	for key, values := range req.Headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", buildinfo.UserAgent())
	}
	if method == http.MethodPost && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	return httpReq, nil
}
