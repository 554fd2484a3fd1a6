// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package indexer

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/autobrr/scour/internal/domain"
)

// BuiltRequest is a fully resolved search request, ready for a Transport.
// Param values are already template-resolved (escaped or intentionally raw)
// and must not be re-encoded.
type BuiltRequest struct {
	Method          string
	URL             string
	Params          map[string]string
	Headers         http.Header
	FollowRedirects bool
	// MinInterval is the definition's minimum inter-request delay; the
	// caller owning this indexer's timer is responsible for honoring it.
	MinInterval time.Duration
}

// EncodedParams renders the params as a query/form string in deterministic
// key order. Values are emitted verbatim: escaped-mode resolution already
// encoded them, and raw-marked inputs are verbatim by contract.
func (r *BuiltRequest) EncodedParams() string {
	if len(r.Params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(r.Params))
	for k := range r.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(r.Params[k])
	}
	return sb.String()
}

// BuildRequest turns a definition plus a query into a request. extraHeaders
// lets the session-owning caller inject cookies or auth headers; its values
// win on key collision. The only hard failure is a definition with no
// links, which leaves nothing to request against.
func BuildRequest(def *domain.IndexerDefinition, query domain.SearchQuery, extraHeaders http.Header) (*BuiltRequest, error) {
	if len(def.Links) == 0 {
		return nil, fmt.Errorf("indexer %s: %w", def.ID, domain.ErrNoBaseLink)
	}

	vars := Variables{
		Keywords:   query.Keywords,
		Categories: query.Categories,
		Query:      query.Extra,
	}

	path := selectPath(def.Search.Paths, query.Categories)

	resolvedPath, err := ResolveTemplatePath(path.Path, vars)
	if err != nil {
		return nil, fmt.Errorf("indexer %s: resolve path: %w", def.ID, err)
	}

	params := make(map[string]string, len(def.Search.Inputs))
	for key, value := range def.Search.Inputs {
		var resolved string
		if raw, ok := strings.CutPrefix(value, domain.RawInputPrefix); ok {
			resolved, err = ResolveTemplateRaw(raw, vars)
		} else {
			resolved, err = ResolveTemplate(value, vars)
		}
		if err != nil {
			return nil, fmt.Errorf("indexer %s: resolve input %s: %w", def.ID, key, err)
		}
		params[key] = resolved
	}

	headers := make(http.Header, len(def.Search.Headers))
	for name, value := range def.Search.Headers {
		headers.Set(name, value)
	}
	for name, values := range extraHeaders {
		headers.Del(name)
		for _, v := range values {
			headers.Add(name, v)
		}
	}

	method := strings.ToUpper(path.Method)
	if method == "" {
		method = http.MethodGet
	}

	return &BuiltRequest{
		Method:          method,
		URL:             joinURL(def.Links[0], resolvedPath),
		Params:          params,
		Headers:         headers,
		FollowRedirects: def.Search.FollowRedirects,
		MinInterval:     def.Search.MinRequestInterval.Duration(),
	}, nil
}

// selectPath picks the first path whose category list intersects the
// query's categories; when the query named categories but nothing matched,
// it falls back to the first unrestricted path, then to the first path
// overall. This ordering is deterministic and relied on downstream.
func selectPath(paths []domain.SearchPath, categories []int) domain.SearchPath {
	if len(paths) == 0 {
		return domain.SearchPath{}
	}
	if len(categories) == 0 {
		return paths[0]
	}

	wanted := make(map[int]struct{}, len(categories))
	for _, cat := range categories {
		wanted[cat] = struct{}{}
	}

	for _, p := range paths {
		for _, cat := range p.Categories {
			if _, ok := wanted[cat]; ok {
				return p
			}
		}
	}

	for _, p := range paths {
		if len(p.Categories) == 0 {
			return p
		}
	}

	return paths[0]
}

func joinURL(base, path string) string {
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
