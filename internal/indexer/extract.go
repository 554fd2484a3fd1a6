// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package indexer

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/tidwall/gjson"

	"github.com/autobrr/scour/internal/domain"
	"github.com/autobrr/scour/internal/quality"
)

// jsonRowsPrefix marks a rows selector as a JSON path instead of CSS.
const jsonRowsPrefix = "$."

// compiledSearch is a definition's search spec with selectors resolved
// once. Definitions are immutable, so the compiled form is cached and
// reused across rows and requests instead of re-parsing selector strings
// per row.
type compiledSearch struct {
	json     bool
	rowsPath string
	rowsSel  cascadia.Selector
	skip     int
	fields   []compiledField
}

type compiledField struct {
	name      string
	selector  string
	sel       cascadia.Selector // nil means "the row itself" (HTML only)
	attribute string
	filters   []domain.Filter
}

var compiledSearchCache sync.Map // definition ID -> *compiledSearch

func compileSearchSpec(def *domain.IndexerDefinition) (*compiledSearch, error) {
	if cached, ok := compiledSearchCache.Load(def.ID); ok {
		return cached.(*compiledSearch), nil
	}

	cs := &compiledSearch{skip: def.Search.Rows.Skip}

	rows := strings.TrimSpace(def.Search.Rows.Selector)
	if rows == "" {
		return nil, fmt.Errorf("rows selector is empty")
	}

	if strings.HasPrefix(rows, jsonRowsPrefix) {
		cs.json = true
		cs.rowsPath = jsonPath(rows)
	} else {
		sel, err := cascadia.Compile(rows)
		if err != nil {
			return nil, fmt.Errorf("compile rows selector %q: %w", rows, err)
		}
		cs.rowsSel = sel
	}

	for name, spec := range def.Search.Fields {
		cf := compiledField{
			name:      name,
			selector:  strings.TrimSpace(spec.Selector),
			attribute: spec.Attribute,
			filters:   spec.Filters,
		}
		if !cs.json && cf.selector != "" {
			sel, err := cascadia.Compile(cf.selector)
			if err != nil {
				return nil, fmt.Errorf("compile field %s selector %q: %w", name, cf.selector, err)
			}
			cf.sel = sel
		}
		cs.fields = append(cs.fields, cf)
	}

	compiledSearchCache.Store(def.ID, cs)
	return cs, nil
}

// jsonPath converts a "$."-prefixed selector to a gjson path:
// "$.data.items[0].results" becomes "data.items.0.results".
func jsonPath(selector string) string {
	p := strings.TrimPrefix(selector, jsonRowsPrefix)
	p = strings.ReplaceAll(p, "[", ".")
	p = strings.ReplaceAll(p, "]", "")
	return strings.Trim(p, ".")
}

// ExtractResults interprets a response body against the definition's row
// and field selectors and yields structured results. Rows missing a title
// or download URL are dropped; every other missing field defaults. The
// only error is a body the extractor could not interpret at all.
func ExtractResults(def *domain.IndexerDefinition, body []byte, indexerName string) ([]domain.SearchResult, error) {
	cs, err := compileSearchSpec(def)
	if err != nil {
		return nil, domain.ParseError(err)
	}

	if cs.json {
		return extractJSON(def, cs, body, indexerName)
	}
	return extractHTML(def, cs, body, indexerName)
}

func extractJSON(def *domain.IndexerDefinition, cs *compiledSearch, body []byte, indexerName string) ([]domain.SearchResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, domain.ParseError(fmt.Errorf("response is not valid JSON"))
	}

	rows := gjson.GetBytes(body, cs.rowsPath)
	if !rows.Exists() || !rows.IsArray() {
		return nil, domain.ParseError(fmt.Errorf("rows path %q did not resolve to an array", cs.rowsPath))
	}

	var results []domain.SearchResult
	index := 0
	rows.ForEach(func(_, row gjson.Result) bool {
		index++
		if index <= cs.skip {
			return true
		}

		values := make(map[string]string, len(cs.fields))
		for _, field := range cs.fields {
			raw := ""
			if field.selector == "" {
				raw = row.String()
			} else if v := row.Get(field.selector); v.Exists() {
				raw = v.String()
			}
			values[field.name] = ApplyFilters(raw, field.filters)
		}

		if result, ok := buildResult(def, values, indexerName); ok {
			results = append(results, result)
		}
		return true
	})

	return results, nil
}

func extractHTML(def *domain.IndexerDefinition, cs *compiledSearch, body []byte, indexerName string) ([]domain.SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, domain.ParseError(fmt.Errorf("parse HTML: %w", err))
	}

	var results []domain.SearchResult
	doc.FindMatcher(cs.rowsSel).Each(func(i int, row *goquery.Selection) {
		if i < cs.skip {
			return
		}

		values := make(map[string]string, len(cs.fields))
		for _, field := range cs.fields {
			target := row
			if field.sel != nil {
				target = row.FindMatcher(field.sel).First()
			}

			raw := ""
			if target.Length() > 0 {
				if field.attribute != "" {
					raw, _ = target.Attr(field.attribute)
				} else {
					raw = normalizeText(target.Text())
				}
			}
			values[field.name] = ApplyFilters(raw, field.filters)
		}

		if result, ok := buildResult(def, values, indexerName); ok {
			results = append(results, result)
		}
	})

	return results, nil
}

// buildResult turns raw field values into a SearchResult. Title and
// download URL are required; everything else is field-local and defaults
// on failure instead of dropping the row.
func buildResult(def *domain.IndexerDefinition, values map[string]string, indexerName string) (domain.SearchResult, bool) {
	title := strings.TrimSpace(values[domain.FieldTitle])
	download := strings.TrimSpace(values[domain.FieldDownload])
	if title == "" || download == "" {
		return domain.SearchResult{}, false
	}

	if len(def.Links) > 0 {
		download = absoluteURL(def.Links[0], download)
	}

	return domain.SearchResult{
		Title:       title,
		DownloadURL: download,
		Size:        ParseSize(values[domain.FieldSize]),
		Seeders:     ParseCount(values[domain.FieldSeeders]),
		Leechers:    ParseCount(values[domain.FieldLeechers]),
		Category:    ParseCount(values[domain.FieldCategory]),
		PublishDate: ParseDate(values[domain.FieldDate]),
		Indexer:     indexerName,
		Quality:     quality.Extract(title),
	}, true
}

// normalizeText collapses internal whitespace and trims, so multi-line
// table cells extract as a single clean string.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// absoluteURL resolves a possibly relative link against the indexer's base
// link. Magnet URIs and absolute URLs pass through untouched.
func absoluteURL(base, link string) string {
	lower := strings.ToLower(link)
	if strings.HasPrefix(lower, "magnet:") || strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return link
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return link
	}
	rel, err := url.Parse(link)
	if err != nil {
		return link
	}
	return baseURL.ResolveReference(rel).String()
}
