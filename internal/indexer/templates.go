// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package indexer

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"text/template"
)

// Variables is the substitution set available to definition templates:
// {{ .Keywords }}, {{ .Categories }} and {{ .Query.<Name> }}.
type Variables struct {
	Keywords   string
	Categories []int
	Query      map[string]string
}

// templateContext is what templates actually execute against. Categories
// are pre-joined and, in escaped mode, every value is pre-encoded, so the
// template engine only performs plain substitution.
type templateContext struct {
	Keywords   string
	Categories string
	Query      map[string]string
}

var markerPattern = regexp.MustCompile(`\{\{\s*\.([A-Za-z][A-Za-z0-9_]*)((?:\.[A-Za-z0-9_]+)*)\s*\}\}`)

var templateCache sync.Map // sanitized template text -> *template.Template

type escapeMode int

const (
	escapeNone escapeMode = iota
	escapeQuery
	escapePath
)

// ResolveTemplate substitutes variables into tmpl with query-string escaping
// applied to every value. Unknown markers resolve to an empty string.
func ResolveTemplate(tmpl string, vars Variables) (string, error) {
	return resolve(tmpl, vars, escapeQuery)
}

// ResolveTemplatePath substitutes variables with path-segment escaping, so a
// space in a keyword becomes %20, not the + a query string would use.
func ResolveTemplatePath(tmpl string, vars Variables) (string, error) {
	return resolve(tmpl, vars, escapePath)
}

// ResolveTemplateRaw substitutes variables verbatim, for inputs explicitly
// marked raw by the definition.
func ResolveTemplateRaw(tmpl string, vars Variables) (string, error) {
	return resolve(tmpl, vars, escapeNone)
}

func resolve(tmpl string, vars Variables, mode escapeMode) (string, error) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	t, err := compileTemplate(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template %q: %w", tmpl, err)
	}

	var sb strings.Builder
	if err := t.Execute(&sb, vars.context(mode)); err != nil {
		return "", fmt.Errorf("execute template %q: %w", tmpl, err)
	}
	return sb.String(), nil
}

func compileTemplate(tmpl string) (*template.Template, error) {
	sanitized := sanitizeMarkers(tmpl)
	if cached, ok := templateCache.Load(sanitized); ok {
		return cached.(*template.Template), nil
	}

	t, err := template.New("").Option("missingkey=zero").Parse(sanitized)
	if err != nil {
		return nil, err
	}
	templateCache.Store(sanitized, t)
	return t, nil
}

// sanitizeMarkers blanks out markers whose root variable we do not know,
// so a definition authored against a newer schema degrades to an empty
// substitution instead of a build failure.
func sanitizeMarkers(tmpl string) string {
	return markerPattern.ReplaceAllStringFunc(tmpl, func(marker string) string {
		sub := markerPattern.FindStringSubmatch(marker)
		switch sub[1] {
		case "Keywords", "Categories":
			if sub[2] != "" {
				return ""
			}
			return marker
		case "Query":
			return marker
		default:
			return ""
		}
	})
}

func (v Variables) context(mode escapeMode) templateContext {
	cats := joinCategories(v.Categories)

	query := make(map[string]string, len(v.Query))
	for name, value := range v.Query {
		query[name] = escapeValue(value, mode)
	}

	keywords := escapeValue(v.Keywords, mode)
	cats = escapeValue(cats, mode)

	return templateContext{
		Keywords:   keywords,
		Categories: cats,
		Query:      query,
	}
}

func escapeValue(value string, mode escapeMode) string {
	switch mode {
	case escapeQuery:
		return url.QueryEscape(value)
	case escapePath:
		return url.PathEscape(value)
	default:
		return value
	}
}

func joinCategories(categories []int) string {
	if len(categories) == 0 {
		return ""
	}
	parts := make([]string, 0, len(categories))
	for _, cat := range categories {
		parts = append(parts, strconv.Itoa(cat))
	}
	return strings.Join(parts, ",")
}
