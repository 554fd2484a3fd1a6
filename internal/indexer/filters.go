// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package indexer

import (
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/scour/internal/domain"
)

// Filter names understood by ApplyFilters. Anything else is a forward
// compatible no-op: definitions authored for a newer schema must not break
// extraction on older builds.
const (
	filterReplace   = "replace"
	filterReReplace = "re_replace"
	filterTrim      = "trim"
	filterAppend    = "append"
	filterPrepend   = "prepend"
)

var filterRegexCache sync.Map // pattern -> *regexp.Regexp

// ApplyFilters runs value through the chain in order, each filter consuming
// the previous one's output. It never fails; malformed filters pass the
// value through unchanged.
func ApplyFilters(value string, filters []domain.Filter) string {
	for _, f := range filters {
		value = applyFilter(value, f)
	}
	return value
}

func applyFilter(value string, f domain.Filter) string {
	switch f.Name {
	case filterReplace:
		if len(f.Args) < 2 {
			return value
		}
		return strings.ReplaceAll(value, f.Args[0], f.Args[1])
	case filterReReplace:
		if len(f.Args) < 2 {
			return value
		}
		re, err := compileFilterRegex(f.Args[0])
		if err != nil {
			log.Debug().Err(err).Str("pattern", f.Args[0]).Msg("skipping filter with invalid regex")
			return value
		}
		return re.ReplaceAllString(value, f.Args[1])
	case filterTrim:
		return strings.TrimSpace(value)
	case filterAppend:
		if len(f.Args) < 1 {
			return value
		}
		return value + f.Args[0]
	case filterPrepend:
		if len(f.Args) < 1 {
			return value
		}
		return f.Args[0] + value
	default:
		return value
	}
}

func compileFilterRegex(pattern string) (*regexp.Regexp, error) {
	if cached, ok := filterRegexCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	filterRegexCache.Store(pattern, re)
	return re, nil
}
