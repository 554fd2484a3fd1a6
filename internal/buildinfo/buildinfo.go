// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package buildinfo holds version metadata stamped at build time.
package buildinfo

// These are overridden via -ldflags at release time.
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// UserAgent identifies outbound requests made on behalf of indexers that
// do not set their own User-Agent header.
func UserAgent() string {
	return "scour/" + Version
}
