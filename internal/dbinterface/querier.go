// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package dbinterface defines the database access contract shared by the
// persistence layer, so stores work against *sql.DB and transactions alike.
package dbinterface

import (
	"context"
	"database/sql"
)

// Querier is the subset of database/sql used by the model stores.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
