// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package lookup maps identifiers to remote asset ids. The SQL implementation
// reads a cover art archive mirror through database/sql; SQLite is the
// driver compiled into the binary.
package lookup

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// DriverSQLite is the database/sql driver name registered by modernc.org/sqlite.
const DriverSQLite = "sqlite"

// DefaultQuery selects the front image (type 1) of a release. It takes the
// identifier as its only parameter.
const DefaultQuery = `SELECT caa.id AS caa_id
  FROM cover_art caa
  JOIN cover_art_type cat ON cat.id = caa.id
  JOIN release ON caa.release = release.id
 WHERE cat.type_id = 1
   AND release.gid = ?
 LIMIT 1`

//go:embed schema.sql
var schemaSQL string

var sqlitePragmas = []string{
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=ON",
}

// SQL looks asset ids up with a single parameterised query.
type SQL struct {
	db    *sql.DB
	query string
}

// Open connects to dsn with driver. An empty query means DefaultQuery. A
// SQLite mirror gets its tables created if they are missing.
func Open(ctx context.Context, driver, dsn, query string) (*SQL, error) {
	if dsn == "" {
		return nil, errors.New("lookup dsn is required")
	}
	if driver == "" {
		driver = DriverSQLite
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open lookup database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to lookup database: %w", err)
	}
	if driver == DriverSQLite {
		for _, pragma := range sqlitePragmas {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
			}
		}
	}
	s := New(db, query)
	if driver == DriverSQLite {
		if err := s.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

// New wraps an existing handle. The caller keeps ownership of db only if it
// never calls Close on the returned value.
func New(db *sql.DB, query string) *SQL {
	if query == "" {
		query = DefaultQuery
	}
	return &SQL{db: db, query: query}
}

// EnsureSchema creates the mirror tables if they are missing.
func (s *SQL) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply lookup schema: %w", err)
	}
	return nil
}

// LookupAssetID returns the asset id of identifier's front image. found is
// false when the mirror has no such row.
func (s *SQL) LookupAssetID(ctx context.Context, identifier string) (string, bool, error) {
	var assetID string
	err := s.db.QueryRowContext(ctx, s.query, identifier).Scan(&assetID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query asset id: %w", err)
	}
	return assetID, true, nil
}

// Close releases the underlying database handle.
func (s *SQL) Close() error {
	return s.db.Close()
}

// Static is an in-memory lookup keyed by identifier.
type Static map[string]string

func (m Static) LookupAssetID(_ context.Context, identifier string) (string, bool, error) {
	id, ok := m[identifier]
	return id, ok, nil
}
