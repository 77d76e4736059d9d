package lookup

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	releaseWithFront = "76df3287-6cda-33eb-8e9a-044b5e15ffdd"
	releaseBackOnly  = "1b022e01-4da6-387b-8658-8678046e4cef"
)

func newSeededLookup(t *testing.T) *SQL {
	t.Helper()
	ctx := context.Background()

	dsn := filepath.Join(t.TempDir(), "mirror.db")
	l, err := Open(ctx, DriverSQLite, dsn, "")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	seed := []struct {
		stmt string
		args []any
	}{
		{`INSERT INTO release (id, gid) VALUES (1, ?), (2, ?)`, []any{releaseWithFront, releaseBackOnly}},
		{`INSERT INTO cover_art (id, release) VALUES (12345, 1), (777, 2), (778, 1)`, nil},
		{`INSERT INTO cover_art_type (id, type_id) VALUES (12345, 1), (777, 2), (778, 2)`, nil},
	}
	for _, s := range seed {
		_, err := l.db.ExecContext(ctx, s.stmt, s.args...)
		require.NoError(t, err)
	}
	return l
}

func TestSQL_LookupAssetID(t *testing.T) {
	t.Parallel()

	l := newSeededLookup(t)
	ctx := context.Background()

	testCases := []struct {
		name       string
		identifier string
		wantID     string
		wantFound  bool
	}{
		{name: "front image", identifier: releaseWithFront, wantID: "12345", wantFound: true},
		{name: "only non-front art", identifier: releaseBackOnly, wantFound: false},
		{name: "unknown release", identifier: "00000000-0000-0000-0000-000000000000", wantFound: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, found, err := l.LookupAssetID(ctx, tc.identifier)
			require.NoError(t, err)
			assert.Equal(t, tc.wantFound, found)
			assert.Equal(t, tc.wantID, id)
		})
	}
}

func TestSQL_EnsureSchemaIsIdempotent(t *testing.T) {
	t.Parallel()

	l := newSeededLookup(t)

	require.NoError(t, l.EnsureSchema(context.Background()))
}

func TestSQL_QueryErrorIsReturned(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	query := "SELECT id FROM release_mirror WHERE gid = ?"
	l, err := Open(ctx, DriverSQLite, filepath.Join(t.TempDir(), "empty.db"), query)
	require.NoError(t, err)
	defer l.Close()

	// Missing table: the query itself fails, which is not the same as "not found".
	_, found, err := l.LookupAssetID(ctx, releaseWithFront)

	require.Error(t, err)
	assert.False(t, found)
}

func TestOpen_CreatesSQLiteSchema(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l, err := Open(ctx, DriverSQLite, filepath.Join(t.TempDir(), "fresh.db"), "")
	require.NoError(t, err)
	defer l.Close()

	id, found, err := l.LookupAssetID(ctx, releaseWithFront)

	require.NoError(t, err, "an empty mirror is a miss, not a query error")
	assert.False(t, found)
	assert.Empty(t, id)
}

func TestOpen_RequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), DriverSQLite, "", "")
	require.ErrorContains(t, err, "dsn is required")
}

func TestStatic(t *testing.T) {
	t.Parallel()

	s := Static{"a": "1"}

	id, found, err := s.LookupAssetID(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "1", id)

	_, found, err = s.LookupAssetID(context.Background(), "b")
	require.NoError(t, err)
	assert.False(t, found)
}
