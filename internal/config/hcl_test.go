package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/covergrid/internal/coverart"
	"github.com/specialistvlad/covergrid/internal/lookup"
	"github.com/stretchr/testify/require"
)

func writeServiceFile(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "covergrid.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

func TestHCLLoader_FullFile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := writeServiceFile(t, `
server {
  listen       = ":9090"
  require_uuid = true
}

cache {
  dir = "/var/cache/covergrid"
}

lookup {
  driver = "sqlite"
  dsn    = format("%s/%s", "/srv", "mirror.db")
}

upstream {
  url_template = "https://img.example.org/{identifier}/{asset_id}.jpg"
  user_agent   = upper("covergrid")
  timeout      = "5s"
}

placeholder {
  identifier = "no-cover"
  url        = "https://img.example.org/no-cover.jpg"
}
`)

	// --- Act ---
	got, err := NewHCLLoader().Load(context.Background(), path)

	// --- Assert ---
	require.NoError(t, err)
	want := &Model{
		Server: Server{Listen: ":9090", RequireUUID: true},
		Cache:  Cache{Dir: "/var/cache/covergrid"},
		Lookup: Lookup{Driver: "sqlite", DSN: "/srv/mirror.db", Query: lookup.DefaultQuery},
		Upstream: Upstream{
			URLTemplate: "https://img.example.org/{identifier}/{asset_id}.jpg",
			UserAgent:   "COVERGRID",
			Timeout:     5 * time.Second,
		},
		Placeholder: Placeholder{Identifier: "no-cover", URL: "https://img.example.org/no-cover.jpg"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("model mismatch (-want +got):\n%s", diff)
	}
}

func TestHCLLoader_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := writeServiceFile(t, `
lookup {
  dsn = "mirror.db"
}
`)

	got, err := NewHCLLoader().Load(context.Background(), path)

	require.NoError(t, err)
	require.Equal(t, "mirror.db", got.Lookup.DSN)
	require.Equal(t, DefaultListen, got.Server.Listen)
	require.Equal(t, DefaultCacheDir, got.Cache.Dir)
	require.Equal(t, coverart.DefaultUserAgent, got.Upstream.UserAgent)
	require.Equal(t, DefaultUpstreamTimeout, got.Upstream.Timeout)
	require.NoError(t, got.Validate())
}

func TestHCLLoader_MissingFile(t *testing.T) {
	t.Parallel()

	got, err := NewHCLLoader().Load(context.Background(), filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	require.Equal(t, Default(), got)

	got, err = NewHCLLoader().Load(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, Default(), got)
}

func TestHCLLoader_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		src  string
		msg  string
	}{
		{"syntax error", `server {`, "failed to parse"},
		{"unknown block", `metrics {}`, "failed to decode"},
		{"unknown attribute", "cache {\n  size = 10\n}", "failed to decode"},
		{"wrong type", "server {\n  require_uuid = \"sometimes\"\n}", "failed to decode"},
		{"bad timeout", "upstream {\n  timeout = \"soon\"\n}", "Invalid upstream timeout"},
		{"negative timeout", "upstream {\n  timeout = \"-1s\"\n}", "Invalid upstream timeout"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := writeServiceFile(t, tc.src)

			_, err := NewHCLLoader().Load(context.Background(), path)

			require.ErrorContains(t, err, tc.msg)
		})
	}
}

func TestHCLLoader_EnvFunction(t *testing.T) {
	// Not parallel: sets a process environment variable.
	t.Setenv("COVERGRID_TEST_DSN", "/tmp/from-env.db")
	path := writeServiceFile(t, `
lookup {
  dsn = env("COVERGRID_TEST_DSN", "fallback.db")
}
cache {
  dir = env("COVERGRID_TEST_UNSET_DIR", "/tmp/fallback-cache")
}
`)

	got, err := NewHCLLoader().Load(context.Background(), path)

	require.NoError(t, err)
	require.Equal(t, "/tmp/from-env.db", got.Lookup.DSN)
	require.Equal(t, "/tmp/fallback-cache", got.Cache.Dir)
}

func TestModel_Validate(t *testing.T) {
	t.Parallel()

	m := Default()
	m.Cache.Dir = ""
	m.Upstream.Timeout = 0

	err := m.Validate()

	require.ErrorContains(t, err, "cache directory")
	require.ErrorContains(t, err, "upstream timeout")
}
