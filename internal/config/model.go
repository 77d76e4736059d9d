package config

import (
	"errors"
	"time"

	"github.com/specialistvlad/covergrid/internal/coverart"
	"github.com/specialistvlad/covergrid/internal/lookup"
)

const (
	DefaultListen          = ":8080"
	DefaultCacheDir        = "cache"
	DefaultUpstreamTimeout = 30 * time.Second
)

// Model is the complete service configuration.
type Model struct {
	Server      Server
	Cache       Cache
	Lookup      Lookup
	Upstream    Upstream
	Placeholder Placeholder
}

// Server configures the HTTP listener.
type Server struct {
	Listen string
	// RequireUUID rejects identifiers that are not MBIDs.
	RequireUUID bool
}

// Cache configures the on-disk asset cache.
type Cache struct {
	Dir string
}

// Lookup configures the identifier to asset id datastore.
type Lookup struct {
	Driver string
	DSN    string
	Query  string
}

// Upstream configures requests to the remote asset host.
type Upstream struct {
	URLTemplate string
	UserAgent   string
	Timeout     time.Duration
}

// Placeholder configures the image used by the placeholder-image policy.
type Placeholder struct {
	Identifier string
	URL        string
}

// Default returns a Model with every optional value filled in.
func Default() *Model {
	return &Model{
		Server: Server{Listen: DefaultListen},
		Cache:  Cache{Dir: DefaultCacheDir},
		Lookup: Lookup{Driver: lookup.DriverSQLite, Query: lookup.DefaultQuery},
		Upstream: Upstream{
			URLTemplate: coverart.DefaultURLTemplate,
			UserAgent:   coverart.DefaultUserAgent,
			Timeout:     DefaultUpstreamTimeout,
		},
		Placeholder: Placeholder{Identifier: "placeholder"},
	}
}

// Validate reports settings the service cannot start without. The lookup
// DSN is checked when the datastore is opened.
func (m *Model) Validate() error {
	var errs []error
	if m.Cache.Dir == "" {
		errs = append(errs, errors.New("cache directory must not be empty"))
	}
	if m.Upstream.Timeout <= 0 {
		errs = append(errs, errors.New("upstream timeout must be positive"))
	}
	return errors.Join(errs...)
}
