package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads the service file at path on top of Default(). An empty path
	// or a missing file yields the defaults unchanged.
	Load(ctx context.Context, path string) (*Model, error)
}
