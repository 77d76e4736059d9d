// Package config defines the service configuration model and the loaders
// that populate it.
//
// The `config.Model` is the single source of truth for how the app wires the
// resolver, the lookup datastore and the HTTP server. Values come from
// defaults, then an optional HCL service file, then command-line flags.
package config
