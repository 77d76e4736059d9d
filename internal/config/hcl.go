package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/covergrid/internal/ctxlog"
	"github.com/specialistvlad/covergrid/internal/hclutil"
)

// HCLLoader reads the service file written in HCL. Attribute expressions may
// call env(), format(), lower() and upper().
type HCLLoader struct{}

// NewHCLLoader creates a new HCL configuration loader.
func NewHCLLoader() *HCLLoader {
	return &HCLLoader{}
}

// fileRoot holds every block a service file may contain. Each block appears
// at most once and every attribute is optional.
type fileRoot struct {
	Server      *serverBlock      `hcl:"server,block"`
	Cache       *cacheBlock       `hcl:"cache,block"`
	Lookup      *lookupBlock      `hcl:"lookup,block"`
	Upstream    *upstreamBlock    `hcl:"upstream,block"`
	Placeholder *placeholderBlock `hcl:"placeholder,block"`
}

type serverBlock struct {
	Listen      *string `hcl:"listen,optional"`
	RequireUUID *bool   `hcl:"require_uuid,optional"`
}

type cacheBlock struct {
	Dir *string `hcl:"dir,optional"`
}

type lookupBlock struct {
	Driver *string `hcl:"driver,optional"`
	DSN    *string `hcl:"dsn,optional"`
	Query  *string `hcl:"query,optional"`
}

type upstreamBlock struct {
	URLTemplate *string   `hcl:"url_template,optional"`
	UserAgent   *string   `hcl:"user_agent,optional"`
	Timeout     *string   `hcl:"timeout,optional"`
	DefRange    hcl.Range `hcl:",def_range"`
}

type placeholderBlock struct {
	Identifier *string `hcl:"identifier,optional"`
	URL        *string `hcl:"url,optional"`
}

// Load implements Loader.
func (l *HCLLoader) Load(ctx context.Context, path string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)
	model := Default()
	if path == "" {
		logger.Debug("No service file given, using defaults.")
		return model, nil
	}

	src, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Service file not found, using defaults.", "path", path)
		return model, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read service file %s: %w", path, err)
	}

	if err := l.decode(src, path, model); err != nil {
		return nil, err
	}
	logger.Debug("Service file loaded.", "path", path)
	return model, nil
}

func (l *HCLLoader) decode(src []byte, filename string, model *Model) error {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse service file %s: %w", filename, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, hclutil.EvalContext(), &root); diags.HasErrors() {
		return fmt.Errorf("failed to decode service file %s: %w", filename, diags)
	}

	if b := root.Server; b != nil {
		set(&model.Server.Listen, b.Listen)
		if b.RequireUUID != nil {
			model.Server.RequireUUID = *b.RequireUUID
		}
	}
	if b := root.Cache; b != nil {
		set(&model.Cache.Dir, b.Dir)
	}
	if b := root.Lookup; b != nil {
		set(&model.Lookup.Driver, b.Driver)
		set(&model.Lookup.DSN, b.DSN)
		set(&model.Lookup.Query, b.Query)
	}
	if b := root.Upstream; b != nil {
		set(&model.Upstream.URLTemplate, b.URLTemplate)
		set(&model.Upstream.UserAgent, b.UserAgent)
		if b.Timeout != nil {
			d, err := time.ParseDuration(*b.Timeout)
			if err != nil || d <= 0 {
				return hclutil.ErrorDiagnostic(
					"Invalid upstream timeout",
					fmt.Sprintf("%q is not a positive duration such as \"30s\".", *b.Timeout),
					b.DefRange.Ptr(),
				)
			}
			model.Upstream.Timeout = d
		}
	}
	if b := root.Placeholder; b != nil {
		set(&model.Placeholder.Identifier, b.Identifier)
		set(&model.Placeholder.URL, b.URL)
	}
	return nil
}

// set overwrites dst when the attribute was given.
func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
