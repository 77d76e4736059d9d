// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package gridconfig validates an incoming grid request and turns it into a
// typed Config. Validation is pure and stops at the first failing check.
package gridconfig

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/specialistvlad/covergrid/internal/colorspec"
	"github.com/specialistvlad/covergrid/internal/layout"
)

const (
	MinImageSize = 128
	MaxImageSize = 1024
)

// Policy decides what fills a tile whose image could not be resolved.
type Policy string

const (
	PolicyPlaceholderImage Policy = "placeholder-image"
	PolicyBackgroundFill   Policy = "background-fill"
	PolicyWhite            Policy = "white"
	PolicyBlack            Policy = "black"
)

// Policies lists every recognised missing-art policy.
var Policies = []Policy{PolicyPlaceholderImage, PolicyBackgroundFill, PolicyWhite, PolicyBlack}

var (
	// ErrConfigInvalid matches every ValidationError.
	ErrConfigInvalid = errors.New("invalid grid configuration")

	ErrUnsupportedDimension = errors.New("dimension must be one of 2, 3, 4, 5")
	ErrLayoutConflict       = errors.New("layout and tiles are mutually exclusive")
	ErrLayoutOutOfRange     = layout.ErrLayoutOutOfRange
	ErrInvalidBackground    = errors.New("background must be transparent, white, black or #rrggbb")
	ErrImageSizeOutOfRange  = fmt.Errorf("image size must be between %d and %d, inclusive", MinImageSize, MaxImageSize)
	ErrSkipMissingNotBool   = errors.New("skip_missing must be a boolean")
	ErrUnknownPolicy        = errors.New("missing_art_policy must be one of placeholder-image, background-fill, white, black")
)

// ValidationError identifies the field that failed validation.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Is lets every ValidationError match ErrConfigInvalid.
func (e *ValidationError) Is(target error) bool {
	return target == ErrConfigInvalid
}

// Request is the transport-agnostic, unvalidated grid request.
type Request struct {
	Dimension        int
	ImageSize        int
	Background       string
	SkipMissing      string
	MissingArtPolicy string
	Layout           *int
	Tiles            []string
	Identifiers      []string
}

// Config is a validated grid request.
type Config struct {
	Dimension        int
	ImageSize        int
	Background       colorspec.Color
	SkipMissing      bool
	MissingArtPolicy Policy
	Layout           *int
	Tiles            []string
	Identifiers      []string
}

// TileSize is the side of one atomic cell in pixels.
func (c *Config) TileSize() int {
	return c.ImageSize / c.Dimension
}

// Validate checks req and returns the typed configuration. An empty
// background defaults to black, an empty skip_missing to false and an empty
// policy to placeholder-image.
func Validate(req Request) (*Config, error) {
	switch req.Dimension {
	case 2, 3, 4, 5:
	default:
		return nil, invalid("dimension", strconv.Itoa(req.Dimension), ErrUnsupportedDimension)
	}

	if req.Layout != nil && len(req.Tiles) > 0 {
		return nil, invalid("layout", strconv.Itoa(*req.Layout), ErrLayoutConflict)
	}
	if req.Layout != nil {
		if *req.Layout < 0 || *req.Layout >= layout.Default.Len(req.Dimension) {
			return nil, invalid("layout", strconv.Itoa(*req.Layout), ErrLayoutOutOfRange)
		}
	}

	background := colorspec.Black
	if req.Background != "" {
		c, err := colorspec.Parse(req.Background)
		if err != nil {
			return nil, invalid("background", req.Background, ErrInvalidBackground)
		}
		background = c
	}

	if req.ImageSize < MinImageSize || req.ImageSize > MaxImageSize {
		return nil, invalid("image_size", strconv.Itoa(req.ImageSize), ErrImageSizeOutOfRange)
	}

	skip := false
	if req.SkipMissing != "" {
		b, err := strconv.ParseBool(strings.ToLower(req.SkipMissing))
		if err != nil {
			return nil, invalid("skip_missing", req.SkipMissing, ErrSkipMissingNotBool)
		}
		skip = b
	}

	policy := PolicyPlaceholderImage
	if req.MissingArtPolicy != "" {
		p, ok := ParsePolicy(req.MissingArtPolicy)
		if !ok {
			return nil, invalid("missing_art_policy", req.MissingArtPolicy, ErrUnknownPolicy)
		}
		policy = p
	}

	return &Config{
		Dimension:        req.Dimension,
		ImageSize:        req.ImageSize,
		Background:       background,
		SkipMissing:      skip,
		MissingArtPolicy: policy,
		Layout:           req.Layout,
		Tiles:            req.Tiles,
		Identifiers:      req.Identifiers,
	}, nil
}

// ParsePolicy maps a textual policy to its constant.
func ParsePolicy(s string) (Policy, bool) {
	for _, p := range Policies {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

func invalid(field, value string, err error) error {
	return &ValidationError{Field: field, Value: value, Err: err}
}
