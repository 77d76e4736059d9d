// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package render draws assembled placements into an output document.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/covergrid/internal/colorspec"
	"github.com/specialistvlad/covergrid/internal/grid"
	"github.com/specialistvlad/covergrid/internal/layout"
)

// ErrUnsupportedFormat is returned by New for an unknown output format.
var ErrUnsupportedFormat = errors.New("output format must be one of jpg, png, svg")

// Renderer writes a square image of imageSize pixels.
type Renderer interface {
	Render(w io.Writer, placements []grid.Placement, imageSize int, background colorspec.Color) error
	ContentType() string
}

// New picks the renderer for a requested format. An empty format means jpg;
// a transparent background upgrades jpg to png since jpeg has no alpha.
func New(format string, background colorspec.Color) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", "jpg", "jpeg":
		if background.IsTransparent() {
			return &Raster{Format: PNG}, nil
		}
		return &Raster{Format: JPEG}, nil
	case "png":
		return &Raster{Format: PNG}, nil
	case "svg":
		return &SVG{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// drawSize returns the pixel size to draw box at. A far edge clamped to
// imageSize-1 is drawn inclusively so the last row and column leave no seam.
func drawSize(box layout.Box, imageSize int) (int, int) {
	w, h := box.Width(), box.Height()
	if box.X2 == imageSize-1 {
		w++
	}
	if box.Y2 == imageSize-1 {
		h++
	}
	return w, h
}

// sourcePath is the file to draw for p, or "" for a solid fill.
func sourcePath(p grid.Placement) string {
	if p.IsPlaceholder() {
		return p.Placeholder.Path
	}
	return p.Path
}

func failure(format string, args ...any) error {
	return fmt.Errorf("%w: %w", grid.ErrRenderFailure, fmt.Errorf(format, args...))
}
