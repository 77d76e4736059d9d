// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package render

import (
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/specialistvlad/covergrid/internal/colorspec"
	"github.com/specialistvlad/covergrid/internal/coverart"
	"github.com/specialistvlad/covergrid/internal/grid"
)

const (
	JPEG = imaging.JPEG
	PNG  = imaging.PNG

	defaultJPEGQuality = 90
)

// Raster composes tiles into a JPEG or PNG.
type Raster struct {
	Format  imaging.Format
	Quality int
}

func (r *Raster) ContentType() string {
	if r.Format == PNG {
		return "image/png"
	}
	return "image/jpeg"
}

// Render scales every tile to cover its box, cropping from the centre, and
// pastes it onto a background-filled canvas.
func (r *Raster) Render(w io.Writer, placements []grid.Placement, imageSize int, background colorspec.Color) error {
	canvas := imaging.New(imageSize, imageSize, background.NRGBA())

	for _, p := range placements {
		width, height := drawSize(p.Box, imageSize)

		var tile image.Image
		if p.IsPlaceholder() && p.Placeholder.Kind == coverart.PlaceholderFill {
			tile = imaging.New(width, height, p.Placeholder.Color.NRGBA())
		} else {
			path := sourcePath(p)
			src, err := imaging.Open(path)
			if err != nil {
				return failure("failed to open tile image %s: %w", path, err)
			}
			tile = imaging.Fill(src, width, height, imaging.Center, imaging.Lanczos)
		}
		canvas = imaging.Paste(canvas, tile, image.Pt(p.Box.X1, p.Box.Y1))
	}

	quality := r.Quality
	if quality <= 0 {
		quality = defaultJPEGQuality
	}
	if err := imaging.Encode(w, canvas, r.Format, imaging.JPEGQuality(quality)); err != nil {
		return failure("failed to encode %s: %w", r.Format, err)
	}
	return nil
}
