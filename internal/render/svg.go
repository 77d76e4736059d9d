// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package render

import (
	"bytes"
	"encoding/base64"
	"io"
	"net/http"
	"os"

	svg "github.com/ajstarks/svgo"
	"github.com/specialistvlad/covergrid/internal/colorspec"
	"github.com/specialistvlad/covergrid/internal/grid"
)

// SVG emits a vector document with every image inlined as a data URI, so the
// output has no references back into the cache.
type SVG struct{}

func (*SVG) ContentType() string { return "image/svg+xml" }

func (*SVG) Render(w io.Writer, placements []grid.Placement, imageSize int, background colorspec.Color) error {
	// Buffer so a failed tile never leaves a half-written document behind.
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(imageSize, imageSize)
	canvas.Title("cover art grid")
	if !background.IsTransparent() {
		canvas.Rect(0, 0, imageSize, imageSize, "fill:"+background.Hex())
	}

	for _, p := range placements {
		width, height := drawSize(p.Box, imageSize)
		path := sourcePath(p)
		if path == "" {
			// Hex drops alpha; a transparent fill is drawn by leaving the tile empty.
			if !p.Placeholder.Color.IsTransparent() {
				canvas.Rect(p.Box.X1, p.Box.Y1, width, height, "fill:"+p.Placeholder.Color.Hex())
			}
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return failure("failed to read tile image %s: %w", path, err)
		}
		uri := "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
		canvas.Image(p.Box.X1, p.Box.Y1, width, height, uri, `preserveAspectRatio="xMidYMid slice"`)
	}
	canvas.End()

	if _, err := buf.WriteTo(w); err != nil {
		return failure("failed to write svg: %w", err)
	}
	return nil
}
