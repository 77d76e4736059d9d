// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package colorspec parses the background specification of a grid request.
package colorspec

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
)

// ErrInvalidColor is returned for any string that is neither a known color
// name nor a well-formed #rrggbb value.
var ErrInvalidColor = errors.New("invalid color")

// Color is a parsed background color. A transparent color has A == 0.
type Color struct {
	R, G, B, A uint8
}

var (
	Transparent = Color{}
	White       = Color{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	Black       = Color{A: 0xff}
)

var named = map[string]Color{
	"transparent": Transparent,
	"white":       White,
	"black":       Black,
}

// Parse accepts one of the literal names "transparent", "white", "black" or
// a 7 character "#rrggbb" string.
func Parse(s string) (Color, error) {
	if c, ok := named[s]; ok {
		return c, nil
	}
	if len(s) != 7 || s[0] != '#' {
		return Color{}, fmt.Errorf("%w: %q must be a color name or #rrggbb", ErrInvalidColor, s)
	}

	var rgb [3]uint8
	for i := range rgb {
		group := s[1+2*i : 3+2*i]
		v, err := strconv.ParseUint(group, 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q has non-hex group %q", ErrInvalidColor, s, group)
		}
		rgb[i] = uint8(v)
	}
	return Color{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff}, nil
}

// IsTransparent reports whether the color has no opacity.
func (c Color) IsTransparent() bool {
	return c.A == 0
}

// NRGBA converts the color for use with the image packages.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Hex returns the color as #rrggbb, ignoring alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
