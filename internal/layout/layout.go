// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file turns cell addresses into pixel bounding boxes.
//
// A grid of dimension N is split into N*N atomic cells of tile_size pixels
// each, where tile_size is the floor of image_size/N. When image_size is not
// a multiple of N the last row and column would stop short of the image edge,
// so their far edge is clamped to image_size-1. Merged tiles are the union of
// their cells' boxes.
package layout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrAddressInvalid marks a malformed or out-of-range cell address.
	ErrAddressInvalid = errors.New("invalid cell address")
	// ErrLayoutOutOfRange marks a layout selector with no catalog entry.
	ErrLayoutOutOfRange = errors.New("layout selector out of range")
)

// Box is a pixel bounding box. X1 < X2 and Y1 < Y2.
type Box struct {
	X1, Y1, X2, Y2 int
}

// Width returns X2 - X1.
func (b Box) Width() int { return b.X2 - b.X1 }

// Height returns Y2 - Y1.
func (b Box) Height() int { return b.Y2 - b.Y1 }

// Union returns the smallest box containing both b and o.
func (b Box) Union(o Box) Box {
	return Box{
		X1: min(b.X1, o.X1),
		Y1: min(b.Y1, o.Y1),
		X2: max(b.X2, o.X2),
		Y2: max(b.Y2, o.Y2),
	}
}

// AddressError identifies the offending cell address.
type AddressError struct {
	Address string
	Reason  string
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("invalid cell address %q: %s", e.Address, e.Reason)
}

func (e *AddressError) Unwrap() error { return ErrAddressInvalid }

// TilePosition returns the box of a single cell.
func TilePosition(dimension, imageSize, cell int) Box {
	tileSize := imageSize / dimension
	x := cell % dimension
	y := cell / dimension

	b := Box{
		X1: x * tileSize,
		Y1: y * tileSize,
		X2: (x + 1) * tileSize,
		Y2: (y + 1) * tileSize,
	}
	if x == dimension-1 {
		b.X2 = imageSize - 1
	}
	if y == dimension-1 {
		b.Y2 = imageSize - 1
	}
	return b
}

// ParseAddress parses a comma separated list of cell indices, each of which
// must lie in [0, dimension²).
func ParseAddress(dimension int, address string) ([]int, error) {
	tokens := strings.Split(address, ",")
	cells := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		cell, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			return nil, &AddressError{Address: address, Reason: fmt.Sprintf("%q is not an integer", tok)}
		}
		if cell < 0 || cell >= dimension*dimension {
			return nil, &AddressError{
				Address: address,
				Reason:  fmt.Sprintf("cell %d is outside [0, %d)", cell, dimension*dimension),
			}
		}
		cells = append(cells, cell)
	}
	return cells, nil
}

// BoundingBox returns the union box of every cell in address.
func BoundingBox(dimension, imageSize int, address string) (Box, error) {
	cells, err := ParseAddress(dimension, address)
	if err != nil {
		return Box{}, err
	}

	box := TilePosition(dimension, imageSize, cells[0])
	for _, cell := range cells[1:] {
		box = box.Union(TilePosition(dimension, imageSize, cell))
	}
	return box, nil
}

// Resolve returns the boxes for a grid in draw order. Explicit tiles take
// precedence over the selector; with neither, selector 0 (the full, ungrouped
// enumeration) is used.
func Resolve(dimension, imageSize int, selector *int, tiles []string) ([]Box, error) {
	addresses := tiles
	if len(addresses) == 0 {
		idx := 0
		if selector != nil {
			idx = *selector
		}
		variant, err := Default.Variant(dimension, idx)
		if err != nil {
			return nil, err
		}
		addresses = variant.Tiles
	}

	boxes := make([]Box, 0, len(addresses))
	for _, addr := range addresses {
		box, err := BoundingBox(dimension, imageSize, addr)
		if err != nil {
			return nil, err
		}
		boxes = append(boxes, box)
	}
	return boxes, nil
}
