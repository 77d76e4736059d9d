// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package layout

import (
	_ "embed"
	"fmt"
	"slices"
	"strconv"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/covergrid/internal/hclutil"
)

//go:embed catalog.hcl
var catalogSource []byte

// Default is the built-in catalog. It is decoded and checked once at
// startup; a broken catalog is a programmer error and panics.
var Default = MustLoadCatalog(catalogSource, "catalog.hcl")

// Variant is one named layout for a dimension.
type Variant struct {
	Name  string
	Tiles []string
}

// Catalog maps a grid dimension to its ordered layout variants.
type Catalog struct {
	variants map[int][]Variant
}

type hclCatalogFile struct {
	Grids []*hclGrid `hcl:"grid,block"`
}

type hclGrid struct {
	Dimension int          `hcl:"dimension"`
	Layouts   []*hclLayout `hcl:"layout,block"`
	DefRange  hcl.Range    `hcl:",def_range"`
}

type hclLayout struct {
	Name     string    `hcl:"name,label"`
	Tiles    []string  `hcl:"tiles"`
	DefRange hcl.Range `hcl:",def_range"`
}

// LoadCatalog decodes and validates a catalog document.
func LoadCatalog(src []byte, filename string) (*Catalog, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse layout catalog %s: %w", filename, diags)
	}

	var parsed hclCatalogFile
	if diags := gohcl.DecodeBody(file.Body, hclutil.EvalContext(), &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode layout catalog %s: %w", filename, diags)
	}

	c := &Catalog{variants: make(map[int][]Variant, len(parsed.Grids))}
	for _, g := range parsed.Grids {
		if _, dup := c.variants[g.Dimension]; dup {
			return nil, hclutil.ErrorDiagnostic(
				"Duplicate grid block",
				fmt.Sprintf("Dimension %d is declared more than once.", g.Dimension),
				g.DefRange.Ptr(),
			)
		}
		variants := make([]Variant, 0, len(g.Layouts))
		for i, l := range g.Layouts {
			if err := checkCover(g.Dimension, i, l.Tiles); err != nil {
				return nil, hclutil.ErrorDiagnostic(
					"Invalid layout",
					fmt.Sprintf("Layout %q for dimension %d: %s.", l.Name, g.Dimension, err),
					l.DefRange.Ptr(),
				)
			}
			variants = append(variants, Variant{Name: l.Name, Tiles: l.Tiles})
		}
		if len(variants) == 0 {
			return nil, hclutil.ErrorDiagnostic(
				"Empty grid block",
				fmt.Sprintf("Dimension %d declares no layouts.", g.Dimension),
				g.DefRange.Ptr(),
			)
		}
		c.variants[g.Dimension] = variants
	}
	return c, nil
}

// MustLoadCatalog is LoadCatalog for package-level initialisation.
func MustLoadCatalog(src []byte, filename string) *Catalog {
	c, err := LoadCatalog(src, filename)
	if err != nil {
		panic(err)
	}
	return c
}

// Dimensions returns the dimensions the catalog knows, ascending.
func (c *Catalog) Dimensions() []int {
	dims := make([]int, 0, len(c.variants))
	for d := range c.variants {
		dims = append(dims, d)
	}
	slices.Sort(dims)
	return dims
}

// Len returns how many variants exist for dimension.
func (c *Catalog) Len(dimension int) int {
	return len(c.variants[dimension])
}

// Variant returns the layout at index for dimension.
func (c *Catalog) Variant(dimension, index int) (Variant, error) {
	variants := c.variants[dimension]
	if index < 0 || index >= len(variants) {
		return Variant{}, fmt.Errorf("%w: dimension %d has %d layouts, got %d", ErrLayoutOutOfRange, dimension, len(variants), index)
	}
	v := variants[index]
	v.Tiles = slices.Clone(v.Tiles)
	return v, nil
}

// checkCover verifies that tiles cover every cell of the grid exactly once and
// that every merged tile is a filled rectangle. The first variant of a
// dimension must be the plain enumeration 0..n-1.
func checkCover(dimension, index int, tiles []string) error {
	if dimension < 1 {
		return fmt.Errorf("dimension must be positive")
	}
	cellCount := dimension * dimension
	if index == 0 {
		if len(tiles) != cellCount {
			return fmt.Errorf("first layout must list all %d cells individually", cellCount)
		}
		for i, t := range tiles {
			if t != strconv.Itoa(i) {
				return fmt.Errorf("first layout must enumerate cells in order, found %q at position %d", t, i)
			}
		}
	}

	covered := make([]bool, cellCount)
	seen := 0
	for _, addr := range tiles {
		cells, err := ParseAddress(dimension, addr)
		if err != nil {
			return err
		}
		minX, minY, maxX, maxY := dimension, dimension, -1, -1
		for _, cell := range cells {
			if covered[cell] {
				return fmt.Errorf("cell %d is covered more than once", cell)
			}
			covered[cell] = true
			seen++
			x, y := cell%dimension, cell/dimension
			minX, minY = min(minX, x), min(minY, y)
			maxX, maxY = max(maxX, x), max(maxY, y)
		}
		if area := (maxX - minX + 1) * (maxY - minY + 1); area != len(cells) {
			return fmt.Errorf("tile %q is not a filled rectangle", addr)
		}
	}
	if seen != cellCount {
		return fmt.Errorf("%d of %d cells covered", seen, cellCount)
	}
	return nil
}
