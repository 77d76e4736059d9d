// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package coverart

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/covergrid/internal/colorspec"
	"github.com/specialistvlad/covergrid/internal/gridconfig"
)

// PlaceholderKind tells the renderer how to draw a missing tile.
type PlaceholderKind int

const (
	// PlaceholderImage is a cached image file.
	PlaceholderImage PlaceholderKind = iota + 1
	// PlaceholderFill is a solid tile of Color.
	PlaceholderFill
)

func (k PlaceholderKind) String() string {
	switch k {
	case PlaceholderImage:
		return "image"
	case PlaceholderFill:
		return "fill"
	default:
		return "unknown"
	}
}

// Placeholder stands in for a tile whose image could not be resolved.
type Placeholder struct {
	Kind  PlaceholderKind
	Path  string
	Color colorspec.Color
}

// placeholderDir holds the placeholder image inside the cache root. Shard
// directories of real identifiers are one character long, so an identifier
// can never resolve to a file in here.
const placeholderDir = "placeholder"

// ResolvePlaceholder returns the stand-in for policy. Only placeholder-image
// touches the network; it goes through the same retry path as any other
// asset but is cached apart from them.
func (r *Resolver) ResolvePlaceholder(ctx context.Context, policy gridconfig.Policy, background colorspec.Color) (Placeholder, error) {
	switch policy {
	case gridconfig.PolicyPlaceholderImage:
		if r.placeholderURL == "" {
			return Placeholder{}, ErrNoPlaceholderImage
		}
		path, err := CachePath(filepath.Join(r.cacheDir, placeholderDir), r.placeholderIdentifier)
		if err != nil {
			return Placeholder{}, fmt.Errorf("failed to resolve placeholder image: %w", err)
		}
		path, err = r.fetch(ctx, r.placeholderIdentifier, path, func(context.Context) (string, error) {
			return r.placeholderURL, nil
		})
		if err != nil {
			return Placeholder{}, fmt.Errorf("failed to resolve placeholder image: %w", err)
		}
		return Placeholder{Kind: PlaceholderImage, Path: path}, nil
	case gridconfig.PolicyBackgroundFill:
		return Placeholder{Kind: PlaceholderFill, Color: background}, nil
	case gridconfig.PolicyWhite:
		return Placeholder{Kind: PlaceholderFill, Color: colorspec.White}, nil
	case gridconfig.PolicyBlack:
		return Placeholder{Kind: PlaceholderFill, Color: colorspec.Black}, nil
	default:
		return Placeholder{}, fmt.Errorf("%w: %q", gridconfig.ErrUnknownPolicy, policy)
	}
}
