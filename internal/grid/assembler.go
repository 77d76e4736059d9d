// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package grid pairs layout boxes with resolved cover art.
//
// Boxes are visited in draw order and each one pops identifiers off a single
// queue. A failed identifier is either skipped (the next one is tried against
// the same box) or replaced by the missing-art placeholder. The placeholder is
// resolved at most once per assembly and shared by every tile that needs it.
//
// Resolution is sequential on purpose: the resolver's backoff protects the
// upstream host and fanning tiles out across goroutines would defeat it.
package grid

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/covergrid/internal/colorspec"
	"github.com/specialistvlad/covergrid/internal/coverart"
	"github.com/specialistvlad/covergrid/internal/ctxlog"
	"github.com/specialistvlad/covergrid/internal/gridconfig"
	"github.com/specialistvlad/covergrid/internal/layout"
	"github.com/specialistvlad/covergrid/internal/metrics"
)

// ErrRenderFailure is fatal for a grid request: the placeholder could not be
// produced or the image could not be drawn.
var ErrRenderFailure = errors.New("render failure")

// Resolver turns identifiers and policies into drawable assets.
type Resolver interface {
	Resolve(ctx context.Context, identifier string) (string, error)
	ResolvePlaceholder(ctx context.Context, policy gridconfig.Policy, background colorspec.Color) (coverart.Placeholder, error)
}

// Placement is one box of the output image and what to draw in it. Exactly
// one of Path or Placeholder is set.
type Placement struct {
	Box         layout.Box
	Identifier  string
	Path        string
	Placeholder *coverart.Placeholder
}

// IsPlaceholder reports whether the box is filled by the missing-art policy.
func (p Placement) IsPlaceholder() bool {
	return p.Placeholder != nil
}

// Assembler resolves the tiles of one grid at a time. It holds no per-request
// state and is safe for concurrent use.
type Assembler struct {
	resolver Resolver
}

// NewAssembler creates an Assembler backed by resolver.
func NewAssembler(resolver Resolver) *Assembler {
	return &Assembler{resolver: resolver}
}

// Build resolves cfg's layout and assembles its identifiers onto it.
func (a *Assembler) Build(ctx context.Context, cfg *gridconfig.Config) ([]Placement, error) {
	boxes, err := layout.Resolve(cfg.Dimension, cfg.ImageSize, cfg.Layout, cfg.Tiles)
	if err != nil {
		return nil, err
	}
	return a.Assemble(ctx, boxes, cfg.Identifiers, cfg.SkipMissing, cfg.MissingArtPolicy, cfg.Background)
}

// Assemble returns one placement per box, in box order. Asset failures are
// absorbed; lookup or transport errors abort the assembly, and a placeholder
// that cannot be produced is reported as ErrRenderFailure.
func (a *Assembler) Assemble(
	ctx context.Context,
	boxes []layout.Box,
	identifiers []string,
	skipMissing bool,
	policy gridconfig.Policy,
	background colorspec.Color,
) ([]Placement, error) {
	logger := ctxlog.FromContext(ctx)
	queue := identifiers
	placements := make([]Placement, 0, len(boxes))

	var placeholder *coverart.Placeholder
	fallback := func(box layout.Box, identifier string) (Placement, error) {
		if placeholder == nil {
			p, err := a.resolver.ResolvePlaceholder(ctx, policy, background)
			if err != nil {
				return Placement{}, fmt.Errorf("%w: %w", ErrRenderFailure, err)
			}
			placeholder = &p
			logger.Debug("Resolved missing-art placeholder.", "policy", policy, "kind", p.Kind)
		}
		metrics.Placeholders.WithLabelValues(string(policy)).Inc()
		return Placement{Box: box, Identifier: identifier, Placeholder: placeholder}, nil
	}

	for _, box := range boxes {
		var placement Placement
		placed := false

		for !placed {
			if len(queue) == 0 {
				p, err := fallback(box, "")
				if err != nil {
					return nil, err
				}
				placement, placed = p, true
				break
			}

			identifier := queue[0]
			queue = queue[1:]

			path, err := a.resolver.Resolve(ctx, identifier)
			switch {
			case err == nil:
				placement, placed = Placement{Box: box, Identifier: identifier, Path: path}, true
			case !coverart.IsAssetFailure(err):
				return nil, fmt.Errorf("failed to resolve %q: %w", identifier, err)
			case skipMissing:
				logger.Info("Skipping identifier without cover art.", "identifier", identifier, "error", err)
			default:
				logger.Info("Using placeholder for identifier without cover art.", "identifier", identifier, "error", err)
				p, err := fallback(box, identifier)
				if err != nil {
					return nil, err
				}
				placement, placed = p, true
			}
		}
		placements = append(placements, placement)
	}

	return placements, nil
}
