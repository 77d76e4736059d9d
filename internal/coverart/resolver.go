// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file implements the asset resolver: identifier in, local file out.
//
// The cache is grow-only and keyed by identifier, so a file that exists is
// trusted as-is. On a miss the resolver asks the lookup collaborator for the
// remote asset id, downloads the image and renames it into the cache. The
// backoff loop below is the only retry logic in the system and governs the
// load placed on the upstream host: sleep 2s, double, and give up as soon as
// the doubled duration exceeds 100s, so the last request follows the 64s sleep.
package coverart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/specialistvlad/covergrid/internal/ctxlog"
	"github.com/specialistvlad/covergrid/internal/fsutil"
	"github.com/specialistvlad/covergrid/internal/metrics"
	"github.com/specialistvlad/covergrid/internal/timeutil"
	"golang.org/x/sync/singleflight"
)

const (
	InitialBackoff = 2 * time.Second
	MaxBackoff     = 100 * time.Second

	DefaultURLTemplate = "https://archive.org/download/mbid-{identifier}/mbid-{identifier}-{asset_id}_thumb500.jpg"
	DefaultUserAgent   = "covergrid cover art compositor"
)

// Lookup maps an identifier to the id of its remote asset.
type Lookup interface {
	LookupAssetID(ctx context.Context, identifier string) (assetID string, found bool, err error)
}

// Options configures a Resolver. CacheDir and Lookup are required.
type Options struct {
	CacheDir              string
	URLTemplate           string
	UserAgent             string
	PlaceholderIdentifier string
	PlaceholderURL        string

	Lookup Lookup
	Client HTTPDoer
	Clock  timeutil.Clock
}

// Resolver resolves identifiers to files in the local cache. It is safe for
// concurrent use; concurrent misses for the same identifier share a single
// download.
type Resolver struct {
	cacheDir              string
	urlTemplate           string
	userAgent             string
	placeholderIdentifier string
	placeholderURL        string

	lookup Lookup
	client HTTPDoer
	clock  timeutil.Clock

	group singleflight.Group
}

// NewResolver validates opts and fills in defaults.
func NewResolver(opts Options) (*Resolver, error) {
	if opts.CacheDir == "" {
		return nil, errors.New("cache directory is required")
	}
	if opts.Lookup == nil {
		return nil, errors.New("lookup is required")
	}

	r := &Resolver{
		cacheDir:              opts.CacheDir,
		urlTemplate:           opts.URLTemplate,
		userAgent:             opts.UserAgent,
		placeholderIdentifier: opts.PlaceholderIdentifier,
		placeholderURL:        opts.PlaceholderURL,
		lookup:                opts.Lookup,
		client:                opts.Client,
		clock:                 opts.Clock,
	}
	if r.urlTemplate == "" {
		r.urlTemplate = DefaultURLTemplate
	}
	if r.userAgent == "" {
		r.userAgent = DefaultUserAgent
	}
	if r.placeholderIdentifier == "" {
		r.placeholderIdentifier = "placeholder"
	}
	if r.client == nil {
		r.client = NewHTTPClient(30 * time.Second)
	}
	if r.clock == nil {
		r.clock = timeutil.RealClock{}
	}
	return r, nil
}

// Resolve returns the local path of the image for identifier, downloading it
// on first use. Per-identifier failures are *AssetError; anything else
// (lookup datastore or network errors) is returned wrapped.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (string, error) {
	path, err := CachePath(r.cacheDir, identifier)
	if err != nil {
		return "", err
	}
	return r.fetch(ctx, identifier, path, func(ctx context.Context) (string, error) {
		assetID, found, err := r.lookup.LookupAssetID(ctx, identifier)
		if err != nil {
			return "", fmt.Errorf("failed to look up asset id for %s: %w", identifier, err)
		}
		if !found {
			return "", &AssetError{Identifier: identifier, Err: ErrAssetNotFound}
		}
		return r.assetURL(identifier, assetID), nil
	})
}

// fetch serves path from the cache or downloads it from the URL that
// remoteURL returns.
//
// Concurrent misses for one path share a single download. The download runs
// detached from any one caller's cancellation so a caller that goes away
// cannot fail the others; each caller still stops waiting when its own ctx
// is done.
func (r *Resolver) fetch(ctx context.Context, identifier, path string, remoteURL func(context.Context) (string, error)) (string, error) {
	if fsutil.FileExists(path) {
		metrics.CacheHits.Inc()
		return path, nil
	}
	metrics.CacheMisses.Inc()

	flightCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(path, func() (any, error) {
		// A flight that finished between the check above and this one
		// already placed the file.
		if fsutil.FileExists(path) {
			return nil, nil
		}
		url, err := remoteURL(flightCtx)
		if err != nil {
			return nil, err
		}
		return nil, r.download(flightCtx, identifier, url, path)
	})

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("stopped waiting for %s: %w", identifier, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			ctxlog.FromContext(ctx).Debug("Joined an in-flight download.", "identifier", identifier)
		}
		return path, nil
	}
}

func (r *Resolver) assetURL(identifier, assetID string) string {
	return strings.NewReplacer("{identifier}", identifier, "{asset_id}", assetID).Replace(r.urlTemplate)
}

// download GETs url until it succeeds, fails permanently, or the backoff
// ceiling is reached.
func (r *Resolver) download(ctx context.Context, identifier, url, path string) error {
	ctx = ctxlog.With(ctx, "identifier", identifier)
	logger := ctxlog.FromContext(ctx)
	backoff := InitialBackoff
	started := r.clock.Now()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request for %s: %w", url, err)
		}
		req.Header.Set("User-Agent", r.userAgent)

		resp, err := r.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", url, err)
		}
		metrics.UpstreamResponses.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

		switch resp.StatusCode {
		case http.StatusOK:
			n, err := fsutil.WriteAtomic(path, resp.Body, 0o644)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("failed to cache %s: %w", identifier, err)
			}
			logger.Info("Cached cover art.", "path", path, "bytes", n)
			return nil

		case http.StatusForbidden, http.StatusNotFound:
			discard(resp)
			return &AssetError{Identifier: identifier, StatusCode: resp.StatusCode, Err: ErrAssetNotFound}

		case http.StatusTooManyRequests, http.StatusServiceUnavailable:
			discard(resp)
			logger.Warn("Upstream asked us to slow down, sleeping.", "status", resp.StatusCode, "sleep", backoff)
			metrics.BackoffSleeps.Inc()
			r.clock.Sleep(backoff)
			backoff *= 2
			if backoff > MaxBackoff {
				logger.Warn("Giving up after backoff ceiling.", "status", resp.StatusCode, "waited", r.clock.Now().Sub(started))
				return &AssetError{Identifier: identifier, StatusCode: resp.StatusCode, Err: ErrAssetTimeout}
			}

		default:
			discard(resp)
			logger.Warn("Unhandled upstream status.", "status", resp.StatusCode, "url", url)
			return &AssetError{Identifier: identifier, StatusCode: resp.StatusCode, Err: ErrUnexpectedStatus}
		}
	}
}

// discard drains a bounded amount of the body so the connection can be reused.
func discard(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
