// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package coverart

import (
	"errors"
	"fmt"
)

var (
	// ErrAssetNotFound is a permanent miss: no asset id, or a 403/404 upstream.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrAssetTimeout means the backoff ceiling was reached on 429/503.
	ErrAssetTimeout = errors.New("asset fetch timed out after backoff")
	// ErrUnexpectedStatus is any other non-200 status.
	ErrUnexpectedStatus = errors.New("unexpected upstream status")
	// ErrInvalidIdentifier is an identifier that cannot be mapped to a cache path.
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrNoPlaceholderImage means placeholder-image was requested but no
	// placeholder URL is configured.
	ErrNoPlaceholderImage = errors.New("no placeholder image configured")
)

// AssetError is a failure to resolve one identifier. The grid assembler
// recovers from these by skipping the identifier or using a placeholder.
type AssetError struct {
	Identifier string
	StatusCode int
	Err        error
}

func (e *AssetError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("asset %q: %s (status %d)", e.Identifier, e.Err, e.StatusCode)
	}
	return fmt.Sprintf("asset %q: %s", e.Identifier, e.Err)
}

func (e *AssetError) Unwrap() error { return e.Err }

// IsAssetFailure reports whether err is a per-identifier failure rather than
// an infrastructure error.
func IsAssetFailure(err error) bool {
	var assetErr *AssetError
	return errors.As(err, &assetErr)
}
