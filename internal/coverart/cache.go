// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package coverart

import (
	"path/filepath"
	"strings"
)

const cacheExt = ".jpg"

// CachePath maps an identifier to its file in the cache:
// {root}/{id[0]}/{id[0:1]}/{id[0:2]}/{id}.jpg. The leading characters shard
// the directory tree so no single directory grows unbounded.
func CachePath(root, identifier string) (string, error) {
	if len(identifier) < 2 || strings.ContainsAny(identifier, `/\`) || strings.Contains(identifier, "..") {
		return "", &AssetError{Identifier: identifier, Err: ErrInvalidIdentifier}
	}
	return filepath.Join(
		root,
		identifier[0:1],
		identifier[0:1],
		identifier[0:2],
		identifier+cacheExt,
	), nil
}
