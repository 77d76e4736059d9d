// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/specialistvlad/covergrid/internal/gridconfig"
)

const maxBodyBytes = 1 << 20

var errMalformedBody = errors.New("malformed request body")

// parseQuery reads the GET form of a grid request. identifiers is a comma
// separated list (release_mbids is accepted as an older name), tiles a
// semicolon separated list of cell addresses.
//
// A numeric field that is not an integer is replaced by a value Validate
// rejects for the same field, so fields are still reported in validation
// order. unparsed maps such fields to their original text.
func parseQuery(r *http.Request) (req gridconfig.Request, format string, unparsed map[string]string) {
	q := r.URL.Query()
	format = q.Get("format")
	unparsed = map[string]string{}

	atoi := func(field, raw string, invalid int) int {
		n, err := strconv.Atoi(raw)
		if err != nil {
			unparsed[field] = raw
			return invalid
		}
		return n
	}

	req = gridconfig.Request{
		Dimension:        atoi("dimension", r.PathValue("dimension"), 0),
		ImageSize:        atoi("image_size", r.PathValue("image_size"), -1),
		Background:       q.Get("background"),
		SkipMissing:      q.Get("skip_missing"),
		MissingArtPolicy: q.Get("missing_art_policy"),
	}

	if raw := q.Get("layout"); raw != "" {
		n := atoi("layout", raw, -1)
		req.Layout = &n
	}
	if raw := q.Get("tiles"); raw != "" {
		req.Tiles = splitList(raw, ";")
	}

	ids := q.Get("identifiers")
	if ids == "" {
		ids = q.Get("release_mbids")
	}
	if ids != "" {
		req.Identifiers = splitList(ids, ",")
	}
	return req, format, unparsed
}

// splitList splits s on sep and trims every element. Empty elements are kept:
// an empty identifier is a null entry in the queue.
func splitList(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// jsonRequest is the POST form of a grid request.
type jsonRequest struct {
	Dimension        int             `json:"dimension"`
	ImageSize        int             `json:"image_size"`
	Background       string          `json:"background"`
	SkipMissing      json.RawMessage `json:"skip_missing"`
	MissingArtPolicy string          `json:"missing_art_policy"`
	Layout           *int            `json:"layout"`
	Tiles            []string        `json:"tiles"`
	Identifiers      []*string       `json:"identifiers"`
	Format           string          `json:"format"`
}

func parseJSON(body io.Reader) (gridconfig.Request, string, error) {
	var in jsonRequest
	dec := json.NewDecoder(io.LimitReader(body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return gridconfig.Request{}, "", fmt.Errorf("%w: %w", errMalformedBody, err)
	}

	skip, err := skipMissingText(in.SkipMissing)
	if err != nil {
		return gridconfig.Request{}, in.Format, err
	}

	req := gridconfig.Request{
		Dimension:        in.Dimension,
		ImageSize:        in.ImageSize,
		Background:       in.Background,
		SkipMissing:      skip,
		MissingArtPolicy: in.MissingArtPolicy,
		Layout:           in.Layout,
		Tiles:            in.Tiles,
	}
	if in.Identifiers != nil {
		req.Identifiers = make([]string, len(in.Identifiers))
		for i, id := range in.Identifiers {
			if id != nil {
				req.Identifiers[i] = *id
			}
		}
	}
	return req, in.Format, nil
}

// skipMissingText accepts a JSON boolean or a string and rejects any other
// type, so {"skip_missing": 1} is not silently read as true.
func skipMissingText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("%w: %w", errMalformedBody, err)
	}
	switch v := v.(type) {
	case nil:
		return "", nil
	case bool:
		return strconv.FormatBool(v), nil
	case string:
		return v, nil
	default:
		return "", &gridconfig.ValidationError{
			Field: "skip_missing", Value: string(raw), Err: gridconfig.ErrSkipMissingNotBool,
		}
	}
}
