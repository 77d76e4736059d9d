// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package httpapi exposes grid rendering over HTTP.
//
// Routes:
//
//	GET  /coverart/grid/{dimension}/{image_size}/   query-string request
//	POST /coverart/grid                             JSON request
//
// Invalid requests are answered with 400, everything else that goes wrong
// with 500. Both carry a JSON body of the form {"error": "..."}.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/specialistvlad/covergrid/internal/ctxlog"
	"github.com/specialistvlad/covergrid/internal/gridconfig"
	"github.com/specialistvlad/covergrid/internal/grid"
	"github.com/specialistvlad/covergrid/internal/layout"
	"github.com/specialistvlad/covergrid/internal/metrics"
	"github.com/specialistvlad/covergrid/internal/render"
)

// ErrInvalidMBID is returned in strict mode for an identifier that is not a UUID.
var ErrInvalidMBID = errors.New("identifier is not a valid MBID")

// Builder produces the placements for a validated grid.
type Builder interface {
	Build(ctx context.Context, cfg *gridconfig.Config) ([]grid.Placement, error)
}

// Options tunes request handling.
type Options struct {
	// RequireUUID rejects any non-empty identifier that does not parse as a UUID.
	RequireUUID bool
	// Logger is the base logger for per-request loggers. Nil means slog.Default().
	Logger *slog.Logger
}

// Handler serves the grid routes.
type Handler struct {
	builder     Builder
	requireUUID bool
	logger      *slog.Logger
}

// NewHandler creates a Handler that renders grids built by builder.
func NewHandler(builder Builder, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{builder: builder, requireUUID: opts.RequireUUID, logger: logger}
}

// Register adds the grid routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("GET /coverart/grid/{dimension}/{image_size}", h.withRequestLogger(h.handleGet))
	mux.Handle("GET /coverart/grid/{dimension}/{image_size}/{$}", h.withRequestLogger(h.handleGet))
	mux.Handle("POST /coverart/grid", h.withRequestLogger(h.handlePost))
}

// withRequestLogger puts a logger tagged with a fresh request id in the
// request context.
func (h *Handler) withRequestLogger(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := h.logger.With("request_id", uuid.NewString(), "method", r.Method, "path", r.URL.Path)
		logger.Debug("Grid request received.", "remote_addr", r.RemoteAddr)
		next(w, r.WithContext(ctxlog.WithLogger(r.Context(), logger)))
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	req, format, unparsed := parseQuery(r)
	h.serve(w, r, req, format, unparsed)
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	req, format, err := parseJSON(r.Body)
	if err != nil {
		h.fail(w, r, format, err)
		return
	}
	h.serve(w, r, req, format, nil)
}

// serve validates and renders req. unparsed holds the original text of
// numeric fields the transport could not read, for the error message.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, req gridconfig.Request, format string, unparsed map[string]string) {
	ctx := r.Context()
	logger := ctxlog.FromContext(ctx)

	cfg, err := gridconfig.Validate(req)
	if err != nil {
		var verr *gridconfig.ValidationError
		if errors.As(err, &verr) {
			if raw, ok := unparsed[verr.Field]; ok {
				verr.Value = raw
			}
		}
		h.fail(w, r, format, err)
		return
	}
	if h.requireUUID {
		if err := checkUUIDs(cfg.Identifiers); err != nil {
			h.fail(w, r, format, err)
			return
		}
	}
	renderer, err := render.New(format, cfg.Background)
	if err != nil {
		h.fail(w, r, format, err)
		return
	}

	placements, err := h.builder.Build(ctx, cfg)
	if err != nil {
		h.fail(w, r, format, err)
		return
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, placements, cfg.ImageSize, cfg.Background); err != nil {
		h.fail(w, r, format, err)
		return
	}

	metrics.Renders.WithLabelValues(formatLabel(format), "ok").Inc()
	logger.Info("Grid rendered.",
		"dimension", cfg.Dimension,
		"image_size", cfg.ImageSize,
		"tiles", len(placements),
		"bytes", buf.Len(),
	)
	w.Header().Set("Content-Type", renderer.ContentType())
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Warn("Failed to write grid response.", "error", err)
	}
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, gridconfig.ErrConfigInvalid),
		errors.Is(err, layout.ErrAddressInvalid),
		errors.Is(err, layout.ErrLayoutOutOfRange),
		errors.Is(err, render.ErrUnsupportedFormat),
		errors.Is(err, ErrInvalidMBID),
		errors.Is(err, errMalformedBody):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, format string, err error) {
	logger := ctxlog.FromContext(r.Context())
	status := statusFor(err)
	if status == http.StatusBadRequest {
		metrics.Renders.WithLabelValues(formatLabel(format), "invalid").Inc()
		logger.Info("Rejected grid request.", "error", err)
	} else {
		metrics.Renders.WithLabelValues(formatLabel(format), "error").Inc()
		logger.Error("Grid request failed.", "error", err)
	}
	writeError(w, status, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func checkUUIDs(identifiers []string) error {
	for _, id := range identifiers {
		if id == "" {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidMBID, id)
		}
	}
	return nil
}

// formatLabel bounds the metric label to known formats.
func formatLabel(format string) string {
	format = strings.ToLower(format)
	switch format {
	case "", "jpg", "jpeg":
		return "jpg"
	case "png", "svg":
		return format
	default:
		return "other"
	}
}
