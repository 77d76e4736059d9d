// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "covergrid"

var (
	CacheHits = MustRegisterCounter(namespace, "cache", "hits_total",
		"Asset lookups answered from the on-disk cache.")
	CacheMisses = MustRegisterCounter(namespace, "cache", "misses_total",
		"Asset lookups that required a download.")
	UpstreamResponses = MustRegisterCounterVec(namespace, "upstream", "responses_total",
		"Responses received from the remote asset host, by status code.", "code")
	BackoffSleeps = MustRegisterCounter(namespace, "upstream", "backoff_sleeps_total",
		"Backoff sleeps taken after a 429 or 503 from the remote asset host.")
	Placeholders = MustRegisterCounterVec(namespace, "grid", "placeholders_total",
		"Tiles filled by the missing-art policy, by policy.", "policy")
	Renders = MustRegisterCounterVec(namespace, "grid", "renders_total",
		"Grid requests handled, by output format and outcome.", "format", "outcome")
)

// MustRegisterCounter creates and registers a counter.
// Must be called from `init`.
func MustRegisterCounter(namespace, component, name, help string) prometheus.Counter {
	m := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: component,
		Name:      name,
		Help:      help,
	})
	prometheus.MustRegister(m)
	return m
}

// MustRegisterCounterVec creates and registers a counter vector.
// Must be called from `init`.
func MustRegisterCounterVec(namespace, component, name, help string, labelNames ...string) *prometheus.CounterVec {
	m := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: component,
		Name:      name,
		Help:      help,
	}, labelNames)
	prometheus.MustRegister(m)
	return m
}
