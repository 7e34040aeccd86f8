// Package metrics provides Prometheus instrumentation.
//
// Key metrics:
//   - Event routing volume and decode failures per stream
//   - Dropped foreign depth answers
//   - Session reconnect attempts
//   - Engine request volume by operation
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsRouted counts events dispatched to a handler, by stream and tag.
	EventsRouted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "probo_events_routed_total",
			Help: "Events dispatched to a handler",
		},
		[]string{"stream", "tag"},
	)

	// DecodeErrors counts messages dropped because they failed to decode.
	DecodeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "probo_decode_errors_total",
			Help: "Messages dropped due to decode failure",
		},
		[]string{"stream"},
	)

	// UnknownEvents counts decoded events no handler claimed.
	UnknownEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "probo_unknown_events_total",
			Help: "Decoded events with no matching handler",
		},
		[]string{"stream"},
	)

	// ForeignDepthDropped counts client-scoped depth answers addressed to a
	// different session.
	ForeignDepthDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "probo_foreign_depth_dropped_total",
			Help: "Client-scoped depth answers dropped because they belong to another session",
		},
	)

	// Reconnects counts stream reconnect attempts.
	Reconnects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "probo_session_reconnects_total",
			Help: "Stream reconnect attempts",
		},
		[]string{"stream"},
	)

	// Requests counts engine requests by operation and outcome.
	Requests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "probo_engine_requests_total",
			Help: "Requests sent to the matching engine",
		},
		[]string{"op", "outcome"},
	)

	// RecorderRows counts rows archived by the recorder.
	RecorderRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "probo_recorder_rows_total",
			Help: "Rows written by the market-data recorder",
		},
		[]string{"table"},
	)
)
