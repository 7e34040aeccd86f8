// Package router demultiplexes decoded events into the two logical
// streams: client-scoped (this session's order, trade, and error events)
// and market-scoped (public prices and depth broadcasts). All dispatch is
// serialized through one lock so downstream state sees a single writer
// even when two sessions deliver concurrently.
package router

import (
	"log/slog"
	"sync"

	"github.com/probolabs/probo-sync/internal/metrics"
	"github.com/probolabs/probo-sync/internal/model"
	"github.com/probolabs/probo-sync/internal/session"
	"github.com/probolabs/probo-sync/internal/wire"
)

// Stream names a logical stream for hooks and metrics.
type Stream string

const (
	StreamClient Stream = "client"
	StreamMarket Stream = "market"
)

// ClientHandlers receive events addressed to this session.
type ClientHandlers struct {
	OnOrderPlaced    func(model.Order)
	OnOrderMatched   func(model.Trade)
	OnOrderCancelled func(orderID uint64, marketID string)
	OnOpenOrders     func([]model.Order)
	OnDepth          func(model.Depth)
	OnMarketCreated  func(model.Market)
	OnError          func(message string)
}

// MarketHandlers receive public, session-independent events.
type MarketHandlers struct {
	OnPrice func(model.Price)
	OnDepth func(model.Depth)
}

// Stats contains routing counters.
type Stats struct {
	Received     int64
	Routed       int64
	DecodeErrors int64
	Unknown      int64
	ForeignDepth int64
}

// Router routes each event to exactly one handler on one logical stream.
type Router struct {
	clientID string
	logger   *slog.Logger

	client    ClientHandlers
	market    MarketHandlers
	onUnknown func(ev wire.Event)

	// dispatchMu serializes every dispatch: the single-writer discipline
	// for downstream state.
	dispatchMu sync.Mutex

	statsMu sync.Mutex
	stats   Stats
}

// New creates a Router scoped to the given client identity.
func New(clientID string, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		clientID: clientID,
		logger:   logger,
	}
}

// SetClientHandlers registers the client-scoped handler set.
func (r *Router) SetClientHandlers(h ClientHandlers) {
	r.dispatchMu.Lock()
	r.client = h
	r.dispatchMu.Unlock()
}

// SetMarketHandlers registers the market-scoped handler set.
func (r *Router) SetMarketHandlers(h MarketHandlers) {
	r.dispatchMu.Lock()
	r.market = h
	r.dispatchMu.Unlock()
}

// OnUnknown registers the hook for decoded events no handler claimed.
func (r *Router) OnUnknown(fn func(ev wire.Event)) {
	r.dispatchMu.Lock()
	r.onUnknown = fn
	r.dispatchMu.Unlock()
}

// Attach subscribes the router to a session's messages and decode errors.
// The stream label is used only for reporting; routing itself is decided
// by event content.
func (r *Router) Attach(s *session.Session, stream Stream) {
	s.OnMessage(r.Route)
	s.OnDecodeError(func(raw []byte, err error) {
		r.handleDecodeError(stream, raw, err)
	})
}

// Stats returns a snapshot of the routing counters.
func (r *Router) Stats() Stats {
	r.statsMu.Lock()
	defer r.statsMu.Unlock()
	return r.stats
}

// Route dispatches one event. Synchronous with respect to arrival order on
// the calling session; zero or one handler fires per event.
func (r *Router) Route(ev wire.Event) {
	r.dispatchMu.Lock()
	defer r.dispatchMu.Unlock()

	r.count(func(s *Stats) { s.Received++ })

	switch ev.Tag {
	case wire.TagOrderPlaced:
		if r.client.OnOrderPlaced != nil {
			r.client.OnOrderPlaced(ev.OrderPlaced.Order)
			r.routed(StreamClient, ev.Tag)
			return
		}

	case wire.TagOrderMatched:
		if r.client.OnOrderMatched != nil {
			r.client.OnOrderMatched(ev.OrderMatched.Trade)
			r.routed(StreamClient, ev.Tag)
			return
		}

	case wire.TagOrderCancelled:
		if r.client.OnOrderCancelled != nil {
			r.client.OnOrderCancelled(ev.OrderCancelled.OrderID, ev.OrderCancelled.MarketID)
			r.routed(StreamClient, ev.Tag)
			return
		}

	case wire.TagOpenOrders:
		if r.client.OnOpenOrders != nil {
			r.client.OnOpenOrders(ev.OpenOrders.Orders)
			r.routed(StreamClient, ev.Tag)
			return
		}

	case wire.TagMarketCreated:
		if r.client.OnMarketCreated != nil {
			r.client.OnMarketCreated(model.Market{MarketID: ev.MarketCreated.MarketID})
			r.routed(StreamClient, ev.Tag)
			return
		}

	case wire.TagError:
		if r.client.OnError != nil {
			r.client.OnError(ev.Error.Message)
			r.routed(StreamClient, ev.Tag)
			return
		}

	case wire.TagPrice:
		if r.market.OnPrice != nil {
			r.market.OnPrice(*ev.Price)
			r.routed(StreamMarket, ev.Tag)
			return
		}

	case wire.TagDepth:
		r.routeDepth(*ev.Depth)
		return
	}

	r.unknown(ev)
}

// routeDepth applies the overloaded-tag rule: a non-empty client_id marks
// the answer to a specific client's query and goes only to that client; an
// empty client_id marks the public broadcast. An answer addressed to a
// different session is dropped, never misdelivered.
func (r *Router) routeDepth(d model.Depth) {
	switch {
	case d.ClientID == "":
		if r.market.OnDepth != nil {
			r.market.OnDepth(d)
			r.routed(StreamMarket, wire.TagDepth)
			return
		}

	case d.ClientID == r.clientID:
		if r.client.OnDepth != nil {
			r.client.OnDepth(d)
			r.routed(StreamClient, wire.TagDepth)
			return
		}

	default:
		r.logger.Debug("dropping depth answer for another session",
			"market_id", d.MarketID,
			"client_id", d.ClientID,
		)
		r.count(func(s *Stats) { s.ForeignDepth++ })
		metrics.ForeignDepthDropped.Inc()
		return
	}

	r.unknown(wire.Event{Tag: wire.TagDepth, Depth: &d})
}

// handleDecodeError reports a dropped, undecodable message.
func (r *Router) handleDecodeError(stream Stream, raw []byte, err error) {
	r.logger.Warn("dropping undecodable message",
		"stream", stream,
		"bytes", len(raw),
		"error", err,
	)
	r.count(func(s *Stats) { s.DecodeErrors++ })
	metrics.DecodeErrors.WithLabelValues(string(stream)).Inc()
}

func (r *Router) routed(stream Stream, tag wire.EventTag) {
	r.count(func(s *Stats) { s.Routed++ })
	metrics.EventsRouted.WithLabelValues(string(stream), string(tag)).Inc()
}

func (r *Router) unknown(ev wire.Event) {
	r.count(func(s *Stats) { s.Unknown++ })
	metrics.UnknownEvents.WithLabelValues(string(streamFor(ev.Tag))).Inc()
	if r.onUnknown != nil {
		r.onUnknown(ev)
	} else {
		r.logger.Debug("no handler for event", "tag", ev.Tag)
	}
}

func (r *Router) count(fn func(*Stats)) {
	r.statsMu.Lock()
	fn(&r.stats)
	r.statsMu.Unlock()
}

// streamFor reports which logical stream a tag belongs to, for labeling.
func streamFor(tag wire.EventTag) Stream {
	switch tag {
	case wire.TagPrice:
		return StreamMarket
	default:
		return StreamClient
	}
}
