// Package state holds the client's reconciled projection of engine truth:
// open orders, depth views, prices, and known markets. It is a cache of
// server-confirmed events, never authoritative; every mutation comes from
// the event router's dispatch.
package state

import (
	"log/slog"
	"sync"

	"github.com/probolabs/probo-sync/internal/model"
)

// recentTradeCap bounds the fill history kept in memory.
const recentTradeCap = 256

// Store is the one mutable shared view. Mutations arrive serialized
// through the router's single dispatch point; reads may come from any
// goroutine.
type Store struct {
	mu sync.RWMutex

	openOrders  map[uint64]model.Order
	markets     map[string]model.Market
	publicDepth map[string]model.Depth
	scopedDepth map[string]model.Depth
	prices      map[priceKey]float64
	trades      []model.Trade
	lastError   string

	logger *slog.Logger
}

type priceKey struct {
	MarketID string
	Option   model.OptionType
}

// New creates an empty Store.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		openOrders:  make(map[uint64]model.Order),
		markets:     make(map[string]model.Market),
		publicDepth: make(map[string]model.Depth),
		scopedDepth: make(map[string]model.Depth),
		prices:      make(map[priceKey]float64),
		logger:      logger,
	}
}

// -----------------------------------------------------------------------------
// Mutations (router callbacks only)
// -----------------------------------------------------------------------------

// ApplyOrderPlaced inserts a confirmed order. Re-delivery of the same id
// is a no-op, guarding against duplicate events.
func (s *Store) ApplyOrderPlaced(o model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.openOrders[o.ID]; exists {
		s.logger.Debug("duplicate order placement ignored", "order_id", o.ID)
		return
	}
	s.openOrders[o.ID] = o
}

// ApplyOrderCancelled removes an order. Absent ids are a no-op.
func (s *Store) ApplyOrderCancelled(orderID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.openOrders, orderID)
}

// ApplyTrade records a fill. A trade is a signal only: the matched order's
// removal or resize arrives via a later OrderCancelled or snapshot, so the
// open-orders set is deliberately left untouched here.
func (s *Store) ApplyTrade(t model.Trade) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trades = append(s.trades, t)
	if len(s.trades) > recentTradeCap {
		s.trades = s.trades[len(s.trades)-recentTradeCap:]
	}
}

// ApplyOpenOrders replaces the open-orders set with the authoritative
// snapshot, superseding any incremental state.
func (s *Store) ApplyOpenOrders(orders []model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.openOrders = make(map[uint64]model.Order, len(orders))
	for _, o := range orders {
		s.openOrders[o.ID] = o
	}
}

// ApplyPublicDepth replaces a market's public book view. Full replacement
// only; partial merges of stale levels are a correctness hazard.
func (s *Store) ApplyPublicDepth(d model.Depth) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publicDepth[d.MarketID] = d
}

// ApplyScopedDepth replaces the depth view answering this client's own
// query, independent of the public view.
func (s *Store) ApplyScopedDepth(d model.Depth) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scopedDepth[d.MarketID] = d
}

// ApplyPrice upserts the reference price for one option of one market.
func (s *Store) ApplyPrice(p model.Price) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[priceKey{p.MarketID, p.Option}] = p.Price
}

// ApplyMarketCreated records a new market. Duplicate creation is a no-op.
func (s *Store) ApplyMarketCreated(m model.Market) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.markets[m.MarketID]; exists {
		return
	}
	s.markets[m.MarketID] = m
}

// ApplyError surfaces engine-reported failure text. It mutates nothing
// else.
func (s *Store) ApplyError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = message
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

// OpenOrders returns a copy of the open-orders set.
func (s *Store) OpenOrders() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Order, 0, len(s.openOrders))
	for _, o := range s.openOrders {
		out = append(out, o)
	}
	return out
}

// Order looks up one open order by id.
func (s *Store) Order(id uint64) (model.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.openOrders[id]
	return o, ok
}

// PublicDepth returns the public book view for a market.
func (s *Store) PublicDepth(marketID string) (model.Depth, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.publicDepth[marketID]
	return d, ok
}

// ScopedDepth returns the client-scoped depth view for a market.
func (s *Store) ScopedDepth(marketID string) (model.Depth, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.scopedDepth[marketID]
	return d, ok
}

// Price returns the last known price for one option of one market.
func (s *Store) Price(marketID string, option model.OptionType) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prices[priceKey{marketID, option}]
	return p, ok
}

// Prices returns all last known prices as a snapshot.
func (s *Store) Prices() []model.Price {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Price, 0, len(s.prices))
	for k, p := range s.prices {
		out = append(out, model.Price{MarketID: k.MarketID, Option: k.Option, Price: p})
	}
	return out
}

// Markets returns a copy of the known market descriptors.
func (s *Store) Markets() []model.Market {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Market, 0, len(s.markets))
	for _, m := range s.markets {
		out = append(out, m)
	}
	return out
}

// RecentTrades returns the recorded fill history, oldest first.
func (s *Store) RecentTrades() []model.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Trade, len(s.trades))
	copy(out, s.trades)
	return out
}

// LastError returns the most recent engine-reported error message, if any.
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}
