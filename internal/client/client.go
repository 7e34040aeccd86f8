// Package client ties the pieces together into a trading client: it keeps
// the two event streams connected, routes their events into the synced
// state, and exposes the engine's request operations with local intent
// validation.
package client

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/probolabs/probo-sync/internal/api"
	"github.com/probolabs/probo-sync/internal/config"
	"github.com/probolabs/probo-sync/internal/metrics"
	"github.com/probolabs/probo-sync/internal/model"
	"github.com/probolabs/probo-sync/internal/router"
	"github.com/probolabs/probo-sync/internal/session"
	"github.com/probolabs/probo-sync/internal/state"
	"github.com/probolabs/probo-sync/internal/wire"
)

// Observer receives market data as it is applied to state. The recorder
// satisfies it; a nil observer disables recording.
type Observer interface {
	RecordPrice(model.Price)
	RecordTrade(model.Trade)
}

// Trader is a synced client of one matching engine.
type Trader struct {
	cfg      config.TraderConfig
	clientID string
	logger   *slog.Logger

	api    *api.Client
	store  *state.Store
	router *router.Router
	obs    Observer

	mu       sync.Mutex
	sessions map[router.Stream]*session.Session
	started  bool

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Option customizes a Trader.
type Option func(*Trader)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Trader) {
		t.logger = logger
	}
}

// WithObserver attaches a market-data observer.
func WithObserver(obs Observer) Option {
	return func(t *Trader) {
		t.obs = obs
	}
}

// WithClientID overrides the generated session identity.
func WithClientID(id string) Option {
	return func(t *Trader) {
		t.clientID = id
	}
}

// WithAPIClient overrides the engine request client.
func WithAPIClient(c *api.Client) Option {
	return func(t *Trader) {
		t.api = c
	}
}

// New creates a Trader from config. The session identity is minted fresh
// per instance; the engine uses it to address answers back to us.
func New(cfg config.TraderConfig, opts ...Option) *Trader {
	t := &Trader{
		cfg:      cfg,
		clientID: cfg.Instance.ID + "-" + uuid.NewString(),
		logger:   slog.Default(),
		sessions: make(map[router.Stream]*session.Session),
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.api == nil {
		t.api = api.NewClient(cfg.Engine.APIURL,
			api.WithTimeout(cfg.Engine.Timeout),
			api.WithRetries(cfg.Engine.MaxRetries, time.Second),
			api.WithLogger(t.logger),
		)
	}

	t.store = state.New(t.logger)
	t.router = router.New(t.clientID, t.logger)
	t.wireHandlers()

	return t
}

// ClientID returns this instance's session identity.
func (t *Trader) ClientID() string {
	return t.clientID
}

// State returns the synced state store.
func (t *Trader) State() *state.Store {
	return t.store
}

// RouterStats returns routing counters.
func (t *Trader) RouterStats() router.Stats {
	return t.router.Stats()
}

// wireHandlers connects routed events to state, and market data to the
// observer.
func (t *Trader) wireHandlers() {
	t.router.SetClientHandlers(router.ClientHandlers{
		OnOrderPlaced: t.store.ApplyOrderPlaced,
		OnOrderMatched: func(tr model.Trade) {
			t.store.ApplyTrade(tr)
			if t.obs != nil {
				t.obs.RecordTrade(tr)
			}
		},
		OnOrderCancelled: func(orderID uint64, _ string) {
			t.store.ApplyOrderCancelled(orderID)
		},
		OnOpenOrders:    t.store.ApplyOpenOrders,
		OnDepth:         t.store.ApplyScopedDepth,
		OnMarketCreated: t.store.ApplyMarketCreated,
		OnError: func(msg string) {
			t.store.ApplyError(msg)
			t.logger.Warn("engine rejected request", "message", msg)
		},
	})

	t.router.SetMarketHandlers(router.MarketHandlers{
		OnPrice: func(p model.Price) {
			t.store.ApplyPrice(p)
			if t.obs != nil {
				t.obs.RecordPrice(p)
			}
		},
		OnDepth: t.store.ApplyPublicDepth,
	})

	t.router.OnUnknown(func(ev wire.Event) {
		t.logger.Warn("unhandled event", "tag", ev.Tag)
	})
}

// Start connects both streams and begins the resync loop. It returns once
// the connect loops are running; connection failures are retried in the
// background.
func (t *Trader) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return nil
	}
	t.started = true
	t.mu.Unlock()

	t.ctx, t.cancel = context.WithCancel(ctx)

	t.wg.Add(2)
	go t.runStream(router.StreamClient, t.clientID)
	go t.runStream(router.StreamMarket, "")

	if t.cfg.Sync.ResyncInterval > 0 {
		t.wg.Add(1)
		go t.resyncLoop()
	}

	t.logger.Info("trader started",
		"client_id", t.clientID,
		"api_url", t.cfg.Engine.APIURL,
		"ws_url", t.cfg.Engine.WSURL,
	)
	return nil
}

// Close shuts down both streams. Idempotent.
func (t *Trader) Close() error {
	t.closeOnce.Do(func() {
		t.logger.Info("closing trader")
		if t.cancel != nil {
			t.cancel()
		}
		t.mu.Lock()
		for _, s := range t.sessions {
			s.Close()
		}
		t.mu.Unlock()
		t.wg.Wait()
	})
	return nil
}

// runStream keeps one stream connected, reconnecting with exponential
// backoff after drops. A fresh Session is built per attempt; sessions are
// single-shot.
func (t *Trader) runStream(stream router.Stream, identity string) {
	defer t.wg.Done()

	delay := t.cfg.Streams.ReconnectBaseDelay
	if delay <= 0 {
		delay = time.Second
	}
	maxDelay := t.cfg.Streams.ReconnectMaxDelay
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}
	backoff := delay

	for t.ctx.Err() == nil {
		s := session.New(session.Config{
			Endpoint:         t.cfg.Engine.WSURL,
			Identity:         identity,
			HandshakeTimeout: t.cfg.Streams.HandshakeTimeout,
			WriteTimeout:     t.cfg.Streams.WriteTimeout,
			PingInterval:     t.cfg.Streams.PingInterval,
			PingTimeout:      t.cfg.Streams.PingTimeout,
		}, t.logger.With("stream", string(stream)))

		t.router.Attach(s, stream)

		closed := make(chan error, 1)
		s.OnClose(func(reason error) {
			closed <- reason
		})

		t.setSession(stream, s)

		if err := s.Open(t.ctx); err != nil {
			if t.ctx.Err() != nil {
				return
			}
			t.logger.Warn("stream connect failed",
				"stream", stream,
				"error", err,
				"retry_in", backoff,
			)
		} else {
			backoff = delay
			t.logger.Info("stream connected", "stream", stream)

			if stream == router.StreamClient {
				go t.resync()
			}

			select {
			case reason := <-closed:
				if t.ctx.Err() != nil {
					return
				}
				t.logger.Warn("stream disconnected",
					"stream", stream,
					"reason", reason,
					"retry_in", backoff,
				)
			case <-t.ctx.Done():
				s.Close()
				return
			}
		}

		metrics.Reconnects.WithLabelValues(string(stream)).Inc()

		select {
		case <-t.ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxDelay {
			backoff = maxDelay
		}
	}
}

func (t *Trader) setSession(stream router.Stream, s *session.Session) {
	t.mu.Lock()
	t.sessions[stream] = s
	t.mu.Unlock()
}

// resyncLoop re-requests the authoritative open-orders snapshot on the
// configured interval.
func (t *Trader) resyncLoop() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.cfg.Sync.ResyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.ctx.Done():
			return
		case <-ticker.C:
			t.resync()
		}
	}
}

// resync requests an open-orders snapshot for every known market. The
// snapshot arrives as an OpenOrders event and replaces local state.
func (t *Trader) resync() {
	ctx, cancel := context.WithTimeout(t.ctx, 10*time.Second)
	defer cancel()

	for _, m := range t.store.Markets() {
		if err := t.RequestOpenOrders(ctx, m.MarketID); err != nil {
			t.logger.Warn("resync request failed",
				"market_id", m.MarketID,
				"error", err,
			)
		}
	}
}
