// Package recorder archives market data the client observes — price ticks
// and fills — into Postgres in batches. Recording is best-effort and sits
// outside the sync path: a failed flush is logged and dropped, never
// propagated into state.
package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/probolabs/probo-sync/internal/config"
	"github.com/probolabs/probo-sync/internal/metrics"
	"github.com/probolabs/probo-sync/internal/model"
)

// Inserter is the slice of the pgx pool the recorder needs. *pgxpool.Pool
// satisfies it.
type Inserter interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type priceRow struct {
	ReceivedAt int64 // µs since epoch
	MarketID   string
	Option     string
	Price      float64
}

type tradeRow struct {
	ReceivedAt  int64
	BuyOrderID  uint64
	SellOrderID uint64
	MarketID    string
	Option      string
	Price       float64
	Quantity    uint32
	Timestamp   int64
}

// Recorder batches observed prices and trades and flushes them on size or
// interval.
type Recorder struct {
	cfg    config.RecorderConfig
	db     Inserter
	logger *slog.Logger

	mu     sync.Mutex
	prices []priceRow
	trades []tradeRow

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Recorder writing through db.
func New(cfg config.RecorderConfig, db Inserter, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		cfg:    cfg,
		db:     db,
		logger: logger,
		prices: make([]priceRow, 0, cfg.BatchSize),
		trades: make([]tradeRow, 0, cfg.BatchSize),
	}
}

// Start begins the periodic flush loop.
func (r *Recorder) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go r.flushLoop()

	r.logger.Info("recorder started",
		"batch_size", r.cfg.BatchSize,
		"flush_interval", r.cfg.FlushInterval,
	)
	return nil
}

// Stop flushes remaining rows and shuts down.
func (r *Recorder) Stop(ctx context.Context) error {
	r.logger.Info("stopping recorder")

	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		r.logger.Warn("recorder stop timed out")
	}

	// Final flush
	r.flush(context.Background())
	return nil
}

// RecordPrice queues one observed price tick.
func (r *Recorder) RecordPrice(p model.Price) {
	r.mu.Lock()
	r.prices = append(r.prices, priceRow{
		ReceivedAt: time.Now().UnixMicro(),
		MarketID:   p.MarketID,
		Option:     string(p.Option),
		Price:      p.Price,
	})
	full := len(r.prices) >= r.cfg.BatchSize
	r.mu.Unlock()

	if full {
		r.flush(r.ctx)
	}
}

// RecordTrade queues one observed fill.
func (r *Recorder) RecordTrade(t model.Trade) {
	r.mu.Lock()
	r.trades = append(r.trades, tradeRow{
		ReceivedAt:  time.Now().UnixMicro(),
		BuyOrderID:  t.BuyOrderID,
		SellOrderID: t.SellOrderID,
		MarketID:    t.MarketID,
		Option:      string(t.Option),
		Price:       t.Price,
		Quantity:    t.Quantity,
		Timestamp:   t.Timestamp,
	})
	full := len(r.trades) >= r.cfg.BatchSize
	r.mu.Unlock()

	if full {
		r.flush(r.ctx)
	}
}

// flushLoop flushes on the configured interval.
func (r *Recorder) flushLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.flush(r.ctx)
		}
	}
}

// flush writes queued rows to the database.
func (r *Recorder) flush(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	r.mu.Lock()
	prices := r.prices
	trades := r.trades
	r.prices = make([]priceRow, 0, r.cfg.BatchSize)
	r.trades = make([]tradeRow, 0, r.cfg.BatchSize)
	r.mu.Unlock()

	if len(prices) == 0 && len(trades) == 0 {
		return
	}

	start := time.Now()

	batch := &pgx.Batch{}
	for _, p := range prices {
		batch.Queue(`
			INSERT INTO price_ticks (received_at, market_id, option, price)
			VALUES ($1, $2, $3, $4)
		`, p.ReceivedAt, p.MarketID, p.Option, p.Price)
	}
	for _, t := range trades {
		batch.Queue(`
			INSERT INTO fills (received_at, buy_order_id, sell_order_id, market_id, option, price, quantity, ts)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (buy_order_id, sell_order_id, ts) DO NOTHING
		`, t.ReceivedAt, t.BuyOrderID, t.SellOrderID, t.MarketID, t.Option, t.Price, t.Quantity, t.Timestamp)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error("batch insert failed",
				"error", err,
				"prices", len(prices),
				"trades", len(trades),
			)
			return
		}
	}

	metrics.RecorderRows.WithLabelValues("price_ticks").Add(float64(len(prices)))
	metrics.RecorderRows.WithLabelValues("fills").Add(float64(len(trades)))

	r.logger.Debug("flushed rows",
		"prices", len(prices),
		"trades", len(trades),
		"duration", time.Since(start),
	)
}
