package recorder

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/probolabs/probo-sync/internal/config"
	"github.com/probolabs/probo-sync/internal/model"
)

type fakeBatchResults struct {
	n int
}

func (f *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	f.n--
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeBatchResults) Query() (pgx.Rows, error) { return nil, nil }
func (f *fakeBatchResults) QueryRow() pgx.Row        { return nil }
func (f *fakeBatchResults) Close() error             { return nil }

type fakeInserter struct {
	mu      sync.Mutex
	batches []*pgx.Batch
}

func (f *fakeInserter) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, b)
	return &fakeBatchResults{n: b.Len()}
}

func (f *fakeInserter) totalQueued() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.batches {
		n += b.Len()
	}
	return n
}

func testConfig() config.RecorderConfig {
	return config.RecorderConfig{
		BatchSize:     3,
		FlushInterval: time.Hour, // effectively never during tests
	}
}

func TestFlushOnBatchSize(t *testing.T) {
	db := &fakeInserter{}
	r := New(testConfig(), db, slog.Default())
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer r.Stop(context.Background())

	for i := 0; i < 3; i++ {
		r.RecordPrice(model.Price{MarketID: "mkt1", Option: model.OptionYes, Price: 5.0})
	}

	if got := db.totalQueued(); got != 3 {
		t.Errorf("expected 3 queued rows after batch fill, got %d", got)
	}
}

func TestNoFlushBelowBatchSize(t *testing.T) {
	db := &fakeInserter{}
	r := New(testConfig(), db, slog.Default())
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer r.Stop(context.Background())

	r.RecordPrice(model.Price{MarketID: "mkt1", Option: model.OptionYes, Price: 5.0})

	if got := db.totalQueued(); got != 0 {
		t.Errorf("expected no flush below batch size, got %d rows", got)
	}
}

func TestStopFlushesRemaining(t *testing.T) {
	db := &fakeInserter{}
	r := New(testConfig(), db, slog.Default())
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	r.RecordPrice(model.Price{MarketID: "mkt1", Option: model.OptionYes, Price: 5.0})
	r.RecordTrade(model.Trade{
		BuyOrderID:  1,
		SellOrderID: 2,
		MarketID:    "mkt1",
		Option:      model.OptionYes,
		Price:       5.0,
		Quantity:    10,
		Timestamp:   time.Now().Unix(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if got := db.totalQueued(); got != 2 {
		t.Errorf("expected 2 rows flushed on stop, got %d", got)
	}
}

func TestIntervalFlush(t *testing.T) {
	db := &fakeInserter{}
	cfg := config.RecorderConfig{BatchSize: 100, FlushInterval: 20 * time.Millisecond}
	r := New(cfg, db, slog.Default())
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer r.Stop(context.Background())

	r.RecordPrice(model.Price{MarketID: "mkt1", Option: model.OptionNo, Price: 4.5})

	deadline := time.Now().Add(time.Second)
	for db.totalQueued() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("interval flush never happened")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
