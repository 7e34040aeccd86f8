package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/probolabs/probo-sync/internal/config"
	"github.com/probolabs/probo-sync/internal/model"
)

// fakeEngine is a minimal matching engine: an HTTP request surface and a
// WebSocket event surface. Confirmations for accepted requests are pushed
// asynchronously to the identified client connection, like the real engine.
type fakeEngine struct {
	t   *testing.T
	ws  *httptest.Server
	api *httptest.Server

	mu          sync.Mutex
	clientConn  *websocket.Conn
	clientConns int
	apiHits     int
}

func newFakeEngine(t *testing.T) *fakeEngine {
	e := &fakeEngine{t: t}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	e.ws = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if r.URL.Query().Get("client_id") != "" {
			e.mu.Lock()
			e.clientConn = conn
			e.clientConns++
			e.mu.Unlock()
		}

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))

	e.api = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.mu.Lock()
		e.apiHits++
		e.mu.Unlock()

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		switch r.URL.Path {
		case "/order":
			e.pushToClient(fmt.Sprintf(
				`{"OrderPlaced":{"order":{"id":42,"user_id":7,"market_id":%q,"option":%q,"order_type":%q,"price":%v,"quantity":%v,"timestamp":1},"client_id":%q}}`,
				req["market_id"], req["option"], req["order_type"], req["price"], req["quantity"], req["client_id"],
			))
		case "/cancel":
			e.pushToClient(fmt.Sprintf(
				`{"OrderCancelled":{"order_id":%v,"market_id":%q,"client_id":%q}}`,
				req["order_id"], req["market_id"], req["client_id"],
			))
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))

	return e
}

func (e *fakeEngine) pushToClient(frame string) {
	e.mu.Lock()
	conn := e.clientConn
	e.mu.Unlock()
	if conn == nil {
		e.t.Log("no client connection to push to")
		return
	}
	conn.WriteMessage(websocket.TextMessage, []byte(frame))
}

func (e *fakeEngine) dropClientConn() {
	e.mu.Lock()
	conn := e.clientConn
	e.clientConn = nil
	e.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

func (e *fakeEngine) clientConnCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clientConns
}

func (e *fakeEngine) hits() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apiHits
}

func (e *fakeEngine) close() {
	e.ws.Close()
	e.api.Close()
}

func (e *fakeEngine) traderConfig() config.TraderConfig {
	return config.TraderConfig{
		Instance: config.InstanceConfig{ID: "test"},
		Engine: config.EngineConfig{
			APIURL:  e.api.URL,
			WSURL:   "ws" + strings.TrimPrefix(e.ws.URL, "http"),
			Timeout: 2 * time.Second,
		},
		User: config.UserConfig{ID: 7},
		Streams: config.StreamsConfig{
			ReconnectBaseDelay: 20 * time.Millisecond,
			ReconnectMaxDelay:  100 * time.Millisecond,
		},
	}
}

func waitFor(t *testing.T, what string, pred func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !pred() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestTrader_PlaceThenCancelRoundTrip(t *testing.T) {
	engine := newFakeEngine(t)
	defer engine.close()

	trader := New(engine.traderConfig(), WithClientID("c1"))
	if err := trader.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer trader.Close()

	waitFor(t, "client stream", func() bool { return engine.clientConnCount() >= 1 })

	// No optimistic insert: state must stay empty until the event lands.
	if err := trader.PlaceOrder(context.Background(), "mkt1", model.OptionYes, model.OrderBuy, 5.0, 10); err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	waitFor(t, "OrderPlaced to apply", func() bool {
		_, ok := trader.State().Order(42)
		return ok
	})

	o, _ := trader.State().Order(42)
	if o.MarketID != "mkt1" || o.Price != 5.0 || o.Quantity != 10 {
		t.Errorf("synced order = %+v, want mkt1/5.0/10", o)
	}

	if err := trader.CancelOrder(context.Background(), "mkt1", model.OptionYes, model.OrderBuy, 5.0, 42); err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}

	waitFor(t, "OrderCancelled to apply", func() bool {
		_, ok := trader.State().Order(42)
		return !ok
	})
}

func TestTrader_RejectsInvalidIntentLocally(t *testing.T) {
	engine := newFakeEngine(t)
	defer engine.close()

	trader := New(engine.traderConfig(), WithClientID("c1"))
	if err := trader.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer trader.Close()

	waitFor(t, "client stream", func() bool { return engine.clientConnCount() >= 1 })
	before := engine.hits()

	// Off-grid price, out-of-range price, zero quantity: all rejected
	// before any request leaves the process.
	if err := trader.PlaceOrder(context.Background(), "mkt1", model.OptionYes, model.OrderBuy, 5.05, 10); err == nil {
		t.Error("off-grid price accepted")
	}
	if err := trader.PlaceOrder(context.Background(), "mkt1", model.OptionYes, model.OrderBuy, 10.0, 10); err == nil {
		t.Error("out-of-range price accepted")
	}
	if err := trader.PlaceOrder(context.Background(), "mkt1", model.OptionYes, model.OrderBuy, 5.0, 0); err == nil {
		t.Error("zero quantity accepted")
	}

	if got := engine.hits(); got != before {
		t.Errorf("engine saw %d extra requests, want 0", got-before)
	}
}

func TestTrader_ReconnectsAfterDrop(t *testing.T) {
	engine := newFakeEngine(t)
	defer engine.close()

	trader := New(engine.traderConfig(), WithClientID("c1"))
	if err := trader.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer trader.Close()

	waitFor(t, "client stream", func() bool { return engine.clientConnCount() >= 1 })

	engine.dropClientConn()

	waitFor(t, "reconnect", func() bool { return engine.clientConnCount() >= 2 })

	// The reconnected stream still delivers into state.
	if err := trader.PlaceOrder(context.Background(), "mkt1", model.OptionNo, model.OrderSell, 4.5, 5); err != nil {
		t.Fatalf("PlaceOrder after reconnect failed: %v", err)
	}
	waitFor(t, "OrderPlaced after reconnect", func() bool {
		_, ok := trader.State().Order(42)
		return ok
	})
}

func TestTrader_CloseIdempotent(t *testing.T) {
	engine := newFakeEngine(t)
	defer engine.close()

	trader := New(engine.traderConfig(), WithClientID("c1"))
	if err := trader.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := trader.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := trader.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
}

func TestTrader_ObserverSeesMarketData(t *testing.T) {
	engine := newFakeEngine(t)
	defer engine.close()

	obs := &captureObserver{}
	trader := New(engine.traderConfig(), WithClientID("c1"), WithObserver(obs))
	if err := trader.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer trader.Close()

	waitFor(t, "client stream", func() bool { return engine.clientConnCount() >= 1 })

	engine.pushToClient(`{"OrderMatched":{"trade":{"buy_order_id":1,"sell_order_id":2,"market_id":"mkt1","option":"Yes","price":5.0,"quantity":3,"timestamp":9},"client_id":"c1"}}`)

	waitFor(t, "trade to reach observer", func() bool { return obs.tradeCount() == 1 })
}

type captureObserver struct {
	mu     sync.Mutex
	prices []model.Price
	trades []model.Trade
}

func (o *captureObserver) RecordPrice(p model.Price) {
	o.mu.Lock()
	o.prices = append(o.prices, p)
	o.mu.Unlock()
}

func (o *captureObserver) RecordTrade(t model.Trade) {
	o.mu.Lock()
	o.trades = append(o.trades, t)
	o.mu.Unlock()
}

func (o *captureObserver) tradeCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.trades)
}
