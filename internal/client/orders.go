package client

import (
	"context"
	"fmt"

	"github.com/probolabs/probo-sync/internal/api"
	"github.com/probolabs/probo-sync/internal/metrics"
	"github.com/probolabs/probo-sync/internal/model"
	"github.com/probolabs/probo-sync/internal/validate"
)

// Requests are acknowledged transport-level only; the outcome arrives as an
// event on the client stream. Each operation validates the intent locally
// first so a malformed request never leaves the process.

// PlaceOrder submits a new-order intent. Confirmation arrives as an
// OrderPlaced event; until then the order is not in local state.
func (t *Trader) PlaceOrder(ctx context.Context, marketID string, option model.OptionType, orderType model.OrderType, price float64, quantity uint32) error {
	if err := validate.PlaceOrder(marketID, option, orderType, price, quantity); err != nil {
		t.countRequest("place_order", err)
		return fmt.Errorf("place order: %w", err)
	}

	err := t.api.PlaceOrder(ctx, api.PlaceOrderRequest{
		UserID:    t.cfg.User.ID,
		MarketID:  marketID,
		Option:    option,
		OrderType: orderType,
		Price:     price,
		Quantity:  quantity,
		ClientID:  t.clientID,
	})
	t.countRequest("place_order", err)
	if err != nil {
		return fmt.Errorf("place order: %w", err)
	}
	return nil
}

// CancelOrder asks the engine to remove a resting order. The order stays in
// local state until the OrderCancelled event confirms removal.
func (t *Trader) CancelOrder(ctx context.Context, marketID string, option model.OptionType, orderType model.OrderType, price float64, orderID uint64) error {
	if err := validate.CancelOrder(marketID, option, orderType, price); err != nil {
		t.countRequest("cancel_order", err)
		return fmt.Errorf("cancel order: %w", err)
	}

	err := t.api.CancelOrder(ctx, api.CancelOrderRequest{
		MarketID:  marketID,
		Option:    option,
		OrderType: orderType,
		Price:     price,
		OrderID:   orderID,
		ClientID:  t.clientID,
	})
	t.countRequest("cancel_order", err)
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	return nil
}

// CreateMarket asks the engine to open a new market.
func (t *Trader) CreateMarket(ctx context.Context, marketID, question string) error {
	if err := validate.CreateMarket(marketID, question); err != nil {
		t.countRequest("create_market", err)
		return fmt.Errorf("create market: %w", err)
	}

	err := t.api.CreateMarket(ctx, api.CreateMarketRequest{
		MarketID: marketID,
		Question: question,
		ClientID: t.clientID,
	})
	t.countRequest("create_market", err)
	if err != nil {
		return fmt.Errorf("create market: %w", err)
	}
	return nil
}

// RequestOpenOrders triggers an OpenOrders snapshot for one market.
func (t *Trader) RequestOpenOrders(ctx context.Context, marketID string) error {
	if err := validate.Market(marketID); err != nil {
		t.countRequest("open_orders", err)
		return fmt.Errorf("open orders: %w", err)
	}

	err := t.api.GetOpenOrders(ctx, api.GetOpenOrdersRequest{
		UserID:   t.cfg.User.ID,
		MarketID: marketID,
		ClientID: t.clientID,
	})
	t.countRequest("open_orders", err)
	if err != nil {
		return fmt.Errorf("open orders: %w", err)
	}
	return nil
}

// RequestDepth triggers a client-scoped depth answer for one market.
func (t *Trader) RequestDepth(ctx context.Context, marketID string) error {
	if err := validate.Market(marketID); err != nil {
		t.countRequest("depth", err)
		return fmt.Errorf("depth: %w", err)
	}

	err := t.api.GetMarketDepth(ctx, api.GetMarketDepthRequest{
		MarketID: marketID,
		ClientID: t.clientID,
	})
	t.countRequest("depth", err)
	if err != nil {
		return fmt.Errorf("depth: %w", err)
	}
	return nil
}

func (t *Trader) countRequest(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.Requests.WithLabelValues(op, outcome).Inc()
}
