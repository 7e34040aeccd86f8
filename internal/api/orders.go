package api

import (
	"context"

	"github.com/probolabs/probo-sync/internal/model"
)

// CreateMarketRequest asks the engine to open a new market. Confirmation
// arrives as a MarketCreated event.
type CreateMarketRequest struct {
	MarketID string `json:"market_id"`
	Question string `json:"question"`
	ClientID string `json:"client_id"`
}

// PlaceOrderRequest submits a new-order intent. Confirmation arrives as an
// OrderPlaced event, rejection as an Error event.
type PlaceOrderRequest struct {
	UserID    uint32           `json:"user_id"`
	MarketID  string           `json:"market_id"`
	Option    model.OptionType `json:"option"`
	OrderType model.OrderType  `json:"order_type"`
	Price     float64          `json:"price"`
	Quantity  uint32           `json:"quantity"`
	ClientID  string           `json:"client_id"`
}

// CancelOrderRequest asks the engine to remove a resting order. The book
// level (option, side, price) locates the order alongside its id.
type CancelOrderRequest struct {
	MarketID  string           `json:"market_id"`
	Option    model.OptionType `json:"option"`
	OrderType model.OrderType  `json:"order_type"`
	Price     float64          `json:"price"`
	OrderID   uint64           `json:"order_id"`
	ClientID  string           `json:"client_id"`
}

// GetOpenOrdersRequest triggers an OpenOrders snapshot event.
type GetOpenOrdersRequest struct {
	UserID   uint32 `json:"user_id"`
	MarketID string `json:"market_id"`
	ClientID string `json:"client_id"`
}

// GetMarketDepthRequest triggers a client-scoped Depth event.
type GetMarketDepthRequest struct {
	MarketID string `json:"market_id"`
	ClientID string `json:"client_id"`
}

// CreateMarket submits a market-creation request.
func (c *Client) CreateMarket(ctx context.Context, req CreateMarketRequest) error {
	_, err := c.post(ctx, "/market", req)
	return err
}

// PlaceOrder submits a new-order request.
func (c *Client) PlaceOrder(ctx context.Context, req PlaceOrderRequest) error {
	_, err := c.post(ctx, "/order", req)
	return err
}

// CancelOrder submits a cancellation request.
func (c *Client) CancelOrder(ctx context.Context, req CancelOrderRequest) error {
	_, err := c.post(ctx, "/cancel", req)
	return err
}

// GetOpenOrders requests an open-orders snapshot.
func (c *Client) GetOpenOrders(ctx context.Context, req GetOpenOrdersRequest) error {
	_, err := c.post(ctx, "/open_orders", req)
	return err
}

// GetMarketDepth requests this client's depth view of a market.
func (c *Client) GetMarketDepth(ctx context.Context, req GetMarketDepthRequest) error {
	_, err := c.post(ctx, "/depth", req)
	return err
}
