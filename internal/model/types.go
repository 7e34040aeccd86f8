package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// -----------------------------------------------------------------------------
// Price Domain
// -----------------------------------------------------------------------------

// Prices are quoted in tenths between 0.5 and 9.5. A Yes price and the
// complementary No price always sum to PriceTotal, so a Sell of Yes at p
// carries the same exposure as a Buy of No at PriceTotal-p.
const (
	MinPrice   = 0.5
	MaxPrice   = 9.5
	PriceTick  = 0.1
	PriceTotal = 10.0
)

// ValidPrice reports whether p lies in [MinPrice, MaxPrice] on the tick grid.
func ValidPrice(p float64) bool {
	if p < MinPrice || p > MaxPrice {
		return false
	}
	// Snap to the 0.1 grid; tolerate float noise from JSON round-trips.
	ticks := p / PriceTick
	return math.Abs(ticks-math.Round(ticks)) < 1e-6
}

// ComplementPrice returns the price of the mirrored position on the other
// option (PriceTotal - p).
func ComplementPrice(p float64) float64 {
	return PriceTotal - p
}

// -----------------------------------------------------------------------------
// Enums
// -----------------------------------------------------------------------------

// OptionType is the binary outcome an order is placed on.
type OptionType string

const (
	OptionYes OptionType = "Yes"
	OptionNo  OptionType = "No"
)

// Valid reports whether the option is one of the two recognized outcomes.
func (o OptionType) Valid() bool {
	return o == OptionYes || o == OptionNo
}

// UnmarshalJSON rejects unknown option values at decode time.
func (o *OptionType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v := OptionType(s)
	if !v.Valid() {
		return fmt.Errorf("unknown option %q", s)
	}
	*o = v
	return nil
}

// OrderType is the side of an order.
type OrderType string

const (
	OrderBuy  OrderType = "Buy"
	OrderSell OrderType = "Sell"
)

// Valid reports whether the order type is Buy or Sell.
func (t OrderType) Valid() bool {
	return t == OrderBuy || t == OrderSell
}

// UnmarshalJSON rejects unknown order types at decode time.
func (t *OrderType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v := OrderType(s)
	if !v.Valid() {
		return fmt.Errorf("unknown order type %q", s)
	}
	*t = v
	return nil
}

// -----------------------------------------------------------------------------
// Domain Types
// -----------------------------------------------------------------------------

// Order is a resting order as confirmed by the matching engine. The ID is
// server-assigned; a client-submitted request is not an Order until an
// OrderPlaced event carries it back.
type Order struct {
	ID        uint64     `json:"id"`
	UserID    uint32     `json:"user_id"`
	MarketID  string     `json:"market_id"`
	Option    OptionType `json:"option"`
	OrderType OrderType  `json:"order_type"`
	Price     float64    `json:"price"`
	Quantity  uint32     `json:"quantity"`
	Timestamp int64      `json:"timestamp"` // Engine clock, seconds since epoch
}

// Trade is an executed match between two orders. Immutable, append-only.
type Trade struct {
	BuyOrderID  uint64     `json:"buy_order_id"`
	SellOrderID uint64     `json:"sell_order_id"`
	MarketID    string     `json:"market_id"`
	Option      OptionType `json:"option"`
	Price       float64    `json:"price"`
	Quantity    uint32     `json:"quantity"`
	Timestamp   int64      `json:"timestamp"`
}

// PriceLevel is aggregated resting quantity at one price.
// Encoded on the wire as a two-element array [price, quantity].
type PriceLevel struct {
	Price    float64
	Quantity uint32
}

// MarshalJSON encodes the level as [price, quantity].
func (l PriceLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{l.Price, l.Quantity})
}

// UnmarshalJSON decodes a [price, quantity] pair.
func (l *PriceLevel) UnmarshalJSON(data []byte) error {
	var pair [2]json.Number
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("price level: %w", err)
	}
	price, err := pair[0].Float64()
	if err != nil {
		return fmt.Errorf("price level price: %w", err)
	}
	qty, err := pair[1].Int64()
	if err != nil || qty < 0 {
		return fmt.Errorf("price level quantity: %v", pair[1])
	}
	l.Price = price
	l.Quantity = uint32(qty)
	return nil
}

// Depth is one market's book: bids descending by price, asks ascending.
// A non-empty ClientID marks the answer to that client's depth query; an
// empty ClientID marks the public broadcast. The two are never merged.
type Depth struct {
	MarketID string       `json:"market_id"`
	Bids     []PriceLevel `json:"bids"`
	Asks     []PriceLevel `json:"asks"`
	ClientID string       `json:"client_id,omitempty"`
}

// Price is the latest reference price for one option of one market.
type Price struct {
	MarketID string     `json:"market_id"`
	Option   OptionType `json:"option"`
	Price    float64    `json:"price"`
}

// Market is an engine-defined market descriptor.
type Market struct {
	MarketID  string `json:"market_id"`
	Question  string `json:"question"`
	CreatedAt int64  `json:"created_at,omitempty"`
}
