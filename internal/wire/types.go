package wire

import (
	"fmt"

	"github.com/probolabs/probo-sync/internal/model"
)

// EventTag identifies the single key present in an envelope.
type EventTag string

const (
	TagOrderPlaced    EventTag = "OrderPlaced"
	TagOrderMatched   EventTag = "OrderMatched"
	TagOrderCancelled EventTag = "OrderCancelled"
	TagOpenOrders     EventTag = "OpenOrders"
	TagDepth          EventTag = "Depth"
	TagMarketCreated  EventTag = "MarketCreated"
	TagError          EventTag = "Error"
	TagPrice          EventTag = "Price"
)

// DecodeErrorKind classifies a decode failure.
type DecodeErrorKind int

const (
	// MalformedPayload means the bytes were not a parseable envelope.
	MalformedPayload DecodeErrorKind = iota
	// UnknownTag means none of the recognized tags was present.
	UnknownTag
)

func (k DecodeErrorKind) String() string {
	switch k {
	case MalformedPayload:
		return "malformed payload"
	case UnknownTag:
		return "unknown tag"
	default:
		return "unknown"
	}
}

// DecodeError reports why a message could not be decoded. Decode errors
// are non-fatal to the connection: the message is dropped and reported.
type DecodeError struct {
	Kind DecodeErrorKind
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("decode: %s", e.Kind)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// OrderPlaced confirms an order now rests on the engine's book.
type OrderPlaced struct {
	Order    model.Order `json:"order"`
	ClientID string      `json:"client_id"`
}

// OrderMatched reports an executed trade touching one of the session's
// orders. It is a signal only; the authoritative removal or resize of the
// order arrives separately.
type OrderMatched struct {
	Trade    model.Trade `json:"trade"`
	ClientID string      `json:"client_id"`
}

// OrderCancelled confirms an order left the book.
type OrderCancelled struct {
	OrderID  uint64 `json:"order_id"`
	MarketID string `json:"market_id"`
	ClientID string `json:"client_id"`
}

// OpenOrders is the authoritative open-orders snapshot for a user.
type OpenOrders struct {
	Orders   []model.Order `json:"orders"`
	ClientID string        `json:"client_id"`
}

// MarketCreated confirms a market now exists on the engine.
type MarketCreated struct {
	MarketID string `json:"market_id"`
	ClientID string `json:"client_id"`
}

// ErrorEvent carries engine-reported failure text for the session.
type ErrorEvent struct {
	Message  string `json:"message"`
	ClientID string `json:"client_id"`
}

// Event is the decoded form of one envelope. Exactly one payload field is
// non-nil, matching Tag.
type Event struct {
	Tag EventTag

	OrderPlaced    *OrderPlaced
	OrderMatched   *OrderMatched
	OrderCancelled *OrderCancelled
	OpenOrders     *OpenOrders
	Depth          *model.Depth
	MarketCreated  *MarketCreated
	Error          *ErrorEvent
	Price          *model.Price
}
