package wire

import (
	"encoding/json"
	"fmt"

	"github.com/probolabs/probo-sync/internal/model"
)

// envelope mirrors the wire shape: a single-key object where the key is
// the event tag. Absent keys decode to nil.
type envelope struct {
	OrderPlaced    *OrderPlaced    `json:"OrderPlaced,omitempty"`
	OrderMatched   *OrderMatched   `json:"OrderMatched,omitempty"`
	OrderCancelled *OrderCancelled `json:"OrderCancelled,omitempty"`
	OpenOrders     *OpenOrders     `json:"OpenOrders,omitempty"`
	Depth          *model.Depth    `json:"Depth,omitempty"`
	MarketCreated  *MarketCreated  `json:"MarketCreated,omitempty"`
	Error          *ErrorEvent     `json:"Error,omitempty"`
	Price          *model.Price    `json:"Price,omitempty"`
}

// Decode parses one envelope into a typed Event. It fails with
// DecodeError{MalformedPayload} when the bytes are not a parseable
// envelope and DecodeError{UnknownTag} when no recognized tag is present.
func Decode(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Event{}, &DecodeError{Kind: MalformedPayload, Err: err}
	}

	switch {
	case env.OrderPlaced != nil:
		return Event{Tag: TagOrderPlaced, OrderPlaced: env.OrderPlaced}, nil
	case env.OrderMatched != nil:
		return Event{Tag: TagOrderMatched, OrderMatched: env.OrderMatched}, nil
	case env.OrderCancelled != nil:
		return Event{Tag: TagOrderCancelled, OrderCancelled: env.OrderCancelled}, nil
	case env.OpenOrders != nil:
		return Event{Tag: TagOpenOrders, OpenOrders: env.OpenOrders}, nil
	case env.Depth != nil:
		return Event{Tag: TagDepth, Depth: env.Depth}, nil
	case env.MarketCreated != nil:
		return Event{Tag: TagMarketCreated, MarketCreated: env.MarketCreated}, nil
	case env.Error != nil:
		return Event{Tag: TagError, Error: env.Error}, nil
	case env.Price != nil:
		return Event{Tag: TagPrice, Price: env.Price}, nil
	default:
		return Event{}, &DecodeError{Kind: UnknownTag}
	}
}

// Encode serializes an Event back to its envelope form.
func Encode(ev Event) ([]byte, error) {
	var env envelope

	switch ev.Tag {
	case TagOrderPlaced:
		env.OrderPlaced = ev.OrderPlaced
	case TagOrderMatched:
		env.OrderMatched = ev.OrderMatched
	case TagOrderCancelled:
		env.OrderCancelled = ev.OrderCancelled
	case TagOpenOrders:
		env.OpenOrders = ev.OpenOrders
	case TagDepth:
		env.Depth = ev.Depth
	case TagMarketCreated:
		env.MarketCreated = ev.MarketCreated
	case TagError:
		env.Error = ev.Error
	case TagPrice:
		env.Price = ev.Price
	default:
		return nil, fmt.Errorf("encode: unknown tag %q", ev.Tag)
	}

	return json.Marshal(env)
}
