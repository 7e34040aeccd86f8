// Package validate holds the pure pre-submission checks run before any
// request is sent to the matching engine. Passing validation is necessary
// but not sufficient: crossing legality and balance sufficiency are decided
// remotely and reported back asynchronously.
package validate

import (
	"fmt"

	"github.com/probolabs/probo-sync/internal/model"
)

// Kind classifies a validation failure.
type Kind int

const (
	InvalidPrice Kind = iota
	InvalidQuantity
	InvalidEnum
	InvalidMarket
)

func (k Kind) String() string {
	switch k {
	case InvalidPrice:
		return "invalid price"
	case InvalidQuantity:
		return "invalid quantity"
	case InvalidEnum:
		return "invalid enum"
	case InvalidMarket:
		return "invalid market"
	default:
		return "unknown"
	}
}

// Error is a local, pre-submission rejection. It is returned to the caller
// immediately and never sent over the wire.
type Error struct {
	Kind  Kind
	Field string
	Msg   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s %s", e.Kind, e.Field, e.Msg)
}

// Price checks the price domain: [0.5, 9.5] on the 0.1 grid.
func Price(p float64) error {
	if !model.ValidPrice(p) {
		return &Error{
			Kind:  InvalidPrice,
			Field: "price",
			Msg:   fmt.Sprintf("%v outside [%v, %v] in steps of %v", p, model.MinPrice, model.MaxPrice, model.PriceTick),
		}
	}
	return nil
}

// Quantity checks that the quantity is positive.
func Quantity(q uint32) error {
	if q == 0 {
		return &Error{Kind: InvalidQuantity, Field: "quantity", Msg: "must be positive"}
	}
	return nil
}

// Option checks the option enum.
func Option(o model.OptionType) error {
	if !o.Valid() {
		return &Error{Kind: InvalidEnum, Field: "option", Msg: fmt.Sprintf("%q is not Yes or No", o)}
	}
	return nil
}

// Side checks the order-type enum.
func Side(t model.OrderType) error {
	if !t.Valid() {
		return &Error{Kind: InvalidEnum, Field: "order_type", Msg: fmt.Sprintf("%q is not Buy or Sell", t)}
	}
	return nil
}

// Market checks that the market id is non-empty.
func Market(id string) error {
	if id == "" {
		return &Error{Kind: InvalidMarket, Field: "market_id", Msg: "must be non-empty"}
	}
	return nil
}

// PlaceOrder runs every check a new-order intent must pass.
func PlaceOrder(marketID string, option model.OptionType, orderType model.OrderType, price float64, quantity uint32) error {
	if err := Market(marketID); err != nil {
		return err
	}
	if err := Option(option); err != nil {
		return err
	}
	if err := Side(orderType); err != nil {
		return err
	}
	if err := Price(price); err != nil {
		return err
	}
	return Quantity(quantity)
}

// CancelOrder runs the checks a cancel intent must pass. The price is part
// of the cancel request because the engine locates the order by book level.
func CancelOrder(marketID string, option model.OptionType, orderType model.OrderType, price float64) error {
	if err := Market(marketID); err != nil {
		return err
	}
	if err := Option(option); err != nil {
		return err
	}
	if err := Side(orderType); err != nil {
		return err
	}
	return Price(price)
}

// CreateMarket runs the checks a market-creation intent must pass.
func CreateMarket(marketID, question string) error {
	if err := Market(marketID); err != nil {
		return err
	}
	if question == "" {
		return &Error{Kind: InvalidMarket, Field: "question", Msg: "must be non-empty"}
	}
	return nil
}
