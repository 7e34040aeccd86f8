package validate

import (
	"errors"
	"testing"

	"github.com/probolabs/probo-sync/internal/model"
)

func TestPlaceOrder(t *testing.T) {
	tests := []struct {
		name      string
		marketID  string
		option    model.OptionType
		orderType model.OrderType
		price     float64
		quantity  uint32
		wantKind  Kind
		wantErr   bool
	}{
		{name: "valid buy yes", marketID: "m1", option: model.OptionYes, orderType: model.OrderBuy, price: 5.0, quantity: 100},
		{name: "valid sell no at min", marketID: "m1", option: model.OptionNo, orderType: model.OrderSell, price: 0.5, quantity: 1},
		{name: "valid at max", marketID: "m1", option: model.OptionYes, orderType: model.OrderSell, price: 9.5, quantity: 10},
		{name: "price below domain", marketID: "m1", option: model.OptionYes, orderType: model.OrderBuy, price: 0.4, quantity: 100, wantErr: true, wantKind: InvalidPrice},
		{name: "price above domain", marketID: "m1", option: model.OptionYes, orderType: model.OrderBuy, price: 9.6, quantity: 100, wantErr: true, wantKind: InvalidPrice},
		{name: "price off grid", marketID: "m1", option: model.OptionYes, orderType: model.OrderBuy, price: 5.05, quantity: 100, wantErr: true, wantKind: InvalidPrice},
		{name: "zero quantity", marketID: "m1", option: model.OptionYes, orderType: model.OrderBuy, price: 5.0, quantity: 0, wantErr: true, wantKind: InvalidQuantity},
		{name: "bad option", marketID: "m1", option: "Maybe", orderType: model.OrderBuy, price: 5.0, quantity: 100, wantErr: true, wantKind: InvalidEnum},
		{name: "bad order type", marketID: "m1", option: model.OptionYes, orderType: "Hold", price: 5.0, quantity: 100, wantErr: true, wantKind: InvalidEnum},
		{name: "empty market", marketID: "", option: model.OptionYes, orderType: model.OrderBuy, price: 5.0, quantity: 100, wantErr: true, wantKind: InvalidMarket},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := PlaceOrder(tt.marketID, tt.option, tt.orderType, tt.price, tt.quantity)
			if !tt.wantErr {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var ve *Error
			if !errors.As(err, &ve) {
				t.Fatalf("error type = %T, want *Error", err)
			}
			if ve.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", ve.Kind, tt.wantKind)
			}
		})
	}
}

func TestPlaceOrderWholeGrid(t *testing.T) {
	// Every tick in the domain must validate, for both options and sides.
	for i := 5; i <= 95; i++ {
		price := float64(i) / 10
		for _, opt := range []model.OptionType{model.OptionYes, model.OptionNo} {
			for _, side := range []model.OrderType{model.OrderBuy, model.OrderSell} {
				if err := PlaceOrder("m1", opt, side, price, 1); err != nil {
					t.Fatalf("PlaceOrder(m1, %s, %s, %v, 1) = %v, want nil", opt, side, price, err)
				}
			}
		}
	}
}

func TestCancelOrder(t *testing.T) {
	if err := CancelOrder("m1", model.OptionYes, model.OrderBuy, 5.0); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := CancelOrder("m1", model.OptionYes, model.OrderBuy, 12.0)
	var ve *Error
	if !errors.As(err, &ve) || ve.Kind != InvalidPrice {
		t.Errorf("expected InvalidPrice, got %v", err)
	}
}

func TestCreateMarket(t *testing.T) {
	if err := CreateMarket("m1", "Will it rain tomorrow?"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := CreateMarket("", "q"); err == nil {
		t.Error("expected error for empty market id")
	}
	if err := CreateMarket("m1", ""); err == nil {
		t.Error("expected error for empty question")
	}
}
