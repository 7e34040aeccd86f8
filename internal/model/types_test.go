package model

import (
	"encoding/json"
	"math"
	"testing"
)

func TestValidPrice(t *testing.T) {
	tests := []struct {
		price float64
		want  bool
	}{
		{0.5, true},
		{9.5, true},
		{5.0, true},
		{5.1, true},
		{0.4, false},
		{9.6, false},
		{0.0, false},
		{-1.0, false},
		{5.05, false},
		// 0.1 has no exact float64 representation; grid membership must
		// still hold for sums of ticks.
		{0.5 + 0.1 + 0.1 + 0.1, true},
	}

	for _, tt := range tests {
		if got := ValidPrice(tt.price); got != tt.want {
			t.Errorf("ValidPrice(%v) = %v, want %v", tt.price, got, tt.want)
		}
	}
}

func TestComplementPrice(t *testing.T) {
	if got := ComplementPrice(3.5); math.Abs(got-6.5) > 1e-9 {
		t.Errorf("ComplementPrice(3.5) = %v, want 6.5", got)
	}
	// The complement of an in-domain price is always in-domain.
	for p := MinPrice; p <= MaxPrice+1e-9; p += PriceTick {
		if !ValidPrice(ComplementPrice(p)) {
			t.Errorf("ComplementPrice(%v) = %v outside domain", p, ComplementPrice(p))
		}
	}
}

func TestOptionTypeJSON(t *testing.T) {
	var o OptionType
	if err := json.Unmarshal([]byte(`"Yes"`), &o); err != nil {
		t.Fatalf("unmarshal Yes: %v", err)
	}
	if o != OptionYes {
		t.Errorf("option = %q, want %q", o, OptionYes)
	}

	if err := json.Unmarshal([]byte(`"Maybe"`), &o); err == nil {
		t.Error("expected error for unknown option, got nil")
	}
}

func TestOrderTypeJSON(t *testing.T) {
	var ot OrderType
	if err := json.Unmarshal([]byte(`"Sell"`), &ot); err != nil {
		t.Fatalf("unmarshal Sell: %v", err)
	}
	if ot != OrderSell {
		t.Errorf("order type = %q, want %q", ot, OrderSell)
	}

	if err := json.Unmarshal([]byte(`"Hold"`), &ot); err == nil {
		t.Error("expected error for unknown order type, got nil")
	}
}

func TestPriceLevelJSON(t *testing.T) {
	var l PriceLevel
	if err := json.Unmarshal([]byte(`[5.5, 100]`), &l); err != nil {
		t.Fatalf("unmarshal level: %v", err)
	}
	if l.Price != 5.5 || l.Quantity != 100 {
		t.Errorf("level = %+v, want {5.5 100}", l)
	}

	out, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("marshal level: %v", err)
	}
	if string(out) != "[5.5,100]" {
		t.Errorf("marshal = %s, want [5.5,100]", out)
	}

	if err := json.Unmarshal([]byte(`{"price": 5.5}`), &l); err == nil {
		t.Error("expected error for object-shaped level, got nil")
	}
}

func TestOrderJSON(t *testing.T) {
	raw := `{
		"id": 42,
		"user_id": 1,
		"market_id": "m1",
		"option": "Yes",
		"order_type": "Buy",
		"price": 5.0,
		"quantity": 100,
		"timestamp": 1735689600
	}`

	var o Order
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		t.Fatalf("unmarshal order: %v", err)
	}
	if o.ID != 42 {
		t.Errorf("ID = %d, want 42", o.ID)
	}
	if o.Option != OptionYes || o.OrderType != OrderBuy {
		t.Errorf("enums = %q/%q, want Yes/Buy", o.Option, o.OrderType)
	}
	if o.Price != 5.0 || o.Quantity != 100 {
		t.Errorf("price/qty = %v/%d, want 5/100", o.Price, o.Quantity)
	}
}
