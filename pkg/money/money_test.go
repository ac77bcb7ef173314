package money

import "testing"

func TestTax(t *testing.T) {
	tests := []struct {
		name     string
		subtotal int64
		rateBps  int
		want     int64
	}{
		{name: "exact", subtotal: 5500, rateBps: 800, want: 440},
		{name: "fraction below half rounds down", subtotal: 1231, rateBps: 800, want: 98}, // 98.48
		{name: "fraction above half rounds up", subtotal: 1234, rateBps: 800, want: 99},   // 98.72
		{name: "exact at low rate", subtotal: 1000, rateBps: 50, want: 5},                 // 5.0
		{name: "half cent boundary", subtotal: 500, rateBps: 50, want: 3},                 // 2.5 -> 3
		{name: "small cart", subtotal: 19, rateBps: 800, want: 2},                         // 1.52
		{name: "zero subtotal", subtotal: 0, rateBps: 800, want: 0},
		{name: "zero rate", subtotal: 5500, rateBps: 0, want: 0},
	}

	for _, tt := range tests {
		if got := Tax(tt.subtotal, tt.rateBps); got != tt.want {
			t.Fatalf("%s: Tax(%d, %d) = %d, want %d", tt.name, tt.subtotal, tt.rateBps, got, tt.want)
		}
	}
}

func TestFormatUSD(t *testing.T) {
	if got := FormatUSD(5940); got != "59.40" {
		t.Fatalf("FormatUSD(5940) = %q", got)
	}
	if got := FormatUSD(999); got != "9.99" {
		t.Fatalf("FormatUSD(999) = %q", got)
	}
	if got := FormatUSD(0); got != "0.00" {
		t.Fatalf("FormatUSD(0) = %q", got)
	}
	if got := FormatUSD(5); got != "0.05" {
		t.Fatalf("FormatUSD(5) = %q", got)
	}
}
