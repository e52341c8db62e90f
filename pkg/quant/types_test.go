package quant

import (
	"testing"
)

func TestToPriceMicros(t *testing.T) {
	tests := []struct {
		input    float64
		expected PriceMicros
	}{
		{1.23, 1230000},
		{0.000001, 1},
		{0.0, 0},
		{-1.23, -1230000},
	}

	for _, tt := range tests {
		got := ToPriceMicros(tt.input)
		if got != tt.expected {
			t.Errorf("ToPriceMicros(%f) = %d; want %d", tt.input, got, tt.expected)
		}
	}
}

func TestPriceMicros_String(t *testing.T) {
	p := PriceMicros(1230000)
	expected := "1.230000"
	if p.String() != expected {
		t.Errorf("PriceMicros(1230000).String() = %s; want %s", p.String(), expected)
	}
}

func TestToPriceMicrosStr(t *testing.T) {
	tests := []struct {
		input    string
		expected PriceMicros
	}{
		{"1.23", 1230000},
		{"65000.5", 65000500000},
		{"0", 0},
		{"-1.23", -1230000},
		{"", 0},
		{"null", 0},
		{"0.0000019", 1}, // truncated past precision, not rounded
	}

	for _, tt := range tests {
		got := ToPriceMicrosStr(tt.input)
		if got != tt.expected {
			t.Errorf("ToPriceMicrosStr(%q) = %d; want %d", tt.input, got, tt.expected)
		}
	}
}

func TestNotional(t *testing.T) {
	// 2 BTC at 65,000.50: 130,001 in quote units.
	// The equivalent int64 product (6.5e10 * 2e8) would overflow.
	p := ToPriceMicros(65000.5)
	q := ToQtySats(2.0)

	got := Notional(p, q)
	if got.String() != "130001" {
		t.Errorf("Notional = %s; want 130001", got.String())
	}
}

func TestParseTimeStamp(t *testing.T) {
	ts, err := ParseTimeStamp("1704067200000")
	if err != nil {
		t.Fatalf("ParseTimeStamp failed: %v", err)
	}
	if ts != TimeStamp(1704067200000000) {
		t.Errorf("expected micros, got %d", ts)
	}

	if _, err := ParseTimeStamp("not-a-number"); err == nil {
		t.Error("expected error for invalid input")
	}
}
