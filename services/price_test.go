package services

import (
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"1.010,29 €", 1010.29, true},
		{"68,18 €", 68.18, true},
		{"45,00 €", 45.00, true},
		{"€ 1,010.29", 1010.29, true},
		{"1.010 €", 1010, true},
		{"1 234,50 EUR", 1234.50, true},
		{"1 234,50 €", 1234.50, true},
		{"£99.5", 99.5, true},
		{"Total: 312 €", 312, true},
		{"12.345.678", 12345678, true},
		{"Total 7 dias: 315,00 €", 315, true},
		{"2 45,00 €", 45, true},
		{"x2 19,90 €", 19.90, true},
		{"45,00 € (franquia 1.200)", 45, true},
		{"45EUR", 45, true},
		{"7 dias 315", 0, false},
		{"", 0, false},
		{"grátis", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseAmount(tt.raw)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseAmount(%q) = %.2f, %v; want %.2f, %v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw      string
		want     float64
		currency string
	}{
		{"Total 7 dias: 315,00 €", 315, "EUR"},
		{"3 days from GBP 120.50", 120.50, "GBP"},
		{"US$ 10", 10, "USD"},
		{"Total EUR: 99", 99, "EUR"},
		{"42", 42, ""},
	}
	for _, tt := range tests {
		got, currency, ok := ParsePrice(tt.raw)
		if !ok || got != tt.want || currency != tt.currency {
			t.Errorf("ParsePrice(%q) = %.2f, %q, %v; want %.2f, %q", tt.raw, got, currency, ok, tt.want, tt.currency)
		}
	}
}

func TestDetectCurrency(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"45,00 €", "EUR"},
		{"EUR 12", "EUR"},
		{"£10", "GBP"},
		{"US$ 10", "USD"},
		{"10", ""},
	}
	for _, tt := range tests {
		if got := DetectCurrency(tt.raw); got != tt.want {
			t.Errorf("DetectCurrency(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	if got := FormatPrice(1010.29); got != "1010.29" {
		t.Errorf("FormatPrice = %q", got)
	}
	if got := FormatPrice(45); got != "45.00" {
		t.Errorf("FormatPrice = %q", got)
	}
}
