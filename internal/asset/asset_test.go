package asset

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		amount    uint64
		code      string
		precision uint8
		wantErr   bool
	}{
		{"eight decimals", "250.00000000 ARCADE", 25_000_000_000, "ARCADE", 8, false},
		{"no decimals", "42 WAX", 42, "WAX", 0, false},
		{"four decimals", "1.0000 EOS", 10000, "EOS", 4, false},
		{"fractional value", "0.50000000 ARCADE", 50_000_000, "ARCADE", 8, false},
		{"negative", "-1.0000 EOS", 0, "", 0, true},
		{"missing symbol", "250.00000000", 0, "", 0, true},
		{"lowercase symbol", "1.0000 eos", 0, "", 0, true},
		{"garbage amount", "abc ARCADE", 0, "", 0, true},
		{"extra fields", "1.0 ARCADE extra", 0, "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %+v", tt.input, q)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if q.Amount != tt.amount {
				t.Errorf("amount = %d, want %d", q.Amount, tt.amount)
			}
			if q.Symbol.Code != tt.code || q.Symbol.Precision != tt.precision {
				t.Errorf("symbol = %v, want {%s %d}", q.Symbol, tt.code, tt.precision)
			}
		})
	}
}

func TestQuantityString(t *testing.T) {
	q := Quantity{Amount: 25_000_000_000, Symbol: Symbol{Code: "ARCADE", Precision: 8}}
	if got := q.String(); got != "250.00000000 ARCADE" {
		t.Errorf("String() = %q, want %q", got, "250.00000000 ARCADE")
	}

	zero := Quantity{Amount: 0, Symbol: Symbol{Code: "ARCADE", Precision: 8}}
	if got := zero.String(); got != "0.00000000 ARCADE" {
		t.Errorf("String() = %q, want %q", got, "0.00000000 ARCADE")
	}
}

func TestParseSymbol(t *testing.T) {
	sym, err := ParseSymbol("8,ARCADE")
	if err != nil {
		t.Fatalf("ParseSymbol failed: %v", err)
	}
	if sym.Code != "ARCADE" || sym.Precision != 8 {
		t.Errorf("ParseSymbol = %+v", sym)
	}
	if sym.String() != "8,ARCADE" {
		t.Errorf("String() = %q", sym.String())
	}

	for _, bad := range []string{"ARCADE", "x,ARCADE", "8,arcade", "8,"} {
		if _, err := ParseSymbol(bad); err == nil {
			t.Errorf("ParseSymbol(%q) expected error", bad)
		}
	}
}
