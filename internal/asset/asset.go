// Package asset handles fixed-precision token quantities as the host
// ledger represents them: an integer amount in base units plus a symbol
// with a decimal precision, rendered like "250.00000000 ARCADE".
package asset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Symbol is a token symbol with its decimal precision, e.g. {8, ARCADE}.
type Symbol struct {
	Code      string `json:"code"`
	Precision uint8  `json:"precision"`
}

// ParseSymbol parses the "precision,CODE" form, e.g. "8,ARCADE".
func ParseSymbol(s string) (Symbol, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return Symbol{}, fmt.Errorf("invalid symbol %q: want precision,CODE", s)
	}

	precision, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil {
		return Symbol{}, fmt.Errorf("invalid symbol precision %q: %w", parts[0], err)
	}

	code := parts[1]
	if code == "" || code != strings.ToUpper(code) {
		return Symbol{}, fmt.Errorf("invalid symbol code %q", code)
	}

	return Symbol{Code: code, Precision: uint8(precision)}, nil
}

func (s Symbol) String() string {
	return fmt.Sprintf("%d,%s", s.Precision, s.Code)
}

// Quantity is an amount of a token in base units.
type Quantity struct {
	Amount uint64 `json:"amount"`
	Symbol Symbol `json:"symbol"`
}

// Parse parses a ledger quantity string such as "250.00000000 ARCADE".
// The fractional part must not exceed the implied precision.
func Parse(s string) (Quantity, error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return Quantity{}, fmt.Errorf("invalid quantity %q: want \"amount SYMBOL\"", s)
	}

	d, err := decimal.NewFromString(parts[0])
	if err != nil {
		return Quantity{}, fmt.Errorf("invalid quantity amount %q: %w", parts[0], err)
	}
	if d.IsNegative() {
		return Quantity{}, fmt.Errorf("negative quantity %q", s)
	}

	precision := int32(0)
	if dot := strings.IndexByte(parts[0], '.'); dot >= 0 {
		precision = int32(len(parts[0]) - dot - 1)
	}
	if precision > 18 {
		return Quantity{}, fmt.Errorf("quantity %q precision too large", s)
	}

	base := d.Shift(precision)
	if !base.IsInteger() {
		return Quantity{}, fmt.Errorf("quantity %q has stray fractional digits", s)
	}

	code := parts[1]
	if code == "" || code != strings.ToUpper(code) {
		return Quantity{}, fmt.Errorf("invalid quantity symbol %q", code)
	}

	return Quantity{
		Amount: uint64(base.IntPart()),
		Symbol: Symbol{Code: code, Precision: uint8(precision)},
	}, nil
}

// String renders the quantity in ledger form, always showing the full
// precision: Quantity{25000000000, {8,ARCADE}} -> "250.00000000 ARCADE".
func (q Quantity) String() string {
	d := decimal.New(int64(q.Amount), -int32(q.Symbol.Precision))
	return fmt.Sprintf("%s %s", d.StringFixed(int32(q.Symbol.Precision)), q.Symbol.Code)
}
