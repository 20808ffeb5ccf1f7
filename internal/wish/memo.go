package wish

import (
	"fmt"
	"strconv"
	"strings"
)

// PaymentKind tags the variant of a parsed payment memo.
type PaymentKind uint8

const (
	// PaymentFund credits the payout treasury.
	PaymentFund PaymentKind = iota
	// PaymentPurchase converts the payment into wish credits.
	PaymentPurchase
)

// PaymentIntent is the parsed routing decision for an inbound payment.
type PaymentIntent struct {
	Kind PaymentKind
	// Count is the requested wish count for PaymentPurchase.
	Count uint32
}

// MaxWishesPerPurchase bounds a single purchase memo.
const MaxWishesPerPurchase = 1000

// ParsePaymentMemo parses the structured memo tag on an inbound payment.
// Accepted forms:
//
//	"TREASURY" | "treasury" | "fund"  -> fund the payout treasury
//	"WISHES:<n>" with 1 <= n <= 1000  -> purchase n wish credits
//
// Anything else is rejected with ErrInvalidPaymentMemo.
func ParsePaymentMemo(memo string) (PaymentIntent, error) {
	switch memo {
	case "TREASURY", "treasury", "fund":
		return PaymentIntent{Kind: PaymentFund}, nil
	}

	if rest, ok := strings.CutPrefix(memo, "WISHES:"); ok {
		count, err := strconv.ParseUint(rest, 10, 32)
		if err != nil {
			return PaymentIntent{}, fmt.Errorf("%w: bad wish count %q", ErrInvalidWishCount, rest)
		}
		if count == 0 || count > MaxWishesPerPurchase {
			return PaymentIntent{}, fmt.Errorf("%w: got %d", ErrInvalidWishCount, count)
		}
		return PaymentIntent{Kind: PaymentPurchase, Count: uint32(count)}, nil
	}

	return PaymentIntent{}, fmt.Errorf("%w: %q", ErrInvalidPaymentMemo, memo)
}
