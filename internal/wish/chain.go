package wish

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/ubitquity/Zoltaran-Speaks/internal/asset"
)

// TokenTransfer is the external ledger-transfer capability. The sender
// is always the game treasury; a returned error aborts the enclosing
// settlement in full.
type TokenTransfer interface {
	Transfer(ctx context.Context, to string, quantity asset.Quantity, memo string) error
}

// EntropySource supplies the per-settlement unpredictable value. The
// value must be unknowable at commit time; that property is what makes
// the commit-reveal scheme resistant to front-running.
type EntropySource interface {
	Entropy() (string, error)
}

// RandomEntropy draws entropy from the operating system CSPRNG. The
// value is rendered as a decimal 32-bit integer, the same shape the
// original chain host exposed, so recorded settlements stay auditable
// with the published resolver.
type RandomEntropy struct{}

func (RandomEntropy) Entropy() (string, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("failed to read entropy: %w", err)
	}
	return strconv.FormatUint(uint64(binary.BigEndian.Uint32(buf[:])), 10), nil
}
