package engine

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Result is the outcome of resolving a revealed wish.
type Result struct {
	Code   OutcomeCode `json:"code"`
	Reward uint64      `json:"reward"`
	Roll   uint32      `json:"roll"`
}

// CommitDigest computes the binding hash a player submits at commit time:
// SHA-256 over the client secret concatenated with the wish content CID,
// hex encoded. The reveal is only accepted if it reproduces this digest.
func CommitDigest(secret, wishCID string) string {
	sum := sha256.Sum256([]byte(secret + wishCID))
	return hex.EncodeToString(sum[:])
}

// Roll derives the roll in [0, 10000) from the revealed secret, the
// per-transaction chain entropy and the player handle.
//
// The preimage is the exact concatenation secret || entropy || player.
// Any auditor holding the three inputs can recompute the roll; changing
// the order or inserting separators breaks compatibility with recorded
// history, so neither is allowed.
func Roll(secret, entropy, player string) uint32 {
	sum := sha256.Sum256([]byte(secret + entropy + player))
	return binary.BigEndian.Uint32(sum[:4]) % RollModulus
}

// Outcome maps a roll to an outcome code by walking the weight buckets in
// fixed order. Bucket membership is strict: a roll equal to a cumulative
// boundary lands in the next bucket. Rolls past every configured bucket
// fall through to try-again.
func Outcome(roll uint32, w Weights) OutcomeCode {
	cumulative := w.Win
	if roll < cumulative {
		return OutcomeWishGranted
	}
	cumulative += w.Tokens250
	if roll < cumulative {
		return OutcomeTokens250
	}
	cumulative += w.Tokens500
	if roll < cumulative {
		return OutcomeTokens500
	}
	cumulative += w.Tokens1000
	if roll < cumulative {
		return OutcomeTokens1000
	}
	cumulative += w.FreeSpin
	if roll < cumulative {
		return OutcomeFreeSpin
	}
	return OutcomeTryAgain
}

// Resolve is the full outcome resolver: deterministic, side-effect free,
// and reproducible by any third party that knows the inputs.
func Resolve(secret, entropy, player string, w Weights) Result {
	roll := Roll(secret, entropy, player)
	code := Outcome(roll, w)
	return Result{Code: code, Reward: code.Reward(), Roll: roll}
}
