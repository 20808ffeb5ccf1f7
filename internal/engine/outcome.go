package engine

// OutcomeCode identifies the result of a resolved wish.
//
// The numeric values are persisted in game history and must never be
// reordered; existing records depend on them.
type OutcomeCode uint8

const (
	OutcomeWishGranted OutcomeCode = 0
	OutcomeTokens250   OutcomeCode = 1
	OutcomeTokens500   OutcomeCode = 2
	OutcomeTokens1000  OutcomeCode = 3
	OutcomeFreeSpin    OutcomeCode = 4
	OutcomeTryAgain    OutcomeCode = 5
)

// Reward amounts in base token units (8 decimal places).
const (
	RewardTokens250  uint64 = 25_000_000_000  // 250.00000000
	RewardTokens500  uint64 = 50_000_000_000  // 500.00000000
	RewardTokens1000 uint64 = 100_000_000_000 // 1000.00000000
)

// RollModulus is the size of the roll space. Probability weights are
// expressed in units of 1/10000.
const RollModulus = 10000

// String returns a human-readable outcome name.
func (c OutcomeCode) String() string {
	switch c {
	case OutcomeWishGranted:
		return "wish_granted"
	case OutcomeTokens250:
		return "tokens_250"
	case OutcomeTokens500:
		return "tokens_500"
	case OutcomeTokens1000:
		return "tokens_1000"
	case OutcomeFreeSpin:
		return "free_spin"
	case OutcomeTryAgain:
		return "try_again"
	default:
		return "unknown"
	}
}

// Reward returns the fixed token reward for an outcome code. Only the
// three token tiers pay out; wish-granted, free-spin and try-again carry
// no token reward.
func (c OutcomeCode) Reward() uint64 {
	switch c {
	case OutcomeTokens250:
		return RewardTokens250
	case OutcomeTokens500:
		return RewardTokens500
	case OutcomeTokens1000:
		return RewardTokens1000
	default:
		return 0
	}
}

// Weights holds the five configured probability weights in units of
// 1/10000. The remainder up to 10000 is the implicit try-again bucket.
type Weights struct {
	Win        uint32 `json:"win"`
	Tokens250  uint32 `json:"tokens_250"`
	Tokens500  uint32 `json:"tokens_500"`
	Tokens1000 uint32 `json:"tokens_1000"`
	FreeSpin   uint32 `json:"free_spin"`
}

// Sum returns the combined weight of the five explicit buckets.
func (w Weights) Sum() uint32 {
	return w.Win + w.Tokens250 + w.Tokens500 + w.Tokens1000 + w.FreeSpin
}

// DefaultWeights matches the probability table the game launched with:
// 20% win, 10% / 8% / 2% token tiers, 10% free spin, 50% try again.
var DefaultWeights = Weights{
	Win:        2000,
	Tokens250:  1000,
	Tokens500:  800,
	Tokens1000: 200,
	FreeSpin:   1000,
}
