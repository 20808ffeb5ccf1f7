package store

import (
	"github.com/ubitquity/Zoltaran-Speaks/internal/engine"
)

// WishType says which kind of credit paid for a commitment.
type WishType uint8

const (
	WishTypeFree      WishType = 0
	WishTypePurchased WishType = 1
)

func (t WishType) String() string {
	if t == WishTypePurchased {
		return "purchased"
	}
	return "free"
}

// User is a player account: spendable credits plus lifetime stats.
// Created lazily on first activity.
type User struct {
	Account         string `json:"account" db:"account"`
	PurchasedWishes uint32 `json:"purchased_wishes" db:"purchased_wishes"`
	LastFreeDay     uint32 `json:"last_free_day" db:"last_free_day"`
	TotalWishes     uint32 `json:"total_wishes" db:"total_wishes"`
	TotalWins       uint32 `json:"total_wins" db:"total_wins"`
	TokensWon       uint64 `json:"tokens_won" db:"tokens_won"`
}

// Commit is a pending commit-reveal entry. At most one per player.
type Commit struct {
	ID         uint64   `json:"id" db:"id"`
	Player     string   `json:"player" db:"player"`
	CommitHash string   `json:"commit_hash" db:"commit_hash"` // hex SHA-256
	BlockNum   uint32   `json:"block_num" db:"block_num"`
	WishType   WishType `json:"wish_type" db:"wish_type"`
	CreatedAt  uint32   `json:"created_at" db:"created_at"` // unix seconds
}

// GameResult is one settled wish. Append-only; never mutated.
type GameResult struct {
	ID         uint64             `json:"id" db:"id"`
	Player     string             `json:"player" db:"player"`
	ResultCode engine.OutcomeCode `json:"result_code" db:"result_code"`
	TokensWon  uint64             `json:"tokens_won" db:"tokens_won"`
	WishCID    string             `json:"wish_cid" db:"wish_cid"`
	CreatedAt  uint32             `json:"created_at" db:"created_at"`
}

// LeaderboardEntry is the incrementally maintained per-player win tally.
type LeaderboardEntry struct {
	Player    string `json:"player" db:"player"`
	Wins      uint32 `json:"wins" db:"wins"`
	TokensWon uint64 `json:"tokens_won" db:"tokens_won"`
}

// Config is the game configuration singleton.
type Config struct {
	Admin           string         `json:"admin" db:"admin"`
	TokenContract   string         `json:"token_contract" db:"token_contract"`
	TokenSymbol     string         `json:"token_symbol" db:"token_symbol"` // "precision,CODE"
	TreasuryBalance uint64         `json:"treasury_balance" db:"treasury_balance"`
	Paused          bool           `json:"paused" db:"paused"`
	Weights         engine.Weights `json:"weights"`
}

// TokenPrice is an accepted payment token and its wish pricing.
type TokenPrice struct {
	SymbolCode   string `json:"symbol_code" db:"symbol_code"`
	Precision    uint8  `json:"precision" db:"precision"`
	Contract     string `json:"contract" db:"contract"`
	PricePerWish uint64 `json:"price_per_wish" db:"price_per_wish"`
	BonusBps     uint16 `json:"bonus_bps" db:"bonus_bps"`
	Enabled      bool   `json:"enabled" db:"enabled"`
}
