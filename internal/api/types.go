package api

import (
	"github.com/ubitquity/Zoltaran-Speaks/internal/engine"
	"github.com/ubitquity/Zoltaran-Speaks/internal/store"
	"github.com/ubitquity/Zoltaran-Speaks/internal/wish"
)

// Version is reported in the X-Zoltaran-Version response header and the
// health payload.
const Version = "1.0.0"

// CommitRequest opens a commitment.
type CommitRequest struct {
	Player     string `json:"player"`
	CommitHash string `json:"commit_hash"`
	WishType   string `json:"wish_type"` // "free" or "purchased"
}

// RevealRequest settles a commitment.
type RevealRequest struct {
	Player  string `json:"player"`
	Secret  string `json:"secret"`
	WishCID string `json:"wish_cid"`
}

// CleanupRequest bounds one expiry sweep.
type CleanupRequest struct {
	Max int `json:"max"`
}

// PaymentRequest is the inbound payment notification delivered by the
// ledger watcher.
type PaymentRequest struct {
	From     string `json:"from"`
	Quantity string `json:"quantity"` // e.g. "10.00000000 WAX"
	Contract string `json:"contract"`
	Memo     string `json:"memo"`
}

// WithdrawRequest moves treasury funds out.
type WithdrawRequest struct {
	To       string `json:"to"`
	Quantity string `json:"quantity"`
}

// PauseRequest flips the emergency pause flag.
type PauseRequest struct {
	Paused bool `json:"paused"`
}

// ConfigView is the public configuration projection.
type ConfigView struct {
	Admin           string         `json:"admin"`
	TokenContract   string         `json:"token_contract"`
	TokenSymbol     string         `json:"token_symbol"`
	TreasuryBalance uint64         `json:"treasury_balance"`
	Paused          bool           `json:"paused"`
	Weights         engine.Weights `json:"weights"`
}

// LeaderboardResponse wraps the top entries.
type LeaderboardResponse struct {
	Entries []store.LeaderboardEntry `json:"entries"`
}

// HistoryResponse wraps a history page, newest first.
type HistoryResponse struct {
	Results []store.GameResult `json:"results"`
}

// TokenPricesResponse lists the accepted payment tokens.
type TokenPricesResponse struct {
	Prices []store.TokenPrice `json:"prices"`
}

// RevealResponse reports a settled wish.
type RevealResponse struct {
	Settlement wish.Settlement `json:"settlement"`
}
