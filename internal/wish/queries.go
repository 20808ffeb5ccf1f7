package wish

import (
	"github.com/ubitquity/Zoltaran-Speaks/internal/store"
)

// Read-only query surface. These go straight to the store without the
// service mutex; SQLite snapshot reads never observe a half-applied
// operation.

// Account returns a player's account record, or nil if the player has
// never interacted with the game.
func (s *Service) Account(player string) (*store.User, error) {
	return s.db.GetUser(player)
}

// PendingCommit returns the player's live commitment, if any.
func (s *Service) PendingCommit(player string) (*store.Commit, error) {
	return s.db.FindCommitByPlayer(player)
}

// Leaderboard returns the top entries by wins, tokens won breaking ties.
func (s *Service) Leaderboard(limit int) ([]store.LeaderboardEntry, error) {
	return s.db.TopLeaderboard(limit)
}

// History returns the most recent settled wishes, newest first. An
// empty player returns the global feed.
func (s *Service) History(player string, limit int) ([]store.GameResult, error) {
	return s.db.RecentResults(player, limit)
}

// Config returns the configuration singleton, or nil when unconfigured.
func (s *Service) Config() (*store.Config, error) {
	return s.db.GetConfig()
}

// TokenPrices lists the accepted payment tokens.
func (s *Service) TokenPrices() ([]store.TokenPrice, error) {
	return s.db.ListTokenPrices()
}

// Reconciliation compares the incrementally maintained leaderboard
// against the append-only history log. The two drift only if a
// settlement path bypasses the leaderboard update, so equal counts are
// an operational health signal.
type Reconciliation struct {
	HistoryResults  uint64 `json:"history_results"`
	HistoryWins     uint64 `json:"history_wins"`
	LeaderboardWins uint64 `json:"leaderboard_wins"`
	Consistent      bool   `json:"consistent"`
}

// Reconcile computes the leaderboard/history consistency check.
func (s *Service) Reconcile() (*Reconciliation, error) {
	total, wins, err := s.db.CountResults()
	if err != nil {
		return nil, err
	}
	lbWins, err := s.db.SumLeaderboardWins()
	if err != nil {
		return nil, err
	}
	return &Reconciliation{
		HistoryResults:  total,
		HistoryWins:     wins,
		LeaderboardWins: lbWins,
		Consistent:      wins == lbWins,
	}, nil
}
