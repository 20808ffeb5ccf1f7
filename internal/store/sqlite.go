package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/ubitquity/Zoltaran-Speaks/internal/engine"
)

// SQLite persists all game tables in a single SQLite database.
type SQLite struct {
	queries
	db *sql.DB
}

// Tx is a transaction-scoped view of the store. Every mutation made
// through it commits in full or not at all.
type Tx struct {
	queries
	tx *sql.Tx
}

// execer is the subset of database/sql shared by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
}

type queries struct {
	q execer
}

// NewSQLite opens (and creates if needed) a SQLite database at path.
// Use ":memory:" for tests.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &SQLite{queries: queries{q: db}, db: db}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Migrate creates the schema.
func (s *SQLite) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS config (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			admin TEXT NOT NULL,
			token_contract TEXT NOT NULL,
			token_symbol TEXT NOT NULL,
			treasury_balance INTEGER NOT NULL DEFAULT 0,
			paused INTEGER NOT NULL DEFAULT 0,
			prob_win INTEGER NOT NULL,
			prob_tokens_250 INTEGER NOT NULL,
			prob_tokens_500 INTEGER NOT NULL,
			prob_tokens_1000 INTEGER NOT NULL,
			prob_free_spin INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS token_prices (
			symbol_code TEXT PRIMARY KEY,
			precision INTEGER NOT NULL,
			contract TEXT NOT NULL,
			price_per_wish INTEGER NOT NULL,
			bonus_bps INTEGER NOT NULL DEFAULT 0,
			enabled INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			account TEXT PRIMARY KEY,
			purchased_wishes INTEGER NOT NULL DEFAULT 0,
			last_free_day INTEGER NOT NULL DEFAULT 0,
			total_wishes INTEGER NOT NULL DEFAULT 0,
			total_wins INTEGER NOT NULL DEFAULT 0,
			tokens_won INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS commits (
			id INTEGER PRIMARY KEY,
			player TEXT NOT NULL UNIQUE,
			commit_hash TEXT NOT NULL,
			block_num INTEGER NOT NULL,
			wish_type INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_commits_created_at ON commits(created_at)`,
		`CREATE TABLE IF NOT EXISTS game_history (
			id INTEGER PRIMARY KEY,
			player TEXT NOT NULL,
			result_code INTEGER NOT NULL,
			tokens_won INTEGER NOT NULL DEFAULT 0,
			wish_cid TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_player ON game_history(player, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_history_created ON game_history(created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS leaderboard (
			player TEXT PRIMARY KEY,
			wins INTEGER NOT NULL DEFAULT 0,
			tokens_won INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_leaderboard_wins ON leaderboard(wins DESC, tokens_won DESC)`,
		`CREATE TABLE IF NOT EXISTS globals (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			next_commit_id INTEGER NOT NULL,
			next_result_id INTEGER NOT NULL
		)`,
		`INSERT OR IGNORE INTO globals (id, next_commit_id, next_result_id) VALUES (1, 1, 1)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// WithTx runs fn inside a single transaction. If fn returns an error the
// transaction rolls back and none of its writes become visible.
func (s *SQLite) WithTx(fn func(tx *Tx) error) error {
	dbtx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	tx := &Tx{queries: queries{q: dbtx}, tx: dbtx}
	if err := fn(tx); err != nil {
		dbtx.Rollback()
		return err
	}

	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ---- sequence generator ----

// NextCommitID allocates the next monotonic commitment id.
func (q queries) NextCommitID() (uint64, error) {
	return q.nextID("next_commit_id")
}

// NextResultID allocates the next monotonic history id.
func (q queries) NextResultID() (uint64, error) {
	return q.nextID("next_result_id")
}

func (q queries) nextID(column string) (uint64, error) {
	var id uint64
	if err := q.q.QueryRow("SELECT " + column + " FROM globals WHERE id = 1").Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", column, err)
	}
	if _, err := q.q.Exec("UPDATE globals SET "+column+" = ? WHERE id = 1", id+1); err != nil {
		return 0, fmt.Errorf("failed to advance %s: %w", column, err)
	}
	return id, nil
}

// ---- config ----

// GetConfig returns the configuration singleton, or nil if the game has
// never been configured.
func (q queries) GetConfig() (*Config, error) {
	var (
		c      Config
		paused int
	)
	err := q.q.QueryRow(`SELECT admin, token_contract, token_symbol, treasury_balance, paused,
		prob_win, prob_tokens_250, prob_tokens_500, prob_tokens_1000, prob_free_spin
		FROM config WHERE id = 1`).Scan(
		&c.Admin, &c.TokenContract, &c.TokenSymbol, &c.TreasuryBalance, &paused,
		&c.Weights.Win, &c.Weights.Tokens250, &c.Weights.Tokens500, &c.Weights.Tokens1000, &c.Weights.FreeSpin,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	c.Paused = paused == 1
	return &c, nil
}

// PutConfig writes the configuration singleton.
func (q queries) PutConfig(c *Config) error {
	paused := 0
	if c.Paused {
		paused = 1
	}
	_, err := q.q.Exec(`INSERT INTO config (
			id, admin, token_contract, token_symbol, treasury_balance, paused,
			prob_win, prob_tokens_250, prob_tokens_500, prob_tokens_1000, prob_free_spin
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			admin = excluded.admin,
			token_contract = excluded.token_contract,
			token_symbol = excluded.token_symbol,
			treasury_balance = excluded.treasury_balance,
			paused = excluded.paused,
			prob_win = excluded.prob_win,
			prob_tokens_250 = excluded.prob_tokens_250,
			prob_tokens_500 = excluded.prob_tokens_500,
			prob_tokens_1000 = excluded.prob_tokens_1000,
			prob_free_spin = excluded.prob_free_spin`,
		c.Admin, c.TokenContract, c.TokenSymbol, c.TreasuryBalance, paused,
		c.Weights.Win, c.Weights.Tokens250, c.Weights.Tokens500, c.Weights.Tokens1000, c.Weights.FreeSpin,
	)
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ---- token prices ----

// GetTokenPrice looks up an accepted payment token by symbol code.
func (q queries) GetTokenPrice(symbolCode string) (*TokenPrice, error) {
	var (
		t       TokenPrice
		enabled int
	)
	err := q.q.QueryRow(`SELECT symbol_code, precision, contract, price_per_wish, bonus_bps, enabled
		FROM token_prices WHERE symbol_code = ?`, symbolCode).Scan(
		&t.SymbolCode, &t.Precision, &t.Contract, &t.PricePerWish, &t.BonusBps, &enabled,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token price: %w", err)
	}
	t.Enabled = enabled == 1
	return &t, nil
}

// PutTokenPrice upserts an accepted payment token.
func (q queries) PutTokenPrice(t *TokenPrice) error {
	enabled := 0
	if t.Enabled {
		enabled = 1
	}
	_, err := q.q.Exec(`INSERT INTO token_prices (symbol_code, precision, contract, price_per_wish, bonus_bps, enabled)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol_code) DO UPDATE SET
			precision = excluded.precision,
			contract = excluded.contract,
			price_per_wish = excluded.price_per_wish,
			bonus_bps = excluded.bonus_bps,
			enabled = excluded.enabled`,
		t.SymbolCode, t.Precision, t.Contract, t.PricePerWish, t.BonusBps, enabled,
	)
	if err != nil {
		return fmt.Errorf("failed to write token price: %w", err)
	}
	return nil
}

// ListTokenPrices returns every configured payment token.
func (q queries) ListTokenPrices() ([]TokenPrice, error) {
	rows, err := q.q.Query(`SELECT symbol_code, precision, contract, price_per_wish, bonus_bps, enabled
		FROM token_prices ORDER BY symbol_code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query token prices: %w", err)
	}
	defer rows.Close()

	var prices []TokenPrice
	for rows.Next() {
		var (
			t       TokenPrice
			enabled int
		)
		if err := rows.Scan(&t.SymbolCode, &t.Precision, &t.Contract, &t.PricePerWish, &t.BonusBps, &enabled); err != nil {
			return nil, fmt.Errorf("failed to scan token price: %w", err)
		}
		t.Enabled = enabled == 1
		prices = append(prices, t)
	}
	return prices, rows.Err()
}

// ---- users ----

// GetUser returns a user row, or nil if the player has no record yet.
func (q queries) GetUser(account string) (*User, error) {
	var u User
	err := q.q.QueryRow(`SELECT account, purchased_wishes, last_free_day, total_wishes, total_wins, tokens_won
		FROM users WHERE account = ?`, account).Scan(
		&u.Account, &u.PurchasedWishes, &u.LastFreeDay, &u.TotalWishes, &u.TotalWins, &u.TokensWon,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user: %w", err)
	}
	return &u, nil
}

// PutUser upserts a user row.
func (q queries) PutUser(u *User) error {
	_, err := q.q.Exec(`INSERT INTO users (account, purchased_wishes, last_free_day, total_wishes, total_wins, tokens_won)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(account) DO UPDATE SET
			purchased_wishes = excluded.purchased_wishes,
			last_free_day = excluded.last_free_day,
			total_wishes = excluded.total_wishes,
			total_wins = excluded.total_wins,
			tokens_won = excluded.tokens_won`,
		u.Account, u.PurchasedWishes, u.LastFreeDay, u.TotalWishes, u.TotalWins, u.TokensWon,
	)
	if err != nil {
		return fmt.Errorf("failed to write user: %w", err)
	}
	return nil
}

// ---- commits ----

// InsertCommit stores a new pending commitment.
func (q queries) InsertCommit(c *Commit) error {
	_, err := q.q.Exec(`INSERT INTO commits (id, player, commit_hash, block_num, wish_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Player, c.CommitHash, c.BlockNum, c.WishType, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert commit: %w", err)
	}
	return nil
}

// GetCommit returns a commitment by id, or nil if absent.
func (q queries) GetCommit(id uint64) (*Commit, error) {
	return q.scanCommit(q.q.QueryRow(`SELECT id, player, commit_hash, block_num, wish_type, created_at
		FROM commits WHERE id = ?`, id))
}

// FindCommitByPlayer returns the player's pending commitment, or nil.
// The player column is unique so there is at most one.
func (q queries) FindCommitByPlayer(player string) (*Commit, error) {
	return q.scanCommit(q.q.QueryRow(`SELECT id, player, commit_hash, block_num, wish_type, created_at
		FROM commits WHERE player = ?`, player))
}

func (q queries) scanCommit(row *sql.Row) (*Commit, error) {
	var c Commit
	err := row.Scan(&c.ID, &c.Player, &c.CommitHash, &c.BlockNum, &c.WishType, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read commit: %w", err)
	}
	return &c, nil
}

// DeleteCommit removes a commitment by id.
func (q queries) DeleteCommit(id uint64) error {
	if _, err := q.q.Exec("DELETE FROM commits WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete commit: %w", err)
	}
	return nil
}

// OldestCommits returns up to limit commitments in ascending age order
// (oldest first), for the expiry prefix scan.
func (q queries) OldestCommits(limit int) ([]Commit, error) {
	rows, err := q.q.Query(`SELECT id, player, commit_hash, block_num, wish_type, created_at
		FROM commits ORDER BY created_at ASC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query commits: %w", err)
	}
	defer rows.Close()

	var commits []Commit
	for rows.Next() {
		var c Commit
		if err := rows.Scan(&c.ID, &c.Player, &c.CommitHash, &c.BlockNum, &c.WishType, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan commit: %w", err)
		}
		commits = append(commits, c)
	}
	return commits, rows.Err()
}

// ---- game history ----

// InsertResult appends a settled wish to the history log.
func (q queries) InsertResult(r *GameResult) error {
	_, err := q.q.Exec(`INSERT INTO game_history (id, player, result_code, tokens_won, wish_cid, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Player, r.ResultCode, r.TokensWon, r.WishCID, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert game result: %w", err)
	}
	return nil
}

// RecentResults returns the newest results first, up to limit. A
// non-empty player filters to that player's history.
func (q queries) RecentResults(player string, limit int) ([]GameResult, error) {
	query := `SELECT id, player, result_code, tokens_won, wish_cid, created_at
		FROM game_history ORDER BY id DESC LIMIT ?`
	args := []any{limit}
	if player != "" {
		query = `SELECT id, player, result_code, tokens_won, wish_cid, created_at
			FROM game_history WHERE player = ? ORDER BY id DESC LIMIT ?`
		args = []any{player, limit}
	}

	rows, err := q.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var results []GameResult
	for rows.Next() {
		var r GameResult
		if err := rows.Scan(&r.ID, &r.Player, &r.ResultCode, &r.TokensWon, &r.WishCID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// CountResults returns history row counts, total and win-only. Used to
// reconcile the leaderboard against the append-only history.
func (q queries) CountResults() (total uint64, wins uint64, err error) {
	err = q.q.QueryRow(`SELECT COUNT(*), COALESCE(SUM(CASE WHEN result_code = ? THEN 1 ELSE 0 END), 0)
		FROM game_history`, engine.OutcomeWishGranted).Scan(&total, &wins)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count history: %w", err)
	}
	return total, wins, nil
}

// ---- leaderboard ----

// BumpLeaderboard applies an incremental win/token delta for a player,
// creating the entry on first win.
func (q queries) BumpLeaderboard(player string, winsDelta uint32, tokensDelta uint64) error {
	_, err := q.q.Exec(`INSERT INTO leaderboard (player, wins, tokens_won) VALUES (?, ?, ?)
		ON CONFLICT(player) DO UPDATE SET
			wins = wins + excluded.wins,
			tokens_won = tokens_won + excluded.tokens_won`,
		player, winsDelta, tokensDelta,
	)
	if err != nil {
		return fmt.Errorf("failed to update leaderboard: %w", err)
	}
	return nil
}

// TopLeaderboard returns the top entries ordered by wins descending with
// tokens won as the tie break.
func (q queries) TopLeaderboard(limit int) ([]LeaderboardEntry, error) {
	rows, err := q.q.Query(`SELECT player, wins, tokens_won FROM leaderboard
		ORDER BY wins DESC, tokens_won DESC, player ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Player, &e.Wins, &e.TokensWon); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SumLeaderboardWins returns the total wins recorded across all entries.
func (q queries) SumLeaderboardWins() (uint64, error) {
	var sum uint64
	if err := q.q.QueryRow("SELECT COALESCE(SUM(wins), 0) FROM leaderboard").Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum leaderboard wins: %w", err)
	}
	return sum, nil
}
