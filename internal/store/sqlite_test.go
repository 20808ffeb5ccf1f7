package store

import (
	"errors"
	"testing"

	"github.com/ubitquity/Zoltaran-Speaks/internal/engine"
)

func newTestStore(t *testing.T) *SQLite {
	t.Helper()

	db, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func TestConfigRoundTrip(t *testing.T) {
	db := newTestStore(t)

	// Unconfigured store returns nil, not an error
	conf, err := db.GetConfig()
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if conf != nil {
		t.Fatalf("Expected nil config before configuration, got %+v", conf)
	}

	want := &Config{
		Admin:           "wishadmin",
		TokenContract:   "arcadetoken",
		TokenSymbol:     "8,ARCADE",
		TreasuryBalance: 123456,
		Paused:          true,
		Weights:         engine.DefaultWeights,
	}
	if err := db.PutConfig(want); err != nil {
		t.Fatalf("PutConfig failed: %v", err)
	}

	got, err := db.GetConfig()
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if got == nil || *got != *want {
		t.Errorf("GetConfig = %+v, want %+v", got, want)
	}
}

func TestSequences(t *testing.T) {
	db := newTestStore(t)

	for want := uint64(1); want <= 3; want++ {
		id, err := db.NextCommitID()
		if err != nil {
			t.Fatalf("NextCommitID failed: %v", err)
		}
		if id != want {
			t.Errorf("NextCommitID = %d, want %d", id, want)
		}
	}

	// Result sequence is independent of the commit sequence
	id, err := db.NextResultID()
	if err != nil {
		t.Fatalf("NextResultID failed: %v", err)
	}
	if id != 1 {
		t.Errorf("NextResultID = %d, want 1", id)
	}
}

func TestCommitLifecycle(t *testing.T) {
	db := newTestStore(t)

	c := &Commit{
		ID:         1,
		Player:     "alice",
		CommitHash: "deadbeef",
		BlockNum:   100,
		WishType:   WishTypePurchased,
		CreatedAt:  1000,
	}
	if err := db.InsertCommit(c); err != nil {
		t.Fatalf("InsertCommit failed: %v", err)
	}

	// One live commitment per player is enforced at the schema level too
	dup := &Commit{ID: 2, Player: "alice", CommitHash: "beef", BlockNum: 101, WishType: WishTypeFree, CreatedAt: 1001}
	if err := db.InsertCommit(dup); err == nil {
		t.Errorf("Expected unique constraint violation for second commit by same player")
	}

	got, err := db.FindCommitByPlayer("alice")
	if err != nil {
		t.Fatalf("FindCommitByPlayer failed: %v", err)
	}
	if got == nil || *got != *c {
		t.Errorf("FindCommitByPlayer = %+v, want %+v", got, c)
	}

	missing, err := db.FindCommitByPlayer("bob")
	if err != nil {
		t.Fatalf("FindCommitByPlayer failed: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil commit for bob, got %+v", missing)
	}

	if err := db.DeleteCommit(c.ID); err != nil {
		t.Fatalf("DeleteCommit failed: %v", err)
	}
	gone, err := db.GetCommit(c.ID)
	if err != nil {
		t.Fatalf("GetCommit failed: %v", err)
	}
	if gone != nil {
		t.Errorf("Expected commit deleted, got %+v", gone)
	}
}

func TestOldestCommitsOrder(t *testing.T) {
	db := newTestStore(t)

	commits := []Commit{
		{ID: 1, Player: "p1", CommitHash: "h1", BlockNum: 1, WishType: WishTypeFree, CreatedAt: 3000},
		{ID: 2, Player: "p2", CommitHash: "h2", BlockNum: 1, WishType: WishTypeFree, CreatedAt: 1000},
		{ID: 3, Player: "p3", CommitHash: "h3", BlockNum: 1, WishType: WishTypeFree, CreatedAt: 2000},
	}
	for i := range commits {
		if err := db.InsertCommit(&commits[i]); err != nil {
			t.Fatalf("InsertCommit failed: %v", err)
		}
	}

	got, err := db.OldestCommits(10)
	if err != nil {
		t.Fatalf("OldestCommits failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("OldestCommits returned %d commits, want 3", len(got))
	}
	wantOrder := []string{"p2", "p3", "p1"}
	for i, player := range wantOrder {
		if got[i].Player != player {
			t.Errorf("OldestCommits[%d].Player = %s, want %s", i, got[i].Player, player)
		}
	}

	limited, err := db.OldestCommits(2)
	if err != nil {
		t.Fatalf("OldestCommits failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("OldestCommits(2) returned %d commits", len(limited))
	}
}

func TestHistoryAndCounts(t *testing.T) {
	db := newTestStore(t)

	results := []GameResult{
		{ID: 1, Player: "alice", ResultCode: engine.OutcomeWishGranted, TokensWon: 0, WishCID: "Qm1", CreatedAt: 100},
		{ID: 2, Player: "bob", ResultCode: engine.OutcomeTokens250, TokensWon: 25_000_000_000, WishCID: "Qm2", CreatedAt: 200},
		{ID: 3, Player: "alice", ResultCode: engine.OutcomeTryAgain, TokensWon: 0, WishCID: "Qm3", CreatedAt: 300},
	}
	for i := range results {
		if err := db.InsertResult(&results[i]); err != nil {
			t.Fatalf("InsertResult failed: %v", err)
		}
	}

	recent, err := db.RecentResults("", 2)
	if err != nil {
		t.Fatalf("RecentResults failed: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != 3 || recent[1].ID != 2 {
		t.Errorf("RecentResults order wrong: %+v", recent)
	}

	aliceOnly, err := db.RecentResults("alice", 10)
	if err != nil {
		t.Fatalf("RecentResults failed: %v", err)
	}
	if len(aliceOnly) != 2 {
		t.Errorf("Expected 2 alice results, got %d", len(aliceOnly))
	}
	for _, r := range aliceOnly {
		if r.Player != "alice" {
			t.Errorf("Filtered history contains %s", r.Player)
		}
	}

	total, wins, err := db.CountResults()
	if err != nil {
		t.Fatalf("CountResults failed: %v", err)
	}
	if total != 3 || wins != 1 {
		t.Errorf("CountResults = (%d, %d), want (3, 1)", total, wins)
	}
}

func TestLeaderboard(t *testing.T) {
	db := newTestStore(t)

	// Incremental updates, including the create-on-first-win path
	if err := db.BumpLeaderboard("alice", 1, 0); err != nil {
		t.Fatalf("BumpLeaderboard failed: %v", err)
	}
	if err := db.BumpLeaderboard("alice", 1, 25_000_000_000); err != nil {
		t.Fatalf("BumpLeaderboard failed: %v", err)
	}
	if err := db.BumpLeaderboard("bob", 2, 0); err != nil {
		t.Fatalf("BumpLeaderboard failed: %v", err)
	}
	if err := db.BumpLeaderboard("carol", 2, 50_000_000_000); err != nil {
		t.Fatalf("BumpLeaderboard failed: %v", err)
	}

	top, err := db.TopLeaderboard(10)
	if err != nil {
		t.Fatalf("TopLeaderboard failed: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("TopLeaderboard returned %d entries, want 3", len(top))
	}

	// carol and bob tie on wins; carol leads on tokens won
	wantOrder := []string{"carol", "bob", "alice"}
	for i, player := range wantOrder {
		if top[i].Player != player {
			t.Errorf("TopLeaderboard[%d] = %s, want %s", i, top[i].Player, player)
		}
	}
	if top[2].Wins != 2 || top[2].TokensWon != 25_000_000_000 {
		t.Errorf("alice entry not accumulated: %+v", top[2])
	}

	sum, err := db.SumLeaderboardWins()
	if err != nil {
		t.Fatalf("SumLeaderboardWins failed: %v", err)
	}
	if sum != 6 {
		t.Errorf("SumLeaderboardWins = %d, want 6", sum)
	}
}

func TestTokenPrices(t *testing.T) {
	db := newTestStore(t)

	price := &TokenPrice{
		SymbolCode:   "WAX",
		Precision:    8,
		Contract:     "eosio.token",
		PricePerWish: 100_000_000,
		BonusBps:     350,
		Enabled:      true,
	}
	if err := db.PutTokenPrice(price); err != nil {
		t.Fatalf("PutTokenPrice failed: %v", err)
	}

	// Upsert path
	price.PricePerWish = 200_000_000
	price.Enabled = false
	if err := db.PutTokenPrice(price); err != nil {
		t.Fatalf("PutTokenPrice upsert failed: %v", err)
	}

	got, err := db.GetTokenPrice("WAX")
	if err != nil {
		t.Fatalf("GetTokenPrice failed: %v", err)
	}
	if got == nil || got.PricePerWish != 200_000_000 || got.Enabled {
		t.Errorf("GetTokenPrice = %+v", got)
	}

	missing, err := db.GetTokenPrice("TLM")
	if err != nil {
		t.Fatalf("GetTokenPrice failed: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for unknown token, got %+v", missing)
	}

	all, err := db.ListTokenPrices()
	if err != nil {
		t.Fatalf("ListTokenPrices failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("ListTokenPrices returned %d entries", len(all))
	}
}

func TestWithTxRollback(t *testing.T) {
	db := newTestStore(t)

	boom := errors.New("boom")
	err := db.WithTx(func(tx *Tx) error {
		if err := tx.PutUser(&User{Account: "alice", PurchasedWishes: 5}); err != nil {
			return err
		}
		if _, err := tx.NextCommitID(); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx error = %v, want boom", err)
	}

	// Nothing from the failed transaction is visible
	u, err := db.GetUser("alice")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if u != nil {
		t.Errorf("Rolled-back user visible: %+v", u)
	}

	id, err := db.NextCommitID()
	if err != nil {
		t.Fatalf("NextCommitID failed: %v", err)
	}
	if id != 1 {
		t.Errorf("Sequence advanced by rolled-back transaction: got %d", id)
	}
}

func TestWithTxCommit(t *testing.T) {
	db := newTestStore(t)

	err := db.WithTx(func(tx *Tx) error {
		return tx.PutUser(&User{Account: "bob", PurchasedWishes: 3, TokensWon: 7})
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}

	u, err := db.GetUser("bob")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if u == nil || u.PurchasedWishes != 3 || u.TokensWon != 7 {
		t.Errorf("GetUser = %+v", u)
	}
}
