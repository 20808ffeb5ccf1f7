// Package wish implements the commit-reveal wish game: the commitment
// store, the settlement engine, the expiry sweeper and the admin
// operations, all executing as serialized, all-or-nothing units of work
// against the persistent tables.
package wish

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ubitquity/Zoltaran-Speaks/internal/asset"
	"github.com/ubitquity/Zoltaran-Speaks/internal/engine"
	"github.com/ubitquity/Zoltaran-Speaks/internal/store"
)

const (
	// CommitExpirySeconds is how long a commitment may stay unrevealed
	// before the sweeper reclaims it.
	CommitExpirySeconds = 3600

	// MinRevealDelayBlocks is the minimum chain progress between commit
	// and reveal. One full block keeps the entropy unknowable at commit
	// time.
	MinRevealDelayBlocks = 1

	// blockIntervalSeconds derives a block index from wall-clock time.
	// The original host chain approximated its block counter the same
	// way; treat the check as "minimum elapsed wall-clock interval".
	blockIntervalSeconds = 2

	secondsPerDay = 86400

	payoutMemo = "Zoltaran Speaks winnings!"
)

var hexDigest = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

// Service owns every mutating game operation. A single mutex serializes
// them, and each runs inside one store transaction, reproducing the
// original host's single-writer, visible-in-full-or-not-at-all
// execution model.
type Service struct {
	db       *store.SQLite
	transfer TokenTransfer
	entropy  EntropySource
	now      func() time.Time
	logger   *log.Logger

	mu sync.Mutex
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the wall-clock source. Tests use this to control
// day indexes, block numbers and expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger overrides the event logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService wires the settlement engine to its collaborators.
func NewService(db *store.SQLite, transfer TokenTransfer, entropy EntropySource, opts ...Option) *Service {
	s := &Service{
		db:       db,
		transfer: transfer,
		entropy:  entropy,
		now:      time.Now,
		logger:   log.New(os.Stdout, "[WISH] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func blockNum(t time.Time) uint32 {
	return uint32(t.Unix() / blockIntervalSeconds)
}

func dayNum(t time.Time) uint32 {
	return uint32(t.Unix() / secondsPerDay)
}

// hashForLog never logs player secrets raw; only their SHA-256.
func hashForLog(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}

func loadConfig(tx *store.Tx) (*store.Config, error) {
	conf, err := tx.GetConfig()
	if err != nil {
		return nil, err
	}
	if conf == nil {
		return nil, ErrNotConfigured
	}
	return conf, nil
}

// Commit opens a commitment: deducts one credit of the requested type
// and stores the binding hash. Fails ErrAlreadyPending while a live
// commitment exists for the player, regardless of credit type.
func (s *Service) Commit(ctx context.Context, player, commitHash string, wishType store.WishType) (*store.Commit, error) {
	if !hexDigest.MatchString(commitHash) {
		return nil, ErrInvalidCommitHash
	}
	commitHash = strings.ToLower(commitHash)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var commit *store.Commit

	err := s.db.WithTx(func(tx *store.Tx) error {
		conf, err := loadConfig(tx)
		if err != nil {
			return err
		}
		if conf.Paused {
			return ErrPaused
		}

		existing, err := tx.FindCommitByPlayer(player)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyPending
		}

		user, err := tx.GetUser(player)
		if err != nil {
			return err
		}

		switch wishType {
		case store.WishTypeFree:
			today := dayNum(now)
			if user == nil {
				user = &store.User{Account: player, LastFreeDay: today}
			} else {
				if user.LastFreeDay >= today {
					return ErrInsufficientCredits
				}
				user.LastFreeDay = today
			}
		case store.WishTypePurchased:
			if user == nil || user.PurchasedWishes == 0 {
				return ErrInsufficientCredits
			}
			user.PurchasedWishes--
		default:
			return fmt.Errorf("unknown wish type %d", wishType)
		}

		if err := tx.PutUser(user); err != nil {
			return err
		}

		id, err := tx.NextCommitID()
		if err != nil {
			return err
		}

		commit = &store.Commit{
			ID:         id,
			Player:     player,
			CommitHash: commitHash,
			BlockNum:   blockNum(now),
			WishType:   wishType,
			CreatedAt:  uint32(now.Unix()),
		}
		return tx.InsertCommit(commit)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Printf("commit_accepted player=%s commit_id=%d wish_type=%s block=%d",
		player, commit.ID, wishType, commit.BlockNum)
	return commit, nil
}

// Settlement is the full outcome of a successful reveal.
type Settlement struct {
	Result engine.Result    `json:"result"`
	Record store.GameResult `json:"record"`
}

// Reveal settles a commitment: verifies the binding hash, draws entropy,
// resolves the outcome, updates the account, leaderboard and history,
// pays out any reward and deletes the commitment. All-or-nothing: a
// failed payout rolls back every table mutation.
func (s *Service) Reveal(ctx context.Context, player string, commitID uint64, secret, wishCID string) (*Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var settlement *Settlement

	err := s.db.WithTx(func(tx *store.Tx) error {
		conf, err := loadConfig(tx)
		if err != nil {
			return err
		}
		if conf.Paused {
			return ErrPaused
		}

		commit, err := tx.GetCommit(commitID)
		if err != nil {
			return err
		}
		if commit == nil {
			return ErrNotFound
		}
		if commit.Player != player {
			return ErrWrongOwner
		}

		current := blockNum(now)
		if current <= commit.BlockNum || current-commit.BlockNum < MinRevealDelayBlocks {
			return ErrTooSoon
		}

		if engine.CommitDigest(secret, wishCID) != strings.ToLower(commit.CommitHash) {
			return ErrInvalidReveal
		}

		entropy, err := s.entropy.Entropy()
		if err != nil {
			return fmt.Errorf("entropy source failed: %w", err)
		}

		result := engine.Resolve(secret, entropy, player, conf.Weights)

		user, err := tx.GetUser(player)
		if err != nil {
			return err
		}
		if user == nil {
			user = &store.User{Account: player}
		}
		user.TotalWishes++
		if result.Code == engine.OutcomeWishGranted {
			user.TotalWins++
		}
		if result.Code == engine.OutcomeFreeSpin {
			user.PurchasedWishes++
		}
		user.TokensWon += result.Reward
		if err := tx.PutUser(user); err != nil {
			return err
		}

		if result.Code == engine.OutcomeWishGranted || result.Reward > 0 {
			winsDelta := uint32(0)
			if result.Code == engine.OutcomeWishGranted {
				winsDelta = 1
			}
			if err := tx.BumpLeaderboard(player, winsDelta, result.Reward); err != nil {
				return err
			}
		}

		resultID, err := tx.NextResultID()
		if err != nil {
			return err
		}
		record := store.GameResult{
			ID:         resultID,
			Player:     player,
			ResultCode: result.Code,
			TokensWon:  result.Reward,
			WishCID:    wishCID,
			CreatedAt:  uint32(now.Unix()),
		}
		if err := tx.InsertResult(&record); err != nil {
			return err
		}

		if result.Reward > 0 {
			if result.Reward > conf.TreasuryBalance {
				return ErrInsufficientTreasury
			}
			symbol, err := asset.ParseSymbol(conf.TokenSymbol)
			if err != nil {
				return fmt.Errorf("configured token symbol invalid: %w", err)
			}
			payout := asset.Quantity{Amount: result.Reward, Symbol: symbol}
			if err := s.transfer.Transfer(ctx, player, payout, payoutMemo); err != nil {
				return fmt.Errorf("reward transfer failed: %w", err)
			}
			conf.TreasuryBalance -= result.Reward
			if err := tx.PutConfig(conf); err != nil {
				return err
			}
		}

		if err := tx.DeleteCommit(commit.ID); err != nil {
			return err
		}

		settlement = &Settlement{Result: result, Record: record}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Printf("reveal_settled player=%s commit_id=%d result=%s roll=%d reward=%d secret_hash=%s",
		player, commitID, settlement.Result.Code, settlement.Result.Roll, settlement.Result.Reward, hashForLog(secret))
	return settlement, nil
}

// CleanupReport summarizes one sweep of expired commitments.
type CleanupReport struct {
	Removed  int `json:"removed"`
	Refunded int `json:"refunded"`
}

// Cleanup reclaims up to max expired commitments, oldest first, stopping
// at the first live one. Purchased credits are refunded; a missed free
// wish is simply lost. Callable by anyone.
func (s *Service) Cleanup(ctx context.Context, max int) (*CleanupReport, error) {
	if max <= 0 {
		return &CleanupReport{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := uint32(s.now().Unix())
	report := &CleanupReport{}

	err := s.db.WithTx(func(tx *store.Tx) error {
		if _, err := loadConfig(tx); err != nil {
			return err
		}

		oldest, err := tx.OldestCommits(max)
		if err != nil {
			return err
		}

		for _, c := range oldest {
			if now-c.CreatedAt <= CommitExpirySeconds {
				break // age-ordered: nothing further is expired
			}

			if c.WishType == store.WishTypePurchased {
				user, err := tx.GetUser(c.Player)
				if err != nil {
					return err
				}
				if user != nil {
					user.PurchasedWishes++
					if err := tx.PutUser(user); err != nil {
						return err
					}
					report.Refunded++
				}
			}

			if err := tx.DeleteCommit(c.ID); err != nil {
				return err
			}
			report.Removed++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if report.Removed > 0 {
		s.logger.Printf("cleanup_swept removed=%d refunded=%d", report.Removed, report.Refunded)
	}
	return report, nil
}

// Deposit is an inbound payment notification from the ledger watcher.
type Deposit struct {
	From     string         `json:"from"`
	Quantity asset.Quantity `json:"quantity"`
	Contract string         `json:"contract"`
	Memo     string         `json:"memo"`
}

// DepositReceipt reports how an inbound payment was applied.
type DepositReceipt struct {
	Intent          PaymentIntent `json:"intent"`
	CreditedWishes  uint32        `json:"credited_wishes"`
	BonusWishes     uint32        `json:"bonus_wishes"`
	TreasuryBalance uint64        `json:"treasury_balance"`
}

// HandleDeposit routes an inbound payment: treasury funding or a wish
// purchase at the configured price plus bonus percentage.
func (s *Service) HandleDeposit(ctx context.Context, dep Deposit) (*DepositReceipt, error) {
	intent, err := ParsePaymentMemo(dep.Memo)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	receipt := &DepositReceipt{Intent: intent}

	err = s.db.WithTx(func(tx *store.Tx) error {
		conf, err := loadConfig(tx)
		if err != nil {
			return err
		}

		if intent.Kind == PaymentFund {
			symbol, err := asset.ParseSymbol(conf.TokenSymbol)
			if err != nil {
				return fmt.Errorf("configured token symbol invalid: %w", err)
			}
			if dep.Quantity.Symbol != symbol || dep.Contract != conf.TokenContract {
				return ErrUnacceptedAsset
			}
			conf.TreasuryBalance += dep.Quantity.Amount
			receipt.TreasuryBalance = conf.TreasuryBalance
			return tx.PutConfig(conf)
		}

		price, err := tx.GetTokenPrice(dep.Quantity.Symbol.Code)
		if err != nil {
			return err
		}
		if price == nil || !price.Enabled || price.Contract != dep.Contract || price.Precision != dep.Quantity.Symbol.Precision {
			return ErrUnacceptedAsset
		}

		required := price.PricePerWish * uint64(intent.Count)
		if dep.Quantity.Amount < required {
			return ErrInsufficientPayment
		}

		bonus := intent.Count * uint32(price.BonusBps) / 10000
		total := intent.Count + bonus

		user, err := tx.GetUser(dep.From)
		if err != nil {
			return err
		}
		if user == nil {
			user = &store.User{Account: dep.From}
		}
		user.PurchasedWishes += total
		if err := tx.PutUser(user); err != nil {
			return err
		}

		receipt.CreditedWishes = total
		receipt.BonusWishes = bonus
		receipt.TreasuryBalance = conf.TreasuryBalance
		return nil
	})
	if err != nil {
		return nil, err
	}

	if intent.Kind == PaymentFund {
		s.logger.Printf("treasury_funded from=%s amount=%d balance=%d", dep.From, dep.Quantity.Amount, receipt.TreasuryBalance)
	} else {
		s.logger.Printf("wishes_purchased from=%s count=%d bonus=%d", dep.From, intent.Count, receipt.BonusWishes)
	}
	return receipt, nil
}
