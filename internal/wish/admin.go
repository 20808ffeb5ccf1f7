package wish

import (
	"context"
	"fmt"

	"github.com/ubitquity/Zoltaran-Speaks/internal/asset"
	"github.com/ubitquity/Zoltaran-Speaks/internal/engine"
	"github.com/ubitquity/Zoltaran-Speaks/internal/store"
)

// Authorization for these operations lives at the API boundary: the
// HTTP layer only routes here after verifying the operator or admin
// role claim, mirroring the original contract's require_auth checks.

// ConfigParams initializes or updates the game configuration.
type ConfigParams struct {
	Admin         string         `json:"admin"`
	TokenContract string         `json:"token_contract"`
	TokenSymbol   string         `json:"token_symbol"`
	Weights       engine.Weights `json:"weights"`
}

// SetConfig validates and writes the configuration singleton. Treasury
// balance survives reconfiguration; the pause flag resets to false.
func (s *Service) SetConfig(ctx context.Context, params ConfigParams) error {
	if params.Weights.Sum() > engine.RollModulus {
		return ErrInvalidProbabilities
	}
	if _, err := asset.ParseSymbol(params.TokenSymbol); err != nil {
		return fmt.Errorf("invalid token symbol: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.WithTx(func(tx *store.Tx) error {
		conf, err := tx.GetConfig()
		if err != nil {
			return err
		}
		treasury := uint64(0)
		if conf != nil {
			treasury = conf.TreasuryBalance
		}
		return tx.PutConfig(&store.Config{
			Admin:           params.Admin,
			TokenContract:   params.TokenContract,
			TokenSymbol:     params.TokenSymbol,
			TreasuryBalance: treasury,
			Paused:          false,
			Weights:         params.Weights,
		})
	})
	if err != nil {
		return err
	}

	s.logger.Printf("config_set admin=%s token=%s weights_sum=%d",
		params.Admin, params.TokenSymbol, params.Weights.Sum())
	return nil
}

// SetTokenPrice upserts an accepted payment token.
func (s *Service) SetTokenPrice(ctx context.Context, price store.TokenPrice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.WithTx(func(tx *store.Tx) error {
		if _, err := loadConfig(tx); err != nil {
			return err
		}
		return tx.PutTokenPrice(&price)
	})
	if err != nil {
		return err
	}

	s.logger.Printf("token_price_set symbol=%s price=%d bonus_bps=%d enabled=%t",
		price.SymbolCode, price.PricePerWish, price.BonusBps, price.Enabled)
	return nil
}

// SetPause flips the emergency pause flag. Both commit and reveal
// refuse to proceed while it is set.
func (s *Service) SetPause(ctx context.Context, paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.WithTx(func(tx *store.Tx) error {
		conf, err := loadConfig(tx)
		if err != nil {
			return err
		}
		conf.Paused = paused
		return tx.PutConfig(conf)
	})
	if err != nil {
		return err
	}

	s.logger.Printf("pause_set paused=%t", paused)
	return nil
}

// Withdraw moves treasury funds out to an external account. Reward
// asset only; the external transfer and the balance decrement commit
// together or not at all.
func (s *Service) Withdraw(ctx context.Context, to string, quantity asset.Quantity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.WithTx(func(tx *store.Tx) error {
		conf, err := loadConfig(tx)
		if err != nil {
			return err
		}

		symbol, err := asset.ParseSymbol(conf.TokenSymbol)
		if err != nil {
			return fmt.Errorf("configured token symbol invalid: %w", err)
		}
		if quantity.Symbol != symbol {
			return ErrUnacceptedAsset
		}
		if quantity.Amount > conf.TreasuryBalance {
			return ErrInsufficientTreasury
		}

		if err := s.transfer.Transfer(ctx, to, quantity, "Treasury withdrawal"); err != nil {
			return fmt.Errorf("withdrawal transfer failed: %w", err)
		}

		conf.TreasuryBalance -= quantity.Amount
		return tx.PutConfig(conf)
	})
	if err != nil {
		return err
	}

	s.logger.Printf("treasury_withdrawn to=%s amount=%d", to, quantity.Amount)
	return nil
}
