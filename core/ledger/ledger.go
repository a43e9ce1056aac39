// Package ledger implements the per-(account,asset) balance table: reads,
// signed adjustments, and the coin-seconds side effect that adjust_balance
// triggers on core-asset mutations.
package ledger

import (
	"math/big"

	"dposledger/core/coinseconds"
	"dposledger/core/errors"
	"dposledger/core/hardfork"
	"dposledger/core/types"
)

// Store is the subset of state-manager capabilities the ledger needs.
type Store interface {
	Balance(owner []byte, asset types.AssetID) (*big.Int, error)
	SetBalance(owner []byte, asset types.AssetID, amount *big.Int) error
	MutateAccountStatistics(addr []byte, fn func(*types.AccountStatistics) error) error
}

// Ledger is the sole writer of account balances. Every mutation goes through
// AdjustBalance so the coin-seconds side effect on core-asset rows is never
// skipped by a caller reaching for SetBalance directly.
type Ledger struct {
	store Store
	gate  hardfork.Gate
}

// New constructs a Ledger backed by store, consulting gate for the free-trx
// fork when deciding whether to advance coin-seconds statistics.
func New(store Store, gate hardfork.Gate) *Ledger {
	return &Ledger{store: store, gate: gate}
}

// GetBalance returns owner's balance of asset, defaulting to zero for an
// absent row.
func (l *Ledger) GetBalance(owner []byte, asset types.AssetID) (*big.Int, error) {
	return l.store.Balance(owner, asset)
}

// AdjustBalance applies a signed delta to owner's balance of asset at chain
// time now. A zero delta is a no-op. A negative delta that would drive the
// balance below zero, or that targets an absent row, fails with
// KindInsufficientBalance.
//
// After a successful core-asset adjustment past the free-trx fork, owner's
// AccountStatistics.CoinSecondsEarned is advanced using the pre-adjustment
// balance and now — the coin-seconds accountant's contract requires the
// *original* balance, since credit accrues over the interval it was held.
func (l *Ledger) AdjustBalance(owner []byte, asset types.AssetID, delta *big.Int, now uint64) error {
	if delta == nil || delta.Sign() == 0 {
		return nil
	}

	original, err := l.store.Balance(owner, asset)
	if err != nil {
		return err
	}

	updated := new(big.Int).Add(original, delta)
	if updated.Sign() < 0 {
		return errors.New(errors.KindInsufficientBalance, "balance adjustment exceeds available funds").
			With("asset", string(asset)).
			With("delta", delta.String()).
			With("balance", original.String())
	}

	if err := l.store.SetBalance(owner, asset, updated); err != nil {
		return err
	}

	if asset.IsCore() && l.gate.At(now).FreeTrx {
		return l.advanceCoinSeconds(owner, original, now)
	}
	return nil
}

func (l *Ledger) advanceCoinSeconds(owner []byte, originalBalance *big.Int, now uint64) error {
	return l.store.MutateAccountStatistics(owner, func(stats *types.AccountStatistics) error {
		coinseconds.UpdateEarned(stats, originalBalance, now)
		return nil
	})
}
