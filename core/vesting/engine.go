// Package vesting implements the deposit-lazy fold-or-mint engine for
// cashback and validator-pay vesting balances.
package vesting

import (
	"math/big"

	"github.com/google/uuid"

	coreerrors "dposledger/core/errors"
	"dposledger/core/types"
)

// Store is the subset of state-manager capabilities the vesting engine
// needs.
type Store interface {
	VestingBalance(id string) (*types.VestingBalance, error)
	PutVestingBalance(vb *types.VestingBalance) error
	MutateAssetDynamicData(id types.AssetID, fn func(*types.AssetDynamicData) error) error
}

// Engine folds deposits into a compatible existing vesting balance or mints
// a new one, and special-cases deposits to reserved accounts as a burn to
// current_supply instead.
type Engine struct {
	store    Store
	reserved map[string]bool
}

// New constructs an Engine backed by store. reservedAccounts lists the
// bech32-encoded addresses (committee, validator, relaxed-committee, null,
// temp) whose cashback bypasses vesting entirely.
func New(store Store, reservedAccounts []string) *Engine {
	reserved := make(map[string]bool, len(reservedAccounts))
	for _, addr := range reservedAccounts {
		reserved[addr] = true
	}
	return &Engine{store: store, reserved: reserved}
}

// IsReserved reports whether addr is one of the configured reserved
// accounts.
func (e *Engine) IsReserved(addr types.Address) bool {
	return e.reserved[addr.String()]
}

// DepositLazy folds amount into currentVBID if it is present and policy-
// compatible (same owner, CDD tag, same vestingSeconds); otherwise it mints
// a new CDD vesting balance and returns its id. An empty returned id means
// the caller should keep using currentVBID (the fold case) or that amount
// was zero (a no-op).
//
// requireVesting selects between deposit (amount starts unvested, earning
// coin-seconds from zero) and deposit_vested (amount is treated as already
// fully vested: coin_seconds_earned is seeded to amount × vestingSeconds).
func (e *Engine) DepositLazy(currentVBID string, amount *big.Int, vestingSeconds uint32, owner types.Address, asset types.AssetID, requireVesting bool, now uint64) (newVBID string, err error) {
	if amount == nil || amount.Sign() == 0 {
		return "", nil
	}

	if currentVBID != "" {
		existing, err := e.store.VestingBalance(currentVBID)
		if err != nil {
			return "", err
		}
		if compatible(existing, owner, vestingSeconds) {
			foldInto(existing, amount, requireVesting, now)
			if err := e.store.PutVestingBalance(existing); err != nil {
				return "", err
			}
			return "", nil
		}
	}

	vb := &types.VestingBalance{
		ID:      uuid.NewString(),
		Owner:   owner,
		Asset:   asset,
		Balance: new(big.Int).Set(amount),
		Policy: types.VestingPolicy{
			Tag: types.VestingPolicyCDD,
			CDD: types.VestingPolicyCDDState{
				VestingSeconds:              vestingSeconds,
				CoinSecondsEarnedLastUpdate: now,
			},
		},
	}
	if requireVesting {
		vb.Policy.CDD.CoinSecondsEarned = big.NewInt(0)
	} else {
		vb.Policy.CDD.CoinSecondsEarned = new(big.Int).Mul(amount, big.NewInt(int64(vestingSeconds)))
	}
	if err := e.store.PutVestingBalance(vb); err != nil {
		return "", err
	}
	return vb.ID, nil
}

func compatible(existing *types.VestingBalance, owner types.Address, vestingSeconds uint32) bool {
	if existing == nil {
		return false
	}
	if !existing.Owner.Equal(owner) {
		return false
	}
	if existing.Policy.Tag != types.VestingPolicyCDD {
		return false
	}
	return existing.Policy.CDD.VestingSeconds == vestingSeconds
}

func foldInto(vb *types.VestingBalance, amount *big.Int, requireVesting bool, now uint64) {
	vb.Balance = new(big.Int).Add(vb.Balance, amount)
	if requireVesting {
		// deposit(now, amount): the new funds start unvested, so only the
		// last-update timestamp advances; coin_seconds_earned is unaffected
		// by this deposit (it keeps accruing from the pre-existing balance
		// going forward).
		vb.Policy.CDD.CoinSecondsEarnedLastUpdate = now
		return
	}
	// deposit_vested(now, amount): amount is already fully vested, so it
	// contributes its own coin-seconds credit immediately.
	contributed := new(big.Int).Mul(amount, big.NewInt(int64(vb.Policy.CDD.VestingSeconds)))
	vb.Policy.CDD.CoinSecondsEarned = new(big.Int).Add(vb.Policy.CDD.CoinSecondsEarned, contributed)
	vb.Policy.CDD.CoinSecondsEarnedLastUpdate = now
}

// DepositCashback routes a cashback/validator-pay deposit either into the
// vesting engine (DepositLazy) or, for the reserved accounts, directly burns
// amount from the core asset's current_supply.
func (e *Engine) DepositCashback(currentVBID string, amount *big.Int, vestingSeconds uint32, owner types.Address, requireVesting bool, now uint64) (newVBID string, err error) {
	if amount == nil || amount.Sign() == 0 {
		return "", nil
	}
	if e.IsReserved(owner) {
		err = e.store.MutateAssetDynamicData(types.CoreAssetID, func(dyn *types.AssetDynamicData) error {
			if dyn.CurrentSupply.Cmp(amount) < 0 {
				return coreerrors.New(coreerrors.KindInsufficientBalance, "current supply cannot absorb cashback burn").
					With("amount", amount.String()).
					With("current_supply", dyn.CurrentSupply.String())
			}
			dyn.CurrentSupply = new(big.Int).Sub(dyn.CurrentSupply, amount)
			return nil
		})
		return "", err
	}
	return e.DepositLazy(currentVBID, amount, vestingSeconds, owner, types.CoreAssetID, requireVesting, now)
}
