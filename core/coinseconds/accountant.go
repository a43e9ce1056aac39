// Package coinseconds implements the time-weighted core-asset holdings
// accountant: it grows an account's earned credit while it holds a core
// balance, converts that credit to spendable fee credit at a configured
// rate, and consumes it when an operation is paid for with it.
package coinseconds

import (
	"math/big"

	"dposledger/config"
	"dposledger/core/types"
)

// UpdateEarned advances stats.CoinSecondsEarned using the balance held over
// the interval since the last update, then records now as the new
// last-update timestamp. It must be called with the pre-mutation balance:
// credit is measured over the interval the balance was actually held, not
// the post-mutation balance.
//
// Called exactly once per core-asset balance mutation, by the ledger.
func UpdateEarned(stats *types.AccountStatistics, balance *big.Int, now uint64) {
	if stats.CoinSecondsEarnedLastUpdate == 0 {
		stats.CoinSecondsEarnedLastUpdate = now
		return
	}
	if now < stats.CoinSecondsEarnedLastUpdate {
		return
	}
	elapsed := new(big.Int).SetUint64(now - stats.CoinSecondsEarnedLastUpdate)
	delta := new(big.Int).Mul(balance, elapsed)
	if stats.CoinSecondsEarned == nil {
		stats.CoinSecondsEarned = new(big.Int)
	}
	stats.CoinSecondsEarned = new(big.Int).Add(stats.CoinSecondsEarned, delta)
	stats.CoinSecondsEarnedLastUpdate = now
}

// FeeCredit converts earned coin-seconds to fee credit at tier's rate,
// floor-dividing, then clamps the result to tier's accumulated-fee cap. When
// clamped, earned itself is ratcheted back down to creditCap × rate so a
// stalled account cannot silently keep accruing unspendable credit forever.
//
// Returns the usable fee credit and the (possibly ratcheted) earned value
// the caller should persist back to AccountStatistics.
func FeeCredit(earned *big.Int, tier config.MembershipTierConfig) (credit *big.Int, ratchetedEarned *big.Int) {
	if earned == nil || earned.Sign() <= 0 || tier.CoinSecondsRate == 0 {
		return big.NewInt(0), earned
	}
	rate := new(big.Int).SetUint64(tier.CoinSecondsRate)
	feeCredit := new(big.Int).Div(earned, rate)

	ceiling := new(big.Int).SetUint64(tier.MaxAccumulatedFees)
	if tier.MaxAccumulatedFees > 0 && feeCredit.Cmp(ceiling) > 0 {
		feeCredit = ceiling
		ratchetedEarned = new(big.Int).Mul(feeCredit, rate)
		return feeCredit, ratchetedEarned
	}
	return feeCredit, earned
}

// MaxPayable caps feeCredit by the per-operation ceiling maxOpFee. A zero
// maxOpFee means the operation accepts no coin-seconds-funded fee at all.
func MaxPayable(feeCredit *big.Int, maxOpFee uint64) *big.Int {
	ceiling := new(big.Int).SetUint64(maxOpFee)
	if feeCredit.Cmp(ceiling) > 0 {
		return ceiling
	}
	return new(big.Int).Set(feeCredit)
}

// Consume reduces stats.CoinSecondsEarned by paid × tier.CoinSecondsRate,
// the exact inverse of the conversion FeeCredit performs.
func Consume(stats *types.AccountStatistics, paid *big.Int, tier config.MembershipTierConfig) {
	if paid == nil || paid.Sign() <= 0 {
		return
	}
	rate := new(big.Int).SetUint64(tier.CoinSecondsRate)
	spent := new(big.Int).Mul(paid, rate)
	if stats.CoinSecondsEarned == nil {
		stats.CoinSecondsEarned = new(big.Int)
	}
	stats.CoinSecondsEarned = new(big.Int).Sub(stats.CoinSecondsEarned, spent)
	if stats.CoinSecondsEarned.Sign() < 0 {
		stats.CoinSecondsEarned = new(big.Int)
	}
}
