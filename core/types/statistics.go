package types

import "math/big"

// AccountStatistics is the per-account record the coin-seconds accountant
// and fee pipeline mutate. CoinSecondsEarned accrues while the account holds
// a core-asset balance and is spent down as fee credit; the lifetime
// counters are a read-only reporting surface with no bearing on evaluation.
type AccountStatistics struct {
	CoinSecondsEarned           *big.Int `json:"coinSecondsEarned"`
	CoinSecondsEarnedLastUpdate uint64   `json:"coinSecondsEarnedLastUpdate"`
	LifetimeFeesPaidCore        *big.Int `json:"lifetimeFeesPaidCore"`
	LifetimeFeesPaidCoinSeconds *big.Int `json:"lifetimeFeesPaidCoinSeconds"`

	// PendingCashback accumulates collected core fees not yet folded into a
	// vesting balance. Fee pipeline's pay_fee step adds to it; once it
	// reaches the configured cashback vesting threshold, the whole pending
	// amount is deposited via the vesting engine and the pending amount resets.
	PendingCashback *big.Int `json:"pendingCashback"`
	// CashbackVestingID names the vesting balance the pipeline last folded
	// cashback into, so repeated cashback for the same account keeps
	// accumulating in one record instead of minting a new one every payout.
	CashbackVestingID string `json:"cashbackVestingId,omitempty"`
}

// NewAccountStatistics returns a zero-valued record ready for persistence.
func NewAccountStatistics() *AccountStatistics {
	return &AccountStatistics{
		CoinSecondsEarned:           big.NewInt(0),
		LifetimeFeesPaidCore:        big.NewInt(0),
		LifetimeFeesPaidCoinSeconds: big.NewInt(0),
		PendingCashback:             big.NewInt(0),
	}
}
