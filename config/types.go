package config

// Hardforks lists the fixed chain timestamps (Unix seconds) after which the
// evaluator branches in core/hardfork activate. A zero value means the fork
// is considered to have already occurred (useful for test fixtures that
// always want the post-fork branch active).
type Hardforks struct {
	FreeTrxTime            uint64 `toml:"FreeTrxTime"`
	WhitelistTightenedTime uint64 `toml:"WhitelistTightenedTime"`
	BSIP10Time             uint64 `toml:"BSIP10Time"`
}

// MembershipTierConfig carries the coin-seconds conversion rate and
// accumulated-fee cap for one membership tier.
type MembershipTierConfig struct {
	CoinSecondsRate    uint64 `toml:"CoinSecondsRate"`
	MaxAccumulatedFees uint64 `toml:"MaxAccumulatedFees"`
}

// OperationFeeConfig carries the flat fee default and the optional
// percentage-mode parameters for one operation tag (e.g. "transfer",
// "transfer_v2", "committee_member_create").
type OperationFeeConfig struct {
	FlatFee                 uint64 `toml:"FlatFee"`
	PricePerKilobyte        uint64 `toml:"PricePerKilobyte"`
	PercentageBps           uint32 `toml:"PercentageBps"`
	PercentageMinFee        uint64 `toml:"PercentageMinFee"`
	MaxOpFeeFromCoinSeconds uint64 `toml:"MaxOpFeeFromCoinSeconds"`
}

// FeeSchedule bundles per-operation fee defaults and the membership tiers
// the coin-seconds accountant consults.
type FeeSchedule struct {
	Scale      uint64                          `toml:"Scale"`
	Operations map[string]OperationFeeConfig   `toml:"Operations"`
	Tiers      map[string]MembershipTierConfig `toml:"Tiers"`

	// CashbackVestingSeconds parameterizes the CDD vesting balance minted
	// once accumulated fees cross CashbackThreshold.
	CashbackVestingSeconds uint32 `toml:"CashbackVestingSeconds"`
	// CashbackThreshold is the core-asset amount of pending cashback that
	// triggers a vesting deposit.
	CashbackThreshold uint64 `toml:"CashbackThreshold"`
}

// ValidationLimits bounds operation payload fields this core checks before
// accepting an operation, independent of the fee pipeline's own checks.
type ValidationLimits struct {
	// MaxURLLength bounds CommitteeMemberCreate/Update's URL field.
	MaxURLLength uint32 `toml:"MaxURLLength"`
	// MaxShareSupply bounds CoreAssetOptionsUpdate's requested max supply.
	MaxShareSupply uint64 `toml:"MaxShareSupply"`
}

// ReservedAccounts lists the chain-intrinsic bech32 addresses that absorb
// cashback into current_supply instead of accruing a vesting balance.
type ReservedAccounts struct {
	Committee        string `toml:"Committee"`
	Validator        string `toml:"Validator"`
	RelaxedCommittee string `toml:"RelaxedCommittee"`
	Null             string `toml:"Null"`
	Temp             string `toml:"Temp"`
}

// Addresses returns the configured reserved account strings, skipping any
// left blank.
func (r ReservedAccounts) Addresses() []string {
	all := []string{r.Committee, r.Validator, r.RelaxedCommittee, r.Null, r.Temp}
	out := make([]string, 0, len(all))
	for _, addr := range all {
		if addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
