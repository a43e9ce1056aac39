package params

const (
	// ParamsKeyHardforks stores the hardfork activation timestamps.
	ParamsKeyHardforks = "system/hardforks"
	// ParamsKeyFeeSchedule stores the per-operation fee defaults and
	// membership-tier coin-seconds rates.
	ParamsKeyFeeSchedule = "system/fee_schedule"
	// ParamsKeyReservedAccounts stores the chain-intrinsic account addresses
	// that absorb cashback into current_supply.
	ParamsKeyReservedAccounts = "system/reserved_accounts"
)
