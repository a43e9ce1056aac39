package evaluator

import "dposledger/core/types"

// tierName maps an account's MembershipTier to the config key the fee
// schedule's Tiers map is keyed by.
func tierName(tier types.MembershipTier) string {
	switch tier {
	case types.TierAnnual:
		return "annual"
	case types.TierLifetime:
		return "lifetime"
	default:
		return "standard"
	}
}
