// Package hardfork derives the time-indexed feature flags the fee pipeline
// and operation evaluators branch on from a fixed set of chain timestamps.
package hardfork

import "dposledger/config"

// Flags reports which protocol-version branches are active at a given chain
// time. Branches elsewhere in the core read from Flags rather than
// consulting timestamps directly, so tests can parameterize the fork point.
type Flags struct {
	// FreeTrx gates whether adjust_balance updates an account's coin-seconds
	// statistics as a side effect of a core-asset balance mutation.
	FreeTrx bool
	// WhitelistTightened gates the "fee-asset-whitelisted implies
	// from-authorized" shortcut in the transfer evaluator: before the fork
	// the shortcut is evaluated explicitly; after, it is redundant because
	// the whitelist check upstream already covers it.
	WhitelistTightened bool
	// BSIP10 gates whether transfer_v2 is evaluable at all.
	BSIP10 bool
}

// Gate derives Flags from configured hardfork timestamps.
type Gate struct {
	timestamps config.Hardforks
}

// New constructs a Gate from the supplied hardfork timestamps.
func New(timestamps config.Hardforks) Gate {
	return Gate{timestamps: timestamps}
}

// At returns the feature flags active at chain time now. It is a pure
// function: no state is read or mutated.
func (g Gate) At(now uint64) Flags {
	return Flags{
		FreeTrx:            now >= g.timestamps.FreeTrxTime,
		WhitelistTightened: now >= g.timestamps.WhitelistTightenedTime,
		BSIP10:             now >= g.timestamps.BSIP10Time,
	}
}
