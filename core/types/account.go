package types

import "dposledger/crypto"

// Address is the bech32-encoded account identifier shared by the ledger,
// vesting engine, and evaluators.
type Address = crypto.Address

// MembershipTier selects the coin-seconds conversion rate and accumulated-fee
// cap the coin-seconds accountant applies to an account.
type MembershipTier uint8

const (
	TierStandard MembershipTier = iota
	TierAnnual
	TierLifetime
)

// Account is the per-owner record the ledger and evaluators consult for
// nonce sequencing, membership tier, and per-asset whitelist authorization.
// Balances themselves live in separate (owner, asset) rows owned by the
// Ledger, not on this struct, so a whitelist/tier lookup never requires
// loading every asset an account holds.
type Account struct {
	Nonce          uint64           `json:"nonce"`
	MembershipTier MembershipTier   `json:"membershipTier"`
	Authorized     map[AssetID]bool `json:"authorized,omitempty"`
}

// NewAccount returns a zero-valued account ready for persistence.
func NewAccount() *Account {
	return &Account{Authorized: make(map[AssetID]bool)}
}

// IsAuthorized reports whether the account is whitelisted for asset. Callers
// only consult this when the asset's Whitelist flag is set.
func (a *Account) IsAuthorized(asset AssetID) bool {
	if a == nil || a.Authorized == nil {
		return false
	}
	return a.Authorized[asset]
}

// SetAuthorized grants or revokes whitelist authorization for asset.
func (a *Account) SetAuthorized(asset AssetID, authorized bool) {
	if a.Authorized == nil {
		a.Authorized = make(map[AssetID]bool)
	}
	if authorized {
		a.Authorized[asset] = true
		return
	}
	delete(a.Authorized, asset)
}
