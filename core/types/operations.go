package types

import "math/big"

// Fee is the asset/amount pair an operation declares as its fee. Amount is
// always non-negative; the fee pipeline validates this at evaluate time.
type Fee struct {
	Amount *big.Int `json:"amount"`
	Asset  AssetID  `json:"asset"`
}

// FeeMode selects how TransferV2's fee pipeline computes the required core
// fee: Flat mirrors Transfer's fixed schedule fee, PercentageSimple derives
// it from the transferred amount with a configured floor.
type FeeMode uint8

const (
	FeeModeFlat FeeMode = iota
	FeeModePercentageSimple
)

// Transfer moves amount of asset from From to To, charging fee. It is the
// flat-fee, balances-before-fee evaluator (spec v1).
type Transfer struct {
	Fee        Fee
	From       Address
	To         Address
	Asset      AssetID
	Amount     *big.Int
	Memo       []byte
	Extensions map[string]string
}

// TransferV2 adds a fee-mode discriminator and (apply-time) a fee-before-
// balances ordering to Transfer, active only past the BSIP10 hardfork.
type TransferV2 struct {
	Transfer
	FeeMode FeeMode
}

// OverrideTransfer is an issuer-authorized movement that bypasses the
// transfer-restricted flag but still respects the whitelist.
type OverrideTransfer struct {
	Fee        Fee
	Issuer     Address
	From       Address
	To         Address
	Asset      AssetID
	Amount     *big.Int
	Memo       []byte
	Extensions map[string]string
}

// CommitteeMemberCreate registers account as a committee member candidate.
// Its balance effect is limited to the generic fee pipeline; the governance
// lifecycle (voting, vote-for-committee) is out of scope for this core.
type CommitteeMemberCreate struct {
	Fee     Fee
	Account Address
	URL     string
}

// CommitteeMemberUpdate changes the URL of an existing committee member
// registration. As with CommitteeMemberCreate, only the fee's balance effect
// is in scope here.
type CommitteeMemberUpdate struct {
	Fee     Fee
	Account Address
	URL     string
}

// GlobalParameterUpdate is a committee-proposed change to chain parameters.
// Proposal review-period semantics are external-collaborator concerns; this
// core evaluates only the fee charged to submit the proposal.
type GlobalParameterUpdate struct {
	Fee        Fee
	Proposer   Address
	Parameters map[string]string
}

// CoreAssetOptionsUpdate is a committee-proposed change to core-asset
// options (e.g. max supply). As with GlobalParameterUpdate, only the
// submission fee is evaluated here.
type CoreAssetOptionsUpdate struct {
	Fee       Fee
	Proposer  Address
	MaxSupply *big.Int
}

// Dividend schedules a distribution of dividendAsset to holders of
// sharesAsset. Distribution execution is an external-collaborator concern;
// this core evaluates only the submission fee.
type Dividend struct {
	Fee            Fee
	Issuer         Address
	SharesAsset    AssetID
	DividendAsset  AssetID
	MinShares      *big.Int
	ValuePerShares *big.Int
	BlockNo        uint64
	Description    string
	Extensions     map[string]string
}
