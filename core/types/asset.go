package types

import "math/big"

// AssetID identifies an asset the ledger tracks balances for. The core asset
// (CoreAssetID) is the only asset coin-seconds accrue against.
type AssetID string

// CoreAssetID is the chain's native asset. Fee pools and coin-seconds are
// always denominated in it; fees paid in another asset are converted into it.
const CoreAssetID AssetID = "CORE"

// IsCore reports whether the asset is the chain's native asset.
func (id AssetID) IsCore() bool {
	return id == CoreAssetID
}

// ExchangeRate expresses the conversion of an asset amount into its
// core-asset equivalent as base/quote amounts, mirroring the order-book
// price pairs asset issuers configure for fee-pool conversion.
type ExchangeRate struct {
	BaseAmount  *big.Int `json:"baseAmount"`
	QuoteAmount *big.Int `json:"quoteAmount"`
}

// ToCore converts amount (denominated in the asset the rate belongs to) into
// its core-asset equivalent: amount * quoteAmount / baseAmount.
func (r ExchangeRate) ToCore(amount *big.Int) *big.Int {
	if amount == nil || amount.Sign() == 0 {
		return big.NewInt(0)
	}
	base := r.BaseAmount
	quote := r.QuoteAmount
	if base == nil || base.Sign() == 0 {
		base = big.NewInt(1)
	}
	if quote == nil {
		quote = big.NewInt(0)
	}
	converted := new(big.Int).Mul(amount, quote)
	return converted.Div(converted, base)
}

// AssetDetails is an asset's mostly-static configuration: issuer,
// precision, capability flags, and the rate used to convert its fees into
// the core asset's fee pool.
type AssetDetails struct {
	ID                 AssetID      `json:"id"`
	Symbol             string       `json:"symbol"`
	Precision          uint8        `json:"precision"`
	Issuer             Address      `json:"issuer"`
	Whitelist          bool         `json:"whitelist"`
	TransferRestricted bool         `json:"transferRestricted"`
	CanOverride        bool         `json:"canOverride"`
	CoreExchangeRate   ExchangeRate `json:"coreExchangeRate"`
}

// AssetDynamicData is an asset's mutable record: total supply, fees
// collected since the last maintenance interval, and the core-asset fee
// pool non-core fees are converted through.
type AssetDynamicData struct {
	CurrentSupply   *big.Int `json:"currentSupply"`
	AccumulatedFees *big.Int `json:"accumulatedFees"`
	FeePool         *big.Int `json:"feePool"`
}

// NewAssetDynamicData returns a zero-valued record ready for persistence.
func NewAssetDynamicData() *AssetDynamicData {
	return &AssetDynamicData{
		CurrentSupply:   big.NewInt(0),
		AccumulatedFees: big.NewInt(0),
		FeePool:         big.NewInt(0),
	}
}
