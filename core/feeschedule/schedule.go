// Package feeschedule computes the required core-equivalent fee for an
// operation from the configured per-operation defaults and membership tier.
package feeschedule

import (
	"math/big"

	"dposledger/config"
)

// graphene100Percent is the basis-point denominator representing 100%
// (10000 = 100.00%), matching the percentage-fee convention PercentageFee
// also divides by.
const graphene100Percent = 10000

// Tag identifies an operation for fee-schedule lookup purposes.
type Tag string

const (
	TagTransfer          Tag = "transfer"
	TagTransferV2        Tag = "transfer_v2"
	TagOverrideTransfer  Tag = "override_transfer"
	TagCommitteeCreate   Tag = "committee_member_create"
	TagCommitteeUpdate   Tag = "committee_member_update"
	TagGlobalParamUpdate Tag = "global_parameter_update"
	TagCoreAssetOptions  Tag = "core_asset_options_update"
	TagDividend          Tag = "dividend"
)

// Schedule wraps the configured fee schedule with lookup helpers.
type Schedule struct {
	cfg config.FeeSchedule
}

// New wraps cfg for lookup.
func New(cfg config.FeeSchedule) Schedule {
	return Schedule{cfg: cfg}
}

// CalculateFee returns the flat, size-scaled core fee required for op, given
// the size in bytes of any variable-length payload (e.g. a transfer memo).
// Operations with no configured entry fall back to a zero fee, matching an
// unconfigured chain parameter rather than rejecting the operation outright.
func (s Schedule) CalculateFee(tag Tag, payloadBytes int) *big.Int {
	op, ok := s.cfg.Operations[string(tag)]
	if !ok {
		return big.NewInt(0)
	}
	fee := new(big.Int).SetUint64(op.FlatFee)
	if op.PricePerKilobyte > 0 && payloadBytes > 0 {
		kilobytes := (payloadBytes + 1023) / 1024
		fee.Add(fee, new(big.Int).SetUint64(op.PricePerKilobyte*uint64(kilobytes)))
	}
	return fee
}

// MaxOpFeeFromCoinSeconds returns the per-operation coin-seconds spend
// ceiling for tag.
func (s Schedule) MaxOpFeeFromCoinSeconds(tag Tag) uint64 {
	op, ok := s.cfg.Operations[string(tag)]
	if !ok {
		return 0
	}
	return op.MaxOpFeeFromCoinSeconds
}

// PercentageParams returns the percentage-mode basis points and minimum fee
// configured for tag, and whether percentage mode is configured at all.
func (s Schedule) PercentageParams(tag Tag) (bps uint32, minFee uint64, ok bool) {
	op, exists := s.cfg.Operations[string(tag)]
	if !exists || op.PercentageBps == 0 {
		return 0, 0, false
	}
	return op.PercentageBps, op.PercentageMinFee, true
}

// ScaledMinFee returns param.percentage_min_fee × fee_schedule.scale / 100%,
// the network-consumed floor pay_fee_pre_split_network splits against.
func (s Schedule) ScaledMinFee(minFee uint64) *big.Int {
	if s.cfg.Scale == 0 {
		return new(big.Int).SetUint64(minFee)
	}
	num := new(big.Int).Mul(new(big.Int).SetUint64(minFee), new(big.Int).SetUint64(s.cfg.Scale))
	return num.Div(num, big.NewInt(graphene100Percent))
}

// Tier returns the membership-tier coin-seconds parameters for tier.
func (s Schedule) Tier(tier string) config.MembershipTierConfig {
	return s.cfg.Tiers[tier]
}

// CashbackPolicy returns the vesting period and pending-cashback threshold
// that trigger a cashback vesting deposit.
func (s Schedule) CashbackPolicy() (vestingSeconds uint32, threshold uint64) {
	return s.cfg.CashbackVestingSeconds, s.cfg.CashbackThreshold
}

// PercentageFee computes bps basis points of amount.
func PercentageFee(amount *big.Int, bps uint32) *big.Int {
	if amount == nil || amount.Sign() <= 0 || bps == 0 {
		return big.NewInt(0)
	}
	fee := new(big.Int).Mul(amount, new(big.Int).SetUint64(uint64(bps)))
	return fee.Div(fee, big.NewInt(graphene100Percent))
}
