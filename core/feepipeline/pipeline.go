// Package feepipeline prepares, validates, and charges operation fees,
// bridging direct payment, cross-asset conversion via a fee pool, and
// coin-seconds credit consumption.
package feepipeline

import (
	"log/slog"
	"math/big"

	"dposledger/config"
	"dposledger/core/coinseconds"
	coreerrors "dposledger/core/errors"
	"dposledger/core/feeschedule"
	"dposledger/core/invariants"
	"dposledger/core/ledger"
	"dposledger/core/types"
	"dposledger/core/vesting"
	"dposledger/observability"
	"dposledger/observability/logging"
)

// Store is the subset of state-manager capabilities the fee pipeline needs.
type Store interface {
	Account(addr []byte) (*types.Account, error)
	Asset(id types.AssetID) (*types.AssetDetails, error)
	MutateAssetDynamicData(id types.AssetID, fn func(*types.AssetDynamicData) error) error
	MutateAccountStatistics(addr []byte, fn func(*types.AccountStatistics) error) error
}

// Context is the evaluator-scoped ephemeral state threaded from
// PrepareFee/PrepareFeeFromCoinSeconds into PayFee. It is built fresh for
// every operation and never persisted.
type Context struct {
	Payer                         types.Address
	Fee                           types.Fee
	CoreFeePaid                   *big.Int
	FeesPaidWithCoinSeconds       *big.Int
	MaxFeesPayableWithCoinSeconds *big.Int
	Tier                          config.MembershipTierConfig
}

// Pipeline is the fee preparation/charging engine.
type Pipeline struct {
	store    Store
	schedule feeschedule.Schedule
	vesting  *vesting.Engine
	ledger   *ledger.Ledger
}

// New constructs a Pipeline. ledger is used exclusively to charge the
// declared fee against the payer's balance during PayFee/
// PayFeePreSplitNetwork — the pipeline never touches balance rows itself,
// preserving the ledger as the sole writer of AccountBalance.
func New(store Store, schedule feeschedule.Schedule, vestingEngine *vesting.Engine, ledg *ledger.Ledger) *Pipeline {
	return &Pipeline{store: store, schedule: schedule, vesting: vestingEngine, ledger: ledg}
}

// PrepareFee validates the declared fee and resolves its core-equivalent
// value. It performs only reads; all results land in the returned Context.
func (p *Pipeline) PrepareFee(payer types.Address, fee types.Fee, whitelistTightened bool) (*Context, error) {
	if fee.Amount == nil || fee.Amount.Sign() < 0 {
		return nil, coreerrors.New(coreerrors.KindInsufficientFee, "fee amount must be non-negative").
			With("asset", string(fee.Asset))
	}

	if whitelistTightened {
		account, err := p.store.Account(payer.Bytes())
		if err != nil {
			return nil, err
		}
		asset, err := p.store.Asset(fee.Asset)
		if err != nil {
			return nil, err
		}
		if asset != nil && asset.Whitelist && !account.IsAuthorized(fee.Asset) {
			return nil, coreerrors.New(coreerrors.KindUnauthorizedFeeAsset, "payer not authorized for fee asset").
				With("payer", payer.String()).
				With("asset", string(fee.Asset))
		}
	}

	ctx := &Context{Payer: payer, Fee: fee}

	if fee.Asset.IsCore() {
		ctx.CoreFeePaid = new(big.Int).Set(fee.Amount)
		return ctx, nil
	}

	asset, err := p.store.Asset(fee.Asset)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, coreerrors.New(coreerrors.KindInsufficientFee, "fee asset not registered").
			With("asset", string(fee.Asset))
	}
	coreFeePaid := asset.CoreExchangeRate.ToCore(fee.Amount)

	var poolErr error
	if err := p.store.MutateAssetDynamicData(fee.Asset, func(dyn *types.AssetDynamicData) error {
		if dyn.FeePool.Cmp(coreFeePaid) < 0 {
			poolErr = coreerrors.New(coreerrors.KindInsufficientFeePool, "fee pool cannot cover conversion").
				With("asset", string(fee.Asset)).
				With("required", coreFeePaid.String()).
				With("available", dyn.FeePool.String())
			return nil
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if poolErr != nil {
		return nil, poolErr
	}

	ctx.CoreFeePaid = coreFeePaid
	return ctx, nil
}

// PrepareFeeFromCoinSeconds populates ctx's coin-seconds spending capacity
// for tierName/tag from the payer's AccountStatistics and the configured
// membership tier. When the payer's earned coin-seconds exceed the tier's
// accumulated-fee cap, the ratcheted earned value is written back to the
// payer's AccountStatistics here, before any fee is paid.
func (p *Pipeline) PrepareFeeFromCoinSeconds(ctx *Context, tierName string, tag feeschedule.Tag) error {
	tier := p.schedule.Tier(tierName)
	ctx.Tier = tier

	var earned *big.Int
	if err := p.store.MutateAccountStatistics(ctx.Payer.Bytes(), func(stats *types.AccountStatistics) error {
		earned = new(big.Int).Set(stats.CoinSecondsEarned)
		return nil
	}); err != nil {
		return err
	}

	credit, ratchetedEarned := coinseconds.FeeCredit(earned, tier)
	if ratchetedEarned != nil && ratchetedEarned.Cmp(earned) != 0 {
		if err := p.store.MutateAccountStatistics(ctx.Payer.Bytes(), func(stats *types.AccountStatistics) error {
			stats.CoinSecondsEarned = ratchetedEarned
			return nil
		}); err != nil {
			return err
		}
		slog.Default().With(slog.String("component", "feepipeline")).Warn(
			"coin-seconds earned ratcheted down to accumulated-fee ceiling",
			logging.MaskField("payer", ctx.Payer.String()),
			slog.String("tag", string(tag)),
			slog.String("earned", earned.String()),
			slog.String("ratcheted", ratchetedEarned.String()),
		)
	}
	maxOpFee := p.schedule.MaxOpFeeFromCoinSeconds(tag)
	ctx.MaxFeesPayableWithCoinSeconds = coinseconds.MaxPayable(credit, maxOpFee)
	return nil
}

// PayFee is the apply-time charge step: it debits the declared fee from the
// payer's balance, updates accumulated_fees/fee_pool for a non-core fee
// asset, folds the core-equivalent into the payer's cashback accrual, and
// consumes any coin-seconds credit actually spent.
func (p *Pipeline) PayFee(ctx *Context, now uint64) error {
	if err := p.chargePayer(ctx, now); err != nil {
		return err
	}

	if !ctx.Fee.Asset.IsCore() {
		var poolBalance *big.Int
		if err := p.store.MutateAssetDynamicData(ctx.Fee.Asset, func(dyn *types.AssetDynamicData) error {
			invariants.AssertFeePoolSufficiency(dyn.FeePool, ctx.CoreFeePaid)
			dyn.AccumulatedFees = new(big.Int).Add(dyn.AccumulatedFees, ctx.Fee.Amount)
			dyn.FeePool = new(big.Int).Sub(dyn.FeePool, ctx.CoreFeePaid)
			poolBalance = dyn.FeePool
			return nil
		}); err != nil {
			return err
		}
		observability.FeePipeline().SetFeePoolBalance(string(ctx.Fee.Asset), poolBalance)
	}

	if err := p.accrueCashback(ctx, ctx.CoreFeePaid, now); err != nil {
		return err
	}
	return p.consumeCoinSeconds(ctx)
}

// PayFeePreSplitNetwork implements transfer_v2's percentage fee mode: the
// portion up to scaledMinFee is consumed directly by the network (no
// cashback accrual), and only the excess follows the normal cashback path.
func (p *Pipeline) PayFeePreSplitNetwork(ctx *Context, scaledMinFee *big.Int, now uint64) error {
	if err := p.chargePayer(ctx, now); err != nil {
		return err
	}

	networkPortion := ctx.CoreFeePaid
	cashbackPortion := big.NewInt(0)
	if ctx.CoreFeePaid.Cmp(scaledMinFee) > 0 {
		networkPortion = scaledMinFee
		cashbackPortion = new(big.Int).Sub(ctx.CoreFeePaid, scaledMinFee)
	}
	_ = networkPortion // consumed directly by the network; no further bookkeeping here

	if !ctx.Fee.Asset.IsCore() {
		var poolBalance *big.Int
		if err := p.store.MutateAssetDynamicData(ctx.Fee.Asset, func(dyn *types.AssetDynamicData) error {
			invariants.AssertFeePoolSufficiency(dyn.FeePool, ctx.CoreFeePaid)
			dyn.AccumulatedFees = new(big.Int).Add(dyn.AccumulatedFees, ctx.Fee.Amount)
			dyn.FeePool = new(big.Int).Sub(dyn.FeePool, ctx.CoreFeePaid)
			poolBalance = dyn.FeePool
			return nil
		}); err != nil {
			return err
		}
		observability.FeePipeline().SetFeePoolBalance(string(ctx.Fee.Asset), poolBalance)
	}

	if err := p.accrueCashback(ctx, cashbackPortion, now); err != nil {
		return err
	}
	return p.consumeCoinSeconds(ctx)
}

// chargePayer debits the declared fee (in fee.asset, not its core-equivalent)
// from the payer's own balance. It is the actual "charging the fee against
// the paying account" step; everything else PayFee does is bookkeeping
// derived from that charge.
func (p *Pipeline) chargePayer(ctx *Context, now uint64) error {
	if ctx.Fee.Amount == nil || ctx.Fee.Amount.Sign() == 0 {
		return nil
	}
	if err := p.ledger.AdjustBalance(ctx.Payer.Bytes(), ctx.Fee.Asset, new(big.Int).Neg(ctx.Fee.Amount), now); err != nil {
		return err
	}
	observability.FeePipeline().RecordFeeCharged(string(ctx.Fee.Asset), ctx.CoreFeePaid)
	return nil
}

func (p *Pipeline) accrueCashback(ctx *Context, amount *big.Int, now uint64) error {
	if amount == nil || amount.Sign() <= 0 {
		return p.store.MutateAccountStatistics(ctx.Payer.Bytes(), func(stats *types.AccountStatistics) error {
			stats.LifetimeFeesPaidCore = new(big.Int).Add(stats.LifetimeFeesPaidCore, ctx.CoreFeePaid)
			return nil
		})
	}

	vestingSeconds, threshold := p.schedule.CashbackPolicy()
	var depositAmount *big.Int
	var currentVBID string

	if err := p.store.MutateAccountStatistics(ctx.Payer.Bytes(), func(stats *types.AccountStatistics) error {
		stats.LifetimeFeesPaidCore = new(big.Int).Add(stats.LifetimeFeesPaidCore, ctx.CoreFeePaid)
		stats.PendingCashback = new(big.Int).Add(stats.PendingCashback, amount)

		thresholdBig := new(big.Int).SetUint64(threshold)
		if stats.PendingCashback.Cmp(thresholdBig) >= 0 {
			depositAmount = new(big.Int).Set(stats.PendingCashback)
			currentVBID = stats.CashbackVestingID
			stats.PendingCashback = big.NewInt(0)
		}
		return nil
	}); err != nil {
		return err
	}

	if depositAmount == nil || p.vesting == nil {
		return nil
	}

	newID, err := p.vesting.DepositCashback(currentVBID, depositAmount, vestingSeconds, ctx.Payer, true, now)
	if err != nil {
		return err
	}
	observability.FeePipeline().RecordCashbackDeposited(depositAmount)
	if newID != "" {
		return p.store.MutateAccountStatistics(ctx.Payer.Bytes(), func(stats *types.AccountStatistics) error {
			stats.CashbackVestingID = newID
			return nil
		})
	}
	return nil
}

func (p *Pipeline) consumeCoinSeconds(ctx *Context) error {
	if ctx.FeesPaidWithCoinSeconds == nil || ctx.FeesPaidWithCoinSeconds.Sign() <= 0 {
		return nil
	}
	if err := p.store.MutateAccountStatistics(ctx.Payer.Bytes(), func(stats *types.AccountStatistics) error {
		coinseconds.Consume(stats, ctx.FeesPaidWithCoinSeconds, ctx.Tier)
		stats.LifetimeFeesPaidCoinSeconds = new(big.Int).Add(stats.LifetimeFeesPaidCoinSeconds, ctx.FeesPaidWithCoinSeconds)
		return nil
	}); err != nil {
		return err
	}
	observability.FeePipeline().RecordCoinSecondsConsumed(ctx.FeesPaidWithCoinSeconds)
	return nil
}
