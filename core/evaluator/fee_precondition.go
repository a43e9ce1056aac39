package evaluator

import (
	"math/big"

	coreerrors "dposledger/core/errors"
	"dposledger/core/feeschedule"
	"dposledger/core/types"
)

// prepareFeeState runs PrepareFee and PrepareFeeFromCoinSeconds for payer,
// populating ctx.FeeCtx. Both calls read state; PrepareFeeFromCoinSeconds
// also persists the payer's ratcheted coin-seconds when they exceed the tier
// cap. This is the common first step of every evaluator's Evaluate phase.
func prepareFeeState(ctx *EvalContext, payer types.Address, fee types.Fee, tag feeschedule.Tag) error {
	feeCtx, err := ctx.Fees.PrepareFee(payer, fee, ctx.Gate.At(ctx.Now).WhitelistTightened)
	if err != nil {
		return err
	}
	ctx.FeeCtx = feeCtx

	account, err := ctx.Accounts.Account(payer.Bytes())
	if err != nil {
		return err
	}
	return ctx.Fees.PrepareFeeFromCoinSeconds(ctx.FeeCtx, tierName(account.MembershipTier), tag)
}

// requireSufficientFee enforces the common "core fee paid plus usable
// coin-seconds credit covers the required fee" precondition and records how
// much of the shortfall, if any, must be paid from coin-seconds.
func requireSufficientFee(ctx *EvalContext, requiredCoreFee *big.Int) error {
	available := new(big.Int).Add(ctx.FeeCtx.CoreFeePaid, ctx.FeeCtx.MaxFeesPayableWithCoinSeconds)
	if available.Cmp(requiredCoreFee) < 0 {
		return coreerrors.New(coreerrors.KindInsufficientFee, "core fee paid plus coin-seconds credit insufficient").
			With("required", requiredCoreFee.String()).
			With("available", available.String())
	}
	if ctx.FeeCtx.CoreFeePaid.Cmp(requiredCoreFee) < 0 {
		ctx.FeeCtx.FeesPaidWithCoinSeconds = new(big.Int).Sub(requiredCoreFee, ctx.FeeCtx.CoreFeePaid)
	} else {
		ctx.FeeCtx.FeesPaidWithCoinSeconds = big.NewInt(0)
	}
	return nil
}

// requireWhitelisted enforces I6: when asset carries a whitelist flag, both
// endpoints must be authorized.
func requireWhitelisted(ctx *EvalContext, asset *types.AssetDetails, from, to types.Address) error {
	if asset == nil || !asset.Whitelist {
		return nil
	}
	fromAccount, err := ctx.Accounts.Account(from.Bytes())
	if err != nil {
		return err
	}
	if !fromAccount.IsAuthorized(asset.ID) {
		return coreerrors.New(coreerrors.KindTransferFromNotWhitelisted, "sender not authorized for asset").
			With("account", from.String()).
			With("asset", string(asset.ID))
	}
	toAccount, err := ctx.Accounts.Account(to.Bytes())
	if err != nil {
		return err
	}
	if !toAccount.IsAuthorized(asset.ID) {
		return coreerrors.New(coreerrors.KindTransferToNotWhitelisted, "recipient not authorized for asset").
			With("account", to.String()).
			With("asset", string(asset.ID))
	}
	return nil
}

// requireSufficientBalance enforces that from holds at least amount of
// asset. The name preserves the assertion's logical sense (the balance must
// be sufficient) even though the historical source's equivalent local
// variable name was inverted.
func requireSufficientBalance(ctx *EvalContext, from types.Address, asset types.AssetID, amount *big.Int) error {
	balance, err := ctx.Ledger.GetBalance(from.Bytes(), asset)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return coreerrors.New(coreerrors.KindInsufficientBalance, "sender balance insufficient for transfer amount").
			With("account", from.String()).
			With("asset", string(asset)).
			With("balance", balance.String()).
			With("amount", amount.String())
	}
	return nil
}
