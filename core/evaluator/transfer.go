package evaluator

import (
	"math/big"

	coreerrors "dposledger/core/errors"
	"dposledger/core/feeschedule"
	"dposledger/core/invariants"
	"dposledger/core/types"
	"dposledger/observability"
)

// TransferEvaluator is the flat-fee, balances-before-fee evaluator (v1).
type TransferEvaluator struct {
	Op types.Transfer
}

var _ Evaluator = (*TransferEvaluator)(nil)

// Evaluate resolves the fee and checks whitelist/restriction/balance
// preconditions. It moves no balances; see Evaluator for the one statistics
// write fee preparation can make.
func (e *TransferEvaluator) Evaluate(ctx *EvalContext) error {
	op := e.Op

	if err := prepareFeeState(ctx, op.From, op.Fee, feeschedule.TagTransfer); err != nil {
		return err
	}

	requiredFee := ctx.Schedule.CalculateFee(feeschedule.TagTransfer, len(op.Memo))
	if err := requireSufficientFee(ctx, requiredFee); err != nil {
		return err
	}

	asset, err := ctx.Accounts.Asset(op.Asset)
	if err != nil {
		return err
	}
	if err := requireWhitelisted(ctx, asset, op.From, op.To); err != nil {
		return err
	}

	// Pre-tightening-fork shortcut: if the fee asset (not the transferred
	// asset) is whitelisted, from must additionally be authorized for it.
	// Post-fork this is redundant with the upstream whitelist check the fee
	// pipeline already performed in PrepareFee.
	if !ctx.Gate.At(ctx.Now).WhitelistTightened {
		feeAsset, err := ctx.Accounts.Asset(op.Fee.Asset)
		if err != nil {
			return err
		}
		if feeAsset != nil && feeAsset.Whitelist {
			fromAccount, err := ctx.Accounts.Account(op.From.Bytes())
			if err != nil {
				return err
			}
			if !fromAccount.IsAuthorized(feeAsset.ID) {
				return coreerrors.New(coreerrors.KindTransferFromNotWhitelisted, "sender not authorized for fee asset").
					With("account", op.From.String()).
					With("asset", string(feeAsset.ID))
			}
		}
	}

	if asset != nil && asset.TransferRestricted {
		if !(op.From.Equal(asset.Issuer) || op.To.Equal(asset.Issuer)) {
			return coreerrors.New(coreerrors.KindTransferRestricted, "asset transfers are restricted to the issuer").
				With("asset", string(op.Asset)).
				With("issuer", asset.Issuer.String())
		}
	}

	return requireSufficientBalance(ctx, op.From, op.Asset, op.Amount)
}

// Apply debits From and credits To, then charges the fee through the fee
// pipeline's PayFee (balances before fee).
func (e *TransferEvaluator) Apply(ctx *EvalContext) error {
	op := e.Op

	fromBefore, err := ctx.Ledger.GetBalance(op.From.Bytes(), op.Asset)
	if err != nil {
		return err
	}
	toBefore, err := ctx.Ledger.GetBalance(op.To.Bytes(), op.Asset)
	if err != nil {
		return err
	}

	if err := ctx.Ledger.AdjustBalance(op.From.Bytes(), op.Asset, new(big.Int).Neg(op.Amount), ctx.Now); err != nil {
		return err
	}
	if err := ctx.Ledger.AdjustBalance(op.To.Bytes(), op.Asset, new(big.Int).Set(op.Amount), ctx.Now); err != nil {
		return err
	}

	fromAfter, err := ctx.Ledger.GetBalance(op.From.Bytes(), op.Asset)
	if err != nil {
		return err
	}
	toAfter, err := ctx.Ledger.GetBalance(op.To.Bytes(), op.Asset)
	if err != nil {
		return err
	}
	invariants.AssertConservation(new(big.Int).Add(fromBefore, toBefore), new(big.Int).Add(fromAfter, toAfter), big.NewInt(0))

	if err := ctx.Fees.PayFee(ctx.FeeCtx, ctx.Now); err != nil {
		return err
	}
	observability.Events().RecordTransfer(string(op.Asset))
	return nil
}
