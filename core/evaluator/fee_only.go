package evaluator

import (
	"math/big"

	coreerrors "dposledger/core/errors"
	"dposledger/core/feeschedule"
	"dposledger/core/types"
)

// feeOnlyEvaluator evaluates and applies an operation whose only ledger
// effect is the fee itself: CommitteeMemberCreate/Update, the two
// committee-only parameter-update operations, and Dividend. Everything
// beyond charging the submission fee — committee voting, proposal review
// periods, distribution execution — is an external collaborator's concern.
type feeOnlyEvaluator struct {
	payer        types.Address
	fee          types.Fee
	tag          feeschedule.Tag
	payloadBytes int
	validate     func() error
}

var _ Evaluator = (*feeOnlyEvaluator)(nil)

func (e *feeOnlyEvaluator) Evaluate(ctx *EvalContext) error {
	if e.validate != nil {
		if err := e.validate(); err != nil {
			return err
		}
	}
	if err := prepareFeeState(ctx, e.payer, e.fee, e.tag); err != nil {
		return err
	}
	requiredFee := ctx.Schedule.CalculateFee(e.tag, e.payloadBytes)
	return requireSufficientFee(ctx, requiredFee)
}

func (e *feeOnlyEvaluator) Apply(ctx *EvalContext) error {
	return ctx.Fees.PayFee(ctx.FeeCtx, ctx.Now)
}

// requireURLWithinLimit enforces the "URL fields must be shorter than a
// configured max length" validation constraint.
func requireURLWithinLimit(ctx *EvalContext, url string) error {
	if ctx.Limits.MaxURLLength > 0 && uint32(len(url)) >= ctx.Limits.MaxURLLength {
		return coreerrors.New(coreerrors.KindInvalidPayload, "url exceeds configured maximum length").
			With("length", big.NewInt(int64(len(url))).String()).
			With("max", big.NewInt(int64(ctx.Limits.MaxURLLength)).String())
	}
	return nil
}

// CommitteeMemberCreateEvaluator registers a committee member candidate;
// only the submission fee has a ledger effect.
type CommitteeMemberCreateEvaluator struct {
	Op types.CommitteeMemberCreate
}

var _ Evaluator = (*CommitteeMemberCreateEvaluator)(nil)

func (e *CommitteeMemberCreateEvaluator) delegate(ctx *EvalContext) *feeOnlyEvaluator {
	return &feeOnlyEvaluator{
		payer: e.Op.Account,
		fee:   e.Op.Fee,
		tag:   feeschedule.TagCommitteeCreate,
		validate: func() error {
			return requireURLWithinLimit(ctx, e.Op.URL)
		},
	}
}

func (e *CommitteeMemberCreateEvaluator) Evaluate(ctx *EvalContext) error {
	return e.delegate(ctx).Evaluate(ctx)
}

func (e *CommitteeMemberCreateEvaluator) Apply(ctx *EvalContext) error {
	return e.delegate(ctx).Apply(ctx)
}

// CommitteeMemberUpdateEvaluator changes an existing committee member
// registration's URL; only the submission fee has a ledger effect.
type CommitteeMemberUpdateEvaluator struct {
	Op types.CommitteeMemberUpdate
}

var _ Evaluator = (*CommitteeMemberUpdateEvaluator)(nil)

func (e *CommitteeMemberUpdateEvaluator) delegate(ctx *EvalContext) *feeOnlyEvaluator {
	return &feeOnlyEvaluator{
		payer: e.Op.Account,
		fee:   e.Op.Fee,
		tag:   feeschedule.TagCommitteeUpdate,
		validate: func() error {
			return requireURLWithinLimit(ctx, e.Op.URL)
		},
	}
}

func (e *CommitteeMemberUpdateEvaluator) Evaluate(ctx *EvalContext) error {
	return e.delegate(ctx).Evaluate(ctx)
}

func (e *CommitteeMemberUpdateEvaluator) Apply(ctx *EvalContext) error {
	return e.delegate(ctx).Apply(ctx)
}

// GlobalParameterUpdateEvaluator submits a committee-proposed chain
// parameter change; proposal review-period semantics are out of scope, so
// only the submission fee has a ledger effect here.
type GlobalParameterUpdateEvaluator struct {
	Op types.GlobalParameterUpdate
}

var _ Evaluator = (*GlobalParameterUpdateEvaluator)(nil)

func (e *GlobalParameterUpdateEvaluator) delegate() *feeOnlyEvaluator {
	return &feeOnlyEvaluator{
		payer: e.Op.Proposer,
		fee:   e.Op.Fee,
		tag:   feeschedule.TagGlobalParamUpdate,
	}
}

func (e *GlobalParameterUpdateEvaluator) Evaluate(ctx *EvalContext) error {
	return e.delegate().Evaluate(ctx)
}

func (e *GlobalParameterUpdateEvaluator) Apply(ctx *EvalContext) error {
	return e.delegate().Apply(ctx)
}

// CoreAssetOptionsUpdateEvaluator submits a committee-proposed change to
// core-asset options; only the submission fee and the max-supply bound
// check have a ledger/evaluate effect here.
type CoreAssetOptionsUpdateEvaluator struct {
	Op types.CoreAssetOptionsUpdate
}

var _ Evaluator = (*CoreAssetOptionsUpdateEvaluator)(nil)

func (e *CoreAssetOptionsUpdateEvaluator) delegate(ctx *EvalContext) *feeOnlyEvaluator {
	return &feeOnlyEvaluator{
		payer: e.Op.Proposer,
		fee:   e.Op.Fee,
		tag:   feeschedule.TagCoreAssetOptions,
		validate: func() error {
			if e.Op.MaxSupply == nil || e.Op.MaxSupply.Sign() < 0 {
				return coreerrors.New(coreerrors.KindInvalidPayload, "max supply must be non-negative").
					With("proposer", e.Op.Proposer.String())
			}
			ceiling := new(big.Int).SetUint64(ctx.Limits.MaxShareSupply)
			if ctx.Limits.MaxShareSupply > 0 && e.Op.MaxSupply.Cmp(ceiling) > 0 {
				return coreerrors.New(coreerrors.KindInvalidPayload, "max supply exceeds configured share-supply ceiling").
					With("maxSupply", e.Op.MaxSupply.String()).
					With("ceiling", ceiling.String())
			}
			return nil
		},
	}
}

func (e *CoreAssetOptionsUpdateEvaluator) Evaluate(ctx *EvalContext) error {
	return e.delegate(ctx).Evaluate(ctx)
}

func (e *CoreAssetOptionsUpdateEvaluator) Apply(ctx *EvalContext) error {
	return e.delegate(ctx).Apply(ctx)
}

// DividendEvaluator schedules a distribution; distribution execution is an
// external collaborator's concern, so only the submission fee has a ledger
// effect here.
type DividendEvaluator struct {
	Op types.Dividend
}

var _ Evaluator = (*DividendEvaluator)(nil)

func (e *DividendEvaluator) delegate() *feeOnlyEvaluator {
	return &feeOnlyEvaluator{
		payer: e.Op.Issuer,
		fee:   e.Op.Fee,
		tag:   feeschedule.TagDividend,
		validate: func() error {
			if e.Op.MinShares == nil || e.Op.MinShares.Sign() < 0 {
				return coreerrors.New(coreerrors.KindInvalidPayload, "min shares must be non-negative").
					With("issuer", e.Op.Issuer.String())
			}
			if e.Op.ValuePerShares == nil || e.Op.ValuePerShares.Sign() < 0 {
				return coreerrors.New(coreerrors.KindInvalidPayload, "value per shares must be non-negative").
					With("issuer", e.Op.Issuer.String())
			}
			return nil
		},
	}
}

func (e *DividendEvaluator) Evaluate(ctx *EvalContext) error {
	return e.delegate().Evaluate(ctx)
}

func (e *DividendEvaluator) Apply(ctx *EvalContext) error {
	return e.delegate().Apply(ctx)
}
