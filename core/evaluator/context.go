// Package evaluator implements the two-phase evaluate/apply operation
// evaluators for transfer, transfer_v2, and override_transfer, dispatched
// through StartEvaluate.
package evaluator

import (
	"fmt"
	"strings"

	"dposledger/config"
	coreerrors "dposledger/core/errors"
	"dposledger/core/feepipeline"
	"dposledger/core/feeschedule"
	"dposledger/core/hardfork"
	"dposledger/core/ledger"
	"dposledger/core/types"
	"dposledger/observability"
)

// AccountLookup resolves an address to its account record, the only read
// evaluators need beyond Ledger and fee pipeline state.
type AccountLookup interface {
	Account(addr []byte) (*types.Account, error)
	Asset(id types.AssetID) (*types.AssetDetails, error)
}

// Evaluator is the two-phase contract every operation evaluator implements.
// Evaluate moves no balances and charges no fee; its only state write is
// the coin-seconds ratchet feepipeline.PrepareFeeFromCoinSeconds persists
// when a payer's earned coin-seconds exceed the tier cap. Apply may assume
// Evaluate already
// succeeded and must not re-discover invariant violations Evaluate would
// have caught — doing so is a programmer bug, not a classified failure.
type Evaluator interface {
	Evaluate(ctx *EvalContext) error
	Apply(ctx *EvalContext) error
}

// EvalContext bundles the dependencies and ephemeral per-operation state an
// evaluator threads between Evaluate and Apply: the fee pipeline's Context,
// the chain time, and the collaborators evaluators read from.
type EvalContext struct {
	Now      uint64
	Ledger   *ledger.Ledger
	Accounts AccountLookup
	Fees     *feepipeline.Pipeline
	Schedule feeschedule.Schedule
	Gate     hardfork.Gate
	FeeCtx   *feepipeline.Context
	Limits   config.ValidationLimits
}

// StartEvaluate runs ev's Evaluate phase and, when applyFlag is set, its
// Apply phase. It is the sole entry point a block replayer or simulator
// calls; evaluate-only (applyFlag=false) moves no balances and charges no
// fee, matching the simulation use case (e.g. fee estimation, mempool
// admission checks), though it can still persist the coin-seconds ratchet
// described on Evaluator.
func StartEvaluate(ctx *EvalContext, ev Evaluator, applyFlag bool) error {
	tag := evaluatorTag(ev)
	if err := ev.Evaluate(ctx); err != nil {
		observability.Evaluator().RecordOperation(tag, string(coreerrors.KindOf(err)))
		return err
	}
	if !applyFlag {
		observability.Evaluator().RecordOperation(tag, "")
		return nil
	}

	// Apply's invariants.Assert* helpers panic on a violation; record it
	// before the panic continues to unwind so the failure is observable even
	// though the process is expected to crash or be recovered well above us.
	defer func() {
		if r := recover(); r != nil {
			if violation, ok := r.(*coreerrors.Error); ok {
				observability.Evaluator().RecordInvariantViolation(string(violation.Kind))
			}
			panic(r)
		}
	}()

	if err := ev.Apply(ctx); err != nil {
		observability.Evaluator().RecordOperation(tag, string(coreerrors.KindOf(err)))
		return err
	}
	observability.Evaluator().RecordOperation(tag, "")
	return nil
}

// evaluatorTag derives a metrics label from ev's concrete type, e.g.
// "*evaluator.TransferEvaluator" becomes "transfer".
func evaluatorTag(ev Evaluator) string {
	name := fmt.Sprintf("%T", ev)
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.TrimSuffix(name, "Evaluator")
	return strings.ToLower(name)
}
