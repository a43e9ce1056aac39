// Package invariants formats classified failures for human consumption and
// provides the conservation/fee-pool assertions evaluators re-check
// defensively inside Apply. A violation caught here means Evaluate missed
// something it should have caught — a programmer bug, not a recoverable
// rejection, so the Assert* helpers panic rather than return an error.
package invariants

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	coreerrors "dposledger/core/errors"
	"dposledger/core/types"
)

// AssetResolver resolves an asset id to its configuration. Format uses it to
// decimal-shift raw amounts by the asset's precision.
type AssetResolver interface {
	Asset(id types.AssetID) (*types.AssetDetails, error)
}

// amountKeys are the Context keys Format treats as raw smallest-unit
// amounts eligible for decimal-shifting; every other key passes through
// unchanged (account identifiers, asset symbols, issuer addresses, ...).
var amountKeys = map[string]bool{
	"amount":    true,
	"fee":       true,
	"required":  true,
	"available": true,
	"before":    true,
	"after":     true,
	"destroyed": true,
	"pool":      true,
	"balance":   true,
}

// Format renders a classified failure as a single human-readable line.
// Amount-shaped context values are decimal-shifted by the failure's asset
// precision, when assets resolves one; everything else is a straight
// key=value pair. Programmatic consumers must still branch on err.Kind —
// this output is for logs and user-facing messages only.
func Format(err *coreerrors.Error, assets AssetResolver) string {
	if err == nil {
		return ""
	}
	if len(err.Context) == 0 {
		return err.Message
	}

	var precision uint8
	if assets != nil {
		if assetID, ok := err.Context["asset"]; ok {
			if asset, lookupErr := assets.Asset(types.AssetID(assetID)); lookupErr == nil && asset != nil {
				precision = asset.Precision
			}
		}
	}

	keys := make([]string, 0, len(err.Context))
	for k := range err.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		v := err.Context[k]
		if amountKeys[k] && precision > 0 {
			if shifted, ok := shiftDecimal(v, precision); ok {
				v = shifted
			}
		}
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, v))
	}
	return fmt.Sprintf("%s (%s)", err.Message, strings.Join(pairs, ", "))
}

// shiftDecimal renders raw (a base-10 integer string) as a fixed-point
// decimal with precision digits after the point, e.g. ("12345", 2) ->
// "123.45". Returns ok=false if raw does not parse as an integer.
func shiftDecimal(raw string, precision uint8) (string, bool) {
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return "", false
	}
	neg := amount.Sign() < 0
	digits := new(big.Int).Abs(amount).String()
	for len(digits) <= int(precision) {
		digits = "0" + digits
	}
	split := len(digits) - int(precision)
	out := digits[:split] + "." + digits[split:]
	if neg {
		out = "-" + out
	}
	return out, true
}

func zeroIfNil(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}

// CheckConservation reports a non-nil invariant-violation error unless
// totalAfter == totalBefore - destroyed — the I2 equality: a transfer's
// total balance across its participating rows shrinks only by whatever
// core-equivalent fee was actually moved to accumulated_fees.
func CheckConservation(totalBefore, totalAfter, destroyed *big.Int) error {
	before, after, lost := zeroIfNil(totalBefore), zeroIfNil(totalAfter), zeroIfNil(destroyed)
	expected := new(big.Int).Sub(before, lost)
	if expected.Cmp(after) != 0 {
		return coreerrors.New(coreerrors.KindInvariantViolation, "conservation invariant violated").
			With("before", before.String()).
			With("after", after.String()).
			With("destroyed", lost.String())
	}
	return nil
}

// CheckFeePoolSufficiency reports a non-nil invariant-violation error if
// pool cannot cover required — the I3 equality, re-checked at apply time as
// a defence against a stale evaluate-time read.
func CheckFeePoolSufficiency(pool, required *big.Int) error {
	if zeroIfNil(pool).Cmp(zeroIfNil(required)) < 0 {
		return coreerrors.New(coreerrors.KindInvariantViolation, "fee pool insufficient at apply time").
			With("pool", zeroIfNil(pool).String()).
			With("required", zeroIfNil(required).String())
	}
	return nil
}

// CheckNonNegative reports a non-nil invariant-violation error if balance is
// negative — the I1 check.
func CheckNonNegative(balance *big.Int, label string) error {
	if zeroIfNil(balance).Sign() < 0 {
		return coreerrors.New(coreerrors.KindInvariantViolation, "balance invariant violated: negative balance").
			With("label", label).
			With("balance", zeroIfNil(balance).String())
	}
	return nil
}

// AssertConservation panics if CheckConservation fails. Evaluators call this
// after the balance mutations Evaluate already cleared; a reachable failure
// here is fatal per the apply-time contract, not a rejection to surface.
func AssertConservation(totalBefore, totalAfter, destroyed *big.Int) {
	if err := CheckConservation(totalBefore, totalAfter, destroyed); err != nil {
		panic(err)
	}
}

// AssertFeePoolSufficiency panics if CheckFeePoolSufficiency fails.
func AssertFeePoolSufficiency(pool, required *big.Int) {
	if err := CheckFeePoolSufficiency(pool, required); err != nil {
		panic(err)
	}
}

// AssertNonNegative panics if CheckNonNegative fails.
func AssertNonNegative(balance *big.Int, label string) {
	if err := CheckNonNegative(balance, label); err != nil {
		panic(err)
	}
}
