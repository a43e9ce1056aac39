package evaluator

import (
	"math/big"
	"testing"

	"dposledger/core/types"
)

func TestCommitteeMemberCreateEvaluatorChargesFlatFee(t *testing.T) {
	state, ctx := newHarness()
	candidate := testAddr(1)
	if err := state.SetBalance(candidate.Bytes(), types.CoreAssetID, big.NewInt(10000)); err != nil {
		t.Fatalf("seed balance: %v", err)
	}

	ev := &CommitteeMemberCreateEvaluator{Op: types.CommitteeMemberCreate{
		Fee:     types.Fee{Amount: big.NewInt(5000), Asset: types.CoreAssetID},
		Account: candidate,
		URL:     "https://a.io",
	}}
	if err := StartEvaluate(ctx, ev, true); err != nil {
		t.Fatalf("evaluate+apply: %v", err)
	}

	bal, _ := ctx.Ledger.GetBalance(candidate.Bytes(), types.CoreAssetID)
	if bal.Cmp(big.NewInt(5000)) != 0 {
		t.Fatalf("unexpected balance after committee create: %s", bal)
	}
}

func TestCommitteeMemberCreateEvaluatorRejectsOverlongURL(t *testing.T) {
	_, ctx := newHarness() // ctx.Limits.MaxURLLength = 16
	ev := &CommitteeMemberCreateEvaluator{Op: types.CommitteeMemberCreate{
		Fee:     types.Fee{Amount: big.NewInt(5000), Asset: types.CoreAssetID},
		Account: testAddr(1),
		URL:     "https://a-much-too-long-url.example.org/candidate",
	}}
	if err := StartEvaluate(ctx, ev, true); err == nil {
		t.Fatal("expected overlong URL to be rejected")
	}
}

func TestCommitteeMemberUpdateEvaluatorChargesFlatFee(t *testing.T) {
	state, ctx := newHarness()
	member := testAddr(1)
	if err := state.SetBalance(member.Bytes(), types.CoreAssetID, big.NewInt(100)); err != nil {
		t.Fatalf("seed balance: %v", err)
	}

	ev := &CommitteeMemberUpdateEvaluator{Op: types.CommitteeMemberUpdate{
		Fee:     types.Fee{Amount: big.NewInt(20), Asset: types.CoreAssetID},
		Account: member,
		URL:     "short-url",
	}}
	if err := StartEvaluate(ctx, ev, true); err != nil {
		t.Fatalf("evaluate+apply: %v", err)
	}

	bal, _ := ctx.Ledger.GetBalance(member.Bytes(), types.CoreAssetID)
	if bal.Cmp(big.NewInt(80)) != 0 {
		t.Fatalf("unexpected balance after committee update: %s", bal)
	}
}

func TestGlobalParameterUpdateEvaluatorChargesFlatFee(t *testing.T) {
	state, ctx := newHarness()
	proposer := testAddr(1)
	if err := state.SetBalance(proposer.Bytes(), types.CoreAssetID, big.NewInt(10)); err != nil {
		t.Fatalf("seed balance: %v", err)
	}

	ev := &GlobalParameterUpdateEvaluator{Op: types.GlobalParameterUpdate{
		Fee:        types.Fee{Amount: big.NewInt(1), Asset: types.CoreAssetID},
		Proposer:   proposer,
		Parameters: map[string]string{"max_op_fee": "2000"},
	}}
	if err := StartEvaluate(ctx, ev, true); err != nil {
		t.Fatalf("evaluate+apply: %v", err)
	}

	bal, _ := ctx.Ledger.GetBalance(proposer.Bytes(), types.CoreAssetID)
	if bal.Cmp(big.NewInt(9)) != 0 {
		t.Fatalf("unexpected balance after global parameter update: %s", bal)
	}
}

func TestCoreAssetOptionsUpdateEvaluatorRejectsExcessiveMaxSupply(t *testing.T) {
	_, ctx := newHarness() // ctx.Limits.MaxShareSupply = 1000000
	ev := &CoreAssetOptionsUpdateEvaluator{Op: types.CoreAssetOptionsUpdate{
		Fee:       types.Fee{Amount: big.NewInt(1), Asset: types.CoreAssetID},
		Proposer:  testAddr(1),
		MaxSupply: big.NewInt(10000000),
	}}
	if err := StartEvaluate(ctx, ev, true); err == nil {
		t.Fatal("expected excessive max supply to be rejected")
	}
}

func TestCoreAssetOptionsUpdateEvaluatorAcceptsSupplyWithinCeiling(t *testing.T) {
	state, ctx := newHarness()
	proposer := testAddr(1)
	if err := state.SetBalance(proposer.Bytes(), types.CoreAssetID, big.NewInt(10)); err != nil {
		t.Fatalf("seed balance: %v", err)
	}

	ev := &CoreAssetOptionsUpdateEvaluator{Op: types.CoreAssetOptionsUpdate{
		Fee:       types.Fee{Amount: big.NewInt(1), Asset: types.CoreAssetID},
		Proposer:  proposer,
		MaxSupply: big.NewInt(500000),
	}}
	if err := StartEvaluate(ctx, ev, true); err != nil {
		t.Fatalf("evaluate+apply: %v", err)
	}
}

func TestDividendEvaluatorChargesFlatFee(t *testing.T) {
	state, ctx := newHarness()
	issuer := testAddr(1)
	if err := state.SetBalance(issuer.Bytes(), types.CoreAssetID, big.NewInt(1000)); err != nil {
		t.Fatalf("seed balance: %v", err)
	}

	ev := &DividendEvaluator{Op: types.Dividend{
		Fee:            types.Fee{Amount: big.NewInt(200), Asset: types.CoreAssetID},
		Issuer:         issuer,
		SharesAsset:    "SHR",
		DividendAsset:  types.CoreAssetID,
		MinShares:      big.NewInt(1),
		ValuePerShares: big.NewInt(1),
		BlockNo:        42,
		Description:    "quarterly payout",
	}}
	if err := StartEvaluate(ctx, ev, true); err != nil {
		t.Fatalf("evaluate+apply: %v", err)
	}

	bal, _ := ctx.Ledger.GetBalance(issuer.Bytes(), types.CoreAssetID)
	if bal.Cmp(big.NewInt(800)) != 0 {
		t.Fatalf("unexpected balance after dividend submission: %s", bal)
	}
}

func TestDividendEvaluatorRejectsNegativeMinShares(t *testing.T) {
	_, ctx := newHarness()
	ev := &DividendEvaluator{Op: types.Dividend{
		Fee:            types.Fee{Amount: big.NewInt(200), Asset: types.CoreAssetID},
		Issuer:         testAddr(1),
		SharesAsset:    "SHR",
		DividendAsset:  types.CoreAssetID,
		MinShares:      big.NewInt(-1),
		ValuePerShares: big.NewInt(1),
	}}
	if err := StartEvaluate(ctx, ev, true); err == nil {
		t.Fatal("expected negative min shares to be rejected")
	}
}
