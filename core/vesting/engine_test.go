package vesting

import (
	"math/big"
	"testing"

	"dposledger/core/types"
	"dposledger/crypto"
)

type fakeStore struct {
	balances map[string]*types.VestingBalance
	byOwner  map[string][]string
	dynamic  map[types.AssetID]*types.AssetDynamicData
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		balances: make(map[string]*types.VestingBalance),
		byOwner:  make(map[string][]string),
		dynamic:  make(map[types.AssetID]*types.AssetDynamicData),
	}
}

func (s *fakeStore) VestingBalance(id string) (*types.VestingBalance, error) {
	return s.balances[id], nil
}

func (s *fakeStore) PutVestingBalance(vb *types.VestingBalance) error {
	s.balances[vb.ID] = vb
	s.byOwner[vb.Owner.String()] = append(s.byOwner[vb.Owner.String()], vb.ID)
	return nil
}

func (s *fakeStore) MutateAssetDynamicData(id types.AssetID, fn func(*types.AssetDynamicData) error) error {
	dyn, ok := s.dynamic[id]
	if !ok {
		dyn = types.NewAssetDynamicData()
	}
	if err := fn(dyn); err != nil {
		return err
	}
	s.dynamic[id] = dyn
	return nil
}

func testAddress(b byte) types.Address {
	raw := make([]byte, 20)
	raw[0] = b
	return crypto.NewAddress(crypto.AccountPrefix, raw)
}

func TestDepositLazyMintsThenFolds(t *testing.T) {
	store := newFakeStore()
	e := New(store, nil)
	alice := testAddress(1)

	id1, err := e.DepositLazy("", big.NewInt(100), 604800, alice, types.CoreAssetID, true, 1000)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if id1 == "" {
		t.Fatalf("expected minted id")
	}
	v1 := store.balances[id1]
	if v1.Balance.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("unexpected initial balance: %s", v1.Balance)
	}

	id2, err := e.DepositLazy(id1, big.NewInt(50), 604800, alice, types.CoreAssetID, true, 1010)
	if err != nil {
		t.Fatalf("fold: %v", err)
	}
	if id2 != "" {
		t.Fatalf("expected fold to return empty id, got %s", id2)
	}
	if v1.Balance.Cmp(big.NewInt(150)) != 0 {
		t.Fatalf("unexpected folded balance: %s", v1.Balance)
	}
}

func TestDepositLazyMintsOnVestingSecondsMismatch(t *testing.T) {
	store := newFakeStore()
	e := New(store, nil)
	alice := testAddress(1)

	id1, err := e.DepositLazy("", big.NewInt(100), 604800, alice, types.CoreAssetID, true, 1000)
	if err != nil {
		t.Fatalf("mint v1: %v", err)
	}

	id2, err := e.DepositLazy(id1, big.NewInt(50), 2592000, alice, types.CoreAssetID, true, 1010)
	if err != nil {
		t.Fatalf("mint v2: %v", err)
	}
	if id2 == "" || id2 == id1 {
		t.Fatalf("expected a distinct new id, got %q", id2)
	}
	if store.balances[id1].Balance.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("v1 balance should be untouched: %s", store.balances[id1].Balance)
	}
}

func TestDepositLazyRequireVestingFalseSeedsCoinSeconds(t *testing.T) {
	store := newFakeStore()
	e := New(store, nil)
	alice := testAddress(1)

	id, err := e.DepositLazy("", big.NewInt(100), 10, alice, types.CoreAssetID, false, 1000)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	vb := store.balances[id]
	want := big.NewInt(1000) // 100 * 10
	if vb.Policy.CDD.CoinSecondsEarned.Cmp(want) != 0 {
		t.Fatalf("unexpected seeded coin-seconds: got %s want %s", vb.Policy.CDD.CoinSecondsEarned, want)
	}
}

func TestDepositLazyZeroAmountNoop(t *testing.T) {
	store := newFakeStore()
	e := New(store, nil)
	alice := testAddress(1)

	id, err := e.DepositLazy("", big.NewInt(0), 10, alice, types.CoreAssetID, true, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "" {
		t.Fatalf("expected no id minted for zero amount")
	}
	if len(store.balances) != 0 {
		t.Fatalf("expected no vesting balances created")
	}
}

func TestDepositCashbackToReservedAccountBurnsSupply(t *testing.T) {
	store := newFakeStore()
	store.dynamic[types.CoreAssetID] = &types.AssetDynamicData{
		CurrentSupply:   big.NewInt(1000),
		AccumulatedFees: big.NewInt(0),
		FeePool:         big.NewInt(0),
	}
	committee := testAddress(9)
	e := New(store, []string{committee.String()})

	id, err := e.DepositCashback("", big.NewInt(500), 10, committee, true, 1000)
	if err != nil {
		t.Fatalf("deposit cashback: %v", err)
	}
	if id != "" {
		t.Fatalf("expected no vesting id for reserved account")
	}
	if len(store.balances) != 0 {
		t.Fatalf("expected no vesting balance created for reserved account")
	}
	got := store.dynamic[types.CoreAssetID].CurrentSupply
	if got.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("unexpected current supply after burn: %s", got)
	}
}

func TestDepositCashbackToNonReservedAccountMintsVesting(t *testing.T) {
	store := newFakeStore()
	alice := testAddress(1)
	e := New(store, []string{testAddress(9).String()})

	id, err := e.DepositCashback("", big.NewInt(500), 10, alice, true, 1000)
	if err != nil {
		t.Fatalf("deposit cashback: %v", err)
	}
	if id == "" {
		t.Fatalf("expected a vesting balance to be minted")
	}
}
