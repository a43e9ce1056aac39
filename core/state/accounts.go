package state

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"dposledger/core/types"
)

var (
	accountMetadataPrefix = []byte("account-meta:")
	balancePrefix         = []byte("balance:")
)

// accountMetadata is the RLP-persisted shadow of types.Account excluding the
// nonce, which rides on the core-asset StateAccount row below.
type accountMetadata struct {
	MembershipTier uint8
	Authorized     []authorizedEntry
}

type authorizedEntry struct {
	Asset []byte
}

func accountStateKey(addr []byte) []byte {
	return ethcrypto.Keccak256(addr)
}

func accountMetadataKey(addr []byte) []byte {
	buf := make([]byte, len(accountMetadataPrefix)+len(addr))
	copy(buf, accountMetadataPrefix)
	copy(buf[len(accountMetadataPrefix):], addr)
	return ethcrypto.Keccak256(buf)
}

// balanceKey addresses the (owner, asset) row for every non-core asset. The
// core asset's balance instead lives on the go-ethereum StateAccount row
// addressed by accountStateKey, reusing its uint256 balance encoding.
func balanceKey(owner []byte, asset types.AssetID) []byte {
	assetBytes := []byte(asset)
	buf := make([]byte, len(balancePrefix)+len(assetBytes)+1+len(owner))
	copy(buf, balancePrefix)
	offset := len(balancePrefix)
	copy(buf[offset:], assetBytes)
	offset += len(assetBytes)
	buf[offset] = ':'
	copy(buf[offset+1:], owner)
	return ethcrypto.Keccak256(buf)
}

// Account reconstructs the high-level account record stored under addr.
// Absent accounts return a zero-valued Account rather than an error, since a
// first-seen address with no prior activity is a normal state.
func (m *Manager) Account(addr []byte) (*types.Account, error) {
	if len(addr) == 0 {
		return nil, fmt.Errorf("address must not be empty")
	}
	account := types.NewAccount()

	stateAcc, err := m.loadStateAccount(addr)
	if err != nil {
		return nil, err
	}
	if stateAcc != nil {
		account.Nonce = stateAcc.Nonce
	}

	meta, err := m.loadAccountMetadata(addr)
	if err != nil {
		return nil, err
	}
	if meta != nil {
		account.MembershipTier = types.MembershipTier(meta.MembershipTier)
		for _, entry := range meta.Authorized {
			account.Authorized[types.AssetID(entry.Asset)] = true
		}
	}
	return account, nil
}

// PutAccount persists the provided account record under addr. It does not
// touch balances; use Balance/SetBalance for those.
func (m *Manager) PutAccount(addr []byte, account *types.Account) error {
	if len(addr) == 0 {
		return fmt.Errorf("address must not be empty")
	}
	if account == nil {
		account = types.NewAccount()
	}

	stateAcc, err := m.loadStateAccount(addr)
	if err != nil {
		return err
	}
	if stateAcc == nil {
		stateAcc = emptyStateAccount()
	}
	stateAcc.Nonce = account.Nonce
	if err := m.writeStateAccount(addr, stateAcc); err != nil {
		return err
	}

	meta := &accountMetadata{MembershipTier: uint8(account.MembershipTier)}
	for asset, ok := range account.Authorized {
		if ok {
			meta.Authorized = append(meta.Authorized, authorizedEntry{Asset: []byte(asset)})
		}
	}
	return m.writeAccountMetadata(addr, meta)
}

func emptyStateAccount() *gethtypes.StateAccount {
	return &gethtypes.StateAccount{
		Balance:  uint256.NewInt(0),
		Root:     gethtypes.EmptyRootHash,
		CodeHash: gethtypes.EmptyCodeHash.Bytes(),
	}
}

func (m *Manager) loadStateAccount(addr []byte) (*gethtypes.StateAccount, error) {
	key := accountStateKey(addr)
	data, err := m.trie.Get(key)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	stateAcc := new(gethtypes.StateAccount)
	if err := rlp.DecodeBytes(data, stateAcc); err != nil {
		return nil, err
	}
	return stateAcc, nil
}

func (m *Manager) writeStateAccount(addr []byte, stateAcc *gethtypes.StateAccount) error {
	if stateAcc.Balance == nil {
		stateAcc.Balance = uint256.NewInt(0)
	}
	if stateAcc.Root == (common.Hash{}) {
		stateAcc.Root = gethtypes.EmptyRootHash
	}
	if len(stateAcc.CodeHash) == 0 {
		stateAcc.CodeHash = gethtypes.EmptyCodeHash.Bytes()
	}
	key := accountStateKey(addr)
	encoded, err := rlp.EncodeToBytes(stateAcc)
	if err != nil {
		return err
	}
	return m.trie.Update(key, encoded)
}

func (m *Manager) loadAccountMetadata(addr []byte) (*accountMetadata, error) {
	key := accountMetadataKey(addr)
	data, err := m.trie.Get(key)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	meta := new(accountMetadata)
	if err := rlp.DecodeBytes(data, meta); err != nil {
		return nil, err
	}
	return meta, nil
}

func (m *Manager) writeAccountMetadata(addr []byte, meta *accountMetadata) error {
	encoded, err := rlp.EncodeToBytes(meta)
	if err != nil {
		return err
	}
	return m.trie.Update(accountMetadataKey(addr), encoded)
}

// Balance returns the owner's balance of asset, defaulting to zero for an
// absent row.
func (m *Manager) Balance(owner []byte, asset types.AssetID) (*big.Int, error) {
	if len(owner) == 0 {
		return nil, fmt.Errorf("address must not be empty")
	}
	if asset.IsCore() {
		stateAcc, err := m.loadStateAccount(owner)
		if err != nil {
			return nil, err
		}
		if stateAcc == nil || stateAcc.Balance == nil {
			return big.NewInt(0), nil
		}
		return stateAcc.Balance.ToBig(), nil
	}
	data, err := m.trie.Get(balanceKey(owner, asset))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return big.NewInt(0), nil
	}
	amount := new(big.Int)
	if err := rlp.DecodeBytes(data, amount); err != nil {
		return nil, err
	}
	return amount, nil
}

// SetBalance overwrites the owner's balance of asset. amount must be
// non-negative; callers enforce the ledger's adjust_balance contract before
// calling this.
func (m *Manager) SetBalance(owner []byte, asset types.AssetID, amount *big.Int) error {
	if len(owner) == 0 {
		return fmt.Errorf("address must not be empty")
	}
	if amount == nil {
		amount = big.NewInt(0)
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("state: negative balance not allowed")
	}
	if asset.IsCore() {
		stateAcc, err := m.loadStateAccount(owner)
		if err != nil {
			return err
		}
		if stateAcc == nil {
			stateAcc = emptyStateAccount()
		}
		balance, overflow := uint256.FromBig(amount)
		if overflow {
			return fmt.Errorf("state: core balance overflow")
		}
		stateAcc.Balance = balance
		return m.writeStateAccount(owner, stateAcc)
	}
	encoded, err := rlp.EncodeToBytes(amount)
	if err != nil {
		return err
	}
	return m.trie.Update(balanceKey(owner, asset), encoded)
}
