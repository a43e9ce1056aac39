package state

import (
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"dposledger/core/types"
)

var (
	vestingBalancePrefix = []byte("vesting:")
	vestingOwnerPrefix   = []byte("vesting-owner:")
)

func vestingBalanceKey(id string) []byte {
	buf := make([]byte, len(vestingBalancePrefix)+len(id))
	copy(buf, vestingBalancePrefix)
	copy(buf[len(vestingBalancePrefix):], id)
	return ethcrypto.Keccak256(buf)
}

func vestingOwnerIndexKey(owner []byte) []byte {
	buf := make([]byte, len(vestingOwnerPrefix)+len(owner))
	copy(buf, vestingOwnerPrefix)
	copy(buf[len(vestingOwnerPrefix):], owner)
	return ethcrypto.Keccak256(buf)
}

// VestingBalance retrieves the record stored under id, or nil if absent.
func (m *Manager) VestingBalance(id string) (*types.VestingBalance, error) {
	if id == "" {
		return nil, nil
	}
	data, err := m.trie.Get(vestingBalanceKey(id))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	vb := new(types.VestingBalance)
	if err := rlp.DecodeBytes(data, vb); err != nil {
		return nil, err
	}
	return vb, nil
}

// PutVestingBalance persists vb and records its id in vb.Owner's index so
// callers (and tests) can enumerate an owner's vesting records without
// knowing their ids in advance.
func (m *Manager) PutVestingBalance(vb *types.VestingBalance) error {
	if vb == nil {
		return fmt.Errorf("state: nil vesting balance")
	}
	if vb.ID == "" {
		return fmt.Errorf("state: vesting balance id required")
	}
	encoded, err := rlp.EncodeToBytes(vb)
	if err != nil {
		return err
	}
	if err := m.trie.Update(vestingBalanceKey(vb.ID), encoded); err != nil {
		return err
	}
	return m.KVAppend(vestingOwnerIndexKey(vb.Owner.Bytes()), []byte(vb.ID))
}

// VestingBalancesByOwner lists every vesting balance id recorded for owner.
func (m *Manager) VestingBalancesByOwner(owner []byte) ([]string, error) {
	var raw [][]byte
	if err := m.KVGetList(vestingOwnerIndexKey(owner), &raw); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(raw))
	for _, entry := range raw {
		ids = append(ids, string(entry))
	}
	return ids, nil
}
