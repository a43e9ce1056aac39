package state

import (
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"dposledger/core/types"
)

var statisticsPrefix = []byte("account-stats:")

func statisticsKey(addr []byte) []byte {
	buf := make([]byte, len(statisticsPrefix)+len(addr))
	copy(buf, statisticsPrefix)
	copy(buf[len(statisticsPrefix):], addr)
	return ethcrypto.Keccak256(buf)
}

// AccountStatistics retrieves addr's coin-seconds/fee record, defaulting to
// a zero-valued record when addr has never accrued or paid anything.
func (m *Manager) AccountStatistics(addr []byte) (*types.AccountStatistics, error) {
	data, err := m.trie.Get(statisticsKey(addr))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return types.NewAccountStatistics(), nil
	}
	stats := new(types.AccountStatistics)
	if err := rlp.DecodeBytes(data, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// SetAccountStatistics overwrites addr's statistics record.
func (m *Manager) SetAccountStatistics(addr []byte, stats *types.AccountStatistics) error {
	if stats == nil {
		stats = types.NewAccountStatistics()
	}
	encoded, err := rlp.EncodeToBytes(stats)
	if err != nil {
		return err
	}
	return m.trie.Update(statisticsKey(addr), encoded)
}

// MutateAccountStatistics loads addr's statistics record, lets fn mutate it
// in place, and persists the result.
func (m *Manager) MutateAccountStatistics(addr []byte, fn func(*types.AccountStatistics) error) error {
	stats, err := m.AccountStatistics(addr)
	if err != nil {
		return err
	}
	if err := fn(stats); err != nil {
		return err
	}
	return m.SetAccountStatistics(addr, stats)
}
