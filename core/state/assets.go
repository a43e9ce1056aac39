package state

import (
	"fmt"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"dposledger/core/types"
)

var (
	assetDetailsPrefix = []byte("asset-details:")
	assetDynamicPrefix = []byte("asset-dynamic:")
	assetListKey       = ethcrypto.Keccak256([]byte("asset-list"))
)

func assetDetailsKey(id types.AssetID) []byte {
	return keyWithID(assetDetailsPrefix, id)
}

func assetDynamicKey(id types.AssetID) []byte {
	return keyWithID(assetDynamicPrefix, id)
}

func keyWithID(prefix []byte, id types.AssetID) []byte {
	idBytes := []byte(id)
	buf := make([]byte, len(prefix)+len(idBytes))
	copy(buf, prefix)
	copy(buf[len(prefix):], idBytes)
	return ethcrypto.Keccak256(buf)
}

// RegisterAsset stores details for a newly-created asset and records it in
// the asset index. Re-registering an existing id fails: asset options are
// amended through CoreAssetOptionsUpdate, not by overwriting details here.
func (m *Manager) RegisterAsset(details *types.AssetDetails) error {
	if details == nil {
		return fmt.Errorf("state: nil asset details")
	}
	id := details.ID
	if strings.TrimSpace(string(id)) == "" {
		return fmt.Errorf("state: asset id must not be empty")
	}
	if existing, err := m.Asset(id); err != nil {
		return err
	} else if existing != nil {
		return fmt.Errorf("state: asset %s already registered", id)
	}
	encoded, err := rlp.EncodeToBytes(details)
	if err != nil {
		return err
	}
	if err := m.trie.Update(assetDetailsKey(id), encoded); err != nil {
		return err
	}
	if err := m.KVAppend(assetListKey, []byte(id)); err != nil {
		return err
	}
	return m.SetAssetDynamicData(id, types.NewAssetDynamicData())
}

// Asset retrieves the static details for id, or nil if unregistered.
func (m *Manager) Asset(id types.AssetID) (*types.AssetDetails, error) {
	data, err := m.trie.Get(assetDetailsKey(id))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	details := new(types.AssetDetails)
	if err := rlp.DecodeBytes(data, details); err != nil {
		return nil, err
	}
	return details, nil
}

// AssetList returns every registered asset id.
func (m *Manager) AssetList() ([]types.AssetID, error) {
	var raw [][]byte
	if err := m.KVGetList(assetListKey, &raw); err != nil {
		return nil, err
	}
	ids := make([]types.AssetID, 0, len(raw))
	for _, entry := range raw {
		ids = append(ids, types.AssetID(entry))
	}
	return ids, nil
}

// AssetDynamicData retrieves the mutable record for id, defaulting to a
// zero-valued record for the core asset and any other registered asset with
// no prior fee/supply activity.
func (m *Manager) AssetDynamicData(id types.AssetID) (*types.AssetDynamicData, error) {
	data, err := m.trie.Get(assetDynamicKey(id))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return types.NewAssetDynamicData(), nil
	}
	dyn := new(types.AssetDynamicData)
	if err := rlp.DecodeBytes(data, dyn); err != nil {
		return nil, err
	}
	return dyn, nil
}

// SetAssetDynamicData overwrites the mutable record for id.
func (m *Manager) SetAssetDynamicData(id types.AssetID, dyn *types.AssetDynamicData) error {
	if dyn == nil {
		dyn = types.NewAssetDynamicData()
	}
	encoded, err := rlp.EncodeToBytes(dyn)
	if err != nil {
		return err
	}
	return m.trie.Update(assetDynamicKey(id), encoded)
}

// MutateAssetDynamicData loads id's dynamic record, lets fn mutate it in
// place, and persists the result. It is the assets-table instance of the
// generic Mutate idiom, scoped to the typed record so callers never touch
// the underlying RLP key directly.
func (m *Manager) MutateAssetDynamicData(id types.AssetID, fn func(*types.AssetDynamicData) error) error {
	dyn, err := m.AssetDynamicData(id)
	if err != nil {
		return err
	}
	if err := fn(dyn); err != nil {
		return err
	}
	return m.SetAssetDynamicData(id, dyn)
}
