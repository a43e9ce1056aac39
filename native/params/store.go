package params

import (
	"bytes"
	"encoding/json"
	"fmt"

	"dposledger/config"
)

// StoreState captures the subset of state manager capabilities required by the
// parameter helpers.
type StoreState interface {
	ParamStoreSet(name string, value []byte) error
	ParamStoreGet(name string) ([]byte, bool, error)
}

// Store provides typed accessors for the governance-controlled chain
// parameters consulted by the hardfork gate, coin-seconds accountant, and fee
// pipeline.
type Store struct {
	state StoreState
}

// NewStore constructs a parameter store wrapper using the supplied state
// backend.
func NewStore(state StoreState) *Store {
	return &Store{state: state}
}

func (s *Store) withState() (StoreState, error) {
	if s == nil || s.state == nil {
		return nil, fmt.Errorf("params: state not configured")
	}
	return s.state, nil
}

// SetHardforks persists the supplied hardfork timestamps under the canonical
// parameter store key.
func (s *Store) SetHardforks(hf config.Hardforks) error {
	state, err := s.withState()
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(hf)
	if err != nil {
		return fmt.Errorf("params: encode hardforks: %w", err)
	}
	return state.ParamStoreSet(ParamsKeyHardforks, encoded)
}

// Hardforks loads the persisted hardfork timestamps. When unset, a zero-value
// configuration is returned, meaning every fork is considered active.
func (s *Store) Hardforks() (config.Hardforks, error) {
	state, err := s.withState()
	if err != nil {
		return config.Hardforks{}, err
	}
	raw, ok, err := state.ParamStoreGet(ParamsKeyHardforks)
	if err != nil {
		return config.Hardforks{}, err
	}
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return config.Hardforks{}, nil
	}
	var hf config.Hardforks
	if err := json.Unmarshal(raw, &hf); err != nil {
		return config.Hardforks{}, fmt.Errorf("params: decode hardforks: %w", err)
	}
	return hf, nil
}

// SetFeeSchedule persists the supplied fee schedule under the canonical
// parameter store key.
func (s *Store) SetFeeSchedule(fs config.FeeSchedule) error {
	state, err := s.withState()
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(fs)
	if err != nil {
		return fmt.Errorf("params: encode fee schedule: %w", err)
	}
	return state.ParamStoreSet(ParamsKeyFeeSchedule, encoded)
}

// FeeSchedule loads the persisted fee schedule if present.
func (s *Store) FeeSchedule() (config.FeeSchedule, error) {
	state, err := s.withState()
	if err != nil {
		return config.FeeSchedule{}, err
	}
	raw, ok, err := state.ParamStoreGet(ParamsKeyFeeSchedule)
	if err != nil {
		return config.FeeSchedule{}, err
	}
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return config.FeeSchedule{}, nil
	}
	var fs config.FeeSchedule
	if err := json.Unmarshal(raw, &fs); err != nil {
		return config.FeeSchedule{}, fmt.Errorf("params: decode fee schedule: %w", err)
	}
	return fs, nil
}

// SetReservedAccounts persists the supplied reserved account addresses under
// the canonical parameter store key.
func (s *Store) SetReservedAccounts(ra config.ReservedAccounts) error {
	state, err := s.withState()
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(ra)
	if err != nil {
		return fmt.Errorf("params: encode reserved accounts: %w", err)
	}
	return state.ParamStoreSet(ParamsKeyReservedAccounts, encoded)
}

// ReservedAccounts loads the persisted reserved account addresses if present.
func (s *Store) ReservedAccounts() (config.ReservedAccounts, error) {
	state, err := s.withState()
	if err != nil {
		return config.ReservedAccounts{}, err
	}
	raw, ok, err := state.ParamStoreGet(ParamsKeyReservedAccounts)
	if err != nil {
		return config.ReservedAccounts{}, err
	}
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return config.ReservedAccounts{}, nil
	}
	var ra config.ReservedAccounts
	if err := json.Unmarshal(raw, &ra); err != nil {
		return config.ReservedAccounts{}, fmt.Errorf("params: decode reserved accounts: %w", err)
	}
	return ra, nil
}
