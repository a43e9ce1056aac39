package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadParsesHardforksAndFeeSchedule(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `DataDir = "./data"
GenesisFile = "genesis.json"
NetworkName = "testnet"

[Hardforks]
FreeTrxTime = 1000
WhitelistTightenedTime = 2000
BSIP10Time = 3000

[FeeSchedule]
Scale = 100000

[FeeSchedule.Operations.transfer]
FlatFee = 500
PricePerKilobyte = 5
MaxOpFeeFromCoinSeconds = 250

[FeeSchedule.Tiers.standard]
CoinSecondsRate = 1000000
MaxAccumulatedFees = 1000000000

[ReservedAccounts]
Committee = "nhb1committeeaddressxxxxxxxxxxxxxxxxxxxxxx"
Validator = "nhb1validatoraddressxxxxxxxxxxxxxxxxxxxxxx"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.NetworkName != "testnet" {
		t.Fatalf("unexpected network name: %s", cfg.NetworkName)
	}
	if cfg.Hardforks.FreeTrxTime != 1000 || cfg.Hardforks.WhitelistTightenedTime != 2000 || cfg.Hardforks.BSIP10Time != 3000 {
		t.Fatalf("unexpected hardfork timestamps: %+v", cfg.Hardforks)
	}
	op, ok := cfg.FeeSchedule.Operations["transfer"]
	if !ok {
		t.Fatalf("expected transfer operation fee entry")
	}
	if op.FlatFee != 500 || op.PricePerKilobyte != 5 || op.MaxOpFeeFromCoinSeconds != 250 {
		t.Fatalf("unexpected transfer fee config: %+v", op)
	}
	tier, ok := cfg.FeeSchedule.Tiers["standard"]
	if !ok {
		t.Fatalf("expected standard tier entry")
	}
	if tier.CoinSecondsRate != 1000000 || tier.MaxAccumulatedFees != 1000000000 {
		t.Fatalf("unexpected standard tier config: %+v", tier)
	}
	if cfg.ReservedAccounts.Committee == "" || cfg.ReservedAccounts.Validator == "" {
		t.Fatalf("unexpected reserved accounts: %+v", cfg.ReservedAccounts)
	}
}

func TestLoadAppliesFeeScheduleDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := fmt.Sprintf(`DataDir = "%s"
`, dir)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.FeeSchedule.Scale != 100000 {
		t.Fatalf("expected default scale 100000, got %d", cfg.FeeSchedule.Scale)
	}
	if cfg.FeeSchedule.Operations == nil || cfg.FeeSchedule.Tiers == nil {
		t.Fatalf("expected non-nil operations/tiers maps: %+v", cfg.FeeSchedule)
	}
	if cfg.NetworkName != "dposledger-local" {
		t.Fatalf("unexpected default network name: %s", cfg.NetworkName)
	}
	if cfg.ValidationLimits.MaxURLLength == 0 || cfg.ValidationLimits.MaxShareSupply == 0 {
		t.Fatalf("expected default validation limits, got %+v", cfg.ValidationLimits)
	}
}

func TestReservedAccountsAddressesSkipsBlank(t *testing.T) {
	r := ReservedAccounts{Committee: "nhb1committee", Null: "nhb1null"}
	addrs := r.Addresses()
	if len(addrs) != 2 {
		t.Fatalf("expected 2 addresses, got %d: %v", len(addrs), addrs)
	}
	if addrs[0] != "nhb1committee" || addrs[1] != "nhb1null" {
		t.Fatalf("unexpected addresses: %v", addrs)
	}
}

func TestLoadCreatesDefaultConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to be written: %v", err)
	}
	if len(cfg.FeeSchedule.Operations) == 0 {
		t.Fatalf("expected default operation fee entries")
	}
	if _, ok := cfg.FeeSchedule.Tiers["standard"]; !ok {
		t.Fatalf("expected default standard tier")
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if reloaded.FeeSchedule.Scale != cfg.FeeSchedule.Scale {
		t.Fatalf("round-tripped scale mismatch: %d != %d", reloaded.FeeSchedule.Scale, cfg.FeeSchedule.Scale)
	}
}
