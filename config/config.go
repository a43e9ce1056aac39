package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the on-disk configuration for the evaluation core: where its
// state trie lives, and the chain parameters (hardforks, fee schedule,
// reserved accounts, validation limits) the core reads.
type Config struct {
	DataDir     string `toml:"DataDir"`
	GenesisFile string `toml:"GenesisFile"`
	NetworkName string `toml:"NetworkName"`

	Hardforks        Hardforks        `toml:"Hardforks"`
	FeeSchedule      FeeSchedule      `toml:"FeeSchedule"`
	ReservedAccounts ReservedAccounts `toml:"ReservedAccounts"`
	ValidationLimits ValidationLimits `toml:"ValidationLimits"`
}

// Load loads the configuration from the given path, creating a default file
// there if none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = "dposledger-local"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./dposledger-data"
	}
	applyFeeScheduleDefaults(&cfg.FeeSchedule)
	applyValidationLimitDefaults(&cfg.ValidationLimits)

	return cfg, nil
}

func applyValidationLimitDefaults(limits *ValidationLimits) {
	if limits.MaxURLLength == 0 {
		limits.MaxURLLength = 512
	}
	if limits.MaxShareSupply == 0 {
		limits.MaxShareSupply = 1<<62 - 1
	}
}

func applyFeeScheduleDefaults(fs *FeeSchedule) {
	if fs.Scale == 0 {
		fs.Scale = 100000
	}
	if fs.Operations == nil {
		fs.Operations = map[string]OperationFeeConfig{}
	}
	if fs.Tiers == nil {
		fs.Tiers = map[string]MembershipTierConfig{}
	}
	if fs.CashbackVestingSeconds == 0 {
		fs.CashbackVestingSeconds = 86400
	}
	if fs.CashbackThreshold == 0 {
		fs.CashbackThreshold = 100
	}
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		DataDir:     "./dposledger-data",
		GenesisFile: "",
		NetworkName: "dposledger-local",
		ValidationLimits: ValidationLimits{
			MaxURLLength:   512,
			MaxShareSupply: 1<<62 - 1,
		},
		FeeSchedule: FeeSchedule{
			Scale: 100000,
			Operations: map[string]OperationFeeConfig{
				"transfer": {
					FlatFee:                 1000,
					PricePerKilobyte:        10,
					MaxOpFeeFromCoinSeconds: 1000,
				},
				"transfer_v2": {
					FlatFee:                 1000,
					PricePerKilobyte:        10,
					MaxOpFeeFromCoinSeconds: 1000,
				},
				"override_transfer": {
					FlatFee:                 2000,
					PricePerKilobyte:        10,
					MaxOpFeeFromCoinSeconds: 2000,
				},
			},
			Tiers: map[string]MembershipTierConfig{
				"standard": {CoinSecondsRate: 1000000, MaxAccumulatedFees: 1000000000},
				"annual":   {CoinSecondsRate: 500000, MaxAccumulatedFees: 2000000000},
				"lifetime": {CoinSecondsRate: 200000, MaxAccumulatedFees: 5000000000},
			},
		},
	}

	if err := persist(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
