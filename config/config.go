package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"givechain/native/charity"
)

// Config describes a givechain node: where the ledger lives, which storage
// backend to use and the badge tier cutoffs.
type Config struct {
	DataDir         string     `toml:"DataDir"`
	Backend         string     `toml:"Backend"`
	BadgeThresholds Thresholds `toml:"BadgeThresholds"`
}

// Thresholds carries the lifetime-giving cutoffs as base-unit decimal
// strings. Empty fields fall back to the built-in defaults.
type Thresholds struct {
	Bronze  string `toml:"Bronze"`
	Silver  string `toml:"Silver"`
	Gold    string `toml:"Gold"`
	Diamond string `toml:"Diamond"`
}

// Load reads the configuration from the given path, creating a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults(path)
	return cfg, nil
}

func (c *Config) applyDefaults(path string) {
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = filepath.Join(filepath.Dir(path), "data")
	}
	if strings.TrimSpace(c.Backend) == "" {
		c.Backend = "bolt"
	}
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults(path)
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TierThresholds resolves the configured cutoffs against the built-in
// defaults and validates the result.
func (c *Config) TierThresholds() (*charity.TierThresholds, error) {
	thresholds := charity.DefaultTierThresholds()
	fields := []struct {
		name string
		raw  string
		slot **big.Int
	}{
		{"Bronze", c.BadgeThresholds.Bronze, &thresholds.Bronze},
		{"Silver", c.BadgeThresholds.Silver, &thresholds.Silver},
		{"Gold", c.BadgeThresholds.Gold, &thresholds.Gold},
		{"Diamond", c.BadgeThresholds.Diamond, &thresholds.Diamond},
	}
	for _, field := range fields {
		raw := strings.TrimSpace(field.raw)
		if raw == "" {
			continue
		}
		value, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return nil, fmt.Errorf("config: invalid %s threshold %q", field.name, raw)
		}
		*field.slot = value
	}
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	return thresholds, nil
}
