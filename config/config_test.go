package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"givechain/native/charity"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "givechain.toml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "bolt", cfg.Backend)
	require.Equal(t, filepath.Join(filepath.Dir(path), "data"), cfg.DataDir)

	// The default file is written to disk and loads back identically.
	_, err = os.Stat(path)
	require.NoError(t, err)
	again, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, again)
}

func TestLoadExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "givechain.toml")
	body := `
DataDir = "/var/lib/givechain"
Backend = "leveldb"

[BadgeThresholds]
Bronze = "1000"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/givechain", cfg.DataDir)
	require.Equal(t, "leveldb", cfg.Backend)
	require.Equal(t, "1000", cfg.BadgeThresholds.Bronze)
}

func TestTierThresholdsDefaults(t *testing.T) {
	cfg := &Config{}
	thresholds, err := cfg.TierThresholds()
	require.NoError(t, err)
	require.Equal(t, charity.DefaultTierThresholds(), thresholds)
}

func TestTierThresholdsOverrides(t *testing.T) {
	cfg := &Config{BadgeThresholds: Thresholds{Bronze: "1000", Diamond: "100000000000000000000"}}
	thresholds, err := cfg.TierThresholds()
	require.NoError(t, err)
	require.Zero(t, thresholds.Bronze.Cmp(big.NewInt(1000)))

	diamond, _ := new(big.Int).SetString("100000000000000000000", 10)
	require.Zero(t, thresholds.Diamond.Cmp(diamond))
	// Untouched tiers keep their defaults.
	require.Zero(t, thresholds.Silver.Cmp(charity.DefaultTierThresholds().Silver))
}

func TestTierThresholdsRejectsBadValues(t *testing.T) {
	cfg := &Config{BadgeThresholds: Thresholds{Gold: "not-a-number"}}
	_, err := cfg.TierThresholds()
	require.Error(t, err)

	// A syntactically valid override that breaks the ordering is rejected too.
	cfg = &Config{BadgeThresholds: Thresholds{Bronze: "999999999999999999999999"}}
	_, err = cfg.TierThresholds()
	require.ErrorIs(t, err, charity.ErrInvalidThresholds)
}
