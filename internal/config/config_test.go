package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yimingwow/scavenger/internal/xerrors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_ValidConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[network]
rpc_url = "https://api.mainnet-beta.solana.com"
ws_url = "wss://api.mainnet-beta.solana.com"
grpc_url = ""

[jito]
block_engine_url = "https://mainnet.block-engine.jito.wtf"
auth_keypair_path = "/keys/jito.json"

[strategy]
wallet_path = "/keys/wallet.json"
trade_amount_sol = 0.5
static_tip_sol = 0.0001
dynamic_tip_ratio = 0
max_tip_sol = 0

[log]
level = ""
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.1, cfg.Strategy.MaxTipSOL)
	assert.Equal(t, 0.5, cfg.Strategy.DynamicTipRatio)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_MissingRPCURLFails(t *testing.T) {
	path := writeConfig(t, `
[strategy]
wallet_path = "/keys/wallet.json"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.ErrConfig)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	assert.ErrorIs(t, err, xerrors.ErrConfig)
}
