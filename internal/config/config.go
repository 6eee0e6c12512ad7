// Package config loads the TOML application configuration, mirroring
// original_source/config.rs's AppConfig shape field-for-field.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/yimingwow/scavenger/internal/xerrors"
)

// NetworkConfig names the RPC/WebSocket/gRPC endpoints to use.
type NetworkConfig struct {
	RPCURL  string `toml:"rpc_url"`
	WSURL   string `toml:"ws_url"`
	GRPCURL string `toml:"grpc_url"`
}

// JitoConfig names the block-engine endpoint and the path of an auth
// keypair. AuthKeypairPath is parsed but not read by any code; bundle
// submission requests are sent unauthenticated.
type JitoConfig struct {
	BlockEngineURL  string `toml:"block_engine_url"`
	AuthKeypairPath string `toml:"auth_keypair_path"`
}

// StrategyConfig holds the trading parameters: wallet location, trade
// sizing, and tip policy.
type StrategyConfig struct {
	WalletPath      string  `toml:"wallet_path"`
	TradeAmountSOL  float64 `toml:"trade_amount_sol"`
	StaticTipSOL    float64 `toml:"static_tip_sol"`
	DynamicTipRatio float64 `toml:"dynamic_tip_ratio"`
	MaxTipSOL       float64 `toml:"max_tip_sol"`
	MinSpreadBps    int     `toml:"min_spread_bps"`
	MinProfitSOL    float64 `toml:"min_profit_sol"`
	GasCostSOL      float64 `toml:"gas_cost_sol"`
}

// LogConfig sets the logger's minimum level.
type LogConfig struct {
	Level string `toml:"level"`
}

// AppConfig is the root configuration document.
type AppConfig struct {
	Network  NetworkConfig  `toml:"network"`
	Jito     JitoConfig     `toml:"jito"`
	Strategy StrategyConfig `toml:"strategy"`
	Log      LogConfig      `toml:"log"`
}

// Load parses the TOML file at path into an AppConfig, applying the
// same field defaults original_source/strategy/pricing.rs's
// ProfitConfig::default() uses wherever a strategy field is left at its
// zero value (spec.md §6).
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", xerrors.ErrConfig, path, err)
	}

	if cfg.Network.RPCURL == "" {
		return nil, fmt.Errorf("%w: network.rpc_url is required", xerrors.ErrConfig)
	}
	if cfg.Strategy.WalletPath == "" {
		return nil, fmt.Errorf("%w: strategy.wallet_path is required", xerrors.ErrConfig)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Strategy.MinProfitSOL == 0 {
		cfg.Strategy.MinProfitSOL = 0.01
	}
	if cfg.Strategy.MaxTipSOL == 0 {
		cfg.Strategy.MaxTipSOL = 0.1
	}
	if cfg.Strategy.GasCostSOL == 0 {
		cfg.Strategy.GasCostSOL = 0.000005
	}
	if cfg.Strategy.DynamicTipRatio == 0 {
		cfg.Strategy.DynamicTipRatio = 0.5
	}
	if cfg.Strategy.StaticTipSOL == 0 {
		cfg.Strategy.StaticTipSOL = 0.0001
	}
	if cfg.Strategy.MinSpreadBps == 0 {
		cfg.Strategy.MinSpreadBps = 50 // 0.5%
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
