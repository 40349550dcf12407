package harness

import (
	"time"

	icetest "github.com/cordialsys/icetest"
	evmclient "github.com/cordialsys/icetest/chain/evm/client"
	"github.com/cordialsys/icetest/config"
	"github.com/cordialsys/icetest/config/constants"
	"github.com/cordialsys/icetest/node"
	"github.com/cordialsys/icetest/wallet"
)

const DefaultStepTimeout = 40 * time.Second
const DefaultStartupTimeout = 60 * time.Second

// Config of a harness run, read from the "icetest" section of config.yaml.
type Config struct {
	Network icetest.Network `yaml:"network,omitempty"`
	// Override the endpoints of the network
	RpcURL string `yaml:"rpc,omitempty"`
	EvmURL string `yaml:"evm_rpc,omitempty"`

	Binary string   `yaml:"binary,omitempty"`
	Args   []string `yaml:"args,omitempty"`
	// Connect to an already running local node instead of starting one
	NoNode bool `yaml:"no_node,omitempty"`

	StartupTimeout time.Duration `yaml:"startup_timeout,omitempty"`
	StepTimeout    time.Duration `yaml:"step_timeout,omitempty"`

	// Asset class the assets scenario creates
	AssetID uint32 `yaml:"asset_id,omitempty"`
	// Key of the funded EVM genesis account
	EvmGenesisKey config.Secret          `yaml:"evm_genesis_key,omitempty"`
	Seeds         map[wallet.Name]string `yaml:"seeds,omitempty"`
}

func DefaultConfig() *Config {
	seeds := map[wallet.Name]string{}
	for name, seed := range wallet.DefaultSeeds {
		seeds[name] = seed
	}
	return &Config{
		Network:        icetest.Local,
		Binary:         node.DefaultBinaryPath,
		Args:           append([]string{}, node.DefaultArgs...),
		StartupTimeout: DefaultStartupTimeout,
		StepTimeout:    DefaultStepTimeout,
		EvmGenesisKey:  config.NewRawSecret(evmclient.GenesisAccountPrivateKey),
		Seeds:          seeds,
	}
}

// LoadConfig reads config.yaml if there is one, on top of the defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.RequireConfig(constants.ConfigSection, cfg, DefaultConfig()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NetworkConfig resolves the named network and applies endpoint overrides.
func (cfg *Config) NetworkConfig() (*icetest.NetworkConfig, error) {
	network, err := icetest.GetNetwork(string(cfg.Network))
	if err != nil {
		return nil, err
	}
	if cfg.RpcURL != "" {
		network.RpcURL = cfg.RpcURL
	}
	if cfg.EvmURL != "" {
		network.EvmURL = cfg.EvmURL
	}
	return network, nil
}

// StartsNode reports whether the harness spawns the node itself.
func (cfg *Config) StartsNode() bool {
	return cfg.Network.IsLocal() && !cfg.NoNode
}
