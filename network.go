package icetest

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Network is the name of an ICE network the harness knows how to reach.
type Network string

const (
	Local       Network = "local"
	Snow        Network = "snow"
	Arctic      Network = "arctic"
	SnowStaging Network = "snow_staging"
)

// Decimals of the native ICZ/ICY token.
const NativeDecimals int32 = 18

// NetworkConfig describes how to reach one network.
type NetworkConfig struct {
	Name Network `yaml:"name,omitempty"`
	// Native substrate websocket endpoint
	RpcURL string `yaml:"rpc,omitempty"`
	// Ethereum JSON-RPC endpoint. Frontier serves it on the same port as the
	// native rpc, so this defaults to RpcURL over http(s).
	EvmURL      string `yaml:"evm_rpc,omitempty"`
	ChainID     uint64 `yaml:"chain_id,omitempty"`
	ChainPrefix uint16 `yaml:"chain_prefix,omitempty"`
	Decimals    int32  `yaml:"decimals,omitempty"`
}

var DefaultNetworks = map[Network]*NetworkConfig{
	Snow: {
		Name:        Snow,
		RpcURL:      "wss://snow-rpc.icenetwork.io",
		ChainID:     552,
		ChainPrefix: 2207,
		Decimals:    NativeDecimals,
	},
	Arctic: {
		Name:        Arctic,
		RpcURL:      "wss://arctic-rpc.icenetwork.io:9944",
		ChainID:     553,
		ChainPrefix: 2208,
		Decimals:    NativeDecimals,
	},
	SnowStaging: {
		Name:        SnowStaging,
		RpcURL:      "wss://snow-staging-rpc.web3labs.com:9944",
		ChainID:     552,
		ChainPrefix: 2207,
		Decimals:    NativeDecimals,
	},
	Local: {
		Name:        Local,
		RpcURL:      "ws://localhost:9944",
		ChainID:     554,
		ChainPrefix: 2208,
		Decimals:    NativeDecimals,
	},
}

// IsLocal reports whether the harness is expected to spawn the node itself.
func (n Network) IsLocal() bool {
	return n == Local
}

func NetworkNames() []string {
	names := make([]string, 0, len(DefaultNetworks))
	for name := range DefaultNetworks {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

// GetNetwork looks up a compiled-in network by name (case insensitive) and returns a copy.
func GetNetwork(name string) (*NetworkConfig, error) {
	cfg, ok := DefaultNetworks[Network(strings.ToLower(name))]
	if !ok {
		return nil, fmt.Errorf("invalid network: %s\noptions: %v", name, NetworkNames())
	}
	copied := *cfg
	return &copied, nil
}

// EvmEndpoint is EvmURL, or else RpcURL with ws(s) swapped for http(s).
func (cfg *NetworkConfig) EvmEndpoint() string {
	if cfg.EvmURL != "" {
		return cfg.EvmURL
	}
	parsed, err := url.Parse(cfg.RpcURL)
	if err != nil {
		return cfg.RpcURL
	}
	switch parsed.Scheme {
	case "ws":
		parsed.Scheme = "http"
	case "wss":
		parsed.Scheme = "https"
	}
	return parsed.String()
}

// HostPort returns the dialable address of the rpc endpoint, filling in the
// default port of the scheme when none is given.
func (cfg *NetworkConfig) HostPort() (string, error) {
	return HostPort(cfg.RpcURL)
}

func HostPort(endpoint string) (string, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %s: %v", endpoint, err)
	}
	if parsed.Hostname() == "" {
		return "", fmt.Errorf("endpoint %s has no host", endpoint)
	}
	port := parsed.Port()
	if port == "" {
		switch parsed.Scheme {
		case "wss", "https":
			port = "443"
		default:
			port = "80"
		}
	}
	return parsed.Hostname() + ":" + port, nil
}
