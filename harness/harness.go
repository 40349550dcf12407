package harness

import (
	"context"
	"crypto/ecdsa"
	"sync"

	icetest "github.com/cordialsys/icetest"
	evmclient "github.com/cordialsys/icetest/chain/evm/client"
	"github.com/cordialsys/icetest/chain/evm/probe"
	"github.com/cordialsys/icetest/chain/substrate/client"
	"github.com/cordialsys/icetest/errors"
	"github.com/cordialsys/icetest/node"
	"github.com/cordialsys/icetest/wallet"
	"github.com/sirupsen/logrus"
)

// Harness owns the node process, when local, and the single connection to it.
type Harness struct {
	Config  *Config
	Network *icetest.NetworkConfig
	Node    *node.Node
	Client  *client.Client
	Evm     *evmclient.Client
	Wallets wallet.Registry
	EvmKey  *ecdsa.PrivateKey

	cleanupOnce sync.Once
}

// New starts the node (local network only, unless NoNode), waits until it
// accepts connections, connects and derives the wallets. On failure everything
// already started is cleaned up.
func New(ctx context.Context, cfg *Config) (*Harness, error) {
	network, err := cfg.NetworkConfig()
	if err != nil {
		return nil, err
	}
	h := &Harness{Config: cfg, Network: network}
	log := logrus.WithField("network", network.Name)

	if cfg.StartsNode() {
		h.Node, err = node.Start(ctx, cfg.Binary, cfg.Args...)
		if err != nil {
			return nil, err
		}
		if err = h.Node.WaitUntilReady(ctx, network.RpcURL, cfg.StartupTimeout); err != nil {
			h.Cleanup()
			return nil, err
		}
	} else if cfg.Network.IsLocal() {
		log.WithField("rpc", network.RpcURL).Info("waiting for running node")
		if err = node.WaitForEndpoint(ctx, network.RpcURL, cfg.StartupTimeout); err != nil {
			return nil, err
		}
	}

	h.Client, err = client.Connect(ctx, network)
	if err != nil {
		h.Cleanup()
		return nil, err
	}
	h.Evm, err = evmclient.DialNetwork(ctx, network)
	if err != nil {
		h.Cleanup()
		return nil, err
	}

	h.Wallets, err = wallet.DeriveAll(cfg.Seeds, network.ChainPrefix)
	if err != nil {
		h.Cleanup()
		return nil, err
	}
	if cfg.EvmGenesisKey != "" {
		log.WithField("key", cfg.EvmGenesisKey.String()).Debug("loading evm key")
		secret, err := cfg.EvmGenesisKey.Load()
		if err != nil {
			h.Cleanup()
			return nil, errors.KeyDerivationf("could not load evm genesis key: %w", err)
		}
		h.EvmKey, err = evmclient.ParsePrivateKey(secret)
		if err != nil {
			h.Cleanup()
			return nil, err
		}
	}
	log.WithField("wallets", len(h.Wallets)).Info("harness ready")
	return h, nil
}

// Env exposes the harness to scenario steps.
func (h *Harness) Env() *Env {
	env := &Env{
		Assets:   h.Client,
		Balances: h.Client,
		Wallets:  h.Wallets,
		AssetID:  h.Config.AssetID,
		EvmKey:   h.EvmKey,
	}
	if h.Evm != nil {
		env.Fees = h.Evm
		env.Primes = probe.New(h.Evm.RPC())
	}
	return env
}

// Cleanup disconnects, then stops the node. Runs once.
func (h *Harness) Cleanup() {
	h.cleanupOnce.Do(func() {
		if h.Evm != nil {
			h.Evm.Close()
		}
		if h.Client != nil {
			h.Client.Close()
		}
		if h.Node != nil {
			if err := h.Node.Stop(); err != nil {
				logrus.WithError(err).Warn("could not stop node")
			}
		}
	})
}
