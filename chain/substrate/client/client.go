package client

import (
	"context"
	"fmt"
	"sync"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	icetest "github.com/cordialsys/icetest"
	"github.com/cordialsys/icetest/chain/substrate/tx_input"
	"github.com/cordialsys/icetest/errors"
	"github.com/sirupsen/logrus"
)

type storageReader interface {
	GetStorageLatest(key types.StorageKey, target interface{}) (ok bool, err error)
	GetStorageRaw(key types.StorageKey, blockHash types.Hash) (*types.StorageDataRaw, error)
}

type rpcCaller interface {
	Call(result interface{}, method string, args ...interface{}) error
}

type storageKeyFn func(prefix, method string, args ...[]byte) (types.StorageKey, error)

// Client is the harness connection to one node.
type Client struct {
	Network *icetest.NetworkConfig

	api        *gsrpc.SubstrateAPI
	state      storageReader
	rpc        rpcCaller
	subscribe  subscribeFn
	storageKey storageKeyFn

	meta      *types.Metadata
	input     *tx_input.TxInput
	errors    *ErrorRegistry
	events    EventDecoders
	closeOnce sync.Once
}

// Connect dials the node and loads its metadata. The client is ready once metadata was fetched.
func Connect(ctx context.Context, network *icetest.NetworkConfig) (*Client, error) {
	log := logrus.WithFields(logrus.Fields{
		"network": network.Name,
		"rpc":     network.RpcURL,
	})
	type dialResult struct {
		api *gsrpc.SubstrateAPI
		err error
	}
	dialed := make(chan dialResult, 1)
	go func() {
		api, err := gsrpc.NewSubstrateAPI(network.RpcURL)
		dialed <- dialResult{api, err}
	}()

	var api *gsrpc.SubstrateAPI
	select {
	case <-ctx.Done():
		go func() {
			// release the connection once the dial completes
			if res := <-dialed; res.err == nil {
				closeApi(res.api)
			}
		}()
		return nil, errors.Connectionf("could not connect to %s: %w", network.RpcURL, ctx.Err())
	case res := <-dialed:
		if res.err != nil {
			return nil, errors.Connectionf("could not connect to %s: %w", network.RpcURL, res.err)
		}
		api = res.api
	}

	client, err := newClient(api, network)
	if err != nil {
		closeApi(api)
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"spec_version": client.input.Rv.SpecVersion,
		"genesis":      client.input.GenesisHash.Hex(),
	}).Info("connected")
	return client, nil
}

func newClient(api *gsrpc.SubstrateAPI, network *icetest.NetworkConfig) (*Client, error) {
	rpc := api.RPC
	meta, err := rpc.State.GetMetadataLatest()
	if err != nil {
		return nil, errors.Connectionf("could not fetch metadata: %w", err)
	}
	input := tx_input.NewTxInput()
	input.Meta, err = tx_input.ParseMeta(meta)
	if err != nil {
		return nil, errors.Connectionf("could not parse metadata: %w", err)
	}
	input.GenesisHash, err = rpc.Chain.GetBlockHash(0)
	if err != nil {
		return nil, errors.Connectionf("could not fetch genesis hash: %w", err)
	}
	rv, err := rpc.State.GetRuntimeVersionLatest()
	if err != nil {
		return nil, errors.Connectionf("could not fetch runtime version: %w", err)
	}
	input.Rv = *rv

	errorRegistry, err := NewErrorRegistry(meta)
	if err != nil {
		return nil, errors.Wrapf(errors.ConnectionError, err, "")
	}
	events, err := NewEventDecoders(meta)
	if err != nil {
		return nil, errors.Wrapf(errors.ConnectionError, err, "")
	}

	return &Client{
		Network:   network,
		api:       api,
		state:     rpc.State,
		rpc:       api.Client,
		subscribe: newStatusSubscriber(api.Client),
		storageKey: func(prefix, method string, args ...[]byte) (types.StorageKey, error) {
			return types.CreateStorageKey(meta, prefix, method, args...)
		},
		meta:   meta,
		input:  input,
		errors: errorRegistry,
		events: events,
	}, nil
}

func (client *Client) Metadata() *types.Metadata {
	return client.meta
}

// TxInput returns a copy of the chain level input (metadata, genesis, runtime version).
func (client *Client) TxInput() *tx_input.TxInput {
	return client.input.WithOptions(nil, 0)
}

func (client *Client) ErrorRegistry() *ErrorRegistry {
	return client.errors
}

// Close disconnects from the node. Safe to call more than once.
func (client *Client) Close() {
	client.closeOnce.Do(func() {
		if client.api != nil {
			closeApi(client.api)
			logrus.WithField("network", client.Network.Name).Debug("disconnected")
		}
	})
}

func closeApi(api *gsrpc.SubstrateAPI) {
	if closer, ok := api.Client.(interface{ Close() }); ok {
		closer.Close()
	}
}

func (client *Client) queryStorage(ctx context.Context, prefix, method string, target interface{}, args ...[]byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	key, err := client.storageKey(prefix, method, args...)
	if err != nil {
		return false, fmt.Errorf("could not create storage key %s.%s: %w", prefix, method, err)
	}
	return client.state.GetStorageLatest(key, target)
}
