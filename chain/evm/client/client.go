package client

import (
	"context"
	"math/big"
	"net/http"

	icetest "github.com/cordialsys/icetest"
	"github.com/cordialsys/icetest/errors"
	"github.com/cordialsys/icetest/utils"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sirupsen/logrus"
)

// Client for the node's Ethereum JSON-RPC.
type Client struct {
	Endpoint    string
	EthClient   *ethclient.Client
	Interceptor *utils.HttpInterceptor
	rpc         *rpc.Client
}

func traceBodies(request []byte, response []byte) []byte {
	logrus.WithFields(logrus.Fields{
		"request":  string(request),
		"response": string(response),
	}).Trace("evm rpc")
	return response
}

// Dial connects to an http(s) or ws(s) endpoint. Request and response bodies
// are traced at trace level over http(s) only; websocket frames bypass the
// interceptor.
func Dial(ctx context.Context, endpoint string) (*Client, error) {
	interceptor := utils.NewHttpInterceptor(traceBodies)
	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		interceptor.Enable()
	}
	httpClient := &http.Client{
		Transport: interceptor,
	}
	c, err := rpc.DialOptions(ctx, endpoint, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, errors.Connectionf("dialing url %s: %w", endpoint, err)
	}
	return &Client{
		Endpoint:    endpoint,
		EthClient:   ethclient.NewClient(c),
		Interceptor: interceptor,
		rpc:         c,
	}, nil
}

// DialNetwork dials the Ethereum endpoint of a network.
func DialNetwork(ctx context.Context, network *icetest.NetworkConfig) (*Client, error) {
	return Dial(ctx, network.EvmEndpoint())
}

// RPC is the raw JSON-RPC client, for calls whose encoded result matters.
func (client *Client) RPC() *rpc.Client {
	return client.rpc
}

func (client *Client) Close() {
	client.EthClient.Close()
}

func (client *Client) ChainID(ctx context.Context) (*big.Int, error) {
	chainID, err := client.EthClient.ChainID(ctx)
	if err != nil {
		return nil, errors.Queryf("could not lookup chain_id: %w", err)
	}
	return chainID, nil
}

// MaxPriorityFeePerGas returns the suggested tip both as the node encoded it
// (e.g. "0x0") and parsed.
func (client *Client) MaxPriorityFeePerGas(ctx context.Context) (string, *big.Int, error) {
	var quantity string
	if err := client.rpc.CallContext(ctx, &quantity, "eth_maxPriorityFeePerGas"); err != nil {
		return "", nil, errors.Queryf("could not fetch eth_maxPriorityFeePerGas: %w", err)
	}
	fee, err := hexutil.DecodeBig(quantity)
	if err != nil {
		return quantity, nil, errors.InvalidResponsef("eth_maxPriorityFeePerGas returned %q: %w", quantity, err)
	}
	return quantity, fee, nil
}
