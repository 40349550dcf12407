// Package probe issues single eth_call requests against the node and decodes
// the hex encoded result.
package probe

import (
	"context"
	"math/big"
	"strconv"
	"strings"

	"github.com/cordialsys/icetest/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sirupsen/logrus"
)

var (
	// Prime test precompile of the snow runtime
	PrimePrecompile = common.HexToAddress("0x0000000000000000000000000000000000000419")
	// H160 of //Alice
	DefaultFrom = common.HexToAddress("0xd43593c715fdd31c61141abd04a99fd6822c8558")
)

const DefaultGas = 0x10000

type rpcCaller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

type Probe struct {
	rpc  rpcCaller
	From common.Address
	Gas  uint64
}

// New wraps a raw JSON-RPC client, e.g. (*evm/client.Client).RPC().
func New(rpc rpcCaller) *Probe {
	return &Probe{
		rpc:  rpc,
		From: DefaultFrom,
		Gas:  DefaultGas,
	}
}

// DecodeHexText decodes a 0x prefixed, even length hex string into text, one
// character per byte.
func DecodeHexText(s string) (string, error) {
	if !strings.HasPrefix(s, "0x") {
		return "", errors.InvalidResponsef("invalid response forwarded: %q is not 0x prefixed", s)
	}
	digits := s[2:]
	if len(digits)%2 != 0 {
		return "", errors.InvalidResponsef("invalid response forwarded: %q has odd length", s)
	}
	var text strings.Builder
	for i := 0; i < len(digits); i += 2 {
		b, err := strconv.ParseUint(digits[i:i+2], 16, 8)
		if err != nil {
			return "", errors.InvalidResponsef("invalid response forwarded: %w", err)
		}
		text.WriteRune(rune(b))
	}
	return text.String(), nil
}

type callArgs struct {
	From common.Address `json:"from"`
	To   common.Address `json:"to"`
	Gas  hexutil.Uint64 `json:"gas"`
	Data hexutil.Bytes  `json:"data"`
}

// CallRaw performs eth_call at the latest block and returns the result as the node encoded it.
func (p *Probe) CallRaw(ctx context.Context, to common.Address, data []byte) (string, error) {
	args := callArgs{
		From: p.From,
		To:   to,
		Gas:  hexutil.Uint64(p.Gas),
		Data: data,
	}
	var result string
	if err := p.rpc.CallContext(ctx, &result, "eth_call", args, "latest"); err != nil {
		return "", errors.Queryf("eth_call to %s failed: %w", to.Hex(), err)
	}
	logrus.WithFields(logrus.Fields{
		"to":     to.Hex(),
		"data":   hexutil.Encode(data),
		"result": result,
	}).Debug("eth_call")
	return result, nil
}

// Call performs eth_call and decodes the result to text.
func (p *Probe) Call(ctx context.Context, to common.Address, data []byte) (string, error) {
	result, err := p.CallRaw(ctx, to, data)
	if err != nil {
		return "", err
	}
	return DecodeHexText(result)
}

// EncodeU128 encodes n as 16 big endian bytes.
func EncodeU128(n *big.Int) ([]byte, error) {
	if n.Sign() < 0 || n.BitLen() > 128 {
		return nil, errors.InvalidResponsef("%s does not fit in a u128", n.String())
	}
	return n.FillBytes(make([]byte, 16)), nil
}

// IsPrime asks the prime test precompile about n.
func (p *Probe) IsPrime(ctx context.Context, n *big.Int) (bool, error) {
	input, err := EncodeU128(n)
	if err != nil {
		return false, err
	}
	result, err := p.CallRaw(ctx, PrimePrecompile, input)
	if err != nil {
		return false, err
	}
	if _, err := DecodeHexText(result); err != nil {
		return false, err
	}
	output, err := hexutil.Decode(result)
	if err != nil || len(output) != 1 || output[0] > 1 {
		return false, errors.InvalidResponsef("unexpected precompile output %q", result)
	}
	return output[0] == 1, nil
}
