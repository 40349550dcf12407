package client

import (
	"context"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/cordialsys/icetest/errors"
)

type BlockRef struct {
	Hash   types.Hash
	Number uint64
}

// GetLastBlock returns the current best block. The runtime does not know the
// hash of the block it is executing, so when System.BlockHash has no entry for
// the current number the node's block index is asked instead.
func (client *Client) GetLastBlock(ctx context.Context) (BlockRef, error) {
	var number types.U32
	ok, err := client.queryStorage(ctx, "System", "Number", &number)
	if err != nil {
		return BlockRef{}, errors.BlockLookupf("could not query System.Number: %w", err)
	}
	if !ok {
		return BlockRef{}, errors.BlockLookupf("System.Number has no value")
	}
	hash, err := client.GetBlockHashByNumber(ctx, uint64(number))
	if err == nil {
		return BlockRef{Hash: hash, Number: uint64(number)}, nil
	}
	if !errors.Is(err, errors.BlockLookupError) {
		return BlockRef{}, err
	}
	var hex string
	if err := client.rpc.Call(&hex, "chain_getBlockHash", uint64(number)); err != nil {
		return BlockRef{}, errors.BlockLookupf("could not fetch hash of block %d: %w", number, AsRpcErrorMaybe(err))
	}
	hash, err = parseHash(hex)
	if err != nil || isZero(hash) {
		return BlockRef{}, errors.BlockLookupf("no hash for block %d", number)
	}
	return BlockRef{Hash: hash, Number: uint64(number)}, nil
}

// GetBlockHashByNumber reads System.BlockHash. A missing or zero hash counts as not found.
func (client *Client) GetBlockHashByNumber(ctx context.Context, number uint64) (types.Hash, error) {
	encoded, err := codec.Encode(types.NewU32(uint32(number)))
	if err != nil {
		return types.Hash{}, errors.Wrapf(errors.BlockLookupError, err, "")
	}
	var hash types.Hash
	ok, err := client.queryStorage(ctx, "System", "BlockHash", &hash, encoded)
	if err != nil {
		return types.Hash{}, errors.BlockLookupf("could not query System.BlockHash(%d): %w", number, err)
	}
	if !ok || isZero(hash) {
		return types.Hash{}, errors.BlockLookupf("no block hash at height %d", number)
	}
	return hash, nil
}

func isZero(hash types.Hash) bool {
	return hash == types.Hash{}
}

func parseHash(hex string) (types.Hash, error) {
	bz, err := codec.HexDecodeString(hex)
	if err != nil {
		return types.Hash{}, err
	}
	return types.NewHash(bz), nil
}
