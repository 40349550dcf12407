package client

import (
	"context"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	icetest "github.com/cordialsys/icetest"
	"github.com/cordialsys/icetest/errors"
	"github.com/cordialsys/icetest/wallet"
	"github.com/sirupsen/logrus"
)

// AccountInfo contains the prefix of System.Account shared by the runtimes we test.
// Fields after Reserved differ between versions and are skipped.
type AccountInfo struct {
	Nonce       types.U32
	Consumers   types.U32
	Providers   types.U32
	Sufficients types.U32
	Data        struct {
		Free     types.U128
		Reserved types.U128
	}
}

// AssetAccount is the prefix of Assets.Account; the balance comes first in every version.
type AssetAccount struct {
	Balance types.U128
}

func (client *Client) accountInfo(ctx context.Context, address string) (*AccountInfo, bool, error) {
	_, accountID, err := wallet.DecodeAddress(address)
	if err != nil {
		return nil, false, errors.Wrapf(errors.QueryError, err, "")
	}
	var info AccountInfo
	ok, err := client.queryStorage(ctx, "System", "Account", &info, accountID.ToBytes())
	if err != nil {
		return nil, false, errors.Queryf("could not query System.Account of %s: %w", address, err)
	}
	return &info, ok, nil
}

// GetNonce returns the nonce stored in System.Account. Missing accounts have nonce 0.
func (client *Client) GetNonce(ctx context.Context, address string) (uint64, error) {
	info, ok, err := client.accountInfo(ctx, address)
	if err != nil || !ok {
		return 0, err
	}
	return uint64(info.Nonce), nil
}

// GetBalance returns the free, or reserved, balance of an account. Missing accounts have zero balance.
func (client *Client) GetBalance(ctx context.Context, address string, reserved bool) (icetest.AmountBlockchain, error) {
	info, ok, err := client.accountInfo(ctx, address)
	if err != nil {
		return icetest.AmountBlockchain{}, err
	}
	if !ok {
		return icetest.NewAmountBlockchainFromUint64(0), nil
	}
	balance := info.Data.Free
	if reserved {
		balance = info.Data.Reserved
	}
	amount := u128ToAmount(balance)
	logrus.WithFields(logrus.Fields{
		"address":  address,
		"reserved": reserved,
		"balance":  amount.String(),
	}).Trace("balance")
	return amount, nil
}

// NextIndex asks the node for the next nonce of an account, including transactions in the pool.
func (client *Client) NextIndex(ctx context.Context, address string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var nonce uint64
	if err := client.rpc.Call(&nonce, "system_accountNextIndex", address); err != nil {
		return 0, errors.Queryf("could not fetch next index of %s: %w", address, AsRpcErrorMaybe(err))
	}
	return nonce, nil
}

// AssetBalance returns the balance of an account in Assets.Account, or zero if the entry is missing.
func (client *Client) AssetBalance(ctx context.Context, assetID uint32, address string) (icetest.AmountBlockchain, error) {
	_, accountID, err := wallet.DecodeAddress(address)
	if err != nil {
		return icetest.AmountBlockchain{}, errors.Wrapf(errors.QueryError, err, "")
	}
	encodedID, err := codec.Encode(types.NewU32(assetID))
	if err != nil {
		return icetest.AmountBlockchain{}, errors.Wrapf(errors.QueryError, err, "")
	}
	var account AssetAccount
	ok, err := client.queryStorage(ctx, "Assets", "Account", &account, encodedID, accountID.ToBytes())
	if err != nil {
		return icetest.AmountBlockchain{}, errors.Queryf("could not query Assets.Account(%d) of %s: %w", assetID, address, err)
	}
	if !ok {
		return icetest.NewAmountBlockchainFromUint64(0), nil
	}
	return u128ToAmount(account.Balance), nil
}

func u128ToAmount(value types.U128) icetest.AmountBlockchain {
	if value.Int == nil {
		return icetest.NewAmountBlockchainFromUint64(0)
	}
	return icetest.NewAmountBlockchainFromBig(new(big.Int).Set(value.Int))
}
