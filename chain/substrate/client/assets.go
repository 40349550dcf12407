package client

import (
	"context"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	icetest "github.com/cordialsys/icetest"
	"github.com/cordialsys/icetest/chain/substrate/tx_input"
	"github.com/cordialsys/icetest/errors"
	"github.com/cordialsys/icetest/wallet"
)

func (client *Client) assetCall(name string, assetID uint32, who string, amount interface{}) (types.Call, error) {
	target, err := wallet.DecodeMulti(who)
	if err != nil {
		return types.Call{}, err
	}
	call, err := tx_input.NewCall(&client.input.Meta, name, types.NewUCompactFromUInt(uint64(assetID)), target, amount)
	if err != nil {
		return types.Call{}, errors.Wrapf(errors.SubmissionRejected, err, "")
	}
	return call, nil
}

// CreateAsset registers a new asset class with the given admin and minimum balance.
func (client *Client) CreateAsset(ctx context.Context, signer Signer, assetID uint32, admin string, minBalance icetest.AmountBlockchain, opts Options) (*Inclusion, error) {
	call, err := client.assetCall(tx_input.AssetsCreate, assetID, admin, types.NewU128(*minBalance.Int()))
	if err != nil {
		return nil, err
	}
	return client.SubmitAndConfirm(ctx, signer, call, opts)
}

// MintAsset mints to a beneficiary. Only the asset's issuer may mint.
func (client *Client) MintAsset(ctx context.Context, signer Signer, assetID uint32, beneficiary string, amount icetest.AmountBlockchain, opts Options) (*Inclusion, error) {
	call, err := client.assetCall(tx_input.AssetsMint, assetID, beneficiary, types.NewUCompact(amount.Int()))
	if err != nil {
		return nil, err
	}
	return client.SubmitAndConfirm(ctx, signer, call, opts)
}

// TransferAsset moves asset balance. A remainder below the minimum balance is swept to the target.
func (client *Client) TransferAsset(ctx context.Context, signer Signer, assetID uint32, target string, amount icetest.AmountBlockchain, opts Options) (*Inclusion, error) {
	call, err := client.assetCall(tx_input.AssetsTransfer, assetID, target, types.NewUCompact(amount.Int()))
	if err != nil {
		return nil, err
	}
	return client.SubmitAndConfirm(ctx, signer, call, opts)
}
