package client

import (
	"context"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	icetest "github.com/cordialsys/icetest"
	"github.com/cordialsys/icetest/chain/substrate/tx_input"
	"github.com/cordialsys/icetest/errors"
	"github.com/cordialsys/icetest/wallet"
)

// Transfer sends native balance with Balances.transfer, or its renamed
// successor on newer runtimes.
func (client *Client) Transfer(ctx context.Context, signer Signer, to string, amount icetest.AmountBlockchain, opts Options) (*Inclusion, error) {
	name, err := client.input.Meta.FirstSupported(tx_input.TransferCalls...)
	if err != nil {
		return nil, errors.Wrapf(errors.SubmissionRejected, err, "")
	}
	dest, err := wallet.DecodeMulti(to)
	if err != nil {
		return nil, err
	}
	call, err := tx_input.NewCall(&client.input.Meta, name, dest, types.NewUCompact(amount.Int()))
	if err != nil {
		return nil, err
	}
	return client.SubmitAndConfirm(ctx, signer, call, opts)
}
