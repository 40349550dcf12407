package client

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/cordialsys/icetest/errors"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
)

// Account funded in the genesis of a --dev chain.
const (
	GenesisAccount           = "0x6be02d1d3665660d22ff9624b7be0551ee1ac91b"
	GenesisAccountPrivateKey = "0x99B3C12287537E38C90A9219D4CB074A89A16E9CDB20BF85728EBD97C343E342"
)

const TransferGas = 21_000

func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, errors.KeyDerivationf("invalid secp256k1 key: %w", err)
	}
	return key, nil
}

// SendTip sends an empty EIP-1559 transfer to the zero address paying the given priority fee.
// The fee cap is the node's gas price, raised to the tip if lower.
func (client *Client) SendTip(ctx context.Context, key *ecdsa.PrivateKey, tip *big.Int) (*types.Transaction, error) {
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	auth, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, errors.Wrapf(errors.KeyDerivationError, err, "")
	}
	nonce, err := client.EthClient.PendingNonceAt(ctx, auth.From)
	if err != nil {
		return nil, errors.Queryf("could not fetch nonce of %s: %w", auth.From.Hex(), err)
	}
	gasPrice, err := client.EthClient.SuggestGasPrice(ctx)
	if err != nil {
		return nil, errors.Queryf("could not fetch gas price: %w", err)
	}
	feeCap := new(big.Int).Set(gasPrice)
	if feeCap.Cmp(tip) < 0 {
		feeCap.Set(tip)
	}

	to := common.Address{}
	unsigned := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: new(big.Int).Set(tip),
		GasFeeCap: feeCap,
		Gas:       TransferGas,
		To:        &to,
		Value:     big.NewInt(0),
	})
	signed, err := auth.Signer(auth.From, unsigned)
	if err != nil {
		return nil, errors.KeyDerivationf("could not sign: %w", err)
	}
	if err := client.EthClient.SendTransaction(ctx, signed); err != nil {
		return nil, errors.SubmissionRejectedf("sending transaction '%v': %w", signed.Hash().Hex(), err)
	}
	logrus.WithFields(logrus.Fields{
		"tx":    signed.Hash().Hex(),
		"from":  auth.From.Hex(),
		"nonce": nonce,
		"tip":   tip.String(),
	}).Debug("sent tip transaction")
	return signed, nil
}

// WaitMined blocks until the transaction has a receipt and fails if it reverted.
func (client *Client) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, client.EthClient, tx)
	if err != nil {
		return nil, errors.Queryf("waiting for %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return receipt, errors.Dispatchf("transaction %s reverted", tx.Hash().Hex())
	}
	return receipt, nil
}
