package harness

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"testing"

	icetest "github.com/cordialsys/icetest"
	"github.com/cordialsys/icetest/chain/substrate/client"
	"github.com/cordialsys/icetest/errors"
	"github.com/cordialsys/icetest/wallet"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

func testWallets(t *testing.T) wallet.Registry {
	wallets, err := wallet.DeriveAll(wallet.DefaultSeeds, 42)
	require.NoError(t, err)
	return wallets
}

func signerAddress(signer client.Signer) string {
	id := signer.AccountID()
	address, err := wallet.EncodeAddress(id.ToBytes(), 42)
	if err != nil {
		panic(err)
	}
	return address
}

type fakeAsset struct {
	owner    string
	admin    string
	min      icetest.AmountBlockchain
	balances map[string]icetest.AmountBlockchain
}

// fakeChain is an in-memory assets and balances pallet.
type fakeChain struct {
	assets   map[uint32]*fakeAsset
	balances map[string]icetest.AmountBlockchain
	nonces   map[string]uint64
}

var _ Assets = &fakeChain{}
var _ Balances = &fakeChain{}

func newFakeChain() *fakeChain {
	return &fakeChain{
		assets:   map[uint32]*fakeAsset{},
		balances: map[string]icetest.AmountBlockchain{},
		nonces:   map[string]uint64{},
	}
}

func (f *fakeChain) include(signer client.Signer) *client.Inclusion {
	f.nonces[signerAddress(signer)]++
	return &client.Inclusion{Index: 1}
}

func (f *fakeChain) CreateAsset(ctx context.Context, signer client.Signer, assetID uint32, admin string, minBalance icetest.AmountBlockchain, opts client.Options) (*client.Inclusion, error) {
	inclusion := f.include(signer)
	if _, ok := f.assets[assetID]; ok {
		return inclusion, errors.Dispatchf("assets.InUse: The asset ID is already taken.")
	}
	f.assets[assetID] = &fakeAsset{
		owner:    signerAddress(signer),
		admin:    admin,
		min:      minBalance,
		balances: map[string]icetest.AmountBlockchain{},
	}
	return inclusion, nil
}

func (f *fakeChain) MintAsset(ctx context.Context, signer client.Signer, assetID uint32, beneficiary string, amount icetest.AmountBlockchain, opts client.Options) (*client.Inclusion, error) {
	inclusion := f.include(signer)
	asset, ok := f.assets[assetID]
	if !ok {
		return inclusion, errors.Dispatchf("assets.Unknown: The given asset ID is unknown.")
	}
	if signerAddress(signer) != asset.admin {
		return inclusion, errors.Dispatchf("assets.NoPermission: The signing account has no permission to do the operation.")
	}
	balance := asset.balances[beneficiary]
	asset.balances[beneficiary] = balance.Add(&amount)
	return inclusion, nil
}

func (f *fakeChain) TransferAsset(ctx context.Context, signer client.Signer, assetID uint32, target string, amount icetest.AmountBlockchain, opts client.Options) (*client.Inclusion, error) {
	inclusion := f.include(signer)
	asset, ok := f.assets[assetID]
	if !ok {
		return inclusion, errors.Dispatchf("assets.Unknown: The given asset ID is unknown.")
	}
	source := signerAddress(signer)
	from := asset.balances[source]
	if from.Cmp(&amount) < 0 {
		return inclusion, errors.Dispatchf("assets.BalanceLow: Account balance must be greater than or equal to the transfer amount.")
	}
	to := asset.balances[target]
	credit := to.Add(&amount)
	if credit.Cmp(&asset.min) < 0 {
		return inclusion, errors.Dispatchf("BelowMinimum")
	}
	remainder := from.Sub(&amount)
	if !remainder.IsZero() && remainder.Cmp(&asset.min) < 0 {
		credit = credit.Add(&remainder)
		remainder = icetest.NewAmountBlockchainFromUint64(0)
	}
	asset.balances[source] = remainder
	asset.balances[target] = credit
	return inclusion, nil
}

func (f *fakeChain) AssetBalance(ctx context.Context, assetID uint32, address string) (icetest.AmountBlockchain, error) {
	if asset, ok := f.assets[assetID]; ok {
		if balance, ok := asset.balances[address]; ok {
			return balance, nil
		}
	}
	return icetest.NewAmountBlockchainFromUint64(0), nil
}

func (f *fakeChain) Transfer(ctx context.Context, signer client.Signer, to string, amount icetest.AmountBlockchain, opts client.Options) (*client.Inclusion, error) {
	source := signerAddress(signer)
	if opts.Nonce != nil && *opts.Nonce != f.nonces[source] {
		return nil, errors.SubmissionRejectedf("%s is invalid", source)
	}
	inclusion := f.include(signer)
	from := f.balances[source]
	if from.Cmp(&amount) < 0 {
		return inclusion, errors.Dispatchf("balances.InsufficientBalance: Balance too low to send value.")
	}
	balance := f.balances[to]
	f.balances[source] = from.Sub(&amount)
	f.balances[to] = balance.Add(&amount)
	return inclusion, nil
}

func (f *fakeChain) GetBalance(ctx context.Context, address string, reserved bool) (icetest.AmountBlockchain, error) {
	if reserved {
		return icetest.NewAmountBlockchainFromUint64(0), nil
	}
	if balance, ok := f.balances[address]; ok {
		return balance, nil
	}
	return icetest.NewAmountBlockchainFromUint64(0), nil
}

func (f *fakeChain) GetNonce(ctx context.Context, address string) (uint64, error) {
	return f.nonces[address], nil
}

// fakeFees answers zero until a block window without zero tips was seen.
type fakeFees struct {
	quantity string
	sent     []int64
	mined    int
	err      error
}

var _ FeeOracle = &fakeFees{}

func (f *fakeFees) MaxPriorityFeePerGas(ctx context.Context) (string, *big.Int, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	quantity := f.quantity
	if quantity == "" {
		quantity = ZeroFee
	}
	fee, _ := new(big.Int).SetString(quantity[2:], 16)
	return quantity, fee, nil
}

func (f *fakeFees) SendTip(ctx context.Context, key *ecdsa.PrivateKey, tip *big.Int) (*types.Transaction, error) {
	if key == nil {
		return nil, fmt.Errorf("no key")
	}
	f.sent = append(f.sent, tip.Int64())
	return types.NewTx(&types.DynamicFeeTx{Nonce: uint64(len(f.sent)), GasTipCap: tip}), nil
}

func (f *fakeFees) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	f.mined++
	return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

type fakePrimes struct{}

func (fakePrimes) IsPrime(ctx context.Context, n *big.Int) (bool, error) {
	return n.ProbablyPrime(20), nil
}
