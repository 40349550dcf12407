package harness

import (
	"context"
	"fmt"
	"strings"

	icetest "github.com/cordialsys/icetest"
	"github.com/cordialsys/icetest/chain/substrate/client"
	"github.com/cordialsys/icetest/errors"
	"github.com/cordialsys/icetest/wallet"
	"github.com/sirupsen/logrus"
)

var (
	AssetMinBalance = icetest.NewAmountBlockchainFromUint64(1_000_000)
	AssetMintAmount = icetest.NewAmountBlockchainFromUint64(10_000_000_000)
)

const (
	ErrNoPermission = "account has no permission"
	ErrBelowMinimum = "BelowMinimum"
)

// expectDispatchError checks err is a dispatch error whose reason contains text.
func expectDispatchError(err error, text string) error {
	if err == nil {
		return fmt.Errorf("expected dispatch error %q, but the extrinsic succeeded", text)
	}
	if !errors.Is(err, errors.DispatchError) {
		return fmt.Errorf("expected dispatch error %q: %w", text, err)
	}
	if !strings.Contains(err.Error(), text) {
		return fmt.Errorf("expected dispatch error %q, got: %w", text, err)
	}
	return nil
}

func expectAssetBalance(ctx context.Context, env *Env, who *wallet.Wallet, expected icetest.AmountBlockchain) error {
	balance, err := env.Assets.AssetBalance(ctx, env.AssetID, who.Address)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"asset":   env.AssetID,
		"wallet":  who.Name,
		"balance": balance.String(),
	}).Debug("asset balance")
	if balance.Cmp(&expected) != 0 {
		return fmt.Errorf("expected %s to hold %s of asset %d, has %s", who.Name, expected.String(), env.AssetID, balance.String())
	}
	return nil
}

func createAsset(ctx context.Context, env *Env) error {
	bob := env.Wallets.MustGet(wallet.Bob)
	bobStash := env.Wallets.MustGet(wallet.BobStash)
	_, err := env.Assets.CreateAsset(ctx, bob, env.AssetID, bobStash.Address, AssetMinBalance, client.Options{})
	return err
}

// Only the issuer, BOB_STASH, may mint.
func mintAsset(ctx context.Context, env *Env) error {
	bob := env.Wallets.MustGet(wallet.Bob)
	bobStash := env.Wallets.MustGet(wallet.BobStash)
	alice := env.Wallets.MustGet(wallet.Alice)

	if _, err := env.Assets.MintAsset(ctx, bobStash, env.AssetID, alice.Address, AssetMintAmount, client.Options{}); err != nil {
		return err
	}
	if err := expectAssetBalance(ctx, env, alice, AssetMintAmount); err != nil {
		return err
	}

	_, err := env.Assets.MintAsset(ctx, bob, env.AssetID, alice.Address, AssetMintAmount, client.Options{})
	if err := expectDispatchError(err, ErrNoPermission); err != nil {
		return err
	}
	return expectAssetBalance(ctx, env, alice, AssetMintAmount)
}

// Leaving less than the minimum balance behind sweeps the remainder to the target.
func sweepDust(ctx context.Context, env *Env) error {
	alice := env.Wallets.MustGet(wallet.Alice)
	aliceStash := env.Wallets.MustGet(wallet.AliceStash)
	zero := icetest.NewAmountBlockchainFromUint64(0)
	one := icetest.NewAmountBlockchainFromUint64(1)

	remainder := AssetMintAmount.Sub(&AssetMinBalance)
	amount := remainder.Add(&one)
	if _, err := env.Assets.TransferAsset(ctx, alice, env.AssetID, aliceStash.Address, amount, client.Options{}); err != nil {
		return err
	}
	if err := expectAssetBalance(ctx, env, alice, zero); err != nil {
		return err
	}
	if err := expectAssetBalance(ctx, env, aliceStash, AssetMintAmount); err != nil {
		return err
	}

	// the target would end up below the minimum balance
	belowMin := AssetMinBalance.Sub(&one)
	_, err := env.Assets.TransferAsset(ctx, aliceStash, env.AssetID, alice.Address, belowMin, client.Options{})
	if err := expectDispatchError(err, ErrBelowMinimum); err != nil {
		return err
	}
	if err := expectAssetBalance(ctx, env, alice, zero); err != nil {
		return err
	}
	return expectAssetBalance(ctx, env, aliceStash, AssetMintAmount)
}

var AssetsScenario = register(Scenario{
	Name: "assets",
	Steps: []Step{
		{Name: "create asset", Run: createAsset},
		{Name: "mint is admin only", Run: mintAsset},
		{Name: "transfer sweeps dust", Run: sweepDust},
	},
})
