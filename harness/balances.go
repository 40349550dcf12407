package harness

import (
	"context"
	"fmt"

	icetest "github.com/cordialsys/icetest"
	"github.com/cordialsys/icetest/chain/substrate/client"
	"github.com/cordialsys/icetest/wallet"
)

// One ICZ
var TransferAmount = icetest.NewAmountBlockchainFromStr("1000000000000000000")

func transferWithNonce(ctx context.Context, env *Env) error {
	alice := env.Wallets.MustGet(wallet.Alice)
	dave := env.Wallets.MustGet(wallet.Dave)

	nonce, err := env.Balances.GetNonce(ctx, alice.Address)
	if err != nil {
		return err
	}
	before, err := env.Balances.GetBalance(ctx, dave.Address, false)
	if err != nil {
		return err
	}

	if _, err := env.Balances.Transfer(ctx, alice, dave.Address, TransferAmount, client.WithNonce(nonce)); err != nil {
		return err
	}

	after, err := env.Balances.GetBalance(ctx, dave.Address, false)
	if err != nil {
		return err
	}
	expected := before.Add(&TransferAmount)
	if after.Cmp(&expected) != 0 {
		return fmt.Errorf("expected %s to hold %s, has %s", dave.Name, expected.ToHuman(icetest.NativeDecimals), after.ToHuman(icetest.NativeDecimals))
	}
	next, err := env.Balances.GetNonce(ctx, alice.Address)
	if err != nil {
		return err
	}
	if next != nonce+1 {
		return fmt.Errorf("expected nonce of %s to advance to %d, is %d", alice.Name, nonce+1, next)
	}
	return nil
}

var BalancesScenario = register(Scenario{
	Name: "balances",
	Steps: []Step{
		{Name: "transfer with explicit nonce", Run: transferWithNonce},
	},
})
