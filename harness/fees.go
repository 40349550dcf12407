package harness

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
)

const ZeroFee = "0x0"

// Tips sent in each block; the zero tip keeps the suggestion at zero.
var BlockTips = []int64{0, 1, 2, 3, 4, 5}

// Blocks filled with tips, leaving the 20 block fee history window with no empty block.
const TipBlocks = 19

func expectZeroFee(ctx context.Context, env *Env) error {
	quantity, _, err := env.Fees.MaxPriorityFeePerGas(ctx)
	if err != nil {
		return err
	}
	if quantity != ZeroFee {
		return fmt.Errorf("expected eth_maxPriorityFeePerGas to be %s, got %s", ZeroFee, quantity)
	}
	return nil
}

// sendTipBlock sends one transaction per tip and waits until all are mined.
func sendTipBlock(ctx context.Context, env *Env) error {
	sent := make([]*types.Transaction, 0, len(BlockTips))
	for _, tip := range BlockTips {
		tx, err := env.Fees.SendTip(ctx, env.EvmKey, big.NewInt(tip))
		if err != nil {
			return err
		}
		sent = append(sent, tx)
	}
	for _, tx := range sent {
		if _, err := env.Fees.WaitMined(ctx, tx); err != nil {
			return err
		}
	}
	return nil
}

func zeroWithRecentZeroTips(ctx context.Context, env *Env) error {
	if env.EvmKey == nil {
		return fmt.Errorf("no evm genesis key configured")
	}
	for i := 0; i < TipBlocks; i++ {
		if err := sendTipBlock(ctx, env); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
	}
	return expectZeroFee(ctx, env)
}

var FeesScenario = register(Scenario{
	Name: "fees",
	Steps: []Step{
		{Name: "zero on genesis", Run: expectZeroFee},
		{Name: "zero on empty blocks", Run: expectZeroFee},
		{Name: "zero with recent zero tips", Timeout: 5 * time.Minute, Run: zeroWithRecentZeroTips},
	},
})
