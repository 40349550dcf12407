package harness

import (
	"context"
	"fmt"
	"math/big"
)

func primeTest(ctx context.Context, env *Env) error {
	for n, expected := range map[int64]bool{19: true, 20: false} {
		prime, err := env.Primes.IsPrime(ctx, big.NewInt(n))
		if err != nil {
			return err
		}
		if prime != expected {
			return fmt.Errorf("precompile answered prime=%v for %d", prime, n)
		}
	}
	return nil
}

var PrecompileScenario = register(Scenario{
	Name: "precompile",
	Steps: []Step{
		{Name: "prime test", Run: primeTest},
	},
})
