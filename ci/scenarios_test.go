//go:build ci

package ci

import "testing"

func TestAssets(t *testing.T) {
	runScenario(t, "assets")
}

func TestBalances(t *testing.T) {
	runScenario(t, "balances")
}

func TestFees(t *testing.T) {
	runScenario(t, "fees")
}

func TestPrecompile(t *testing.T) {
	runScenario(t, "precompile")
}
