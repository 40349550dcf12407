//go:build ci

package ci

import (
	"context"
	"flag"
	"testing"
	"time"

	"github.com/cordialsys/icetest/cmd/icetest/setup"
	"github.com/cordialsys/icetest/harness"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var (
	network     string
	rpc         string
	evmRpc      string
	binary      string
	noNode      bool
	stepTimeout time.Duration
)

func init() {
	flag.StringVar(&network, "network", "", "Network to run against, defaults to local")
	flag.StringVar(&rpc, "rpc", "", "Substrate RPC endpoint")
	flag.StringVar(&evmRpc, "evm-rpc", "", "Ethereum RPC endpoint")
	flag.StringVar(&binary, "binary", "", "Node binary to start for the local network")
	flag.BoolVar(&noNode, "no-node", false, "Connect to an already running node")
	flag.DurationVar(&stepTimeout, "step-timeout", 0, "Override the timeout of each step")

	logrus.SetLevel(logrus.DebugLevel)
}

// startHarness brings up a fresh harness for one test. Local nodes run with
// temporary state, so every test sees genesis.
func startHarness(t *testing.T) *harness.Harness {
	flag.Parse()
	cfg, err := setup.LoadConfig(&setup.RpcArgs{
		Network: network,
		Rpc:     rpc,
		EvmRpc:  evmRpc,
		Binary:  binary,
		NoNode:  noNode,
	})
	require.NoError(t, err, "Failed loading config")
	if stepTimeout > 0 {
		cfg.StepTimeout = stepTimeout
	}

	h, err := harness.New(context.Background(), cfg)
	require.NoError(t, err, "Failed starting harness")
	t.Cleanup(h.Cleanup)
	return h
}

func runScenario(t *testing.T, name string) {
	h := startHarness(t)
	results, err := harness.Run(context.Background(), h.Env(), h.Config.StepTimeout, name)
	require.NoError(t, err)
	require.Len(t, results, 1)
	for _, step := range results[0].Steps {
		t.Logf("%s %s/%s (%s)", step.Status, results[0].Scenario, step.Name, step.Duration)
	}
	require.NoError(t, results[0].Err())
}
