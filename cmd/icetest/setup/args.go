package setup

import (
	"context"
	"fmt"
	"os"

	icetest "github.com/cordialsys/icetest"
	"github.com/cordialsys/icetest/config"
	"github.com/cordialsys/icetest/harness"
	"github.com/spf13/cobra"
)

type RpcContextKey string

const ContextConfig RpcContextKey = "config"

type RpcArgs struct {
	Network        string
	Rpc            string
	EvmRpc         string
	Binary         string
	NoNode         bool
	VerbosityCount int
}

func AddRpcArgs(cmd *cobra.Command) {
	cmd.PersistentFlags().String("network", os.Getenv("ICETEST_NETWORK"), fmt.Sprintf("Network to use (may set ICETEST_NETWORK env var), one of %v.", icetest.NetworkNames()))
	cmd.PersistentFlags().String("rpc", "", "Substrate RPC url to use. Optional.")
	cmd.PersistentFlags().String("evm-rpc", "", "Ethereum RPC url to use, defaults to the substrate RPC url.")
	cmd.PersistentFlags().String("binary", "", "Path of the node binary to start for the local network.")
	cmd.PersistentFlags().Bool("no-node", false, "Do not start a node, connect to a running one.")
	cmd.PersistentFlags().CountP("verbose", "v", "Set verbosity.")
}

func RpcArgsFromCmd(cmd *cobra.Command) (*RpcArgs, error) {
	network, _ := cmd.Flags().GetString("network")
	rpc, _ := cmd.Flags().GetString("rpc")
	evmRpc, _ := cmd.Flags().GetString("evm-rpc")
	binary, _ := cmd.Flags().GetString("binary")
	noNode, err := cmd.Flags().GetBool("no-node")
	if err != nil {
		return nil, err
	}
	count, _ := cmd.Flags().GetCount("verbose")
	if network != "" {
		if _, err := icetest.GetNetwork(network); err != nil {
			return nil, err
		}
	}
	return &RpcArgs{
		Network:        network,
		Rpc:            rpc,
		EvmRpc:         evmRpc,
		Binary:         binary,
		NoNode:         noNode,
		VerbosityCount: count,
	}, nil
}

func ConfigureLogger(args *RpcArgs) {
	config.ConfigureLogger(config.LevelFromVerbosity(args.VerbosityCount))
}

// LoadConfig reads config.yaml, if any, and applies the command line on top.
func LoadConfig(args *RpcArgs) (*harness.Config, error) {
	cfg, err := harness.LoadConfig()
	if err != nil {
		return nil, err
	}
	OverrideConfig(cfg, args)
	return cfg, nil
}

func OverrideConfig(cfg *harness.Config, args *RpcArgs) {
	if args.Network != "" {
		cfg.Network = icetest.Network(args.Network)
	}
	if args.Rpc != "" {
		cfg.RpcURL = args.Rpc
	}
	if args.EvmRpc != "" {
		cfg.EvmURL = args.EvmRpc
	}
	if args.Binary != "" {
		cfg.Binary = args.Binary
	}
	if args.NoNode {
		cfg.NoNode = true
	}
}

func WrapConfig(ctx context.Context, cfg *harness.Config) context.Context {
	return context.WithValue(ctx, ContextConfig, cfg)
}

func UnwrapConfig(ctx context.Context) *harness.Config {
	return ctx.Value(ContextConfig).(*harness.Config)
}
