package main

import (
	"github.com/cordialsys/icetest/cmd/icetest/commands"
	"github.com/cordialsys/icetest/cmd/icetest/setup"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func CmdIcetest() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "icetest",
		Short:        "Run end to end scenarios against an ICE node",
		Args:         cobra.ExactArgs(0),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			args, err := setup.RpcArgsFromCmd(cmd)
			if err != nil {
				return err
			}
			setup.ConfigureLogger(args)

			cfg, err := setup.LoadConfig(args)
			if err != nil {
				return err
			}
			network, err := cfg.NetworkConfig()
			if err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"rpc":     network.RpcURL,
				"evm_rpc": network.EvmEndpoint(),
				"network": network.Name,
			}).Info("network")

			cmd.SetContext(setup.WrapConfig(cmd.Context(), cfg))
			return nil
		},
	}
	setup.AddRpcArgs(cmd)

	cmd.AddCommand(commands.CmdRun())
	cmd.AddCommand(commands.CmdAddress())
	cmd.AddCommand(commands.CmdBalance())
	cmd.AddCommand(commands.CmdBlock())
	cmd.AddCommand(commands.CmdProbe())
	cmd.AddCommand(commands.CmdFee())

	return cmd
}

func main() {
	rootCmd := CmdIcetest()
	_ = rootCmd.Execute()
}
