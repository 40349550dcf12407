package commands

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/cordialsys/icetest/chain/evm/client"
	"github.com/cordialsys/icetest/chain/evm/probe"
	substrate "github.com/cordialsys/icetest/chain/substrate/client"
	"github.com/cordialsys/icetest/cmd/icetest/setup"
	"github.com/cordialsys/icetest/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

func CmdAddress() *cobra.Command {
	return &cobra.Command{
		Use:   "address [name...]",
		Short: "Show the addresses of the development wallets on the selected network.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := setup.UnwrapConfig(cmd.Context())
			network, err := cfg.NetworkConfig()
			if err != nil {
				return err
			}
			wallets, err := wallet.DeriveAll(cfg.Seeds, network.ChainPrefix)
			if err != nil {
				return err
			}
			names := wallets.Names()
			if len(args) > 0 {
				names = nil
				for _, arg := range args {
					names = append(names, wallet.Name(arg))
				}
			}
			for _, name := range names {
				w, err := wallets.Get(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", w.Name, w.Address)
			}
			return nil
		},
	}
}

func connect(cmd *cobra.Command) (*substrate.Client, error) {
	cfg := setup.UnwrapConfig(cmd.Context())
	network, err := cfg.NetworkConfig()
	if err != nil {
		return nil, err
	}
	return substrate.Connect(cmd.Context(), network)
}

func dialEvm(cmd *cobra.Command) (*client.Client, error) {
	cfg := setup.UnwrapConfig(cmd.Context())
	network, err := cfg.NetworkConfig()
	if err != nil {
		return nil, err
	}
	return client.DialNetwork(cmd.Context(), network)
}

func CmdBalance() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance <address>",
		Short: "Check the balance of an account. Reported as big integer, not accounting for any decimals.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reserved, _ := cmd.Flags().GetBool("reserved")
			asset, _ := cmd.Flags().GetInt64("asset")

			cli, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cli.Close()

			if asset >= 0 {
				balance, err := cli.AssetBalance(cmd.Context(), uint32(asset), args[0])
				if err != nil {
					return fmt.Errorf("could not fetch balance of asset %d for address %s: %w", asset, args[0], err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), balance.String())
				return nil
			}
			balance, err := cli.GetBalance(cmd.Context(), args[0], reserved)
			if err != nil {
				return fmt.Errorf("could not fetch balance for address %s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), balance.String())
			return nil
		},
	}
	cmd.Flags().Bool("reserved", false, "Report the reserved balance instead of the free balance.")
	cmd.Flags().Int64("asset", -1, "Report the balance of this asset id instead of the native balance.")
	return cmd
}

func CmdBlock() *cobra.Command {
	return &cobra.Command{
		Use:   "block [number]",
		Short: "Show the hash of a block, the latest by default.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var number uint64
			var err error
			if len(args) > 0 {
				number, err = strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid block number %s: %v", args[0], err)
				}
			}
			cli, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cli.Close()

			if len(args) == 0 {
				block, err := cli.GetLastBlock(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", block.Number, codec.HexEncodeToString(block.Hash[:]))
				return nil
			}
			hash, err := cli.GetBlockHashByNumber(cmd.Context(), number)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", number, codec.HexEncodeToString(hash[:]))
			return nil
		},
	}
}

// Asks the prime precompile about 19, encoded as a 16 byte big endian integer.
const DefaultProbeData = "0x00000000000000000000000000000013"

func CmdProbe() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Call a contract or precompile with eth_call and print the returned bytes as text.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, _ := cmd.Flags().GetString("to")
			data, _ := cmd.Flags().GetString("data")
			prime, _ := cmd.Flags().GetString("prime")
			if !common.IsHexAddress(to) {
				return fmt.Errorf("invalid address: %s", to)
			}

			cli, err := dialEvm(cmd)
			if err != nil {
				return err
			}
			defer cli.Close()
			p := probe.New(cli.RPC())

			if prime != "" {
				n, ok := new(big.Int).SetString(prime, 0)
				if !ok {
					return fmt.Errorf("invalid number: %s", prime)
				}
				isPrime, err := p.IsPrime(cmd.Context(), n)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), isPrime)
				return nil
			}

			input, err := hexutil.Decode(data)
			if err != nil {
				return fmt.Errorf("invalid call data %s: %v", data, err)
			}
			raw, err := p.CallRaw(cmd.Context(), common.HexToAddress(to), input)
			if err != nil {
				return err
			}
			text, err := probe.DecodeHexText(raw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%q\n", raw, text)
			return nil
		},
	}
	cmd.Flags().String("to", probe.PrimePrecompile.Hex(), "Address to call.")
	cmd.Flags().String("data", DefaultProbeData, "Hex encoded call data.")
	cmd.Flags().String("prime", "", "Ask the prime precompile whether this number is prime.")
	return cmd
}

func CmdFee() *cobra.Command {
	return &cobra.Command{
		Use:   "fee",
		Short: "Show the suggested priority fee (eth_maxPriorityFeePerGas).",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := dialEvm(cmd)
			if err != nil {
				return err
			}
			defer cli.Close()
			raw, fee, err := cli.MaxPriorityFeePerGas(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", raw, fee.String())
			return nil
		},
	}
}
