package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.vocdoni.io/hub/crypto/ethereum"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Generate and inspect signing keys",
}

var keysNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a new key pair",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := ethereum.NewSignKeys()
		if err != nil {
			return err
		}
		fmt.Fprintf(Stdout, "%s %s\n", keysPrint.Sprint("address:"), valuesPrint.Sprint(k.Address().Hex()))
		fmt.Fprintf(Stdout, "%s %s\n", keysPrint.Sprint("private key:"), valuesPrint.Sprint(k.PrivateKeyHex()))
		return nil
	},
}

var keysAddressCmd = &cobra.Command{
	Use:   "address <private key>",
	Short: "Print the address of a hex private key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		k := &ethereum.SignKeys{}
		if err := k.AddHexKey(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(Stdout, k.Address().Hex())
		return nil
	},
}

func init() {
	keysCmd.AddCommand(keysNewCmd)
	keysCmd.AddCommand(keysAddressCmd)
}
