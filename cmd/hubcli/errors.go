package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.vocdoni.io/hub/hub/revert"
)

var errorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "Inspect the catalogue of rejection reasons",
}

var errorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every rejection reason with its code",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, e := range revert.All() {
			fmt.Fprintf(Stdout, "%4d  %s\n", e.Code(), valuesPrint.Sprint(e.Name()))
		}
		return nil
	},
}

var errorsLookupCmd = &cobra.Command{
	Use:   "lookup <name or code>",
	Short: "Look a rejection reason up by name or code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, ok := revert.ByName(args[0])
		if !ok {
			if code, err := strconv.ParseUint(args[0], 10, 16); err == nil {
				e, ok = revert.ByCode(uint16(code))
			}
		}
		if !ok {
			return fmt.Errorf("unknown rejection reason %q", args[0])
		}
		fmt.Fprintf(Stdout, "%d  %s\n", e.Code(), valuesPrint.Sprint(e.Name()))
		return nil
	},
}

func init() {
	errorsCmd.AddCommand(errorsListCmd)
	errorsCmd.AddCommand(errorsLookupCmd)
}
