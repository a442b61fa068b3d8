package main

import (
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.vocdoni.io/hub/log"
)

var (
	hubURL   string
	keyHex   string
	deadline time.Duration
	nonce    int64
	send     bool
	debug    bool
)

var (
	keysPrint   = color.New(color.FgCyan, color.Bold)
	valuesPrint = color.New(color.FgMagenta)
	errorPrint  = color.New(color.FgRed)
)

// Stdout is where commands print their results.
var Stdout io.Writer = os.Stdout

// RootCmd is the hubcli entry point.
var RootCmd = &cobra.Command{
	Use:           "hubcli",
	Short:         "hubcli manages keys and signs operations for a hub node",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			log.Init("debug", "stderr")
		}
	},
}

func init() {
	RootCmd.CompletionOptions.DisableDefaultCmd = true
	RootCmd.PersistentFlags().StringVarP(&hubURL, "url", "u", "http://127.0.0.1:9090/v1", "hub API URL")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "prints additional information")
	RootCmd.AddCommand(keysCmd)
	RootCmd.AddCommand(errorsCmd)
	RootCmd.AddCommand(signCmd)
}

func main() {
	if err := RootCmd.Execute(); err != nil {
		errorPrint.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
