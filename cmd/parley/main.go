// Parley is a multilingual chat gateway: REST chat, voice notes, speech
// synthesis and live audio/screen-sharing sessions over WebSocket.
//
// Usage:
//
//	parley serve [--config /path/to/parley.yaml]
//	parley version
//
// @title        parley API
// @version      1.0
// @description  Multilingual chat gateway: REST chat, voice notes, speech synthesis, document questions and live WebSocket sessions.
// @BasePath     /
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "parley",
		Short:         "Parley: multilingual chat and voice gateway",
		Long:          "Parley answers chat messages, voice notes and live screen-sharing sessions through pluggable language, speech and storage backends.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "parley %s (commit: %s)\n", Version, Commit)
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
