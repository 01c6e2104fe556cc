package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vireo",
		Short: "Server-driven virtual tree reconciliation for Go",
		Long: `Vireo keeps a live UI tree on a thin client in sync with a
virtual tree computed on the server.

The server renders a virtual tree per session, diffs it against the
previous one, and streams the minimal mutation ops to the client over
WebSocket. Client events flow back and drive the next render.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
