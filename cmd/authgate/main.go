// Package main provides the authgate command. It wires together all
// components using dependency injection and manages the server lifecycle
// with graceful shutdown.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "authgate",
		Short:         "Credential front door for a GoTrue-compatible identity provider",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file seeded into the environment before parsing; missing files are ignored")

	root.AddCommand(
		newServeCommand(&envFile),
		newKeysCommand(&envFile),
	)
	return root
}
