package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set via ldflags at build time
var (
	Version   = "dev"
	BuildTime = ""
	GitCommit = ""
)

var rootCmd = &cobra.Command{
	Use:     "walletgate",
	Short:   "OAuth2 PKCE session manager for the wallet demo client",
	Long:    `Runs the callback server and drives the authorization-code-with-PKCE login flow against the configured authority.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate("walletgate version {{.Version}}\n")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
