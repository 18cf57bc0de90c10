package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Print the authorization URL to open in a browser",
	Long:  `Generates a fresh PKCE challenge and prints the authorize URL. The callback server must be running to complete the flow.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context(), buildOptions{})
		if err != nil {
			return err
		}
		defer app.Close()

		loginURL, err := app.svc.BeginLogin(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(loginURL)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
