package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a valid session is stored",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context(), buildOptions{})
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cmd.Context()
		tokens, err := app.svc.Tokens(ctx)
		if err != nil {
			return err
		}
		if tokens == nil {
			fmt.Println("not authenticated: no stored session")
			return nil
		}

		if app.svc.TokenValid(tokens) {
			fmt.Printf("authenticated (%s), token expires %s\n",
				tokens.Provenance, tokens.ExpiresAt.Format(time.RFC3339))
		} else {
			fmt.Printf("session expired at %s\n", tokens.ExpiresAt.Format(time.RFC3339))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
