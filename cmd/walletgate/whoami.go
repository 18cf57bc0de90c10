package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the cached identity claims",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context(), buildOptions{})
		if err != nil {
			return err
		}
		defer app.Close()

		info, err := app.svc.UserInfo(cmd.Context())
		if err != nil {
			return err
		}
		if info == nil {
			fmt.Println("no identity available; log in first")
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
