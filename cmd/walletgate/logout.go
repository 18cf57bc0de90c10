package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context(), buildOptions{})
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.svc.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("session cleared")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
