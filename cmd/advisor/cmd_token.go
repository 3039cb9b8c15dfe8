package main

import (
	"fmt"

	"github.com/hackguide/advisor/internal/api"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Mint an analytics admin token and print its bcrypt hash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, hash, err := api.GenerateAdminToken()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "token: %s\n", token)
			fmt.Fprintf(out, "ADVISOR_ADMIN_TOKEN_HASH=%s\n", hash)
			fmt.Fprintln(out, "The token is shown once; store only the hash.")
			return nil
		},
	}
}
