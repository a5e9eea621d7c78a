package main

import (
	"github.com/spf13/cobra"
)

func newCmdAccount(a *app) *cobra.Command {
	cmd := newGroupCmd(a, "account", "Show the account the token belongs to")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		info, err := a.client.GetAccountInfo(cmd.Context())
		if err != nil {
			return err
		}
		return a.render(cmd.OutOrStdout(), info)
	}
	return cmd
}
