package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     appName,
		Short:   "Manage deSEC domains and RRsets",
		Long:    "desecctl manages domains and RRsets on deSEC.\n\nThe API token is read from DESEC_API_TOKEN (or a .env file).",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help by default when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&a.output, "output", "o", "json", "Output format (json|yaml)")
	cmd.PersistentFlags().StringVarP(&a.domain, "domain", "d", "", "Domain to operate on (env DESEC_DOMAIN)")
	cmd.PersistentFlags().StringVar(&a.metricsFile, "metrics-file", "", "Write Prometheus client metrics to this file on exit")

	cmd.AddCommand(newCmdVersion())
	cmd.AddCommand(newCmdAccount(a))
	cmd.AddCommand(newCmdDomain(a))
	cmd.AddCommand(newCmdRRSet(a))
	return cmd
}

// newGroupCmd returns a parent command whose children all talk to the API.
func newGroupCmd(a *app, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:                use,
		Short:              short,
		Args:               cobra.NoArgs,
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error { return fmt.Errorf("invalid command") },
	}
}
