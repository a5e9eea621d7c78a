package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/haukened/desec-go/pkg/dnsname"
	"github.com/haukened/desec-go/pkg/zonefile"
)

func newCmdDomain(a *app) *cobra.Command {
	cmd := newGroupCmd(a, "domain", "Manage domains")
	cmd.AddCommand(newCmdDomainList(a))
	cmd.AddCommand(newCmdDomainGet(a))
	cmd.AddCommand(newCmdDomainCreate(a))
	cmd.AddCommand(newCmdDomainDelete(a))
	cmd.AddCommand(newCmdDomainZonefile(a))
	return cmd
}

// domainArg returns the ASCII domain from args[0], falling back to
// --domain and DESEC_DOMAIN.
func (a *app) domainArg(args []string) (string, error) {
	if len(args) > 0 {
		return dnsname.ToASCII(args[0])
	}
	return a.zone()
}

func newCmdDomainList(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all domains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			domains, err := a.client.GetDomains(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), domains)
		},
	}
}

func newCmdDomainGet(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get [DOMAIN]",
		Short: "Show a domain and its DNSSEC keys",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := a.domainArg(args)
			if err != nil {
				return err
			}
			d, err := a.client.GetDomain(cmd.Context(), name)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), d)
		},
	}
}

func newCmdDomainCreate(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create DOMAIN",
		Short: "Register a new domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := dnsname.ToASCII(args[0])
			if err != nil {
				return err
			}
			d, err := a.client.CreateDomain(cmd.Context(), name)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), d)
		},
	}
}

func newCmdDomainDelete(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete DOMAIN",
		Short: "Delete a domain and all of its RRsets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := dnsname.ToASCII(args[0])
			if err != nil {
				return err
			}
			if err := a.client.DeleteDomain(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "deleted %s\n", name)
			return nil
		},
	}
}

// zoneRRSet is one RRset recovered from an exported zonefile.
type zoneRRSet struct {
	Subname string   `json:"subname"`
	Type    string   `json:"type"`
	TTL     uint32   `json:"ttl"`
	Records []string `json:"records"`
}

func newCmdDomainZonefile(a *app) *cobra.Command {
	var parse bool
	cmd := &cobra.Command{
		Use:   "zonefile [DOMAIN]",
		Short: "Export a domain's zone in master file format",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := a.domainArg(args)
			if err != nil {
				return err
			}
			text, err := a.client.GetZonefile(cmd.Context(), name)
			if err != nil {
				return err
			}
			if !parse {
				_, err = io.WriteString(cmd.OutOrStdout(), text)
				return err
			}

			rrs, err := zonefile.Parse(name, text)
			if err != nil {
				return err
			}
			groups := zonefile.Group(name, rrs)
			out := make([]zoneRRSet, 0, len(groups))
			for _, key := range zonefile.Keys(groups) {
				set := groups[key]
				out = append(out, zoneRRSet{
					Subname: key.Subname,
					Type:    key.Type,
					TTL:     set[0].Header().Ttl,
					Records: zonefile.Records(set),
				})
			}
			return a.render(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&parse, "parse", false, "Parse the zone and print it as RRsets")
	return cmd
}
