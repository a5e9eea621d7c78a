package main

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haukened/desec-go/pkg/desec"
	"github.com/haukened/desec-go/pkg/dnsname"
)

func newCmdRRSet(a *app) *cobra.Command {
	cmd := newGroupCmd(a, "rrset", "Manage RRsets")
	cmd.AddCommand(newCmdRRSetList(a))
	cmd.AddCommand(newCmdRRSetGet(a))
	cmd.AddCommand(newCmdRRSetCreate(a))
	cmd.AddCommand(newCmdRRSetUpdate(a))
	cmd.AddCommand(newCmdRRSetDelete(a))
	cmd.AddCommand(newCmdRRSetApply(a))
	return cmd
}

// nameAndType reads the NAME TYPE arguments. NAME may be left out, in which
// case DESEC_SUBNAME is used.
func (a *app) nameAndType(args []string) (domain, subname, rrType string, err error) {
	rrType = strings.ToUpper(args[len(args)-1])
	domain, subname, err = a.target(a.defaultSubname(args[:len(args)-1]))
	return domain, subname, rrType, err
}

func newCmdRRSetList(a *app) *cobra.Command {
	var (
		subname string
		rrType  string
	)
	cmd := &cobra.Command{
		Use:   "list [DOMAIN]",
		Short: "List RRsets, optionally filtered by subname and type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain, err := a.domainArg(args)
			if err != nil {
				return err
			}
			var filter desec.RRSetFilter
			if cmd.Flags().Changed("subname") {
				sub := relativeSubname(subname, domain)
				filter.Subname = &sub
			}
			filter.Type = strings.ToUpper(rrType)

			rrsets, err := a.client.GetRRSetsFiltered(cmd.Context(), domain, filter)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), rrsets)
		},
	}
	cmd.Flags().StringVarP(&subname, "subname", "s", "", "Only RRsets with this subname (@ for the apex)")
	cmd.Flags().StringVarP(&rrType, "type", "t", "", "Only RRsets of this type")
	return cmd
}

func newCmdRRSetGet(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get [NAME] TYPE",
		Short: "Show one RRset",
		Long:  "Show one RRset. NAME is a subname when a domain is configured, otherwise a fully qualified name.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain, subname, rrType, err := a.nameAndType(args)
			if err != nil {
				return err
			}
			rrset, err := a.client.GetRRSet(cmd.Context(), domain, subname, rrType)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), rrset)
		},
	}
}

func newCmdRRSetCreate(a *app) *cobra.Command {
	var (
		ttl     uint32
		records []string
	)
	cmd := &cobra.Command{
		Use:   "create [NAME] TYPE --record VALUE...",
		Short: "Create an RRset",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain, subname, rrType, err := a.nameAndType(args)
			if err != nil {
				return err
			}
			created, err := a.client.CreateRRSet(cmd.Context(), domain, desec.NewRRSet(subname, rrType, ttl, records...))
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), created)
		},
	}
	cmd.Flags().Uint32Var(&ttl, "ttl", 3600, "TTL in seconds")
	cmd.Flags().StringArrayVarP(&records, "record", "r", nil, "Record content in presentation format (repeatable)")
	_ = cmd.MarkFlagRequired("record")
	return cmd
}

func newCmdRRSetUpdate(a *app) *cobra.Command {
	var (
		ttl     uint32
		records []string
	)
	cmd := &cobra.Command{
		Use:   "update [NAME] TYPE [--ttl N] [--record VALUE...]",
		Short: "Change the TTL and/or records of an RRset",
		Long:  "Change the TTL and/or records of an RRset. Only the flags given are sent; everything else is left as is.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch desec.RRSet
			if cmd.Flags().Changed("ttl") {
				patch.TTL = ttl
			}
			if cmd.Flags().Changed("record") {
				patch.Records = records
			}
			if patch.TTL == 0 && patch.Records == nil {
				return errors.New("nothing to update: pass --ttl and/or --record")
			}

			domain, subname, rrType, err := a.nameAndType(args)
			if err != nil {
				return err
			}
			updated, err := a.client.UpdateRRSet(cmd.Context(), domain, subname, rrType, patch)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), updated)
		},
	}
	cmd.Flags().Uint32Var(&ttl, "ttl", 0, "New TTL in seconds")
	cmd.Flags().StringArrayVarP(&records, "record", "r", nil, "New record content (repeatable); replaces all records")
	return cmd
}

func newCmdRRSetDelete(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [NAME] TYPE",
		Short: "Delete an RRset",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain, subname, rrType, err := a.nameAndType(args)
			if err != nil {
				return err
			}
			if err := a.client.DeleteRRSet(cmd.Context(), domain, subname, rrType); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "deleted %s/%s in %s\n", dnsname.PathSubname(subname), rrType, domain)
			return nil
		},
	}
}

func newCmdRRSetApply(a *app) *cobra.Command {
	var (
		file   string
		create bool
	)
	cmd := &cobra.Command{
		Use:   "apply [DOMAIN] -f FILE",
		Short: "Create or update many RRsets in one request",
		Long: "Apply a YAML or JSON list of RRsets in a single bulk request. By default the list is a " +
			"partial update (an empty records list deletes the RRset); with --create all RRsets are created.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain, err := a.domainArg(args)
			if err != nil {
				return err
			}
			rrsets, err := readRRSets(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			if create {
				err = a.client.CreateRRSetBulk(cmd.Context(), domain, rrsets)
			} else {
				err = a.client.UpdateRRSetBulk(cmd.Context(), domain, rrsets)
			}
			var bulkErr *desec.BulkError
			if errors.As(err, &bulkErr) {
				reportBulkFailures(cmd, rrsets, bulkErr)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "applied %d RRsets to %s\n", len(rrsets), domain)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML or JSON file with a list of RRsets (- for stdin)")
	cmd.Flags().BoolVar(&create, "create", false, "Create the RRsets instead of updating them")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// reportBulkFailures prints one line per rejected item, in input order. A
// rejection of the request as a whole is printed without an item label.
func reportBulkFailures(cmd *cobra.Command, rrsets []desec.RRSet, bulkErr *desec.BulkError) {
	w := cmd.ErrOrStderr()
	if bulkErr.Document != nil {
		fmt.Fprintf(w, "rejected request: %s\n", bulkErr.Document)
	}
	failures := bulkErr.Failures()
	for _, i := range slices.Sorted(maps.Keys(failures)) {
		label := fmt.Sprintf("item %d", i)
		if i < len(rrsets) {
			label = dnsname.PathSubname(rrsets[i].SubnameValue()) + "/" + rrsets[i].Type
		}
		fmt.Fprintf(w, "rejected %s: %s\n", label, failures[i])
	}
}
