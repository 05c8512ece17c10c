package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"stacia/internal/consent/catalog"
	"stacia/internal/consent/models"
	id "stacia/pkg/domain"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "stacia-catalog",
		Short:         "Inspect consent category catalogs per business",
		SilenceUsage: true,
	}
	root.AddCommand(newResolveCommand(), newBusinessesCommand())
	return root
}

func newResolveCommand() *cobra.Command {
	var (
		business string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:     "resolve",
		Short:   "Print the eight definitions for a business",
		Example: "stacia-catalog resolve --business banking --json",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			category, err := id.ParseBusinessCategory(business)
			if err != nil {
				return err
			}
			defs := catalog.ResolveOrdered(category)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), models.PoliciesResponse{
					Business:    category,
					Definitions: defs,
				})
			}
			return writeDefinitions(cmd.OutOrStdout(), category, defs)
		},
	}
	cmd.Flags().StringVarP(&business, "business", "b", "", "business category (empty prints nothing)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newBusinessesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "businesses",
		Short: "List the selectable business categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VALUE\tLABEL")
			for _, b := range catalog.Businesses() {
				fmt.Fprintf(tw, "%s\t%s\n", b.Value, b.Label)
			}
			return tw.Flush()
		},
	}
}

func writeDefinitions(w io.Writer, business id.BusinessCategory, defs []models.Definition) error {
	if len(defs) == 0 {
		_, err := fmt.Fprintln(w, "no business selected")
		return err
	}
	fmt.Fprintf(w, "%s\n\n", catalog.Label(business))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tTITLE\tREQUIRED\tDESCRIPTION")
	for _, d := range defs {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", d.Key, d.Title, d.Required, d.Description)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
