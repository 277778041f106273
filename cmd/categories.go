package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/leadsource"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the business category presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return formatCategories(cmd.OutOrStdout(), leadsource.Categories())
	},
}

func formatCategories(w io.Writer, cats []leadsource.Category) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tKEYWORD")
	for _, c := range cats {
		fmt.Fprintf(tw, "%s\t%s\n", c.Label, c.Keyword)
	}
	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}
