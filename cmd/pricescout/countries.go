package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pricescout/backend/internal/domain"
	"github.com/pricescout/backend/internal/infrastructure/retailer"
)

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List supported countries and their retailers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		// listing countries never fetches, so no page client is needed
		directory := retailer.NewDirectory(retailer.DefaultTables(), nil, retailer.DirectoryConfig{})
		return printCountries(cmd, directory.Countries(), jsonOutput)
	},
}

func init() {
	countriesCmd.Flags().Bool("json", false, "Output as JSON")
}

func printCountries(cmd *cobra.Command, countries []domain.CountryInfo, jsonOutput bool) error {
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, countries)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tCURRENCY\tRETAILERS")
	for _, c := range countries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Code, c.Name, c.Currency, strings.Join(c.SupportedRetailers, ", "))
	}
	return tw.Flush()
}
