package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pricescout/backend/internal/usecase"
)

var parseCmd = &cobra.Command{
	Use:   "parse <query>",
	Short: "Show how a query is interpreted without the language service",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		query := usecase.NewRuleParser(nil, false).Parse(strings.Join(args, " "))

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, query)
		}
		fmt.Fprintf(out, "brand:    %s\n", query.Brand)
		fmt.Fprintf(out, "model:    %s\n", query.Model)
		fmt.Fprintf(out, "specs:    %s\n", query.Specs)
		fmt.Fprintf(out, "category: %s\n", query.Category)
		fmt.Fprintf(out, "keywords: %s\n", strings.Join(query.Keywords, ", "))
		return nil
	},
}

func init() {
	parseCmd.Flags().Bool("json", false, "Output as JSON")
}
