package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pricescout/backend/config"
	"github.com/pricescout/backend/internal/app"
	"github.com/pricescout/backend/internal/domain"
)

var compareCmd = &cobra.Command{
	Use:   "compare <query>",
	Short: "Search retailers for a product",
	Long: `Search every retailer registered for a country and print the matching
offers sorted by price. When no retailer returns usable data, sample offers
are shown and marked as such.`,
	Example: `  pricescout compare --country US "iPhone 16 Pro, 128GB"
  pricescout compare -c IN --json "boAt Airdopes 311 Pro"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		country, _ := cmd.Flags().GetString("country")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		pipeline := app.New(ctx, cfg)
		defer pipeline.Close()

		return runCompare(ctx, cmd, pipeline.Service, &domain.CompareRequest{
			Country: country,
			Query:   strings.Join(args, " "),
		}, jsonOutput)
	},
}

func init() {
	compareCmd.Flags().StringP("country", "c", "US", "Country code or name")
	compareCmd.Flags().Bool("json", false, "Output the response as JSON")
}

// comparer is the part of the pipeline the command needs
type comparer interface {
	Compare(ctx context.Context, request *domain.CompareRequest) (*domain.CompareResponse, error)
}

func runCompare(ctx context.Context, cmd *cobra.Command, service comparer, request *domain.CompareRequest, jsonOutput bool) error {
	resp, err := service.Compare(ctx, request)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, resp)
	}

	fmt.Fprintf(out, "%d offers for %q in %s (%.2fs)\n", resp.TotalResults, resp.Query, resp.Country, resp.SearchTime)
	if resp.Note != "" {
		fmt.Fprintf(out, "Note: %s\n", resp.Note)
	}
	if len(resp.Results) == 0 {
		return nil
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRICE\tSOURCE\tPRODUCT\tLINK")
	for _, o := range resp.Results {
		fmt.Fprintf(tw, "%s %s\t%s\t%s\t%s\n", o.Price, o.Currency, o.Source, o.ProductName, o.Link)
	}
	return tw.Flush()
}
