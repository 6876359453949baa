package cmd

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/seisnode/wfcheck/wfcheck/catalog"
	"github.com/seisnode/wfcheck/wfcheck/consistency"
	"github.com/seisnode/wfcheck/wfcheck/metadata"
	"github.com/seisnode/wfcheck/wfcheck/results"

	"github.com/spf13/cobra"
)

var (
	startYear int
	endYear   int
	exclude   string
	checksum  bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check inconsistencies between archive, metadata and WFCatalog",
	Long: `Check classifies every archive file of the selected years into
inconsistency categories and writes them to the results database.

Examples:
  wfcheck check
  wfcheck check -s 2014 -e 2016 -x XX,YY -c`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// An interrupt stops dispatch and produces a partial result.
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		opts := consistency.Options{
			ArchiveRoot:      cfg.Archive.Path,
			StartYear:        startYear,
			EndYear:          endYear,
			ExcludedNetworks: splitNetworks(exclude),
			VerifyChecksums:  checksum,
		}

		runner := consistency.NewRunner(opts,
			metadata.NewClient(cfg.FDSN.Endpoint),
			catalog.NewMongoSource(cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection))

		report, err := runner.Run(ctx)
		if err != nil {
			return err
		}

		store, err := results.Create(cfg.Results.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.WriteReport(report); err != nil {
			return err
		}

		printSummary(cmd, report)
		return nil
	},
}

func printSummary(cmd *cobra.Command, report *consistency.Report) {
	if report.Partial {
		cmd.Println("Run interrupted: results are partial")
	}
	for _, cat := range consistency.Categories {
		cmd.Printf("%-22s %d\n", cat, len(report.Categories[cat]))
	}
	if n := len(report.Mismatches); n > 0 {
		cmd.Printf("%-22s %d (file name network/station differs from path)\n", "name_mismatch", n)
	}
	if report.Total() == 0 && !report.Partial {
		cmd.Println("Zero inconsistencies found")
	}
	cmd.Printf("Results written to %s\n", cfg.Results.Path)
}

func splitNetworks(list string) []string {
	var networks []string
	for _, n := range strings.Split(list, ",") {
		if n = strings.TrimSpace(n); n != "" {
			networks = append(networks, n)
		}
	}
	return networks
}

func init() {
	lastYear := time.Now().Year() - 1
	checkCmd.Flags().IntVarP(&startYear, "start", "s", lastYear, "year to start the check (default: last year)")
	checkCmd.Flags().IntVarP(&endYear, "end", "e", lastYear, "year to end the check (default: last year)")
	checkCmd.Flags().StringVarP(&exclude, "exclude", "x", "", "comma-separated networks to exclude (e.g. XX,YY,ZZ)")
	checkCmd.Flags().BoolVarP(&checksum, "checksum", "c", false, "verify checksums against WFCatalog (slow: reads every file)")
	rootCmd.AddCommand(checkCmd)
}
