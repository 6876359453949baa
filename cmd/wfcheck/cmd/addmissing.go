package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/seisnode/wfcheck/wfcheck/collector"
	"github.com/seisnode/wfcheck/wfcheck/consistency"
	"github.com/seisnode/wfcheck/wfcheck/results"

	"github.com/spf13/cobra"
)

var addMissingCmd = &cobra.Command{
	Use:   "add-missing",
	Short: "Insert catalog entries for files missing in WFCatalog",
	Long: `Add-missing reads the missing_in_wfcatalog results of a previous check
and runs the WFCatalog collector over them in batches.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := results.Open(cfg.Results.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		logger.Info().Msg("Retrieving names of files to be added in WFCatalog")
		names, err := store.FileNames(consistency.MissingInCatalog)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			cmd.Println("No files missing in WFCatalog")
			return nil
		}

		return collector.New(cfg.Collector).AddMissing(ctx, names)
	},
}

func init() {
	rootCmd.AddCommand(addMissingCmd)
}
