package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/seisnode/wfcheck/wfcheck/collector"
	"github.com/seisnode/wfcheck/wfcheck/results"

	"github.com/spf13/cobra"
)

var updateEntriesCmd = &cobra.Command{
	Use:   "update-entries",
	Short: "Update stale WFCatalog entries via the collector",
	Long: `Update-entries reads the files flagged by a previous check as missing or
with a catalog date older than their modification time, whitelists them in
the collector config and runs a forced collector update over the archive.
The previous whitelist is restored afterwards, also on interrupt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := results.Open(cfg.Results.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		logger.Info().Msg("Retrieving names of files to be updated in WFCatalog")
		names, err := store.MissingAndOlder()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			cmd.Println("No files to update in WFCatalog")
			return nil
		}

		return collector.New(cfg.Collector).UpdateEntries(ctx, names, cfg.Archive.Path)
	},
}

func init() {
	rootCmd.AddCommand(updateEntriesCmd)
}
