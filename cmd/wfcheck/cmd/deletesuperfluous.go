package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/seisnode/wfcheck/wfcheck/catalog"
	"github.com/seisnode/wfcheck/wfcheck/consistency"
	"github.com/seisnode/wfcheck/wfcheck/results"

	"github.com/spf13/cobra"
)

var deleteSuperfluousCmd = &cobra.Command{
	Use:   "delete-superfluous",
	Short: "Delete WFCatalog entries with no matching archive file",
	Long: `Delete-superfluous reads the remove_from_wfcatalog results of a previous
check and deletes those entries from the WFCatalog database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := results.Open(cfg.Results.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		logger.Info().Msg("Retrieving names of files to be removed from WFCatalog")
		names, err := store.FileNames(consistency.RemoveFromCatalog)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			cmd.Println("No superfluous WFCatalog entries")
			return nil
		}

		logger.Info().Int("entries", len(names)).Msg("Removing files from WFCatalog")
		source := catalog.NewMongoSource(cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
		deleted, err := source.DeleteByFileID(ctx, names)
		if err != nil {
			return err
		}
		cmd.Printf("Deleted %d WFCatalog entries\n", deleted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteSuperfluousCmd)
}
