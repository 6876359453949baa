package cmd

import (
	"os"

	internal "github.com/seisnode/wfcheck/wfcheck"
	"github.com/seisnode/wfcheck/wfcheck/config"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configFile string
	cfg        *config.Config
	logger     zerolog.Logger = internal.GetLogger()
)

var rootCmd = &cobra.Command{
	Use:   "wfcheck",
	Short: "Reconcile a waveform archive with FDSN metadata and the WFCatalog",
	Long: `wfcheck finds inconsistencies between the files of an on-disk waveform
archive, the channel epochs published by an FDSN station service and the
entries of the WFCatalog database.

The check command classifies every archive file and catalog entry into
disjoint inconsistency categories and stores them in a SQLite results
database. The maintenance commands read that database back to insert
missing entries, update stale ones or delete superfluous ones.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.LoadConfig(configFile)
		return err
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// A fatal error aborts the run with no results; this is distinct
		// from a completed run that found zero inconsistencies.
		logger.Error().Err(err).Msg("run aborted")
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to the config file")
}
