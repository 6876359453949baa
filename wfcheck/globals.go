package internal

import (
	"log"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

var (
	DefaultAppName = "wfcheck"

	// Archive and upstream service defaults; override via config file or
	// WFCC_* environment variables.
	DefaultArchivePath  = "/data"
	DefaultFDSNEndpoint = "eida.gein.noa.gr"
	DefaultMongoURI     = "mongodb://localhost:27017"
	DefaultMongoDB      = "wfrepo"
	DefaultMongoColl    = "daily_streams"

	// WFCatalog collector defaults.
	DefaultCollectorDir  = "/home/Programs/wfcatalog/collector"
	DefaultBatchSize     = 500
	DefaultResultsDBName = "inconsistencies_results.db"

	// Ignore file honored at the archive root during the walk.
	DefaultIgnoreFileName = ".wfcheck-ignore"
)

// DefaultResultsDBPath returns the results database path in the current
// working directory, matching where maintenance commands look for it.
func DefaultResultsDBPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		log.Printf("Unable to get working directory, using /tmp: %v", err)
		return filepath.Join("/tmp", DefaultResultsDBName)
	}
	return filepath.Join(cwd, DefaultResultsDBName)
}

// GetLogger returns a properly configured zerolog logger instance
func GetLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
