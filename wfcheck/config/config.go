package config

import (
	"fmt"
	"strings"

	internal "github.com/seisnode/wfcheck/wfcheck"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Archive   ArchiveConfig   `mapstructure:"archive"`
	FDSN      FDSNConfig      `mapstructure:"fdsn"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Results   ResultsConfig   `mapstructure:"results"`
	Collector CollectorConfig `mapstructure:"collector"`
}

// ArchiveConfig locates the on-disk waveform archive.
type ArchiveConfig struct {
	Path string `mapstructure:"path"`
}

// FDSNConfig stores the station metadata service endpoint.
type FDSNConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

// MongoConfig stores WFCatalog database connection details.
type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// ResultsConfig locates the SQLite results database.
type ResultsConfig struct {
	Path string `mapstructure:"path"`
}

// CollectorConfig stores WFCatalog collector invocation details.
// Python and Script default to the usual layout under Dir when empty.
type CollectorConfig struct {
	Dir       string `mapstructure:"dir"`
	Python    string `mapstructure:"python"`
	Script    string `mapstructure:"script"`
	Config    string `mapstructure:"config"`
	BatchSize int    `mapstructure:"batchSize"`
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viper.Reset()

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/" + internal.DefaultAppName)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetDefault("archive.path", internal.DefaultArchivePath)
	viper.SetDefault("fdsn.endpoint", internal.DefaultFDSNEndpoint)
	viper.SetDefault("mongo.uri", internal.DefaultMongoURI)
	viper.SetDefault("mongo.database", internal.DefaultMongoDB)
	viper.SetDefault("mongo.collection", internal.DefaultMongoColl)
	viper.SetDefault("results.path", internal.DefaultResultsDBPath())
	viper.SetDefault("collector.dir", internal.DefaultCollectorDir)
	viper.SetDefault("collector.batchSize", internal.DefaultBatchSize)

	viper.SetEnvPrefix("wfcc")
	viper.AutomaticEnv()                                   // Read in environment variables that match
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // archive.path becomes WFCC_ARCHIVE_PATH

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; defaults and environment variables apply.
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	// The collector virtualenv python, script and config.json live under
	// the collector directory unless configured explicitly.
	if AppConfig.Collector.Python == "" {
		AppConfig.Collector.Python = AppConfig.Collector.Dir + "/.env/bin/python"
	}
	if AppConfig.Collector.Script == "" {
		AppConfig.Collector.Script = AppConfig.Collector.Dir + "/WFCatalogCollector.py"
	}
	if AppConfig.Collector.Config == "" {
		AppConfig.Collector.Config = AppConfig.Collector.Dir + "/config.json"
	}

	return &AppConfig, nil
}
