package config

import (
	"os"
	"path/filepath"
	"testing"

	internal "github.com/seisnode/wfcheck/wfcheck"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ConfigTestSuite tests the config package functionality
type ConfigTestSuite struct {
	suite.Suite
	tempDir string
	origDir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	var err error
	suite.origDir, err = os.Getwd()
	require.NoError(suite.T(), err)

	tempDir, err := os.MkdirTemp("", "wfcheck-config-test-*")
	require.NoError(suite.T(), err)
	suite.tempDir = tempDir

	// Run in an empty directory so no stray config file is picked up.
	err = os.Chdir(tempDir)
	require.NoError(suite.T(), err)
}

func (suite *ConfigTestSuite) TearDownTest() {
	if suite.origDir != "" {
		os.Chdir(suite.origDir)
	}
	if suite.tempDir != "" {
		os.RemoveAll(suite.tempDir)
	}
}

func (suite *ConfigTestSuite) TestLoadConfigWithDefaults() {
	cfg, err := LoadConfig("")

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	assert.Equal(suite.T(), internal.DefaultArchivePath, cfg.Archive.Path)
	assert.Equal(suite.T(), internal.DefaultFDSNEndpoint, cfg.FDSN.Endpoint)
	assert.Equal(suite.T(), internal.DefaultMongoURI, cfg.Mongo.URI)
	assert.Equal(suite.T(), internal.DefaultMongoDB, cfg.Mongo.Database)
	assert.Equal(suite.T(), internal.DefaultMongoColl, cfg.Mongo.Collection)
	assert.Equal(suite.T(), internal.DefaultBatchSize, cfg.Collector.BatchSize)
}

func (suite *ConfigTestSuite) TestCollectorPathsDerivedFromDir() {
	cfg, err := LoadConfig("")
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), cfg.Collector.Dir+"/.env/bin/python", cfg.Collector.Python)
	assert.Equal(suite.T(), cfg.Collector.Dir+"/WFCatalogCollector.py", cfg.Collector.Script)
	assert.Equal(suite.T(), cfg.Collector.Dir+"/config.json", cfg.Collector.Config)
}

func (suite *ConfigTestSuite) TestLoadConfigFromFile() {
	configPath := filepath.Join(suite.tempDir, "config.yaml")
	content := `archive:
  path: /darrays/archive
fdsn:
  endpoint: eida.example.org
mongo:
  uri: mongodb://db.example.org:27017
collector:
  dir: /opt/wfcatalog/collector
  batchSize: 100
`
	require.NoError(suite.T(), os.WriteFile(configPath, []byte(content), 0o644))

	cfg, err := LoadConfig(configPath)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "/darrays/archive", cfg.Archive.Path)
	assert.Equal(suite.T(), "eida.example.org", cfg.FDSN.Endpoint)
	assert.Equal(suite.T(), "mongodb://db.example.org:27017", cfg.Mongo.URI)
	assert.Equal(suite.T(), 100, cfg.Collector.BatchSize)
	assert.Equal(suite.T(), "/opt/wfcatalog/collector/.env/bin/python", cfg.Collector.Python)
}

func (suite *ConfigTestSuite) TestEnvironmentOverride() {
	suite.T().Setenv("WFCC_ARCHIVE_PATH", "/env/archive")
	suite.T().Setenv("WFCC_FDSN_ENDPOINT", "eida.env.example.org")

	cfg, err := LoadConfig("")
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "/env/archive", cfg.Archive.Path)
	assert.Equal(suite.T(), "eida.env.example.org", cfg.FDSN.Endpoint)
}
