package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/arb-console/internal/config"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type GenerateCmdTestSuite struct {
	suite.Suite
	tempDir string
}

func TestGenerateCmdSuite(t *testing.T) {
	suite.Run(t, new(GenerateCmdTestSuite))
}

func (suite *GenerateCmdTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
	wd, err := os.Getwd()
	suite.Require().NoError(err)
	suite.Require().NoError(os.Chdir(suite.tempDir))
	suite.T().Cleanup(func() { _ = os.Chdir(wd) })
}

func (suite *GenerateCmdTestSuite) TestMainWritesSchemaAndSample() {
	main()

	schema, err := os.ReadFile(filepath.Join(suite.tempDir, "config", schemaName))
	suite.Require().NoError(err)
	suite.Contains(string(schema), `"api_url"`)
	suite.Contains(string(schema), `"buffer_capacity"`)

	sample, err := os.ReadFile(filepath.Join(suite.tempDir, "config", sampleConfigName))
	suite.Require().NoError(err)
	suite.Contains(string(sample), "# yaml-language-server: $schema="+schemaName)
}

func (suite *GenerateCmdTestSuite) TestSampleConfigLoadsBack() {
	samplePath := filepath.Join(suite.tempDir, "sample.yaml")
	suite.Require().NoError(generateSampleConfig(config.Default(), samplePath, "schema.json"))

	content, err := os.ReadFile(samplePath)
	suite.Require().NoError(err)

	var decoded config.Config
	suite.Require().NoError(yaml.Unmarshal(content, &decoded))
	suite.Equal(config.DefaultAPIURL, decoded.APIURL)
	suite.Equal(config.DefaultBufferCapacity, decoded.BufferCapacity)
	suite.Equal(3*time.Second, decoded.Poll.Engine)
}

func (suite *GenerateCmdTestSuite) TestSampleConfigNotOverwritten() {
	samplePath := filepath.Join(suite.tempDir, "existing.yaml")
	suite.Require().NoError(os.WriteFile(samplePath, []byte("existing content"), 0644))

	suite.Require().NoError(generateSampleConfig(config.Default(), samplePath, "schema.json"))

	content, err := os.ReadFile(samplePath)
	suite.Require().NoError(err)
	suite.Equal("existing content", string(content))
}

func (suite *GenerateCmdTestSuite) TestGenerateSchemaFileInvalidPath() {
	blocker := filepath.Join(suite.tempDir, "blocker")
	suite.Require().NoError(os.WriteFile(blocker, nil, 0644))

	err := generateSchemaFile(config.Default(), filepath.Join(blocker, "schema.json"))
	suite.Error(err)
	suite.Contains(err.Error(), "failed to")
}

func (suite *GenerateCmdTestSuite) TestValidatePaths() {
	suite.NoError(validatePaths("/some/path/schema.json", "/some/path/config.yaml"))

	err := validatePaths("", "/some/path/config.yaml")
	suite.ErrorContains(err, "schema path cannot be empty")

	err = validatePaths("/some/path/schema.json", "")
	suite.ErrorContains(err, "sample config path cannot be empty")
}

func (suite *GenerateCmdTestSuite) TestValidateSchemaName() {
	suite.NoError(validateSchemaName("my-schema-file.json"))
	suite.ErrorContains(validateSchemaName(""), "schema name cannot be empty")
	suite.ErrorContains(validateSchemaName("schema.txt"), "must have .json extension")
}

func (suite *GenerateCmdTestSuite) TestGetSchemaReference() {
	suite.Equal("# yaml-language-server: $schema=test-schema.json\n", getSchemaReference("test-schema.json"))
}
