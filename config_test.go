package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigINI = `[default]
access_key = AKIA
secret_key = secret
host_base = localhost:9000
use_https = False

[resultsview]
backend = S3
bucket = results
definitions = https://example.com/definitions.json
report_suffixes = summary, report
listen = :9090
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".s3cfg")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, testConfigINI)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "AKIA", cfg.S3.AccessKey)
	assert.Equal(t, "localhost:9000", cfg.S3.HostBase)
	assert.False(t, cfg.S3.UseHTTPS)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
	assert.Equal(t, "http://localhost:9000", cfg.S3.GetEndpointURL())

	assert.Equal(t, BackendS3, cfg.Backend)
	assert.Equal(t, "results", cfg.Bucket)
	assert.Equal(t, []string{"summary", "report"}, cfg.ReportSuffixes)
	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, ".", cfg.DownloadDir)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "[default]\naccess_key = a\nsecret_key = b\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"summary"}, cfg.ReportSuffixes)
	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.True(t, cfg.S3.UseHTTPS)
	assert.Equal(t, "https://s3.amazonaws.com", cfg.S3.GetEndpointURL())
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadConfigNotFoundWrapsErrNotExist(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	if _, err := os.Stat("/etc/s3cfg"); err == nil {
		t.Skip("system config present")
	}

	_, err = LoadConfig("")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"s3 ok", func(c *Config) { c.S3.AccessKey, c.S3.SecretKey, c.Bucket = "a", "b", "bucket" }, false},
		{"s3 missing keys", func(c *Config) { c.Bucket = "bucket" }, true},
		{"s3 missing bucket", func(c *Config) { c.S3.AccessKey, c.S3.SecretKey = "a", "b" }, true},
		{"worker ok", func(c *Config) { c.Backend, c.WorkerURL = BackendWorker, "http://w" }, false},
		{"worker missing url", func(c *Config) { c.Backend = BackendWorker }, true},
		{"azure ok", func(c *Config) { c.Backend, c.AzureConnectionString, c.AzureContainer = BackendAzure, "cs", "c" }, false},
		{"azure missing container", func(c *Config) { c.Backend, c.AzureConnectionString = BackendAzure, "cs" }, true},
		{"unknown backend", func(c *Config) { c.Backend = "gcs" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = BackendWorker
	cfg.WorkerURL = "https://worker.example.com"
	cfg.Rules = "/etc/rules.yaml"
	cfg.ReportSuffixes = []string{"summary", "scores"}

	path := filepath.Join(t.TempDir(), ".s3cfg")
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)

	cfg.Path = path
	assert.Equal(t, cfg, loaded)
}

func TestInteractiveSetupWorker(t *testing.T) {
	in := strings.NewReader("worker\nhttps://worker.example.com\n./defs.json\n")
	var out bytes.Buffer

	cfg, err := InteractiveSetup(in, &out)
	require.NoError(t, err)
	assert.Equal(t, BackendWorker, cfg.Backend)
	assert.Equal(t, "https://worker.example.com", cfg.WorkerURL)
	assert.Equal(t, "./defs.json", cfg.Definitions)
	assert.Contains(t, out.String(), "Worker URL: ")
}

func TestInteractiveSetupS3(t *testing.T) {
	in := strings.NewReader("\nAKIA\nsecret\nlocalhost:9000\n\nresults\n\n")

	cfg, err := InteractiveSetup(in, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, BackendS3, cfg.Backend)
	assert.Equal(t, "localhost:9000", cfg.S3.HostBase)
	assert.Equal(t, "localhost:9000/%(bucket)s", cfg.S3.HostBucket)
	assert.False(t, cfg.S3.UseHTTPS)
	assert.Equal(t, "results", cfg.Bucket)
}

func TestInteractiveSetupAborts(t *testing.T) {
	_, err := InteractiveSetup(strings.NewReader("s3\n\n"), &bytes.Buffer{})
	assert.Error(t, err)

	_, err = InteractiveSetup(strings.NewReader(""), &bytes.Buffer{})
	assert.Error(t, err)
}
