package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// Backend names accepted in the [resultsview] section
const (
	BackendS3     = "s3"
	BackendWorker = "worker"
	BackendAzure  = "azure"
)

const (
	defaultListen       = "127.0.0.1:8080"
	defaultReportSuffix = "summary"
	resultsviewSection  = "resultsview"
	defaultS3HostBase   = "s3.amazonaws.com"
	defaultS3HostBucket = "%(bucket)s.s3.amazonaws.com"
	defaultS3Region     = "us-east-1"
)

// S3Config holds the s3cmd-compatible [default] section
type S3Config struct {
	AccessKey   string
	SecretKey   string
	HostBase    string
	HostBucket  string
	UseHTTPS    bool
	SignatureV2 bool
	Region      string
}

// Config is the full application configuration
type Config struct {
	S3                    S3Config
	Backend               string
	Bucket                string
	WorkerURL             string
	AzureConnectionString string
	AzureContainer        string
	Definitions           string
	Rules                 string
	ReportSuffixes        []string
	Listen                string
	DownloadDir           string

	// Path is the file the configuration was read from, empty for defaults
	Path string
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		S3: S3Config{
			HostBase:   defaultS3HostBase,
			HostBucket: defaultS3HostBucket,
			UseHTTPS:   true,
			Region:     defaultS3Region,
		},
		Backend:        BackendS3,
		ReportSuffixes: []string{defaultReportSuffix},
		Listen:         defaultListen,
		DownloadDir:    ".",
	}
}

// configSearchPaths returns the candidate config files in lookup order
func configSearchPaths() []string {
	return []string{
		".s3cfg",
		filepath.Join(os.Getenv("HOME"), ".s3cfg"),
		"/etc/s3cfg",
	}
}

// LoadConfig loads configuration from path, or from the first .s3cfg found.
// The returned error wraps os.ErrNotExist when no file could be found.
func LoadConfig(path string) (*Config, error) {
	configPath := path
	if configPath == "" {
		for _, candidate := range configSearchPaths() {
			if _, err := os.Stat(candidate); err == nil {
				configPath = candidate
				break
			}
		}
	}

	if configPath == "" {
		return nil, fmt.Errorf(".s3cfg file not found in any of the standard locations: %w", os.ErrNotExist)
	}

	file, err := ini.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", configPath, err)
	}

	cfg := parseConfig(file)
	cfg.Path = configPath
	return cfg, nil
}

func parseConfig(file *ini.File) *Config {
	cfg := DefaultConfig()

	section := file.Section("default")
	cfg.S3 = S3Config{
		AccessKey:   section.Key("access_key").String(),
		SecretKey:   section.Key("secret_key").String(),
		HostBase:    section.Key("host_base").MustString(defaultS3HostBase),
		HostBucket:  section.Key("host_bucket").MustString(defaultS3HostBucket),
		UseHTTPS:    section.Key("use_https").MustBool(true),
		SignatureV2: section.Key("signature_v2").MustBool(false),
		Region:      section.Key("bucket_location").MustString(defaultS3Region),
	}

	rv := file.Section(resultsviewSection)
	cfg.Backend = strings.ToLower(rv.Key("backend").MustString(BackendS3))
	cfg.Bucket = rv.Key("bucket").String()
	cfg.WorkerURL = rv.Key("worker_url").String()
	cfg.AzureConnectionString = rv.Key("azure_connection_string").String()
	cfg.AzureContainer = rv.Key("azure_container").String()
	cfg.Definitions = rv.Key("definitions").String()
	cfg.Rules = rv.Key("rules").String()
	cfg.Listen = rv.Key("listen").MustString(defaultListen)
	cfg.DownloadDir = rv.Key("download_dir").MustString(".")

	if suffixes := rv.Key("report_suffixes").Strings(","); len(suffixes) > 0 {
		cfg.ReportSuffixes = suffixes
	}

	return cfg
}

// Validate checks that the selected backend has what it needs
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendS3:
		if c.S3.AccessKey == "" || c.S3.SecretKey == "" {
			return fmt.Errorf("access_key and secret_key must be specified in the [default] section")
		}
		if c.Bucket == "" {
			return fmt.Errorf("bucket must be specified (flag --bucket or [%s] bucket)", resultsviewSection)
		}
	case BackendWorker:
		if c.WorkerURL == "" {
			return fmt.Errorf("worker_url must be specified (flag --worker-url or [%s] worker_url)", resultsviewSection)
		}
	case BackendAzure:
		if c.AzureConnectionString == "" || c.AzureContainer == "" {
			return fmt.Errorf("azure_connection_string and azure_container must be specified in [%s]", resultsviewSection)
		}
	default:
		return fmt.Errorf("unknown backend %q (expected %s, %s or %s)", c.Backend, BackendS3, BackendWorker, BackendAzure)
	}
	return nil
}

// GetEndpointURL returns the endpoint URL for the S3 service
func (c *S3Config) GetEndpointURL() string {
	protocol := "https"
	if !c.UseHTTPS {
		protocol = "http"
	}
	return fmt.Sprintf("%s://%s", protocol, c.HostBase)
}

// InteractiveSetup asks for store settings on in and writes prompts to out
func InteractiveSetup(in io.Reader, out io.Writer) (*Config, error) {
	scanner := bufio.NewScanner(in)
	cfg := DefaultConfig()

	ask := func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			return "", fmt.Errorf("failed to read input")
		}
		return strings.TrimSpace(scanner.Text()), nil
	}

	fmt.Fprintln(out, "resultsview setup")
	fmt.Fprintln(out, "=================")
	fmt.Fprintln(out)

	backend, err := ask("Backend (s3/worker/azure, default: s3): ")
	if err != nil {
		return nil, err
	}
	if backend != "" {
		cfg.Backend = strings.ToLower(backend)
	}

	switch cfg.Backend {
	case BackendS3:
		if cfg.S3.AccessKey, err = ask("Access Key ID: "); err != nil {
			return nil, err
		}
		if cfg.S3.AccessKey == "" {
			return nil, fmt.Errorf("access key cannot be empty")
		}
		if cfg.S3.SecretKey, err = ask("Secret Access Key: "); err != nil {
			return nil, err
		}
		if cfg.S3.SecretKey == "" {
			return nil, fmt.Errorf("secret key cannot be empty")
		}

		hostBase, err := ask("S3 Endpoint (default: s3.amazonaws.com): ")
		if err != nil {
			return nil, err
		}
		if hostBase != "" {
			cfg.S3.HostBase = hostBase
			cfg.S3.HostBucket = hostBase + "/%(bucket)s"
		}

		region, err := ask("Region (default: us-east-1): ")
		if err != nil {
			return nil, err
		}
		if region != "" {
			cfg.S3.Region = region
		}

		// Local endpoints rarely terminate TLS
		cfg.S3.UseHTTPS = !strings.Contains(cfg.S3.HostBase, "localhost") && !strings.Contains(cfg.S3.HostBase, "127.0.0.1")

		if cfg.Bucket, err = ask("Bucket: "); err != nil {
			return nil, err
		}
	case BackendWorker:
		if cfg.WorkerURL, err = ask("Worker URL: "); err != nil {
			return nil, err
		}
	case BackendAzure:
		if cfg.AzureConnectionString, err = ask("Connection string: "); err != nil {
			return nil, err
		}
		if cfg.AzureContainer, err = ask("Container: "); err != nil {
			return nil, err
		}
	}

	if cfg.Definitions, err = ask("Definitions document (path or URL, optional): "); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes the configuration as an ini file
func SaveConfig(cfg *Config, path string) error {
	file := ini.Empty()

	section := file.Section("default")
	section.Key("access_key").SetValue(cfg.S3.AccessKey)
	section.Key("secret_key").SetValue(cfg.S3.SecretKey)
	section.Key("host_base").SetValue(cfg.S3.HostBase)
	section.Key("host_bucket").SetValue(cfg.S3.HostBucket)
	section.Key("use_https").SetValue(boolString(cfg.S3.UseHTTPS))
	section.Key("signature_v2").SetValue(boolString(cfg.S3.SignatureV2))
	section.Key("bucket_location").SetValue(cfg.S3.Region)

	rv := file.Section(resultsviewSection)
	rv.Key("backend").SetValue(cfg.Backend)
	setIfNotEmpty(rv, "bucket", cfg.Bucket)
	setIfNotEmpty(rv, "worker_url", cfg.WorkerURL)
	setIfNotEmpty(rv, "azure_connection_string", cfg.AzureConnectionString)
	setIfNotEmpty(rv, "azure_container", cfg.AzureContainer)
	setIfNotEmpty(rv, "definitions", cfg.Definitions)
	setIfNotEmpty(rv, "rules", cfg.Rules)
	rv.Key("report_suffixes").SetValue(strings.Join(cfg.ReportSuffixes, ","))
	rv.Key("listen").SetValue(cfg.Listen)
	rv.Key("download_dir").SetValue(cfg.DownloadDir)

	return file.SaveTo(path)
}

func setIfNotEmpty(section *ini.Section, key, value string) {
	if value != "" {
		section.Key(key).SetValue(value)
	}
}

func boolString(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
