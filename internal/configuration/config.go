package configuration

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const FilePath = ".depwatch.yaml"

type Config struct {
	RegistrySettings RegistrySettings `yaml:"registry_settings"`
	ScanSettings     ScanSettings     `yaml:"scan_settings"`
}

type RegistrySettings struct {
	NpmUrl                 string `yaml:"npm_url"`
	PypiUrl                string `yaml:"pypi_url"`
	OsvUrl                 string `yaml:"osv_url"`
	VersionTimeoutSeconds  int    `yaml:"version_timeout_seconds"`
	MetadataTimeoutSeconds int    `yaml:"metadata_timeout_seconds"`
	CacheTtlMinutes        int    `yaml:"cache_ttl_minutes"`
}

type ScanSettings struct {
	IgnorePackages       []string `yaml:"ignore_packages"`
	MaxConcurrentLookups int      `yaml:"max_concurrent_lookups"`
	FailOnSeverity       string   `yaml:"fail_on_severity"`
	FailOnOutdated       bool     `yaml:"fail_on_outdated"`
}

func defaultConfig() *Config {
	return &Config{
		RegistrySettings: RegistrySettings{
			NpmUrl:                 "https://registry.npmjs.org",
			PypiUrl:                "https://pypi.org/pypi",
			OsvUrl:                 "https://api.osv.dev/v1/query",
			VersionTimeoutSeconds:  5,
			MetadataTimeoutSeconds: 10,
			CacheTtlMinutes:        10,
		},
		ScanSettings: ScanSettings{
			MaxConcurrentLookups: 4,
		},
	}
}

// Load reads FilePath from the working directory. A missing file is not an
// error, you just get the defaults.
func Load() (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	return config, nil
}

func (r RegistrySettings) VersionTimeout() time.Duration {
	return time.Duration(r.VersionTimeoutSeconds) * time.Second
}

func (r RegistrySettings) MetadataTimeout() time.Duration {
	return time.Duration(r.MetadataTimeoutSeconds) * time.Second
}

func (r RegistrySettings) CacheTtl() time.Duration {
	return time.Duration(r.CacheTtlMinutes) * time.Minute
}
