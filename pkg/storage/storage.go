package storage

import "time"

// Config holds S3-compatible storage configuration.
type Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string `yaml:"bucket"`

	// AccessKey is the AWS access key ID (required).
	AccessKey string `yaml:"access_key"`

	// SecretKey is the AWS secret access key (required).
	SecretKey string `yaml:"secret_key"`

	// Endpoint is the custom S3 endpoint URL (optional, for MinIO or other S3-compatible services).
	Endpoint string `yaml:"endpoint"`

	// Region is the AWS region (default: us-east-1).
	Region string `yaml:"region"`

	// Prefix is the key prefix for archived files (default: deliveries).
	Prefix string `yaml:"prefix"`

	// PathStyle enables path-style URLs (required for MinIO).
	PathStyle bool `yaml:"path_style"`
}

// Enabled reports whether a bucket is configured.
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

// FileInfo contains metadata about an uploaded object.
type FileInfo struct {
	Key         string
	ContentType string
	Size        int64
}

// Default configuration values.
const (
	DefaultRegion = "us-east-1"
	DefaultPrefix = "deliveries"
)

// applyDefaults fills in default values for empty config fields.
func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.Prefix == "" {
		c.Prefix = DefaultPrefix
	}
}

// validate checks that required configuration fields are set.
func (c *Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	return nil
}

// ArchiveKey returns the object key for a file archived at t:
// <prefix>/<yyyy>/<mm>/<name>.
func ArchiveKey(prefix, name string, t time.Time) string {
	return prefix + "/" + t.Format("2006") + "/" + t.Format("01") + "/" + name
}
