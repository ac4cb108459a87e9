// Package config loads process configuration for the kindle-transfer
// binary from defaults, an optional YAML file, an optional .env file and
// environment variables, in increasing order of precedence.
//
// User-editable delivery settings (addresses and SMTP credentials) are not
// part of this configuration; they live in the settings store.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/weiye465/Kindle-Transfer-App/pkg/logger"
	"github.com/weiye465/Kindle-Transfer-App/pkg/storage"
)

// DefaultFile is read when no config file is named explicitly.
const DefaultFile = "config.yaml"

// Mail transports.
const (
	TransportSMTP   = "smtp"
	TransportResend = "resend"
)

// ErrInvalid is returned when the resulting configuration is unusable.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the complete process configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Convert   ConvertConfig   `yaml:"convert"`
	Mail      MailConfig      `yaml:"mail"`
	Retention RetentionConfig `yaml:"retention"`
	S3        storage.Config  `yaml:"s3"`
	Log       logger.Config   `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	MaxUploadMB       int64         `yaml:"max_upload_mb"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// MaxUploadBytes returns the request body cap in bytes.
func (s ServerConfig) MaxUploadBytes() int64 {
	return s.MaxUploadMB << 20
}

// StorageConfig holds local file locations.
type StorageConfig struct {
	UploadDir    string `yaml:"upload_dir"`
	OutputDir    string `yaml:"output_dir"`
	SettingsFile string `yaml:"settings_file"`
}

// ConvertConfig controls PDF to EPUB conversion.
type ConvertConfig struct {
	PDFToEPUB   bool   `yaml:"pdf_to_epub"`
	CalibrePath string `yaml:"calibre_path"`
}

// MailConfig selects and configures the delivery transport.
type MailConfig struct {
	Transport    string `yaml:"transport"`
	SMTPAuth     string `yaml:"smtp_auth"`
	ResendAPIKey string `yaml:"resend_api_key"`
	SenderName   string `yaml:"sender_name"`
}

// RetentionConfig controls the periodic cleanup of the upload directory.
type RetentionConfig struct {
	Enabled  bool          `yaml:"enabled"`
	MaxAge   time.Duration `yaml:"max_age"`
	Schedule string        `yaml:"schedule"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":5000",
			MaxUploadMB:       100,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       300 * time.Second,
			WriteTimeout:      300 * time.Second,
			ShutdownTimeout:   30 * time.Second,
		},
		Storage: StorageConfig{
			UploadDir:    "uploads",
			SettingsFile: "config.json",
		},
		Mail: MailConfig{
			Transport:  TransportSMTP,
			SenderName: "Kindle Transfer",
		},
		Retention: RetentionConfig{
			MaxAge:   30 * 24 * time.Hour,
			Schedule: "0 3 * * *",
		},
		Log: logger.Config{
			Level:  "info",
			Format: "json",
		},
	}
}

// Loader reads configuration.
type Loader struct {
	// File is the YAML file to read. Empty means DefaultFile, which may be absent.
	File string

	// EnvFiles are loaded into the process environment when present.
	// Variables already set are not overwritten.
	EnvFiles []string

	// LookupEnv reads environment variables. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load builds the configuration from defaults, file and environment.
func Load(file string) (*Config, error) {
	return Loader{File: file, EnvFiles: []string{".env"}}.Load()
}

// Load builds the configuration.
func (l Loader) Load() (*Config, error) {
	for _, f := range l.EnvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	cfg := Default()

	file, required := l.File, true
	if file == "" {
		file, required = DefaultFile, false
	}
	if err := readFile(file, required, &cfg); err != nil {
		return nil, err
	}

	lookup := l.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readFile(path string, required bool, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	if v, ok := lookup("PORT"); ok && v != "" {
		cfg.Server.Addr = ":" + v
	}
	str("KT_ADDR", &cfg.Server.Addr)
	if v, ok := lookup("KT_MAX_UPLOAD_MB"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("KT_MAX_UPLOAD_MB: %w", err))
		} else {
			cfg.Server.MaxUploadMB = n
		}
	}

	str("KT_UPLOAD_DIR", &cfg.Storage.UploadDir)
	str("KT_OUTPUT_DIR", &cfg.Storage.OutputDir)
	str("KT_SETTINGS_FILE", &cfg.Storage.SettingsFile)

	boolean("KT_CONVERT_PDF", &cfg.Convert.PDFToEPUB)
	str("KT_CALIBRE_PATH", &cfg.Convert.CalibrePath)

	str("KT_MAIL_TRANSPORT", &cfg.Mail.Transport)
	str("KT_SMTP_AUTH", &cfg.Mail.SMTPAuth)
	str("RESEND_API_KEY", &cfg.Mail.ResendAPIKey)

	boolean("KT_RETENTION_ENABLED", &cfg.Retention.Enabled)
	if v, ok := lookup("KT_RETENTION_MAX_AGE"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("KT_RETENTION_MAX_AGE: %w", err))
		} else {
			cfg.Retention.MaxAge = d
		}
	}
	str("KT_RETENTION_SCHEDULE", &cfg.Retention.Schedule)

	str("S3_BUCKET", &cfg.S3.Bucket)
	str("S3_ENDPOINT", &cfg.S3.Endpoint)
	str("S3_REGION", &cfg.S3.Region)
	str("AWS_ACCESS_KEY_ID", &cfg.S3.AccessKey)
	str("AWS_SECRET_ACCESS_KEY", &cfg.S3.SecretKey)
	boolean("S3_PATH_STYLE", &cfg.S3.PathStyle)

	str("KT_LOG_LEVEL", &cfg.Log.Level)
	str("KT_LOG_FORMAT", &cfg.Log.Format)
	str("SENTRY_DSN", &cfg.Log.Sentry.DSN)
	str("SENTRY_ENVIRONMENT", &cfg.Log.Sentry.Environment)

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalid}, errs...)...)
	}
	return nil
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is empty"))
	}
	if c.Server.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB))
	}
	if c.Storage.UploadDir == "" {
		errs = append(errs, errors.New("storage.upload_dir is empty"))
	}
	if c.Storage.SettingsFile == "" {
		errs = append(errs, errors.New("storage.settings_file is empty"))
	}

	switch strings.ToLower(c.Mail.Transport) {
	case TransportSMTP, "":
	case TransportResend:
		if c.Mail.ResendAPIKey == "" {
			errs = append(errs, errors.New("mail.resend_api_key is required for the resend transport"))
		}
	default:
		errs = append(errs, fmt.Errorf("mail.transport %q is not one of smtp, resend", c.Mail.Transport))
	}

	if c.Retention.Enabled && c.Retention.MaxAge <= 0 {
		errs = append(errs, errors.New("retention.max_age must be positive when retention is enabled"))
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalid}, errs...)...)
	}
	return nil
}
