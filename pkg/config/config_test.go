package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiye465/Kindle-Transfer-App/pkg/config"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Loader{
		File:      writeYAML(t, ""),
		LookupEnv: env(nil),
	}.Load()
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, int64(100<<20), cfg.Server.MaxUploadBytes())
	assert.Equal(t, "uploads", cfg.Storage.UploadDir)
	assert.Equal(t, "config.json", cfg.Storage.SettingsFile)
	assert.False(t, cfg.Convert.PDFToEPUB)
	assert.False(t, cfg.Retention.Enabled)
	assert.Equal(t, "0 3 * * *", cfg.Retention.Schedule)
	assert.Equal(t, config.TransportSMTP, cfg.Mail.Transport)
	assert.False(t, cfg.S3.Enabled())
}

func TestLoad_FileAndEnv(t *testing.T) {
	t.Parallel()

	file := writeYAML(t, `
server:
  addr: ":8080"
storage:
  upload_dir: /srv/uploads
convert:
  pdf_to_epub: true
retention:
  enabled: true
  max_age: 168h
log:
  level: debug
s3:
  bucket: from-file
`)

	cfg, err := config.Loader{
		File: file,
		LookupEnv: env(map[string]string{
			"KT_ADDR":        ":9090",
			"KT_CONVERT_PDF": "false",
			"S3_BUCKET":      "",
			"SENTRY_DSN":     "https://key@sentry.example/1",
		}),
	}.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/srv/uploads", cfg.Storage.UploadDir)
	assert.False(t, cfg.Convert.PDFToEPUB)
	assert.True(t, cfg.Retention.Enabled)
	assert.Equal(t, 168*time.Hour, cfg.Retention.MaxAge)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "from-file", cfg.S3.Bucket)
	assert.Equal(t, "https://key@sentry.example/1", cfg.Log.Sentry.DSN)
}

func TestLoad_PortEnv(t *testing.T) {
	t.Parallel()

	cfg, err := config.Loader{File: writeYAML(t, ""), LookupEnv: env(map[string]string{"PORT": "8000"})}.Load()
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.Server.Addr)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	_, err := config.Loader{File: filepath.Join(t.TempDir(), "missing.yaml"), LookupEnv: env(nil)}.Load()
	require.Error(t, err)

	_, err = config.Loader{File: writeYAML(t, "server: [unclosed"), LookupEnv: env(nil)}.Load()
	require.Error(t, err)

	_, err = config.Loader{File: writeYAML(t, ""), LookupEnv: env(map[string]string{"KT_CONVERT_PDF": "maybe"})}.Load()
	require.ErrorIs(t, err, config.ErrInvalid)

	_, err = config.Loader{File: writeYAML(t, "mail:\n  transport: resend\n"), LookupEnv: env(nil)}.Load()
	require.ErrorIs(t, err, config.ErrInvalid)

	_, err = config.Loader{File: writeYAML(t, "mail:\n  transport: pigeon\n"), LookupEnv: env(nil)}.Load()
	require.ErrorIs(t, err, config.ErrInvalid)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("KT_UPLOAD_DIR_TEST_ONLY=/from/dotenv\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("KT_UPLOAD_DIR_TEST_ONLY") })

	_, err := config.Loader{File: writeYAML(t, ""), EnvFiles: []string{envFile, filepath.Join(dir, "absent.env")}}.Load()
	require.NoError(t, err)
	assert.Equal(t, "/from/dotenv", os.Getenv("KT_UPLOAD_DIR_TEST_ONLY"))
}
