package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/weiye465/Kindle-Transfer-App/pkg/sanitizer"
)

// Store loads and saves Settings.
type Store interface {
	// Load returns the effective settings.
	Load(ctx context.Context) (Settings, error)

	// Save replaces the stored settings. A password equal to Mask keeps
	// the stored password.
	Save(ctx context.Context, submitted Settings) error
}

// Environment variables that override stored values when non-empty.
const (
	EnvKindleEmail  = "KINDLE_EMAIL"
	EnvSMTPEmail    = "SMTP_EMAIL"
	EnvSMTPPassword = "SMTP_PASSWORD"
	EnvSMTPServer   = "SMTP_SERVER"
	EnvSMTPPort     = "SMTP_PORT"
)

// FileStore keeps Settings in a JSON file.
// Writes within one process are serialized; concurrent processes sharing the
// file can still lose updates.
type FileStore struct {
	lookupEnv func(string) (string, bool)
	path      string
	mu        sync.Mutex
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithEnv sets the environment lookup used for overrides.
// Pass nil to disable overrides.
func WithEnv(lookup func(string) (string, bool)) Option {
	return func(s *FileStore) {
		s.lookupEnv = lookup
	}
}

// NewFileStore creates a store backed by path.
// Environment overrides use os.LookupEnv unless WithEnv says otherwise.
func NewFileStore(path string, opts ...Option) *FileStore {
	s := &FileStore{path: path, lookupEnv: os.LookupEnv}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the settings file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the file and applies environment overrides.
// A missing file yields empty settings.
func (s *FileStore) Load(_ context.Context) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.read()
	if err != nil {
		return Settings{}, err
	}
	return s.overlay(stored)
}

// Save writes submitted, keeping the stored password when Mask is submitted.
// String fields other than the password are stripped of markup.
func (s *FileStore) Save(_ context.Context, submitted Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if submitted.SMTPPassword == Mask {
		current, err := s.read()
		if err != nil && !errors.Is(err, ErrCorrupt) {
			return err
		}
		submitted.SMTPPassword = current.SMTPPassword
	}

	sanitizer.Fields(&submitted.KindleEmail, &submitted.SMTPEmail, &submitted.SMTPServer)

	return s.write(submitted)
}

// Healthcheck verifies the settings file is readable.
func (s *FileStore) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := s.Load(ctx)
		return err
	}
}

func (s *FileStore) read() (Settings, error) {
	var out Settings

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("settings: read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return out, nil
}

func (s *FileStore) write(v Settings) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("settings: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("settings: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("settings: write: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("settings: chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("settings: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("settings: replace %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) overlay(v Settings) (Settings, error) {
	if s.lookupEnv == nil {
		return v, nil
	}

	env := func(key string) string {
		val, _ := s.lookupEnv(key)
		return val
	}

	if e := env(EnvKindleEmail); e != "" {
		v.KindleEmail = e
	}
	if e := env(EnvSMTPEmail); e != "" {
		v.SMTPEmail = e
	}
	if e := env(EnvSMTPPassword); e != "" {
		v.SMTPPassword = e
	}
	if e := env(EnvSMTPServer); e != "" {
		v.SMTPServer = e
	}
	if e := env(EnvSMTPPort); e != "" {
		p, err := ParsePort(e)
		if err != nil {
			return Settings{}, fmt.Errorf("%s: %w", EnvSMTPPort, err)
		}
		v.SMTPPort = p
	}
	return v, nil
}
