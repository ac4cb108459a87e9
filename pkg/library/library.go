package library

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/zeebo/blake3"

	"github.com/weiye465/Kindle-Transfer-App/pkg/filename"
)

const (
	// HistoryLimit is the number of entries shown by the history view.
	HistoryLimit = 20

	// TimeLayout formats history timestamps.
	TimeLayout = "2006-01-02 15:04:05"
)

// Artifact describes a stored upload.
type Artifact struct {
	OriginalName string `json:"name"`
	StoredName   string `json:"saved_as"`
	Path         string `json:"path"`
	Size         int64  `json:"size_bytes"`
	Checksum     string `json:"checksum"`
}

// SizeMB returns the artifact size in MiB rounded to two decimals.
func (a Artifact) SizeMB() float64 {
	return MiB(a.Size)
}

// Entry is one line of the history view.
type Entry struct {
	Name    string    `json:"name"`
	Size    float64   `json:"size"`
	Time    string    `json:"time"`
	ModTime time.Time `json:"-"`
}

// Library is a directory of uploaded files.
type Library struct {
	dir   string
	extra []string
	namer filename.Namer
	now   func() time.Time
}

// Option configures a Library.
type Option func(*Library)

// WithClock sets the time source used for naming and retention.
func WithClock(now func() time.Time) Option {
	return func(l *Library) {
		if now != nil {
			l.now = now
			l.namer.Now = now
		}
	}
}

// WithOutputDir lets Resolve accept files under dir as well, for converted
// deliverables written outside the library.
func WithOutputDir(dir string) Option {
	return func(l *Library) {
		if abs, err := filepath.Abs(dir); err == nil && dir != "" {
			l.extra = append(l.extra, abs)
		}
	}
}

// New opens the library rooted at dir, creating it if needed.
func New(dir string, opts ...Option) (*Library, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("library: resolve dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("library: create dir: %w", err)
	}

	l := &Library{dir: abs, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Dir returns the absolute library directory.
func (l *Library) Dir() string {
	return l.dir
}

// Save stores the content of r under a unique name derived from originalName.
func (l *Library) Save(ctx context.Context, originalName string, r io.Reader) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		name string
		f    *os.File
		err  error
	)
	for range 2 {
		name, err = l.namer.UniqueName(originalName, l.dir)
		if err != nil {
			return nil, errors.Join(ErrStoreFailed, err)
		}
		f, err = os.OpenFile(filepath.Join(l.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil || !errors.Is(err, fs.ErrExist) {
			break
		}
	}
	if err != nil {
		return nil, errors.Join(ErrStoreFailed, err)
	}

	path := f.Name()
	hasher := blake3.New()
	n, err := io.Copy(io.MultiWriter(f, hasher), r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, errors.Join(ErrStoreFailed, err)
	}

	return &Artifact{
		OriginalName: originalName,
		StoredName:   name,
		Path:         path,
		Size:         n,
		Checksum:     hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// Resolve maps a client-supplied path to an existing file inside the library.
func (l *Library) Resolve(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", ErrNotFound
	}

	var abs string
	switch {
	case filepath.IsAbs(p):
		abs = filepath.Clean(p)
	case !strings.ContainsAny(p, `/\`):
		abs = filepath.Join(l.dir, p)
	default:
		var err error
		if abs, err = filepath.Abs(p); err != nil {
			return "", fmt.Errorf("%w: %v", ErrNotFound, err)
		}
	}

	if !l.contains(abs) {
		return "", ErrOutsideLibrary
	}

	info, err := os.Stat(abs)
	if err != nil || !info.Mode().IsRegular() {
		return "", ErrNotFound
	}
	return abs, nil
}

func (l *Library) contains(abs string) bool {
	if within(l.dir, abs) {
		return true
	}
	for _, dir := range l.extra {
		if within(dir, abs) {
			return true
		}
	}
	return false
}

func within(dir, abs string) bool {
	rel, err := filepath.Rel(dir, abs)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// History lists up to limit stored files, newest first.
// A non-positive limit returns every file.
func (l *Library) History(ctx context.Context, limit int) ([]Entry, error) {
	files, err := l.files(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].ModTime().Equal(files[j].ModTime()) {
			return files[i].Name() > files[j].Name()
		}
		return files[i].ModTime().After(files[j].ModTime())
	})
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}

	entries := make([]Entry, 0, len(files))
	for _, info := range files {
		entries = append(entries, Entry{
			Name:    info.Name(),
			Size:    MiB(info.Size()),
			Time:    info.ModTime().Format(TimeLayout),
			ModTime: info.ModTime(),
		})
	}
	return entries, nil
}

// Sweep removes files last modified more than maxAge ago and reports how
// many were removed.
func (l *Library) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	files, err := l.files(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := l.now().Add(-maxAge)
	var (
		removed int
		errs    []error
	)
	for _, info := range files {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(l.dir, info.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

// Healthcheck verifies the library directory is writable.
func (l *Library) Healthcheck() func(context.Context) error {
	return func(context.Context) error {
		f, err := os.CreateTemp(l.dir, ".probe-*")
		if err != nil {
			return fmt.Errorf("library: dir not writable: %w", err)
		}
		name := f.Name()
		_ = f.Close()
		return os.Remove(name)
	}
}

// files returns regular, non-hidden files in the library.
func (l *Library) files(ctx context.Context) ([]fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dirents, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("library: list: %w", err)
	}

	out := make([]fs.FileInfo, 0, len(dirents))
	for _, d := range dirents {
		if !d.Type().IsRegular() || strings.HasPrefix(d.Name(), ".") {
			continue
		}
		info, err := d.Info()
		if err != nil {
			continue
		}
		out = append(out, info)
	}
	return out, nil
}

// MiB converts a byte count to mebibytes rounded to two decimals.
func MiB(n int64) float64 {
	return math.Round(float64(n)/1024/1024*100) / 100
}
