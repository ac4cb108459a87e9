package converter

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Tool is an optionally-installed external conversion program.
type Tool interface {
	// Locate returns the executable path, or false when the tool is not installed.
	Locate() (string, bool)

	// Run executes the tool and reports its exit status.
	// A non-nil error means the process could not be run at all.
	Run(ctx context.Context, executable string, args ...string) (RunResult, error)
}

// RunResult is the outcome of a finished process.
type RunResult struct {
	Stderr   string
	ExitCode int
}

// Calibre runs Calibre's ebook-convert.
type Calibre struct {
	// Path is an explicitly configured executable, checked first.
	Path string

	// Home overrides the user home directory used for per-user install locations.
	Home string

	goos string
}

const calibreBinary = "ebook-convert"

// Locate checks the configured path, then the command search path, then
// platform-specific install locations.
func (c *Calibre) Locate() (string, bool) {
	if c.Path != "" && isFile(c.Path) {
		return c.Path, true
	}

	if p, err := exec.LookPath(calibreBinary); err == nil {
		return p, true
	}

	for _, p := range c.wellKnownPaths() {
		if isFile(p) {
			return p, true
		}
	}

	return "", false
}

func (c *Calibre) wellKnownPaths() []string {
	goos := c.goos
	if goos == "" {
		goos = runtime.GOOS
	}

	switch goos {
	case "windows":
		paths := []string{
			`C:\Program Files\Calibre2\ebook-convert.exe`,
			`C:\Program Files (x86)\Calibre2\ebook-convert.exe`,
			`C:\Program Files\Calibre\ebook-convert.exe`,
			`C:\Program Files (x86)\Calibre\ebook-convert.exe`,
		}
		home := c.Home
		if home == "" {
			home, _ = os.UserHomeDir()
		}
		if home != "" {
			paths = append(paths,
				filepath.Join(home, "AppData", "Local", "Programs", "Calibre2", "ebook-convert.exe"),
				filepath.Join(home, "AppData", "Local", "Programs", "Calibre", "ebook-convert.exe"),
			)
		}
		return paths
	case "darwin":
		return []string{
			"/Applications/calibre.app/Contents/MacOS/ebook-convert",
			"/usr/local/bin/ebook-convert",
		}
	case "linux":
		return []string{
			"/usr/bin/ebook-convert",
			"/usr/local/bin/ebook-convert",
			"/opt/calibre/ebook-convert",
		}
	}
	return nil
}

// Run executes the converter and captures stderr.
func (c *Calibre) Run(ctx context.Context, executable string, args ...string) (RunResult, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, executable, args...)
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := RunResult{Stderr: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res, nil
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	default:
		return res, err
	}
}

// calibreArgs returns the fixed ebook-convert flag set.
func calibreArgs(src, dst string) []string {
	return []string{
		src,
		dst,
		"--enable-heuristics",
		"--margin-top", "20",
		"--margin-bottom", "20",
		"--margin-left", "20",
		"--margin-right", "20",
		"--pretty-print",
		"--insert-blank-line",
		"--language", "zh-CN",
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
