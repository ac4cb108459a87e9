package filename

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"
)

const (
	// MaxStemLength is the maximum stem length in runes, leaving room for the
	// timestamp prefix and extension within common path component limits.
	MaxStemLength = 200

	// DefaultStem replaces a stem that sanitizes to nothing.
	DefaultStem = "document"

	// TimestampLayout is the prefix layout used by UniqueName.
	TimestampLayout = "20060102_150405"
)

var timestampPrefix = regexp.MustCompile(`^\d{8}_\d{6}_(.+)$`)

// Sanitize returns a safe base name for the given upload name.
// The extension is kept verbatim.
func Sanitize(name string) string {
	stem, ext := SplitExt(name)

	stem = strings.Map(func(r rune) rune {
		if allowed(r) {
			return r
		}
		return '_'
	}, stem)
	stem = strings.TrimSpace(stem)

	if stem == "" {
		stem = DefaultStem
	}

	if runes := []rune(stem); len(runes) > MaxStemLength {
		stem = string(runes[:MaxStemLength])
	}

	return stem + ext
}

// allowed reports whether r survives sanitization.
func allowed(r rune) bool {
	switch {
	case r == '_', r == '-', r == '.':
		return true
	case r >= 0x4e00 && r <= 0x9fa5:
		return true
	case unicode.IsLetter(r), unicode.IsNumber(r), unicode.IsSpace(r):
		return true
	}
	return false
}

// SplitExt splits name into stem and extension.
// Leading dots belong to the stem, so ".bashrc" has no extension.
func SplitExt(name string) (stem, ext string) {
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 {
		return name, ""
	}
	if strings.Trim(name[:dot], ".") == "" {
		return name, ""
	}
	return name[:dot], name[dot:]
}

// Namer generates unique names against a directory.
// The zero value uses the local wall clock.
type Namer struct {
	// Now returns the time used for the prefix. Defaults to time.Now.
	Now func() time.Time
}

// UniqueName prefixes the sanitized name with a timestamp and appends a
// counter before the extension until no file of that name exists in dir.
func (n Namer) UniqueName(original, dir string) (string, error) {
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}

	candidate := now().Format(TimestampLayout) + "_" + Sanitize(original)
	base, ext := SplitExt(candidate)

	final := candidate
	for counter := 1; ; counter++ {
		_, err := os.Stat(filepath.Join(dir, final))
		if os.IsNotExist(err) {
			return final, nil
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrProbeFailed, err)
		}
		final = fmt.Sprintf("%s_%d%s", base, counter, ext)
	}
}

// UniqueName is Namer{}.UniqueName.
func UniqueName(original, dir string) (string, error) {
	return Namer{}.UniqueName(original, dir)
}

// ExtractOriginalName strips a leading YYYYMMDD_HHMMSS_ prefix.
// Names without the prefix are returned unchanged.
func ExtractOriginalName(stored string) string {
	if m := timestampPrefix.FindStringSubmatch(stored); m != nil {
		return m[1]
	}
	return stored
}
