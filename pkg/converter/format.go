package converter

import (
	"fmt"
	"strings"
)

// Format is the closed set of document formats the app accepts.
type Format string

const (
	FormatPDF  Format = "PDF"
	FormatEPUB Format = "EPUB"
	FormatMOBI Format = "MOBI"
	FormatTXT  Format = "TXT"
	FormatDOC  Format = "DOC"
	FormatDOCX Format = "DOCX"
)

var contentTypes = map[Format]string{
	FormatPDF:  "application/pdf",
	FormatEPUB: "application/epub+zip",
	FormatMOBI: "application/x-mobipocket-ebook",
	FormatTXT:  "text/plain; charset=utf-8",
	FormatDOC:  "application/msword",
	FormatDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Formats returns all accepted formats in a stable order.
func Formats() []Format {
	return []Format{FormatPDF, FormatEPUB, FormatMOBI, FormatTXT, FormatDOC, FormatDOCX}
}

// ParseFormat maps a file extension, with or without the leading dot and in
// any case, to a Format.
func ParseFormat(ext string) (Format, error) {
	f := Format(strings.ToUpper(strings.TrimPrefix(ext, ".")))
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return f, nil
}

// FormatOf returns the Format of a file path by its extension.
func FormatOf(path string) (Format, error) {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, path)
	}
	return ParseFormat(path[i+1:])
}

// Valid reports whether f is one of the accepted formats.
func (f Format) Valid() bool {
	_, ok := contentTypes[f]
	return ok
}

// Extension returns the lower-case extension without the dot.
func (f Format) Extension() string {
	return strings.ToLower(string(f))
}

// ContentType returns the MIME type used for attachments.
func (f Format) ContentType() string {
	if ct, ok := contentTypes[f]; ok {
		return ct
	}
	return "application/octet-stream"
}

func (f Format) String() string {
	return string(f)
}
