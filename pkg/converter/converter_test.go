package converter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTool is a mock implementation of Tool.
type MockTool struct {
	mock.Mock
}

func (m *MockTool) Locate() (string, bool) {
	args := m.Called()
	return args.String(0), args.Bool(1)
}

func (m *MockTool) Run(ctx context.Context, executable string, args ...string) (RunResult, error) {
	called := m.Called(ctx, executable, args)
	return called.Get(0).(RunResult), called.Error(1)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestConvert_NonPDFPassesThrough(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, tc := range []struct {
		name   string
		format Format
	}{
		{"a.txt", FormatTXT},
		{"b.epub", FormatEPUB},
		{"c.mobi", FormatMOBI},
		{"d.doc", FormatDOC},
		{"e.DOCX", FormatDOCX},
	} {
		src := writeFile(t, dir, tc.name, "x")
		tool := &MockTool{}

		out, err := New(tool).Convert(context.Background(), src, true)
		require.NoError(t, err)
		require.Equal(t, src, out.DeliverablePath)
		require.Equal(t, tc.format, out.Format)
		require.False(t, out.WasConverted)
		tool.AssertNotCalled(t, "Locate")
		tool.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestConvert_PDFDisabled(t *testing.T) {
	t.Parallel()

	src := writeFile(t, t.TempDir(), "report.pdf", "%PDF-1.4 dummy")
	tool := &MockTool{}

	out, err := New(tool).Convert(context.Background(), src, false)
	require.NoError(t, err)
	require.Equal(t, &Outcome{SourcePath: src, DeliverablePath: src, Format: FormatPDF}, out)
	tool.AssertNotCalled(t, "Locate")
}

func TestConvert_MissingSource(t *testing.T) {
	t.Parallel()

	_, err := New(&MockTool{}).Convert(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"), true)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestConvert_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	src := writeFile(t, t.TempDir(), "x.exe", "MZ")
	_, err := New(&MockTool{}).Convert(context.Background(), src, true)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestConvert_ToolMissingFailsOpen(t *testing.T) {
	t.Parallel()

	src := writeFile(t, t.TempDir(), "report.pdf", "%PDF")
	tool := &MockTool{}
	tool.On("Locate").Return("", false)

	out, err := New(tool).Convert(context.Background(), src, true)
	require.NoError(t, err)
	require.Equal(t, src, out.DeliverablePath)
	require.Equal(t, FormatPDF, out.Format)
	require.False(t, out.WasConverted)
	tool.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
}

func TestConvert_Success(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	outDir := filepath.Join(dir, "converted")
	src := writeFile(t, dir, "report.pdf", "%PDF")
	dst := filepath.Join(outDir, "report.epub")

	tool := &MockTool{}
	tool.On("Locate").Return("/usr/bin/ebook-convert", true)
	tool.On("Run", mock.Anything, "/usr/bin/ebook-convert", calibreArgs(src, dst)).
		Run(func(mock.Arguments) {
			require.NoError(t, os.WriteFile(dst, []byte("epub"), 0o644))
		}).
		Return(RunResult{}, nil)

	out, err := New(tool, WithOutputDir(outDir)).Convert(context.Background(), src, true)
	require.NoError(t, err)
	require.Equal(t, dst, out.DeliverablePath)
	require.Equal(t, FormatEPUB, out.Format)
	require.True(t, out.WasConverted)
	tool.AssertExpectations(t)
}

func TestConvert_DefaultDestinationIsSibling(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeFile(t, dir, "novel.pdf", "%PDF")
	dst := filepath.Join(dir, "novel.epub")

	tool := &MockTool{}
	tool.On("Locate").Return("ebook-convert", true)
	tool.On("Run", mock.Anything, "ebook-convert", calibreArgs(src, dst)).
		Run(func(mock.Arguments) {
			require.NoError(t, os.WriteFile(dst, []byte("epub"), 0o644))
		}).
		Return(RunResult{}, nil)

	out, err := New(tool).Convert(context.Background(), src, true)
	require.NoError(t, err)
	require.Equal(t, dst, out.DeliverablePath)
}

func TestConvert_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result RunResult
		err    error
	}{
		{name: "non-zero exit", result: RunResult{ExitCode: 1, Stderr: "bad pdf"}},
		{name: "zero exit without output", result: RunResult{}},
		{name: "process error", err: errors.New("exec format error")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := writeFile(t, t.TempDir(), "report.pdf", "%PDF")
			tool := &MockTool{}
			tool.On("Locate").Return("ebook-convert", true)
			tool.On("Run", mock.Anything, "ebook-convert", mock.Anything).Return(tt.result, tt.err)

			_, err := New(tool).Convert(context.Background(), src, true)
			require.ErrorIs(t, err, ErrConversionFailed)
		})
	}
}

func TestCalibreArgs(t *testing.T) {
	t.Parallel()

	args := calibreArgs("in.pdf", "out.epub")
	require.Equal(t, []string{"in.pdf", "out.epub"}, args[:2])
	require.Contains(t, args, "--enable-heuristics")
	require.Contains(t, args, "--pretty-print")
	require.Contains(t, args, "--insert-blank-line")
	for _, flag := range []string{"--margin-top", "--margin-bottom", "--margin-left", "--margin-right"} {
		i := indexOf(args, flag)
		require.GreaterOrEqual(t, i, 0, flag)
		require.Equal(t, "20", args[i+1])
	}
	i := indexOf(args, "--language")
	require.Equal(t, "zh-CN", args[i+1])
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

func TestCalibre_LocateConfiguredPath(t *testing.T) {
	t.Parallel()

	bin := writeFile(t, t.TempDir(), "ebook-convert", "#!/bin/sh\n")
	p, ok := (&Calibre{Path: bin}).Locate()
	require.True(t, ok)
	require.Equal(t, bin, p)
}

func TestCalibre_WellKnownPaths(t *testing.T) {
	t.Parallel()

	win := (&Calibre{goos: "windows", Home: `C:\Users\me`}).wellKnownPaths()
	require.Len(t, win, 6)
	require.Contains(t, win, `C:\Program Files\Calibre2\ebook-convert.exe`)

	mac := (&Calibre{goos: "darwin"}).wellKnownPaths()
	require.Contains(t, mac, "/Applications/calibre.app/Contents/MacOS/ebook-convert")

	linux := (&Calibre{goos: "linux"}).wellKnownPaths()
	require.Equal(t, []string{"/usr/bin/ebook-convert", "/usr/local/bin/ebook-convert", "/opt/calibre/ebook-convert"}, linux)

	require.Empty(t, (&Calibre{goos: "plan9"}).wellKnownPaths())
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for _, ext := range []string{"pdf", ".PDF", "Pdf"} {
		f, err := ParseFormat(ext)
		require.NoError(t, err)
		require.Equal(t, FormatPDF, f)
	}

	_, err := ParseFormat("exe")
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	require.Equal(t, "application/epub+zip", FormatEPUB.ContentType())
	require.Equal(t, "docx", FormatDOCX.Extension())
	require.Len(t, Formats(), 6)
}
