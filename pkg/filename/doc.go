// Package filename turns user-supplied upload names into safe, unique on-disk names.
//
// Sanitization keeps letters and digits of any script, underscores, whitespace,
// hyphens, dots and CJK ideographs. Every other character becomes an underscore,
// one underscore per rune. Input is not normalized: a decomposed accent is a
// combining mark and is replaced like any other disallowed rune.
//
// Basic usage:
//
//	import "github.com/weiye465/Kindle-Transfer-App/pkg/filename"
//
//	filename.Sanitize("报告 (final)?.pdf")
//	// Output: "报告 _final__.pdf"
//
//	name, err := filename.UniqueName("report.pdf", "uploads")
//	// Output: "20240102_150405_report.pdf", or "20240102_150405_report_1.pdf"
//	// when the first candidate already exists in uploads/
//
//	filename.ExtractOriginalName("20240102_150405_report.pdf")
//	// Output: "report.pdf"
//
// # Uniqueness
//
// UniqueName probes the directory for collisions and appends _1, _2, ... before
// the extension. The probe and the later file creation are not atomic: two
// uploads with the same sanitized name in the same second may race. Callers
// that create the file should open it with O_EXCL and retry on os.ErrExist.
//
// # Extensions
//
// The extension is split the same way as the stem/extension split used by most
// scripting runtimes: the last dot that is not part of leading dots starts the
// extension. The extension is preserved verbatim and never truncated.
package filename
