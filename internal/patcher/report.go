package patcher

import (
	"fmt"
	"strings"

	"github.com/mendhq/mend/internal/simplelogger"
	"github.com/mendhq/mend/internal/unidiff"
)

// NoPatchesMessage is returned by ApplyToFS when the parsed diff contained
// no applicable hunks for any file.
const NoPatchesMessage = "No valid patches found in the provided diff content."

// Options tunes ApplyToFS. The zero value (or nil) gives default behavior.
type Options struct {
	// TotalFiles overrides the denominator of the "N/M files patched
	// successfully" aggregate, for callers that split one larger patch into
	// several engine invocations.
	TotalFiles int

	// FS overrides the filesystem implementation. Defaults to OSFileSystem.
	FS FileSystem
}

// ApplyToFS is the top-level entry point: it applies a parsed multi-file
// hunk map against the filesystem, one file at a time in diff-appearance
// order, and returns the aggregated text report. The report is the sole
// output contract; there is no additional structured return value.
//
// A file-level failure (workspace violation, unexpected I/O error) is
// recorded as a whole-file failure with all of that file's hunks listed as
// failed, and never halts the remaining files. If any hunk failed anywhere,
// the report ends with a manual-application section that reconstructs a
// minimal retryable diff from the failed hunks' raw text.
func ApplyToFS(fileHunks *unidiff.FileHunks, cfg Config, opts *Options) string {
	fsys := FileSystem(OSFileSystem{})
	if opts != nil && opts.FS != nil {
		fsys = opts.FS
	}
	if fileHunks == nil || fileHunks.Len() == 0 {
		return NoPatchesMessage
	}

	type failedFile struct {
		path  string
		hunks []unidiff.Hunk
	}
	var sections []string
	var failures []failedFile
	succeeded := 0

	for _, path := range fileHunks.Paths() {
		hunks := fileHunks.Hunks(path)
		rep, err := ApplyToFile(path, hunks, cfg, fsys)
		if err != nil {
			rep = wholeFileFailureReport(path, hunks, err)
		}
		sections = append(sections, rep.Summary)
		if err == nil && len(rep.Failed) == 0 {
			succeeded++
		} else {
			failures = append(failures, failedFile{path: path, hunks: rep.Failed})
		}
		simplelogger.Log("patcher: %s: %d hunks, %d failed", path, len(hunks), len(rep.Failed))
	}

	total := fileHunks.Len()
	if opts != nil && opts.TotalFiles > 0 {
		total = opts.TotalFiles
	}

	var out []string
	if total > 1 {
		agg := fmt.Sprintf("%d/%d files patched successfully", succeeded, total)
		if n := len(failures); n > 0 {
			agg += fmt.Sprintf(" (%d file(s) with failed hunks)", n)
		}
		out = append(out, agg, "")
	}
	out = append(out, strings.Join(sections, "\n\n"))

	if len(failures) > 0 {
		manual := []string{"", "The following hunks could not be applied. Fix them up and apply them as a new diff:"}
		for _, ff := range failures {
			manual = append(manual, "", fmt.Sprintf("--- a/%s", ff.path), fmt.Sprintf("+++ b/%s", ff.path))
			for _, h := range ff.hunks {
				manual = append(manual, h.OriginalText)
			}
		}
		out = append(out, manual...)
	}
	return strings.Join(out, "\n")
}

// wholeFileFailureReport turns a file-level error into a report block that
// lists every hunk of the file as failed, so nothing is dropped silently.
func wholeFileFailureReport(path string, hunks []unidiff.Hunk, err error) FileReport {
	lines := []string{fmt.Sprintf("%s: FAILED: %v", path, err)}
	for _, h := range hunks {
		lines = append(lines, fmt.Sprintf("  Hunk @@ -%d: FAILED: file could not be processed", h.OldStart))
	}
	return FileReport{Path: path, Summary: strings.Join(lines, "\n"), Failed: hunks}
}
