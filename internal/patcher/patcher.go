// Package patcher binds the unidiff engine to a filesystem. It applies a
// parsed multi-file hunk map inside a configured workspace root, isolating
// failures per hunk and per file, and produces the multi-line text report
// that is the engine's sole output contract.
package patcher

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mendhq/mend/internal/unidiff"
)

// FileSystem is the file I/O surface the patcher depends on. The concrete
// implementation (and any sandboxing it performs) belongs to the caller;
// OSFileSystem is the default.
type FileSystem interface {
	// ReadTextFile returns the file's full content. A missing file must be
	// reported with an error satisfying errors.Is(err, fs.ErrNotExist) so it
	// can be distinguished from other I/O failures.
	ReadTextFile(path string) (string, error)
	WriteTextFile(path, content string) error
	MkdirAll(path string) error
	Remove(path string) error
}

// Config is the workspace policy the patcher consults before touching any
// file.
type Config interface {
	TargetDir() string
	IsPathWithinWorkspace(path string) bool
}

// ErrOutsideWorkspace indicates a diff path that resolves outside the
// configured workspace root. This is a security boundary: it fails the whole
// file before any filesystem access, never as a soft per-hunk failure.
var ErrOutsideWorkspace = errors.New("path resolves outside the workspace")

// FileReport is the outcome of patching a single file: the human-readable
// summary block and the hunks that need manual application.
type FileReport struct {
	Path    string
	Summary string
	Failed  []unidiff.Hunk
}

// ApplyToFile applies one file's ordered hunk list against the real
// filesystem. A missing file reads as empty content, which is how creation
// diffs work. If the file's first hunk is a deletion signal the file is
// removed and all further hunks are skipped. The new content is written back
// only after every hunk has been applied in memory; there are no partial
// writes.
//
// The returned error is reserved for file-level problems: a workspace
// containment violation or an unexpected I/O failure. Per-hunk failures are
// reported inside the FileReport instead.
func ApplyToFile(path string, hunks []unidiff.Hunk, cfg Config, fsys FileSystem) (FileReport, error) {
	target := resolveTarget(cfg, path)
	if !cfg.IsPathWithinWorkspace(target) {
		return FileReport{}, fmt.Errorf("%w: %q is not under %s", ErrOutsideWorkspace, path, cfg.TargetDir())
	}

	content, err := fsys.ReadTextFile(target)
	missing := false
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return FileReport{}, fmt.Errorf("read %s: %w", path, err)
		}
		missing = true
		content = ""
	}

	// Whole-file deletion is read only from the first hunk and overrides all
	// further processing for this file.
	if len(hunks) > 0 && hunks[0].IsDeletionSignal() {
		if !missing {
			if err := fsys.Remove(target); err != nil {
				return FileReport{}, fmt.Errorf("delete %s: %w", path, err)
			}
		}
		return FileReport{Path: path, Summary: fmt.Sprintf("%s: SUCCESS (file deleted)", path)}, nil
	}

	res := unidiff.ApplyHunks(content, hunks)

	if len(res.Applied) > 0 && res.NewContent != content {
		if dir := filepath.Dir(target); dir != "." && dir != "" {
			if err := fsys.MkdirAll(dir); err != nil {
				return FileReport{}, fmt.Errorf("mkdir for %s: %w", path, err)
			}
		}
		if err := fsys.WriteTextFile(target, res.NewContent); err != nil {
			return FileReport{}, fmt.Errorf("write %s: %w", path, err)
		}
	}

	failed := make([]unidiff.Hunk, 0, len(res.Failed))
	for _, f := range res.Failed {
		failed = append(failed, f.Hunk)
	}
	return FileReport{Path: path, Summary: buildFileSummary(path, res), Failed: failed}, nil
}

// resolveTarget resolves a diff path against the workspace root. Absolute
// paths are kept as-is (and then still subject to the containment check).
func resolveTarget(cfg Config, path string) string {
	p := filepath.FromSlash(path)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(cfg.TargetDir(), p))
}

// buildFileSummary renders one file's report block: an overall status line
// followed by a line per hunk, tagged with the hunk's advisory old-start so
// the reader can find it in the diff. All-no-op counts as success.
func buildFileSummary(path string, res unidiff.Result) string {
	applied, failed, noop := len(res.Applied), len(res.Failed), len(res.NoOp)

	var status string
	switch {
	case failed == 0:
		status = fmt.Sprintf("%s: SUCCESS", path)
	case applied == 0 && noop == 0:
		status = fmt.Sprintf("%s: FAILED", path)
	default:
		status = fmt.Sprintf("%s: PARTIAL SUCCESS: %d/%d", path, applied, applied+failed)
	}

	type entry struct {
		oldStart int
		line     string
	}
	entries := make([]entry, 0, applied+failed+noop)
	for _, h := range res.Applied {
		entries = append(entries, entry{h.OldStart, fmt.Sprintf("  Hunk @@ -%d: Applied successfully", h.OldStart)})
	}
	for _, f := range res.Failed {
		entries = append(entries, entry{f.Hunk.OldStart, fmt.Sprintf("  Hunk @@ -%d: FAILED: %s", f.Hunk.OldStart, firstLine(f.Err.Error()))})
	}
	for _, h := range res.NoOp {
		entries = append(entries, entry{h.OldStart, fmt.Sprintf("  Hunk @@ -%d: Skipped as no-op", h.OldStart)})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].oldStart < entries[j].oldStart })

	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, status)
	for _, e := range entries {
		lines = append(lines, e.line)
	}
	return strings.Join(lines, "\n")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
