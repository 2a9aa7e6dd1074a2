package unidiff

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var errMalformedHunk = errors.New("malformed hunk")

// IsMalformedHunk reports whether err (as returned from Parse) indicates that
// a hunk header was syntactically invalid. A corrupt header means the rest of
// that hunk cannot be trusted, so Parse fails the whole input rather than
// returning a partial result.
func IsMalformedHunk(err error) bool {
	return errors.Is(err, errMalformedHunk)
}

var hunkHeaderRE = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Metadata lines emitted by git and by email-formatted patches. They carry no
// hunk content and are skipped by prefix.
var metadataPrefixes = []string{
	"From ",
	"Date:",
	"Subject:",
	"diff --git",
	"index ",
	"new file mode",
	"deleted file mode",
	"similarity index",
}

// Hunk is one "@@ -oldStart,oldCount +newStart,newCount @@" block of a
// unified diff. It is immutable once parsed: read many times, never mutated.
//
// OldStart/NewStart are advisory. The authoritative application point is
// wherever the old block is located by content (see ApplyHunks).
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int

	Header string   // The raw "@@ ... @@" line.
	Lines  []string // Body lines with their ' '/'-'/'+' prefixes intact.

	// OriginalText is the full raw hunk (header plus body). It is the unit
	// re-serialized into failure reports so a failed hunk can be retried as a
	// new diff.
	OriginalText string
}

// IsDeletionSignal reports whether h encodes whole-file deletion: a hunk
// targeting "+0,0", as produced when the new side of the diff is /dev/null.
func (h Hunk) IsDeletionSignal() bool {
	return h.NewStart == 0 && h.NewCount == 0
}

// FileHunks maps each file path named by a diff to its ordered hunk list,
// preserving diff-appearance order across files so reports are stable.
type FileHunks struct {
	order  []string
	byPath map[string][]Hunk
}

// Len returns the number of files that have at least one hunk.
func (f *FileHunks) Len() int { return len(f.order) }

// Paths returns the file paths in diff-appearance order.
func (f *FileHunks) Paths() []string { return f.order }

// Hunks returns the ordered hunk list for path, or nil if the diff does not
// touch path.
func (f *FileHunks) Hunks(path string) []Hunk { return f.byPath[path] }

func (f *FileHunks) add(path string, h Hunk) {
	if f.byPath == nil {
		f.byPath = make(map[string][]Hunk)
	}
	if _, ok := f.byPath[path]; !ok {
		f.order = append(f.order, path)
	}
	f.byPath[path] = append(f.byPath[path], h)
}

// Parse splits raw unified-diff text, possibly multi-file and possibly
// wrapped in git or email metadata, into a FileHunks.
//
// "---"/"+++" lines name the old/new file ("a/"/"b/" prefixes stripped);
// "/dev/null" is never recorded as an active filename, so creations key on
// the "+++" path and deletions on the "---" path. A line starting "@@"
// begins a new hunk and must match the standard header pattern; a malformed
// header fails the whole parse. Lines are split on '\n' only; a trailing
// '\r' is not stripped and stays part of line content.
//
// A file with zero hunks is simply absent from the result.
func Parse(diff string) (*FileHunks, error) {
	out := &FileHunks{}
	currentFile := ""
	var pending []string // Raw lines of the hunk being collected; pending[0] is the header.

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		h, err := parseHunk(pending)
		if err != nil {
			return err
		}
		if currentFile != "" {
			out.add(currentFile, h)
		}
		pending = nil
		return nil
	}

	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "--- "):
			if err := flush(); err != nil {
				return nil, err
			}
			if name := stripFilePrefix(line[len("--- "):]); name != "" {
				currentFile = name
			}
		case strings.HasPrefix(line, "+++ "):
			if err := flush(); err != nil {
				return nil, err
			}
			if name := stripFilePrefix(line[len("+++ "):]); name != "" {
				currentFile = name
			}
		case strings.HasPrefix(line, "@@"):
			if err := flush(); err != nil {
				return nil, err
			}
			pending = []string{line}
		case isMetadataLine(line):
			// Skipped; git metadata sits between files, so any pending hunk
			// has already been flushed by the following ---/+++ pair.
		default:
			if len(pending) > 0 {
				pending = append(pending, line)
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

// stripFilePrefix normalizes a filename from a "---"/"+++" line. It returns
// "" for /dev/null, which signals creation or deletion rather than naming a
// file.
func stripFilePrefix(name string) string {
	name = strings.TrimSpace(name)
	// "path\ttimestamp" suffixes are legal in unified diffs.
	if i := strings.IndexByte(name, '\t'); i >= 0 {
		name = name[:i]
	}
	if name == "/dev/null" {
		return ""
	}
	if rest, ok := strings.CutPrefix(name, "a/"); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(name, "b/"); ok {
		return rest
	}
	return name
}

func isMetadataLine(line string) bool {
	for _, p := range metadataPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

func parseHunk(raw []string) (Hunk, error) {
	header := raw[0]
	m := hunkHeaderRE.FindStringSubmatch(header)
	if m == nil {
		return Hunk{}, fmt.Errorf("%w: bad header %q", errMalformedHunk, header)
	}
	return Hunk{
		OldStart:     mustAtoi(m[1]),
		OldCount:     countOrOne(m[2]),
		NewStart:     mustAtoi(m[3]),
		NewCount:     countOrOne(m[4]),
		Header:       header,
		Lines:        raw[1:],
		OriginalText: strings.Join(raw, "\n"),
	}, nil
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s) // The header regexp guarantees digits.
	return n
}

// countOrOne returns the parsed count, defaulting to 1 when the ",count"
// part was omitted from the header.
func countOrOne(s string) int {
	if s == "" {
		return 1
	}
	return mustAtoi(s)
}
