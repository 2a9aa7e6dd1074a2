package unidiff

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mendhq/mend/internal/simplelogger"
)

// Stray artifacts from email-formatted patches: the "-- " mail-signature
// separator and the bare tool-version line that follows it (e.g. "2.39.5").
// The separator match is exact, so a '-' body line deleting content that
// starts with "- " is still a real deletion and passes through.
var bareVersionRE = regexp.MustCompile(`^\d+\.\d+(\.\d+)*$`)

func isPatchArtifactLine(line string) bool {
	return line == "-- " || bareVersionRE.MatchString(line)
}

// Blocks reconstructs the pre-change ("old") and post-change ("new") line
// sequences encoded by the hunk body. Context lines land in both blocks,
// '-' lines in the old block only, '+' lines in the new block only.
// Anything else (a "no newline at end of file" marker, unprefixed text) is
// conservatively treated as context and appended to both.
//
// Identical old and new blocks define a no-op hunk.
func (h Hunk) Blocks() (oldBlock, newBlock []string) {
	for _, line := range h.Lines {
		if isPatchArtifactLine(line) {
			continue
		}
		if line == "" {
			oldBlock = append(oldBlock, "")
			newBlock = append(newBlock, "")
			continue
		}
		switch line[0] {
		case ' ':
			oldBlock = append(oldBlock, line[1:])
			newBlock = append(newBlock, line[1:])
		case '-':
			oldBlock = append(oldBlock, line[1:])
		case '+':
			newBlock = append(newBlock, line[1:])
		default:
			oldBlock = append(oldBlock, line)
			newBlock = append(newBlock, line)
		}
	}
	return oldBlock, newBlock
}

// normalizeLine strips all whitespace, so re-indentation, tab/space drift,
// and re-spaced tokens within a line compare equal. Anything beyond
// whitespace drift (reordering, content changes) still mismatches.
func normalizeLine(line string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, line)
}

// findBlock locates block inside contentLines, returning a 1-based inclusive
// line range. An empty or blank block is never locatable. Pass 1 slides a
// window of the block's size over the content comparing joined text for byte
// equality; pass 2 repeats the comparison on whitespace-stripped lines. The
// first match wins in both passes. Fuzzy matching tolerates whitespace drift
// only, never reordering or content changes.
func findBlock(contentLines, block []string) (start, end int, ok bool) {
	if len(block) == 0 || strings.TrimSpace(strings.Join(block, "")) == "" {
		return 0, 0, false
	}

	target := strings.Join(block, "\n")
	for i := 0; i+len(block) <= len(contentLines); i++ {
		if strings.Join(contentLines[i:i+len(block)], "\n") == target {
			return i + 1, i + len(block), true
		}
	}

	normBlock := make([]string, len(block))
	for i, l := range block {
		normBlock[i] = normalizeLine(l)
	}
	normTarget := strings.Join(normBlock, "\n")
	normContent := make([]string, len(contentLines))
	for i, l := range contentLines {
		normContent[i] = normalizeLine(l)
	}
	for i := 0; i+len(block) <= len(contentLines); i++ {
		if strings.Join(normContent[i:i+len(block)], "\n") == normTarget {
			simplelogger.Log("unidiff: fuzzy match at lines %d-%d", i+1, i+len(block))
			return i + 1, i + len(block), true
		}
	}
	return 0, 0, false
}
