// Package diffview renders a human-oriented unified view of an
// original→patched content pair. It exists for display only (the CLI's
// --show-diff mode); the patch engine itself never computes diffs.
package diffview

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

type op int

const (
	opEqual op = iota
	opDelete
	opInsert
)

// segment is a run of consecutive lines sharing one operation. Lines keep
// their trailing '\n' except possibly the last line of the input.
type segment struct {
	op    op
	lines []string
}

// Render returns a unified diff of oldText to newText for display, with
// "--- a/path"/"+++ b/path" headers and contextSize unchanged lines around
// each change group. Change groups separated by at most 2*contextSize equal
// lines merge into one hunk. If color is set, hunk headers and +/- lines
// carry ANSI colors; the output is for terminals, not for re-applying.
//
// An empty string is returned when the two texts are identical.
func Render(oldText, newText, path string, color bool, contextSize int) string {
	if oldText == newText {
		return ""
	}

	const (
		reset    = "\x1b[0m"
		red      = "\x1b[31m"
		green    = "\x1b[32m"
		magenta  = "\x1b[35m"
		cyanBold = "\x1b[1;36m"
	)
	colorize := func(s, code string) string {
		if !color {
			return s
		}
		return code + s + reset
	}

	segs := diffLines(oldText, newText)

	out := []string{
		colorize("--- a/"+path, cyanBold),
		colorize("+++ b/"+path, cyanBold),
	}

	oldPos, newPos := 1, 1
	i := 0
	for i < len(segs) {
		s := segs[i]
		if s.op == opEqual {
			oldPos += len(s.lines)
			newPos += len(s.lines)
			i++
			continue
		}

		type outLine struct {
			tag  byte
			text string
		}
		var lines []outLine

		// Pre-context from the tail of the preceding equal segment.
		preK := 0
		if i > 0 && segs[i-1].op == opEqual && contextSize > 0 {
			prev := segs[i-1].lines
			preK = min(contextSize, len(prev))
			for _, ln := range prev[len(prev)-preK:] {
				lines = append(lines, outLine{' ', trimEOL(ln)})
			}
		}
		oldStart := max(oldPos-preK, 1)
		newStart := max(newPos-preK, 1)

		appendChange := func(s segment) {
			tag := byte('-')
			if s.op == opInsert {
				tag = '+'
			}
			for _, ln := range s.lines {
				lines = append(lines, outLine{tag, trimEOL(ln)})
			}
			if s.op == opDelete {
				oldPos += len(s.lines)
			} else {
				newPos += len(s.lines)
			}
		}
		appendChange(s)

		// Merge nearby change groups across small equal gaps.
		j := i + 1
		for j < len(segs) {
			if segs[j].op != opEqual {
				appendChange(segs[j])
				j++
				continue
			}
			eq := segs[j].lines
			if j+1 < len(segs) && len(eq) <= 2*contextSize {
				for _, ln := range eq {
					lines = append(lines, outLine{' ', trimEOL(ln)})
				}
				oldPos += len(eq)
				newPos += len(eq)
				j++
				continue
			}
			// Post-context only; the outer equal branch advances oldPos and
			// newPos over this whole segment once i lands on it.
			postK := min(contextSize, len(eq))
			for _, ln := range eq[:postK] {
				lines = append(lines, outLine{' ', trimEOL(ln)})
			}
			break
		}
		i = j

		oldCount, newCount := 0, 0
		for _, ol := range lines {
			switch ol.tag {
			case ' ':
				oldCount++
				newCount++
			case '-':
				oldCount++
			case '+':
				newCount++
			}
		}
		out = append(out, colorize(fmt.Sprintf("@@ -%d,%d +%d,%d @@", oldStart, oldCount, newStart, newCount), magenta))
		for _, ol := range lines {
			line := string(ol.tag) + ol.text
			switch ol.tag {
			case '+':
				out = append(out, colorize(line, green))
			case '-':
				out = append(out, colorize(line, red))
			default:
				out = append(out, line)
			}
		}
	}

	return strings.Join(out, "\n")
}

// diffLines computes a line-level diff via diffmatchpatch's rune encoding,
// returning maximal runs of equal/deleted/inserted lines in order.
func diffLines(oldText, newText string) []segment {
	dmp := diffmatchpatch.New()
	rOld, rNew, lineArray := dmp.DiffLinesToRunes(oldText, newText)
	diffs := dmp.DiffCleanupMerge(dmp.DiffMainRunes(rOld, rNew, false))

	decode := func(s string) []string {
		out := make([]string, 0, len(s))
		for _, r := range s {
			if idx := int(r); idx >= 0 && idx < len(lineArray) {
				out = append(out, lineArray[idx])
			}
		}
		return out
	}

	var segs []segment
	for _, d := range diffs {
		lines := decode(d.Text)
		if len(lines) == 0 {
			continue
		}
		var o op
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			o = opEqual
		case diffmatchpatch.DiffDelete:
			o = opDelete
		case diffmatchpatch.DiffInsert:
			o = opInsert
		}
		segs = append(segs, segment{op: o, lines: lines})
	}
	return segs
}

func trimEOL(line string) string {
	return strings.TrimSuffix(line, "\n")
}
