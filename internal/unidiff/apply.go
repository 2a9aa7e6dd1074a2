package unidiff

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Result classifies the outcome of applying one file's hunk list to one
// content buffer. Every input hunk lands in exactly one of Applied, Failed,
// or NoOp; nothing is dropped silently.
type Result struct {
	NewContent string
	Applied    []Hunk
	Failed     []FailedHunk
	NoOp       []Hunk
}

// FailedHunk pairs a hunk that could not be applied with the error that
// explains why. The hunk's OriginalText is what a caller re-serializes for a
// manual retry.
type FailedHunk struct {
	Hunk Hunk
	Err  error
}

// applyHunk applies a single hunk to content.
//
// Cases, checked in order: identical old/new blocks return the content
// unchanged (defensive; ApplyHunks filters these first); empty content is
// file creation and returns the new block directly with no location search;
// otherwise the old block is located by content. When the old block cannot
// be found but the new block is already present, the hunk's effect is
// already satisfied and content is returned unchanged, which makes re-applied
// diffs idempotent. A located splice that leaves the text identical is a
// whitespace-only false match and is reported as an error, never as silent
// success.
func applyHunk(content string, h Hunk) (string, error) {
	oldBlock, newBlock := h.Blocks()
	if slices.Equal(oldBlock, newBlock) {
		return content, nil
	}
	if content == "" {
		return strings.Join(newBlock, "\n"), nil
	}

	lines := strings.Split(content, "\n")
	start, end, ok := findBlock(lines, oldBlock)
	if !ok {
		if _, _, present := findBlock(lines, newBlock); present {
			return content, nil
		}
		return "", fmt.Errorf("could not locate this change in the current file content:\n%s", h.OriginalText)
	}

	merged := make([]string, 0, len(lines)-(end-start+1)+len(newBlock))
	merged = append(merged, lines[:start-1]...)
	merged = append(merged, newBlock...)
	merged = append(merged, lines[end:]...)
	updated := strings.Join(merged, "\n")
	if updated == content {
		return "", fmt.Errorf("change matched existing content but produced no effect:\n%s", h.OriginalText)
	}
	return updated, nil
}

// ApplyHunks applies an ordered hunk list to content, classifying each hunk
// as applied, failed, or no-op. One hunk's failure never stops the rest.
//
// No-op hunks (identical old/new blocks) are routed out first and excluded
// from application. The remainder apply ascending by NewStart when content
// is empty (new file, forward assembly) and descending by OldStart
// otherwise. Matching is content-driven, so the descending order only
// matters when two old blocks could overlap or match identical text, but it
// is preserved as a deliberate, tested tie-break. Failed entries are ordered
// by OldStart so they read top to bottom relative to the original file.
func ApplyHunks(content string, hunks []Hunk) Result {
	res := Result{NewContent: content}

	var pending []Hunk
	for _, h := range hunks {
		oldBlock, newBlock := h.Blocks()
		if slices.Equal(oldBlock, newBlock) {
			res.NoOp = append(res.NoOp, h)
			continue
		}
		pending = append(pending, h)
	}

	if content == "" {
		sort.SliceStable(pending, func(i, j int) bool { return pending[i].NewStart < pending[j].NewStart })
	} else {
		sort.SliceStable(pending, func(i, j int) bool { return pending[i].OldStart > pending[j].OldStart })
	}

	for _, h := range pending {
		updated, err := applyHunk(res.NewContent, h)
		if err != nil {
			res.Failed = append(res.Failed, FailedHunk{Hunk: h, Err: err})
			continue
		}
		res.NewContent = updated
		res.Applied = append(res.Applied, h)
	}

	sort.SliceStable(res.Failed, func(i, j int) bool { return res.Failed[i].Hunk.OldStart < res.Failed[j].Hunk.OldStart })
	return res
}
