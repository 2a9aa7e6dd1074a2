// Package unidiff parses unified-diff text and applies it to in-memory file
// content using content-based matching rather than the line numbers recorded
// in hunk headers.
//
// LLM-produced diffs drift: line numbers are stale, whitespace gets
// re-wrapped, and some hunks describe edits that were already made. The
// package tolerates all three. Each hunk's pre-change ("old") block is
// located in the current content by an exact sliding-window search first and
// a whitespace-normalized search second; the hunk header's positions are
// advisory only and are used solely to order application and to label
// reports.
//
// Pipeline: Parse splits raw diff text (possibly multi-file, possibly
// wrapped in git/email metadata) into an ordered FileHunks. ApplyHunks
// applies one file's hunk list to one content buffer and classifies every
// hunk as applied, failed, or no-op; a single hunk's failure never blocks
// the remaining hunks. Binding the result to a real filesystem is the
// patcher package's job.
//
// Failure is deliberately conservative: a hunk whose old block cannot be
// located, or whose splice provably changed nothing, is
// reported as failed with its raw text preserved so the caller can surface
// it for a retry.
package unidiff
