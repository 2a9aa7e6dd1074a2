package unidiff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlocks_PrefixDispatch(t *testing.T) {
	h := Hunk{Lines: []string{" ctx", "-removed", "+added", " tail"}}
	oldBlock, newBlock := h.Blocks()
	require.Equal(t, []string{"ctx", "removed", "tail"}, oldBlock)
	require.Equal(t, []string{"ctx", "added", "tail"}, newBlock)
}

func TestBlocks_UnprefixedLinesFallBackToContext(t *testing.T) {
	h := Hunk{Lines: []string{" a", `\ No newline at end of file`, "stray"}}
	oldBlock, newBlock := h.Blocks()
	require.Equal(t, oldBlock, newBlock)
	require.Equal(t, []string{"a", `\ No newline at end of file`, "stray"}, oldBlock)
}

func TestBlocks_EmptyLinesAreSharedContext(t *testing.T) {
	h := Hunk{Lines: []string{"-x", "+y", ""}}
	oldBlock, newBlock := h.Blocks()
	require.Equal(t, []string{"x", ""}, oldBlock)
	require.Equal(t, []string{"y", ""}, newBlock)
}

func TestBlocks_MailArtifactsDropped(t *testing.T) {
	h := Hunk{Lines: []string{" real", "-- ", "2.39.5", "-gone", "+here"}}
	oldBlock, newBlock := h.Blocks()
	require.Equal(t, []string{"real", "gone"}, oldBlock)
	require.Equal(t, []string{"real", "here"}, newBlock)
}

func TestBlocks_DeletionOfDashPrefixedLineIsKept(t *testing.T) {
	// "-- item" is a real deletion of the line "- item", not a mail
	// signature; only the exact "-- " separator is an artifact.
	h := Hunk{Lines: []string{"-- item", "+* item"}}
	oldBlock, newBlock := h.Blocks()
	require.Equal(t, []string{"- item"}, oldBlock)
	require.Equal(t, []string{"* item"}, newBlock)
}

func TestBlocks_NoOpHunkHasEqualBlocks(t *testing.T) {
	h := Hunk{Lines: []string{" same", " lines"}}
	oldBlock, newBlock := h.Blocks()
	require.Equal(t, oldBlock, newBlock)
}

func TestFindBlock_Exact(t *testing.T) {
	content := strings.Split("one\ntwo\nthree\nfour", "\n")
	start, end, ok := findBlock(content, []string{"two", "three"})
	require.True(t, ok)
	require.Equal(t, 2, start)
	require.Equal(t, 3, end)
}

func TestFindBlock_FirstMatchWins(t *testing.T) {
	content := strings.Split("x\na\nx\n", "\n")
	start, end, ok := findBlock(content, []string{"x"})
	require.True(t, ok)
	require.Equal(t, 1, start)
	require.Equal(t, 1, end)
}

func TestFindBlock_FuzzyToleratesWhitespaceDrift(t *testing.T) {
	content := strings.Split("if(x){\n  return 1;\n}\n", "\n")
	start, end, ok := findBlock(content, []string{"if (x) {", "    return 1;", "  }"})
	require.True(t, ok)
	require.Equal(t, 1, start)
	require.Equal(t, 3, end)
}

func TestFindBlock_FuzzyRejectsContentChanges(t *testing.T) {
	content := strings.Split("if(x){\n  return 1;\n}\n", "\n")
	_, _, ok := findBlock(content, []string{"if (x) {", "    return 2;", "  }"})
	require.False(t, ok)
}

func TestFindBlock_FuzzyRejectsReordering(t *testing.T) {
	content := strings.Split("alpha\nbeta\n", "\n")
	_, _, ok := findBlock(content, []string{"beta", "alpha"})
	require.False(t, ok)
}

func TestFindBlock_BlankBlockNeverLocates(t *testing.T) {
	content := strings.Split("a\n\nb\n", "\n")

	_, _, ok := findBlock(content, nil)
	require.False(t, ok)

	_, _, ok = findBlock(content, []string{""})
	require.False(t, ok)

	_, _, ok = findBlock(content, []string{"  ", "\t"})
	require.False(t, ok)
}

func TestFindBlock_BlockLargerThanContent(t *testing.T) {
	_, _, ok := findBlock([]string{"only"}, []string{"only", "more"})
	require.False(t, ok)
}
