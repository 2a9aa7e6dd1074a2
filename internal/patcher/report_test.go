package patcher

import (
	"strings"
	"testing"

	"github.com/mendhq/mend/internal/unidiff"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, diff string) *unidiff.FileHunks {
	t.Helper()
	fh, err := unidiff.Parse(diff)
	require.NoError(t, err)
	return fh
}

func TestApplyToFS_EmptyInput(t *testing.T) {
	report := ApplyToFS(mustParse(t, "no diff here\n"), testConfig(t), &Options{FS: newFakeFS(nil)})
	require.Equal(t, NoPatchesMessage, report)
}

func TestApplyToFS_SingleFileHasNoAggregateLine(t *testing.T) {
	fsys := newFakeFS(map[string]string{"/ws/a.txt": "alpha\nbeta\n"})
	fh := mustParse(t, `--- a/a.txt
+++ b/a.txt
@@ -1,2 +1,2 @@
-alpha
+ALPHA
 beta
`)

	report := ApplyToFS(fh, testConfig(t), &Options{FS: fsys})
	require.Contains(t, report, "a.txt: SUCCESS")
	require.NotContains(t, report, "files patched successfully")
	require.Equal(t, "ALPHA\nbeta\n", fsys.files["/ws/a.txt"])
}

func TestApplyToFS_MultiFileAggregateAndManualSection(t *testing.T) {
	fsys := newFakeFS(map[string]string{
		"/ws/a.txt": "alpha\nbeta\n",
		"/ws/b.txt": "one\ntwo\nthree\nfour\n",
	})
	fh := mustParse(t, `--- a/a.txt
+++ b/a.txt
@@ -1,2 +1,2 @@
-alpha
+ALPHA
 beta
--- a/b.txt
+++ b/b.txt
@@ -1,2 +1,2 @@
-one
+ONE
 two
@@ -4,2 +4,2 @@
-missing
+MISSING
 tail
`)

	report := ApplyToFS(fh, testConfig(t), &Options{FS: fsys})

	require.Contains(t, report, "1/2 files patched successfully")
	require.Contains(t, report, "(1 file(s) with failed hunks)")
	require.Contains(t, report, "a.txt: SUCCESS")
	require.Contains(t, report, "b.txt: PARTIAL SUCCESS: 1/2")

	// The manual-application section reconstructs a retryable diff for the
	// failing file only.
	require.Contains(t, report, "apply them as a new diff")
	require.Contains(t, report, "--- a/b.txt\n+++ b/b.txt\n@@ -4,2 +4,2 @@\n-missing\n+MISSING\n tail")
	require.NotContains(t, report, "--- a/a.txt")

	// File A's correct hunk was still applied and written.
	require.Equal(t, "ALPHA\nbeta\n", fsys.files["/ws/a.txt"])
	require.Equal(t, "ONE\ntwo\nthree\nfour\n", fsys.files["/ws/b.txt"])
}

func TestApplyToFS_FileLevelFailureDoesNotHaltOthers(t *testing.T) {
	fsys := newFakeFS(map[string]string{"/ws/ok.txt": "fine\n"})
	fh := mustParse(t, `--- a/../outside.txt
+++ b/../outside.txt
@@ -1 +1 @@
-x
+y
--- a/ok.txt
+++ b/ok.txt
@@ -1 +1 @@
-fine
+FINE
`)

	report := ApplyToFS(fh, testConfig(t), &Options{FS: fsys})

	require.Contains(t, report, "../outside.txt: FAILED")
	require.Contains(t, report, "outside the workspace")
	require.Contains(t, report, "ok.txt: SUCCESS")
	require.Equal(t, "FINE\n", fsys.files["/ws/ok.txt"])
	require.Contains(t, report, "1/2 files patched successfully")

	// The failed file's hunks are all listed for manual application.
	require.Contains(t, report, "--- a/../outside.txt")
}

func TestApplyToFS_DeletionSummary(t *testing.T) {
	fsys := newFakeFS(map[string]string{"/ws/gone.txt": "bye\nworld\n"})
	fh := mustParse(t, `--- a/gone.txt
+++ /dev/null
@@ -1,2 +0,0 @@
-bye
-world
`)

	report := ApplyToFS(fh, testConfig(t), &Options{FS: fsys})
	require.Contains(t, report, "gone.txt: SUCCESS (file deleted)")
	require.NotContains(t, fsys.files, "/ws/gone.txt")
}

func TestApplyToFS_TotalFilesOverride(t *testing.T) {
	fsys := newFakeFS(map[string]string{"/ws/a.txt": "alpha\n"})
	fh := mustParse(t, `--- a/a.txt
+++ b/a.txt
@@ -1 +1 @@
-alpha
+ALPHA
`)

	report := ApplyToFS(fh, testConfig(t), &Options{FS: fsys, TotalFiles: 3})
	require.Contains(t, report, "1/3 files patched successfully")
}

func TestApplyToFS_ReportListsFilesInDiffOrder(t *testing.T) {
	fsys := newFakeFS(map[string]string{
		"/ws/z.txt": "zz\n",
		"/ws/a.txt": "aa\n",
	})
	fh := mustParse(t, `--- a/z.txt
+++ b/z.txt
@@ -1 +1 @@
-zz
+ZZ
--- a/a.txt
+++ b/a.txt
@@ -1 +1 @@
-aa
+AA
`)

	report := ApplyToFS(fh, testConfig(t), &Options{FS: fsys})
	require.Less(t, strings.Index(report, "z.txt: SUCCESS"), strings.Index(report, "a.txt: SUCCESS"))
}
