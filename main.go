// Command mend-apply applies a unified diff, as proposed by the mend agent,
// to a workspace directory and prints the engine's report. It is a developer
// utility around internal/patcher; the agent itself invokes the engine
// directly.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mendhq/mend/internal/diffview"
	"github.com/mendhq/mend/internal/patcher"
	"github.com/mendhq/mend/internal/unidiff"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mend-apply:", err)
		os.Exit(1)
	}
}

func run() error {
	dir := flag.StringP("dir", "d", ".", "workspace root the diff is applied within")
	showDiff := flag.Bool("show-diff", false, "render the resulting changes for each patched file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mend-apply [flags] [diff-file]\n\nApplies a unified diff to the workspace. Reads the diff from stdin when no diff-file is given.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	diffText, err := readDiff(flag.Args())
	if err != nil {
		return err
	}

	absDir, err := filepath.Abs(*dir)
	if err != nil {
		return err
	}
	cfg, err := patcher.NewDirConfig(absDir)
	if err != nil {
		return err
	}

	fileHunks, err := unidiff.Parse(diffText)
	if err != nil {
		return err
	}

	var before map[string]string
	if *showDiff {
		before = snapshot(fileHunks, absDir)
	}

	report := patcher.ApplyToFS(fileHunks, cfg, nil)
	fmt.Println(report)

	if *showDiff {
		color := term.IsTerminal(int(os.Stdout.Fd()))
		fsys := patcher.OSFileSystem{}
		for _, path := range fileHunks.Paths() {
			after, err := fsys.ReadTextFile(filepath.Join(absDir, filepath.FromSlash(path)))
			if err != nil {
				continue // Deleted, never created, or unreadable.
			}
			if view := diffview.Render(before[path], after, path, color, 3); view != "" {
				fmt.Println()
				fmt.Println(view)
			}
		}
	}

	if anyFailed(fileHunks, report) {
		return errors.New("some hunks were not applied; see report above")
	}
	return nil
}

func readDiff(args []string) (string, error) {
	switch len(args) {
	case 0:
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	case 1:
		b, err := os.ReadFile(args[0])
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("expected at most one diff-file argument, got %d", len(args))
	}
}

// snapshot captures each touched file's content before patching so
// --show-diff can render original→patched afterwards. Missing files read as
// empty, mirroring the engine's creation semantics.
func snapshot(fileHunks *unidiff.FileHunks, absDir string) map[string]string {
	fsys := patcher.OSFileSystem{}
	before := make(map[string]string, fileHunks.Len())
	for _, path := range fileHunks.Paths() {
		content, err := fsys.ReadTextFile(filepath.Join(absDir, filepath.FromSlash(path)))
		if err != nil {
			content = ""
		}
		before[path] = content
	}
	return before
}

// anyFailed reports whether the run left failed hunks behind. The report
// text is the engine's only output, so the CLI keys its exit status off the
// per-file status markers.
func anyFailed(fileHunks *unidiff.FileHunks, report string) bool {
	lines := strings.Split(report, "\n")
	for _, path := range fileHunks.Paths() {
		for _, line := range lines {
			if strings.HasPrefix(line, path+": FAILED") || strings.HasPrefix(line, path+": PARTIAL SUCCESS") {
				return true
			}
		}
	}
	return false
}
