package simplelogger

import (
	"fmt"
	"os"
	"sync"
)

var mu sync.Mutex

// Log is a minimal printf-style debug logger. It appends formatted output,
// newline-terminated, to the file named by the MEND_LOG_FILE environment
// variable.
//
// If MEND_LOG_FILE is unset/empty or the path can't be opened for appending,
// Log is a no-op. It exists so engine internals (fuzzy-match fallbacks,
// per-file patch outcomes) can be traced without touching the report text
// that callers display.
func Log(format string, args ...any) {
	path := os.Getenv("MEND_LOG_FILE")
	if path == "" {
		return
	}

	// Serialize open/write/close so lines from one process don't interleave.
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	msg := fmt.Sprintf(format, args...)
	if msg == "" || msg[len(msg)-1] != '\n' {
		msg += "\n"
	}
	_, _ = f.WriteString(msg)
}
