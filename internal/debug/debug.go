// Package debug is Hydra's diagnostic log. It is silent unless enabled with
// --debug or HYDRA_DEBUG. Foreground commands truncate ~/.hydra/debug.log on
// start; hook processes append to it, since the host runs them many times
// per session and never shows their output.
package debug

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// LogFileName is the name of the debug log file.
	LogFileName = "debug.log"
	// LogDirName is the directory under the user's home holding the log.
	LogDirName = ".hydra"
)

// Mode selects how an existing log file is opened.
type Mode int

const (
	// Truncate starts a fresh log.
	Truncate Mode = iota
	// Append keeps earlier entries.
	Append
)

var (
	mu      sync.RWMutex
	enabled bool
	logger  *log.Logger
	logFile *os.File

	// getLogPath is swapped out by tests.
	getLogPath = defaultGetLogPath
)

// Init enables or disables logging and truncates the log file.
func Init(enable bool) error {
	return InitMode(enable, Truncate, "")
}

// InitMode enables or disables logging. tag, when set, prefixes every line
// so entries from hook processes can be told apart.
func InitMode(enable bool, mode Mode, tag string) error {
	mu.Lock()
	defer mu.Unlock()

	enabled = enable
	if !enable {
		logger = log.New(io.Discard, "", 0)
		return nil
	}

	logPath, err := getLogPath()
	if err != nil {
		return fmt.Errorf("determine log path: %w", err)
	}
	//nolint:gosec // G301: user config directory needs standard permissions
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if mode == Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	//nolint:gosec // G304: log path is computed from user home, not user input
	f, err := os.OpenFile(logPath, flags, 0600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f

	prefix := ""
	if tag != "" {
		prefix = "[" + tag + "] "
	}
	logger = log.New(f, prefix, log.Ldate|log.Ltime|log.Lmicroseconds)
	if mode == Truncate {
		logger.Printf("=== Hydra debug log started at %s ===", time.Now().Format(time.RFC3339))
	}
	return nil
}

// Close closes the log file. Safe to call when logging is disabled.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// Log writes a message in the manner of fmt.Print when enabled.
func Log(v ...any) {
	mu.RLock()
	defer mu.RUnlock()

	if !enabled || logger == nil {
		return
	}
	logger.Print(v...)
}

// Logf writes a message in the manner of fmt.Printf when enabled.
func Logf(format string, v ...any) {
	mu.RLock()
	defer mu.RUnlock()

	if !enabled || logger == nil {
		return
	}
	logger.Printf(format, v...)
}

// Enabled returns whether debug logging is on.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

func defaultGetLogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine user home: %w", err)
	}
	return filepath.Join(home, LogDirName, LogFileName), nil
}

// GetLogPath returns the path of the debug log file.
func GetLogPath() (string, error) {
	return getLogPath()
}
