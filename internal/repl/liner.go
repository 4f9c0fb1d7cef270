// ABOUTME: liner-backed LineReader with a persistent history file
// ABOUTME: History is written with owner-only permissions on Close

package repl

import (
	"os"
	"path/filepath"

	"github.com/peterh/liner"
)

// HistoryFileName is the REPL history file inside the config directory
const HistoryFileName = "chat_history"

// Liner wraps liner.State and its history file
type Liner struct {
	*liner.State
	historyFile string
}

// NewLiner takes over the terminal and loads history from configDir.
// Close must be called to restore the terminal.
func NewLiner(configDir string) *Liner {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	l := &Liner{State: line}
	if configDir != "" {
		l.historyFile = filepath.Join(configDir, HistoryFileName)
		if f, err := os.Open(l.historyFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	return l
}

// Close saves history and restores the terminal
func (l *Liner) Close() error {
	if l.historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(l.historyFile), 0700); err == nil {
			if f, err := os.OpenFile(l.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
				l.State.WriteHistory(f)
				f.Close()
			}
		}
	}
	return l.State.Close()
}
