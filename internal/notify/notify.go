// Package notify carries user-facing toast messages from client flows.
package notify

import (
	"sync"

	"marketplace/internal/logger"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

type Notifier interface {
	Notify(level Level, message string)
}

func Success(n Notifier, msg string) { notify(n, LevelSuccess, msg) }
func Error(n Notifier, msg string)   { notify(n, LevelError, msg) }
func Info(n Notifier, msg string)    { notify(n, LevelInfo, msg) }

func notify(n Notifier, level Level, msg string) {
	if n != nil {
		n.Notify(level, msg)
	}
}

// Log writes notifications through the application logger; the CLI uses it.
type Log struct{}

func (Log) Notify(level Level, msg string) {
	switch level {
	case LevelError:
		logger.Error().Msg(msg)
	case LevelSuccess:
		logger.Info().Str("result", "ok").Msg(msg)
	default:
		logger.Info().Msg(msg)
	}
}

type Entry struct {
	Level   Level
	Message string
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) Notify(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: msg})
}

func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Last returns the newest entry, or a zero Entry when there is none.
func (r *Recorder) Last() Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return Entry{}
	}
	return r.entries[len(r.entries)-1]
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
