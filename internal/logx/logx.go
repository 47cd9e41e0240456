// Package logx defines the logging sink the resource build writes to and
// a zerolog-backed implementation of it.
package logx

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Logger is the four-level sink consumed by the build.
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warning(msg string)
	Error(msg string)
}

// Debugf formats and logs at debug level.
func Debugf(l Logger, format string, args ...any) { l.Debug(fmt.Sprintf(format, args...)) }

// Warnf formats and logs at warning level.
func Warnf(l Logger, format string, args ...any) { l.Warning(fmt.Sprintf(format, args...)) }

type zl struct{ z zerolog.Logger }

// New adapts a zerolog.Logger. Level filtering is left to zerolog.
func New(z zerolog.Logger) Logger { return zl{z: z} }

func (l zl) Debug(msg string)   { l.z.Debug().Msg(msg) }
func (l zl) Info(msg string)    { l.z.Info().Msg(msg) }
func (l zl) Warning(msg string) { l.z.Warn().Msg(msg) }
func (l zl) Error(msg string)   { l.z.Error().Msg(msg) }

// Nop discards everything.
var Nop Logger = nop{}

type nop struct{}

func (nop) Debug(string)   {}
func (nop) Info(string)    {}
func (nop) Warning(string) {}
func (nop) Error(string)   {}

// Level names used by Recorder entries.
const (
	LevelDebug   = "debug"
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Entry is one recorded log line.
type Entry struct {
	Level string
	Msg   string
}

// Recorder keeps every line in memory; tests use it to assert on warnings.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) add(level, msg string) {
	r.mu.Lock()
	r.entries = append(r.entries, Entry{Level: level, Msg: msg})
	r.mu.Unlock()
}

func (r *Recorder) Debug(msg string)   { r.add(LevelDebug, msg) }
func (r *Recorder) Info(msg string)    { r.add(LevelInfo, msg) }
func (r *Recorder) Warning(msg string) { r.add(LevelWarning, msg) }
func (r *Recorder) Error(msg string)   { r.add(LevelError, msg) }

// Entries returns a copy of the recorded lines.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Messages returns the messages recorded at level.
func (r *Recorder) Messages(level string) []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e.Msg)
		}
	}
	return out
}
