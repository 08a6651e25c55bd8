// Package log is a small leveled logger, colored the way orly.dev's "lol"
// subsystem colors its level tags. Levels, from least to most severe:
// trace, debug, info, warn, error, fatal.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
)

// Level is a logging severity.
type Level int32

const (
	Trace Level = iota
	Debug
	Info
	Warn
	Error
	Fatal
)

var names = map[Level]string{
	Trace: "trace",
	Debug: "debug",
	Info:  "info",
	Warn:  "warn",
	Error: "error",
	Fatal: "fatal",
}

// ParseLevel maps a config string (as found in the KSANA_LOG_LEVEL env
// var) to a Level, defaulting to Info for anything unrecognized.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return Trace
	case "debug":
		return Debug
	case "info":
		return Info
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	case "fatal":
		return Fatal
	default:
		return Info
	}
}

var current int32 = int32(Info)

// SetLevel sets the process-wide minimum level that is actually printed.
func SetLevel(l Level) { atomic.StoreInt32(&current, int32(l)) }

// GetLevel returns the process-wide minimum level.
func GetLevel() Level { return Level(atomic.LoadInt32(&current)) }

var (
	mu  sync.Mutex
	out io.Writer = os.Stderr

	colors = map[Level]*color.Color{
		Trace: color.New(color.FgHiBlack),
		Debug: color.New(color.FgCyan),
		Info:  color.New(color.FgGreen),
		Warn:  color.New(color.FgYellow),
		Error: color.New(color.FgRed),
		Fatal: color.New(color.FgHiRed, color.Bold),
	}
)

// SetOutput redirects all log output, for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// L is a single leveled logger endpoint (log.T, log.D, ... below).
type L struct{ level Level }

var (
	T = L{Trace}
	D = L{Debug}
	I = L{Info}
	W = L{Warn}
	E = L{Error}
	F = L{Fatal}
)

func (l L) enabled() bool { return l.level >= GetLevel() }

func (l L) write(s string) {
	if !l.enabled() {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	tag := colors[l.level].Sprintf("%-5s", names[l.level])
	fmt.Fprintf(
		out, "%s %s %s\n", time.Now().UTC().Format(time.RFC3339Nano), tag, s,
	)
}

// F formats and logs a message, printf-style.
func (l L) F(format string, args ...interface{}) {
	l.write(fmt.Sprintf(format, args...))
}

// Ln logs its arguments space-joined, fmt.Sprintln-style (without the
// trailing newline, which write adds).
func (l L) Ln(args ...interface{}) {
	l.write(strings.TrimRight(fmt.Sprintln(args...), "\n"))
}

// C logs the string returned by fn, but only calls fn if this level is
// enabled — use for messages expensive to construct (e.g. serializing an
// event) that should not be paid for at quieter log levels.
func (l L) C(fn func() string) {
	if !l.enabled() {
		return
	}
	l.write(fn())
}
