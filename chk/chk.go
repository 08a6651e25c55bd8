// Package chk provides the error-check-and-log idiom used throughout this
// repository: call a fallible operation, pass its error to chk.E (or chk.T),
// and branch on the returned bool. The error is logged with its caller's
// location before the bool is returned, so call sites read:
//
//	if err = f(); chk.E(err) {
//		return
//	}
package chk

import (
	"runtime"

	"github.com/lzcers/ksana-relay/log"
)

func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "?"
	}
	return trimPath(file) + ":" + itoa(line)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b [20]byte
	i := len(b)
	neg := n < 0
	if neg {
		n = -n
	}
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		b[i] = '-'
	}
	return string(b[i:])
}

func trimPath(file string) string {
	slash := -1
	for i := len(file) - 1; i >= 0; i-- {
		if file[i] == '/' {
			if slash == -1 {
				slash = i
			} else {
				return file[i+1:]
			}
		}
	}
	if slash == -1 {
		return file
	}
	return file[slash+1:]
}

// E logs err at error level, with the caller's file:line, and reports
// whether err is non-nil. Use at ordinary fallible call sites.
func E(err error) bool {
	if err == nil {
		return false
	}
	log.E.F("%s: %s", caller(2), err)
	return true
}

// T is the same check as E but marks the call site as one a caller considers
// more serious (typically startup/config paths). It never itself aborts the
// process; the caller decides what to do with the returned bool.
func T(err error) bool {
	if err == nil {
		return false
	}
	log.E.F("%s: %s", caller(2), err)
	return true
}

// D logs err at debug level and reports whether it is non-nil, for checks
// whose failure is expected/benign often enough that error level would be
// noise.
func D(err error) bool {
	if err == nil {
		return false
	}
	log.D.F("%s: %s", caller(2), err)
	return true
}
