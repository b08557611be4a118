// Package aitime provides the single source of "now" used by every signed
// object in the module. All timestamps are microseconds since the Unix
// epoch, matching the wire format of every ID-bearing record.
package aitime

import "time"

// Clock returns the current time in microseconds since the Unix epoch.
// Engines take a Clock as an ordinary parameter so tests can inject a fixed
// or stepped clock without reaching for a global.
type Clock func() uint64

// System is the default Clock, backed by time.Now.
func System() uint64 {
	return uint64(time.Now().UnixMicro())
}

// Fixed returns a Clock that always reports t.
func Fixed(t uint64) Clock {
	return func() uint64 { return t }
}

// Stepped returns a Clock that starts at start and advances by step on every
// call, useful for tests that need strictly increasing timestamps.
func Stepped(start, step uint64) Clock {
	next := start
	return func() uint64 {
		t := next
		next += step
		return t
	}
}
