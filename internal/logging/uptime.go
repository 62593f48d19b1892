package logging

import (
	"fmt"
	"time"
)

var bootTime = time.Now()

// UptimeMS returns milliseconds since process start.
func UptimeMS() int64 {
	return time.Since(bootTime).Milliseconds()
}

// FormatUptime renders a millisecond uptime as mm:ss.mmm, the stamp format
// the CORC console logs use.
func FormatUptime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	mm := ms / 60000
	ss := (ms / 1000) % 60
	rem := ms % 1000
	return fmt.Sprintf("%02d:%02d.%03d", mm, ss, rem)
}

// Stamp is FormatUptime of the current uptime.
func Stamp() string {
	return FormatUptime(UptimeMS())
}
