// Package timeouts provides centralized timeout values for I/O on the
// webhook and worker paths.
//
// The webhook path answers the chat platform inside its retry deadline,
// so everything it does is bounded by Short. Workers run off the
// request path and get Long, enough for a backfill walk or a report
// assembly against a slow chat API.
//
// Guidelines for choosing a timeout:
//   - Ping: health checks and connectivity verification
//   - Short: webhook handling, single-document reads
//   - Medium: list queries, report fan-out, history lookups
//   - Long: queued work (extraction, backfill walks, report posting)
package timeouts

import (
	"os"
	"sync"
	"time"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 2 * time.Minute
)

// mu protects all timeout values from concurrent access.
var mu sync.RWMutex

var (
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
)

// Ping returns the timeout for health checks and connectivity verification.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the timeout for the webhook path. It must stay inside
// the chat platform's response deadline with room for a queue publish.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Medium returns the timeout for list queries and internal API reads.
func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return medium
}

// Long returns the timeout for one unit of queued work. A backfill
// walk pages through a week of channel history and runs extraction per
// message, so this is generous.
func Long() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return long
}

// Config holds timeout configuration values.
// Zero values are ignored (defaults are kept).
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// Configure sets custom timeout values during startup. Zero values in
// the config are ignored, keeping the current (or default) values.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Medium > 0 {
		medium = cfg.Medium
	}
	if cfg.Long > 0 {
		long = cfg.Long
	}
}

// Reset restores all timeouts to their default values.
// Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	short = DefaultShort
	medium = DefaultMedium
	long = DefaultLong
}

// ConfigureFromEnv reads timeout overrides from the environment:
// ROLLCALL_TIMEOUT_PING, ROLLCALL_TIMEOUT_SHORT, ROLLCALL_TIMEOUT_MEDIUM
// and ROLLCALL_TIMEOUT_LONG, each a Go duration string like "5s".
// Returns the number of timeouts successfully configured.
func ConfigureFromEnv() int {
	mu.Lock()
	defer mu.Unlock()
	configured := 0

	set := func(name string, dst *time.Duration) {
		if v := os.Getenv(name); v != "" {
			if d, err := time.ParseDuration(v); err == nil && d > 0 {
				*dst = d
				configured++
			}
		}
	}
	set("ROLLCALL_TIMEOUT_PING", &ping)
	set("ROLLCALL_TIMEOUT_SHORT", &short)
	set("ROLLCALL_TIMEOUT_MEDIUM", &medium)
	set("ROLLCALL_TIMEOUT_LONG", &long)

	return configured
}

// Current returns the current timeout configuration.
// Useful for logging or debugging.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Short: short, Medium: medium, Long: long}
}
