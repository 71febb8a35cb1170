package patchstore

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"
)

// Criteria narrows a listing. Zero values match everything; set fields are
// ANDed together.
type Criteria struct {
	SinceMs  int64  // Created at or after, Unix milliseconds
	UntilMs  int64  // Created at or before, Unix milliseconds
	NameGlob string // filepath.Match pattern on the record name
	State    string // Exact run state, e.g. "converged"
}

// Matches reports whether r passes every set criterion.
func (c *Criteria) Matches(r *Record) bool {
	if c == nil {
		return true
	}
	if c.SinceMs > 0 && r.CreatedAtMs < c.SinceMs {
		return false
	}
	if c.UntilMs > 0 && r.CreatedAtMs > c.UntilMs {
		return false
	}
	if c.NameGlob != "" {
		matched, err := filepath.Match(c.NameGlob, r.Name)
		if err != nil || !matched {
			return false
		}
	}
	if c.State != "" && r.State != c.State {
		return false
	}
	return true
}

// scoreRange converts the time bounds into ZRANGEBYSCORE arguments.
func (c *Criteria) scoreRange() (string, string) {
	lo, hi := "-inf", "+inf"
	if c != nil && c.SinceMs > 0 {
		lo = strconv.FormatInt(c.SinceMs, 10)
	}
	if c != nil && c.UntilMs > 0 {
		hi = strconv.FormatInt(c.UntilMs, 10)
	}
	return lo, hi
}

// ParseTime turns a time specification into Unix milliseconds. It accepts an
// RFC3339 timestamp or a Go duration, which counts back from now ("2h" is two
// hours ago).
func ParseTime(spec string) (int64, error) {
	if spec == "" {
		return 0, fmt.Errorf("empty time specification")
	}
	if t, err := time.Parse(time.RFC3339, spec); err == nil {
		return t.UnixMilli(), nil
	}
	if d, err := time.ParseDuration(spec); err == nil {
		return time.Now().Add(-d).UnixMilli(), nil
	}
	return 0, fmt.Errorf("invalid time specification: %s (use duration like '1h30m' or RFC3339 like '2026-01-02T15:04:05Z')", spec)
}

// ParseRange parses --since and --until values. Empty values leave that end
// of the range open.
func ParseRange(since, until string) (sinceMs, untilMs int64, err error) {
	if since != "" {
		if sinceMs, err = ParseTime(since); err != nil {
			return 0, 0, fmt.Errorf("invalid --since: %w", err)
		}
	}
	if until != "" {
		if untilMs, err = ParseTime(until); err != nil {
			return 0, 0, fmt.Errorf("invalid --until: %w", err)
		}
	}
	if sinceMs > 0 && untilMs > 0 && sinceMs >= untilMs {
		return 0, 0, fmt.Errorf("--since must be before --until")
	}
	return sinceMs, untilMs, nil
}
