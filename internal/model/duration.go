package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDuration is returned for duration values that cannot be parsed
// or are negative.
var ErrInvalidDuration = errors.New("invalid duration")

// Duration is a time span (not a timestamp). On the wire it renders as
// "[D ]HH:MM:SS[.ffffff]" and accepts that form, a Go duration string such
// as "30m", or a number of seconds.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Microseconds is the storage representation.
func (d Duration) Microseconds() int64 { return time.Duration(d).Microseconds() }

// DurationFromMicroseconds converts the storage representation back.
func DurationFromMicroseconds(us int64) Duration {
	return Duration(time.Duration(us) * time.Microsecond)
}

// String renders d as "[D ]HH:MM:SS[.ffffff]".
func (d Duration) String() string {
	total := time.Duration(d)
	sign := ""
	if total < 0 {
		sign = "-"
		total = -total
	}
	days := total / (24 * time.Hour)
	total -= days * 24 * time.Hour
	hours := total / time.Hour
	total -= hours * time.Hour
	minutes := total / time.Minute
	total -= minutes * time.Minute
	seconds := total / time.Second
	total -= seconds * time.Second
	micros := total / time.Microsecond

	s := fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	if days > 0 {
		s = fmt.Sprintf("%d %s", days, s)
	}
	if micros > 0 {
		s += fmt.Sprintf(".%06d", micros)
	}
	return sign + s
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		parsed, err := fromSeconds(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case string:
		parsed, err := ParseDuration(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}
	return ErrInvalidDuration
}

// ParseDuration accepts "[D ]HH:MM:SS[.ffffff]", "[D days, ]HH:MM:SS",
// "MM:SS", plain seconds, or a Go duration string ("1h30m").
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidDuration
	}
	if strings.HasPrefix(s, "-") {
		return 0, ErrInvalidDuration
	}
	if !strings.Contains(s, ":") {
		if secs, err := strconv.ParseFloat(s, 64); err == nil {
			return fromSeconds(secs)
		}
		gd, err := time.ParseDuration(s)
		if err != nil {
			return 0, ErrInvalidDuration
		}
		return Duration(gd), nil
	}
	return parseClock(s)
}

func parseClock(s string) (Duration, error) {
	var days int64
	if i := strings.IndexAny(s, " ,"); i >= 0 {
		n, err := strconv.ParseInt(s[:i], 10, 64)
		if err != nil || n < 0 {
			return 0, ErrInvalidDuration
		}
		days = n
		rest := strings.TrimLeft(s[i:], " ,")
		rest = strings.TrimPrefix(rest, "days")
		rest = strings.TrimPrefix(rest, "day")
		s = strings.TrimLeft(rest, " ,")
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, ErrInvalidDuration
	}
	var hours, minutes int64
	var err error
	if len(parts) == 3 {
		if hours, err = strconv.ParseInt(parts[0], 10, 64); err != nil || hours < 0 {
			return 0, ErrInvalidDuration
		}
		parts = parts[1:]
	}
	if minutes, err = strconv.ParseInt(parts[0], 10, 64); err != nil || minutes < 0 {
		return 0, ErrInvalidDuration
	}
	secs, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, ErrInvalidDuration
	}

	us := math.Round(secs * 1e6)
	if us*float64(time.Microsecond) >= maxNanos {
		return 0, ErrInvalidDuration
	}
	total := time.Duration(us) * time.Microsecond
	for _, c := range []struct {
		n    int64
		unit time.Duration
	}{{days, 24 * time.Hour}, {hours, time.Hour}, {minutes, time.Minute}} {
		var ok bool
		if total, ok = addScaled(total, c.n, c.unit); !ok {
			return 0, ErrInvalidDuration
		}
	}
	return Duration(total), nil
}

// maxNanos is math.MaxInt64 as a float64; anything at or above it does not
// fit in a time.Duration.
const maxNanos = float64(math.MaxInt64)

// fromSeconds converts a non-negative number of seconds, rejecting values
// that do not fit in a time.Duration.
func fromSeconds(secs float64) (Duration, error) {
	if secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, ErrInvalidDuration
	}
	ns := secs * float64(time.Second)
	if ns >= maxNanos {
		return 0, ErrInvalidDuration
	}
	return Duration(time.Duration(ns)), nil
}

// addScaled returns total + n*unit, or false when the sum overflows.
func addScaled(total time.Duration, n int64, unit time.Duration) (time.Duration, bool) {
	if n == 0 {
		return total, true
	}
	if n > int64((math.MaxInt64-total)/unit) {
		return 0, false
	}
	return total + time.Duration(n)*unit, true
}
