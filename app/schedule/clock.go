package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedClock is returned when a string is not a valid "HH:MM"
// time of day.
var ErrMalformedClock = errors.New("malformed time of day")

// Clock is a time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM" (or "H:MM") strings, with hours in [0,23]
// and minutes in [0,59]. Surrounding whitespace is ignored.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return Clock{}, fmt.Errorf("%w: %q", ErrMalformedClock, s)
	}

	hour, err := parseClockPart(parts[0], 23)
	if err != nil {
		return Clock{}, fmt.Errorf("%w: %q: hour: %v", ErrMalformedClock, s, err)
	}

	minute, err := parseClockPart(parts[1], 59)
	if err != nil {
		return Clock{}, fmt.Errorf("%w: %q: minute: %v", ErrMalformedClock, s, err)
	}

	return Clock{Hour: hour, Minute: minute}, nil
}

// parseClockPart accepts one or two ASCII digits, nothing else: no
// signs, no spaces, no underscores.
func parseClockPart(s string, max int) (int, error) {
	if len(s) == 0 || len(s) > 2 {
		return 0, fmt.Errorf("want 1 or 2 digits, got %q", s)
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("not a number: %q", s)
		}
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}

	if n > max {
		return 0, fmt.Errorf("%d out of range [0,%d]", n, max)
	}

	return n, nil
}

// MustParseClock is like ParseClock but panics on error. Meant for
// constants and tests.
func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}

	return c
}

// Minutes returns the number of minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Before reports whether c is earlier in the day than o.
func (c Clock) Before(o Clock) bool {
	return c.Minutes() < o.Minutes()
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ClockOf returns the time of day of t, in its own location, truncated
// to the minute.
func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute()}
}

// MarshalText implements encoding.TextMarshaler.
func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Clock) UnmarshalText(text []byte) error {
	parsed, err := ParseClock(string(text))
	if err != nil {
		return err
	}

	*c = parsed

	return nil
}
