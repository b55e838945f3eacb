package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Default opening hours offered to operators for every weekday.
var (
	DefaultOpen  = Clock{Hour: 8}
	DefaultClose = Clock{Hour: 22}
)

// Day is the schedule of a single weekday.
type Day struct {
	Enabled bool
	Open    Clock
	Close   Clock
}

// Week holds one Day per weekday, indexed by Weekday.
type Week [DaysPerWeek]Day

// Day returns the schedule of the given weekday. Invalid weekdays have
// a disabled schedule.
func (w Week) Day(d Weekday) Day {
	if !d.Valid() {
		return Day{}
	}

	return w[d]
}

// With returns a copy of w with the schedule of weekday d replaced.
func (w Week) With(d Weekday, day Day) Week {
	if d.Valid() {
		w[d] = day
	}

	return w
}

func (w Week) String() string {
	var b strings.Builder

	sep := ""
	for _, d := range Weekdays() {
		day := w[d]
		if day.Enabled {
			fmt.Fprintf(&b, "%s%s %s-%s", sep, d.Key(), day.Open, day.Close)
		} else {
			fmt.Fprintf(&b, "%s%s closed", sep, d.Key())
		}
		sep = ", "
	}

	return b.String()
}

// IsOpen reports whether the facility is open at now according to the
// week schedule. The weekday and the time of day are taken from now in
// its own location, so callers choose the facility's location with
// now.In.
//
// Opening and closing times are inclusive. Days whose closing time is
// not after their opening time are always closed: intervals never wrap
// around midnight.
func IsOpen(week Week, now time.Time) bool {
	day := week.Day(WeekdayOf(now))
	if !day.Enabled {
		return false
	}

	if !day.Open.Before(day.Close) {
		return false
	}

	current := ClockOf(now).Minutes()

	return day.Open.Minutes() <= current && current <= day.Close.Minutes()
}
