package schedule

import (
	"fmt"
	"time"
)

// Weekday identifies a day of the calendar week. Unlike time.Weekday,
// weeks start on Monday.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysPerWeek is the number of weekdays in a Week.
const DaysPerWeek = 7

var weekdayKeys = [DaysPerWeek]string{
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
	"sunday",
}

var weekdayDisplayNames = [DaysPerWeek]string{
	"Montag",
	"Dienstag",
	"Mittwoch",
	"Donnerstag",
	"Freitag",
	"Samstag",
	"Sonntag",
}

// Weekdays returns all the weekdays in calendar order.
func Weekdays() []Weekday {
	return []Weekday{
		Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday,
	}
}

// WeekdayOf returns the weekday of t in its own location.
func WeekdayOf(t time.Time) Weekday {
	switch t.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// ParseWeekday returns the weekday for a key like "monday".
func ParseWeekday(key string) (Weekday, error) {
	for i, k := range weekdayKeys {
		if k == key {
			return Weekday(i), nil
		}
	}

	return 0, fmt.Errorf("unknown weekday %q", key)
}

// Valid reports whether d is one of the seven weekdays.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

// Key is the lower-case english name of the weekday, used to build
// field names such as "monday_open".
func (d Weekday) Key() string {
	if !d.Valid() {
		return fmt.Sprintf("weekday(%d)", int(d))
	}

	return weekdayKeys[d]
}

// DisplayName is the name shown to operators.
func (d Weekday) DisplayName() string {
	if !d.Valid() {
		return d.Key()
	}

	return weekdayDisplayNames[d]
}

func (d Weekday) String() string {
	return d.Key()
}

// EnabledField, OpenField and CloseField return the names of the form
// fields that carry the schedule of the weekday.
func (d Weekday) EnabledField() string { return d.Key() + "_enabled" }
func (d Weekday) OpenField() string    { return d.Key() + "_open" }
func (d Weekday) CloseField() string   { return d.Key() + "_close" }
