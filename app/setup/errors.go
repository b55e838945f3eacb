package setup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alcortesm/physiofit-radar/app/schedule"
)

var (
	// ErrAlreadyConfigured aborts a setup because an entry already
	// exists.
	ErrAlreadyConfigured = errors.New("already configured")
	// ErrInvalidTransition is returned when a step is submitted in a
	// phase that does not accept it.
	ErrInvalidTransition = errors.New("invalid setup transition")
)

// InvalidTime is a malformed time field.
type InvalidTime struct {
	Weekday schedule.Weekday
	Field   string
	Value   string
}

// TimeFormatError is returned when an enabled day has malformed
// opening or closing times. It lists all the offending fields.
type TimeFormatError struct {
	Invalid []InvalidTime
}

func (e *TimeFormatError) Error() string {
	fields := make([]string, len(e.Invalid))
	for i, inv := range e.Invalid {
		fields[i] = fmt.Sprintf("%s=%q", inv.Field, inv.Value)
	}

	return fmt.Sprintf("invalid time format, want HH:MM: %s",
		strings.Join(fields, ", "))
}

// Fields returns the names of the offending fields.
func (e *TimeFormatError) Fields() []string {
	result := make([]string, len(e.Invalid))
	for i, inv := range e.Invalid {
		result[i] = inv.Field
	}

	return result
}
