package setup

import (
	"github.com/alcortesm/physiofit-radar/app/schedule"
)

// Step identifiers.
const (
	StepDay  = "day"
	StepWeek = "week"
)

// Keys used in Form.Errors and Result.Reason.
const (
	ErrorKeyBase            = "base"
	ErrorTimeFormat         = "time_format"
	ReasonAlreadyConfigured = "already_configured"
)

// FieldKind tells how a field should be presented.
type FieldKind int

const (
	FieldBool FieldKind = iota
	FieldTime
)

// Field describes a form input.
type Field struct {
	Name     string
	Kind     FieldKind
	Required bool
	// Default is "true"/"false" for FieldBool and "HH:MM" for
	// FieldTime.
	Default string
}

// Placeholders carry presentation data for the form description.
type Placeholders struct {
	Day         string
	CurrentStep int
	TotalSteps  int
}

// Form describes the next input the operator has to provide.
type Form struct {
	StepID       string
	Weekdays     []schedule.Weekday
	Fields       []Field
	Placeholders Placeholders
	// Errors maps field names (or ErrorKeyBase) to error keys.
	Errors map[string]string
}

func dayFields(d schedule.Weekday) []Field {
	return []Field{
		{Name: d.EnabledField(), Kind: FieldBool, Required: true, Default: "true"},
		{Name: d.OpenField(), Kind: FieldTime, Default: schedule.DefaultOpen.String()},
		{Name: d.CloseField(), Kind: FieldTime, Default: schedule.DefaultClose.String()},
	}
}

func dayForm(d schedule.Weekday) *Form {
	return &Form{
		StepID:   StepDay,
		Weekdays: []schedule.Weekday{d},
		Fields:   dayFields(d),
		Placeholders: Placeholders{
			Day:         d.DisplayName(),
			CurrentStep: int(d) + 1,
			TotalSteps:  schedule.DaysPerWeek,
		},
		Errors: map[string]string{},
	}
}

func weekForm() *Form {
	f := &Form{
		StepID:   StepWeek,
		Weekdays: schedule.Weekdays(),
		Placeholders: Placeholders{
			CurrentStep: 1,
			TotalSteps:  1,
		},
		Errors: map[string]string{},
	}

	for _, d := range f.Weekdays {
		f.Fields = append(f.Fields, dayFields(d)...)
	}

	return f
}

func withErrors(f *Form, err *TimeFormatError) *Form {
	f.Errors[ErrorKeyBase] = ErrorTimeFormat
	for _, field := range err.Fields() {
		f.Errors[field] = ErrorTimeFormat
	}

	return f
}
