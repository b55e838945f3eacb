// Package setup implements the wizard that collects the weekly opening
// hours of the gym, one weekday at a time.
//
// The wizard is a finite state machine. Its state, a Progress value,
// is owned by the caller and threaded through every call:
//
//	NotStarted --Start--> AwaitingDay(monday) | Aborted
//	AwaitingDay(d) --Submit--> AwaitingDay(d) (invalid times)
//	                         | AwaitingDay(d+1)
//	                         | Completed (after sunday)
//	AwaitingDay(monday) --SubmitWeek--> AwaitingDay(monday) | Completed
//
// Completed and Aborted are terminal.
package setup

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/alcortesm/physiofit-radar/app/entry"
	"github.com/alcortesm/physiofit-radar/app/schedule"
)

const (
	// UniqueID is the singleton identity of the configuration entry.
	UniqueID = "physiofit_radar"
	// Title of the configuration entry.
	Title = "PhysioFIT Auslastungsradar"
)

// Phase of a setup.
type Phase int

const (
	NotStarted Phase = iota
	AwaitingDay
	Completed
	Aborted
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not_started"
	case AwaitingDay:
		return "awaiting_day"
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Progress is the state of a setup. The zero value is a setup that has
// not started yet.
type Progress struct {
	Phase Phase
	// Day is the weekday being asked for while AwaitingDay.
	Day schedule.Weekday
	// Collected holds the days submitted so far.
	Collected schedule.Week
}

// Terminal reports whether the setup is over.
func (p Progress) Terminal() bool {
	return p.Phase == Completed || p.Phase == Aborted
}

// ResultType tells what a Result asks the caller to do.
type ResultType int

const (
	// ResultForm asks the caller to present Result.Form.
	ResultForm ResultType = iota
	// ResultAbort tells the setup was aborted for Result.Reason.
	ResultAbort
	// ResultCreateEntry tells a new entry was committed.
	ResultCreateEntry
)

// Result is the outcome of a wizard step.
type Result struct {
	Type   ResultType
	Form   *Form
	Reason string
	// EntryID, Title and Schedule describe the created entry.
	EntryID  entry.ID
	Title    string
	Schedule schedule.Week
}

// DayInput is what the operator submits for one weekday.
type DayInput struct {
	Enabled bool
	Open    string
	Close   string
}

// WeekInput is the combined form: one DayInput per weekday.
type WeekInput [schedule.DaysPerWeek]DayInput

// Store is where completed setups are committed.
type Store interface {
	Exists(ctx context.Context, uniqueID string) (bool, error)
	Commit(ctx context.Context, uniqueID, title string, week schedule.Week) (entry.ID, error)
}

// Wizard drives setups. It holds no per-setup state, so a single
// Wizard can serve many concurrent setups.
type Wizard struct {
	logger *zap.Logger
	store  Store
}

func NewWizard(logger *zap.Logger, store Store) *Wizard {
	return &Wizard{
		logger: logger.Named("setup"),
		store:  store,
	}
}

// Start begins a setup. If the gym is already configured the setup is
// aborted and ErrAlreadyConfigured is returned along with the abort
// result; nothing is written in that case.
func (w *Wizard) Start(ctx context.Context, p Progress) (Progress, Result, error) {
	if p.Phase != NotStarted {
		return p, Result{}, fmt.Errorf("%w: start in phase %s",
			ErrInvalidTransition, p.Phase)
	}

	exists, err := w.store.Exists(ctx, UniqueID)
	if err != nil {
		return p, Result{}, fmt.Errorf("checking existing entries: %w", err)
	}

	if exists {
		w.logger.Info("setup aborted, already configured")
		return abort()
	}

	next := Progress{
		Phase: AwaitingDay,
		Day:   schedule.Monday,
	}

	return next, Result{Type: ResultForm, Form: dayForm(next.Day)}, nil
}

// Current returns the result that presents the current step again.
func (w *Wizard) Current(p Progress) (Result, error) {
	if p.Phase != AwaitingDay {
		return Result{}, fmt.Errorf("%w: no form in phase %s",
			ErrInvalidTransition, p.Phase)
	}

	return Result{Type: ResultForm, Form: dayForm(p.Day)}, nil
}

// WeekForm returns the combined form. It is only available before the
// first day has been submitted.
func (w *Wizard) WeekForm(p Progress) (Result, error) {
	if p.Phase != AwaitingDay || p.Day != schedule.Monday {
		return Result{}, fmt.Errorf("%w: no week form in phase %s, day %s",
			ErrInvalidTransition, p.Phase, p.Day)
	}

	return Result{Type: ResultForm, Form: weekForm()}, nil
}

// Submit handles the input for the current weekday.
//
// If the input has malformed times, a *TimeFormatError is returned
// along with the unchanged progress and a result presenting the same
// step with field errors.
func (w *Wizard) Submit(ctx context.Context, p Progress, in DayInput) (Progress, Result, error) {
	if p.Phase != AwaitingDay || !p.Day.Valid() {
		return p, Result{}, fmt.Errorf("%w: submit day in phase %s",
			ErrInvalidTransition, p.Phase)
	}

	day, invalid := parseDay(p.Day, in)
	if len(invalid) > 0 {
		err := &TimeFormatError{Invalid: invalid}
		w.logger.Debug("invalid day submitted",
			zap.Stringer("weekday", p.Day), zap.Error(err))

		return p, Result{Type: ResultForm, Form: withErrors(dayForm(p.Day), err)}, err
	}

	next := p
	next.Collected = p.Collected.With(p.Day, day)

	if p.Day < schedule.Sunday {
		next.Day = p.Day + 1
		return next, Result{Type: ResultForm, Form: dayForm(next.Day)}, nil
	}

	return w.commit(ctx, p, next.Collected)
}

// SubmitWeek handles the combined form. All the weekdays are validated
// and every malformed field is reported at once.
func (w *Wizard) SubmitWeek(ctx context.Context, p Progress, in WeekInput) (Progress, Result, error) {
	if p.Phase != AwaitingDay || p.Day != schedule.Monday {
		return p, Result{}, fmt.Errorf("%w: submit week in phase %s, day %s",
			ErrInvalidTransition, p.Phase, p.Day)
	}

	var (
		week    schedule.Week
		invalid []InvalidTime
	)

	for _, d := range schedule.Weekdays() {
		day, inv := parseDay(d, in[d])
		week = week.With(d, day)
		invalid = append(invalid, inv...)
	}

	if len(invalid) > 0 {
		err := &TimeFormatError{Invalid: invalid}
		w.logger.Debug("invalid week submitted", zap.Error(err))

		return p, Result{Type: ResultForm, Form: withErrors(weekForm(), err)}, err
	}

	return w.commit(ctx, p, week)
}

func (w *Wizard) commit(ctx context.Context, p Progress, week schedule.Week) (Progress, Result, error) {
	id, err := w.store.Commit(ctx, UniqueID, Title, week)
	if errors.Is(err, entry.ErrDuplicate) {
		w.logger.Info("setup aborted, configured concurrently")
		return abort()
	}

	if err != nil {
		return p, Result{}, fmt.Errorf("committing entry: %w", err)
	}

	w.logger.Info("setup completed",
		zap.String("entry_id", string(id)),
		zap.Stringer("schedule", week))

	next := Progress{
		Phase:     Completed,
		Day:       schedule.Sunday,
		Collected: week,
	}

	result := Result{
		Type:     ResultCreateEntry,
		EntryID:  id,
		Title:    Title,
		Schedule: week,
	}

	return next, result, nil
}

func abort() (Progress, Result, error) {
	return Progress{Phase: Aborted},
		Result{Type: ResultAbort, Reason: ReasonAlreadyConfigured},
		ErrAlreadyConfigured
}

// parseDay validates the times of enabled days. Times of disabled days
// are kept if they parse and zeroed otherwise.
func parseDay(d schedule.Weekday, in DayInput) (schedule.Day, []InvalidTime) {
	opens, openErr := schedule.ParseClock(in.Open)
	closes, closeErr := schedule.ParseClock(in.Close)

	if !in.Enabled {
		return schedule.Day{Open: opens, Close: closes}, nil
	}

	var invalid []InvalidTime

	if openErr != nil {
		invalid = append(invalid, InvalidTime{
			Weekday: d, Field: d.OpenField(), Value: in.Open,
		})
	}

	if closeErr != nil {
		invalid = append(invalid, InvalidTime{
			Weekday: d, Field: d.CloseField(), Value: in.Close,
		})
	}

	if len(invalid) > 0 {
		return schedule.Day{}, invalid
	}

	return schedule.Day{Enabled: true, Open: opens, Close: closes}, nil
}
