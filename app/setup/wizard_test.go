package setup_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"github.com/alcortesm/physiofit-radar/app/entry"
	"github.com/alcortesm/physiofit-radar/app/schedule"
	"github.com/alcortesm/physiofit-radar/app/setup"
)

// mockStore is an in-memory setup.Store.
type mockStore struct {
	exists    bool
	existsErr error
	commitErr error
	commits   []commit
}

type commit struct {
	UniqueID string
	Title    string
	Week     schedule.Week
}

func (m *mockStore) Exists(_ context.Context, _ string) (bool, error) {
	return m.exists, m.existsErr
}

func (m *mockStore) Commit(
	_ context.Context,
	uniqueID, title string,
	week schedule.Week,
) (entry.ID, error) {
	if m.commitErr != nil {
		return "", m.commitErr
	}

	m.commits = append(m.commits, commit{
		UniqueID: uniqueID,
		Title:    title,
		Week:     week,
	})

	return entry.ID(fmt.Sprintf("entry-%d", len(m.commits))), nil
}

func newWizard(t *testing.T, store setup.Store) *setup.Wizard {
	return setup.NewWizard(zaptest.NewLogger(t), store)
}

func regular() setup.DayInput {
	return setup.DayInput{Enabled: true, Open: "08:00", Close: "22:00"}
}

func regularDay() schedule.Day {
	return schedule.Day{
		Enabled: true,
		Open:    schedule.Clock{Hour: 8},
		Close:   schedule.Clock{Hour: 22},
	}
}

func start(t *testing.T, w *setup.Wizard) setup.Progress {
	t.Helper()

	p, _, err := w.Start(context.Background(), setup.Progress{})
	if err != nil {
		t.Fatal(err)
	}

	return p
}

func TestWizard(t *testing.T) {
	t.Parallel()

	subtests := map[string]func(t *testing.T){
		"start shows monday":                     startShowsMonday,
		"walks the whole week and commits once":  walksTheWeek,
		"invalid times do not advance":           invalidTimesDoNotAdvance,
		"disabled days skip validation":          disabledDaysSkipValidation,
		"aborts if already configured":           abortsIfConfigured,
		"aborts if configured while in progress": abortsIfConfiguredConcurrently,
		"store errors are returned":              storeErrors,
		"rejects submissions in terminal phases": rejectsTerminal,
		"rejects starting twice":                 rejectsStartTwice,
		"week form commits every day":            weekFormCommits,
		"week form reports every invalid field":  weekFormReportsAll,
		"week form only before the first day":    weekFormOnlyAtStart,
		"current form re-presents the step":      currentForm,
	}

	for name, fn := range subtests {
		fn := fn
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			fn(t)
		})
	}
}

func startShowsMonday(t *testing.T) {
	w := newWizard(t, &mockStore{})

	p, result, err := w.Start(context.Background(), setup.Progress{})
	if err != nil {
		t.Fatal(err)
	}

	wantProgress := setup.Progress{Phase: setup.AwaitingDay, Day: schedule.Monday}
	if diff := cmp.Diff(wantProgress, p); diff != "" {
		t.Errorf("progress (-want +got)\n%s", diff)
	}

	want := setup.Result{
		Type: setup.ResultForm,
		Form: &setup.Form{
			StepID:   setup.StepDay,
			Weekdays: []schedule.Weekday{schedule.Monday},
			Fields: []setup.Field{
				{Name: "monday_enabled", Kind: setup.FieldBool, Required: true, Default: "true"},
				{Name: "monday_open", Kind: setup.FieldTime, Default: "08:00"},
				{Name: "monday_close", Kind: setup.FieldTime, Default: "22:00"},
			},
			Placeholders: setup.Placeholders{
				Day:         "Montag",
				CurrentStep: 1,
				TotalSteps:  7,
			},
			Errors: map[string]string{},
		},
	}

	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("result (-want +got)\n%s", diff)
	}
}

func walksTheWeek(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	w := newWizard(t, store)

	p := start(t, w)

	var want schedule.Week

	for i, d := range schedule.Weekdays() {
		if p.Phase != setup.AwaitingDay || p.Day != d {
			t.Fatalf("step %d: want awaiting %s, got %s %s", i, d, p.Phase, p.Day)
		}

		in := regular()
		if d == schedule.Sunday {
			in = setup.DayInput{Enabled: false, Open: "", Close: ""}
		}

		if d == schedule.Saturday {
			in = setup.DayInput{Enabled: true, Open: "9:00", Close: "18:30"}
		}

		var (
			result setup.Result
			err    error
		)

		p, result, err = w.Submit(ctx, p, in)
		if err != nil {
			t.Fatalf("submitting %s: %v", d, err)
		}

		switch d {
		case schedule.Saturday:
			want = want.With(d, schedule.Day{
				Enabled: true,
				Open:    schedule.Clock{Hour: 9},
				Close:   schedule.Clock{Hour: 18, Minute: 30},
			})
		case schedule.Sunday:
			want = want.With(d, schedule.Day{})
		default:
			want = want.With(d, regularDay())
		}

		if d == schedule.Sunday {
			if result.Type != setup.ResultCreateEntry {
				t.Fatalf("want entry creation after sunday, got %#v", result)
			}

			if result.EntryID != "entry-1" {
				t.Errorf("want entry ID entry-1, got %s", result.EntryID)
			}

			if result.Title != setup.Title {
				t.Errorf("want title %q, got %q", setup.Title, result.Title)
			}

			continue
		}

		if len(store.commits) != 0 {
			t.Fatalf("committed before sunday, at %s", d)
		}

		if result.Type != setup.ResultForm {
			t.Fatalf("want a form after %s, got %#v", d, result)
		}

		next := d + 1
		placeholders := setup.Placeholders{
			Day:         next.DisplayName(),
			CurrentStep: int(next) + 1,
			TotalSteps:  schedule.DaysPerWeek,
		}

		if diff := cmp.Diff(placeholders, result.Form.Placeholders); diff != "" {
			t.Errorf("placeholders after %s (-want +got)\n%s", d, diff)
		}

		if diff := cmp.Diff(want, p.Collected); diff != "" {
			t.Errorf("collected after %s (-want +got)\n%s", d, diff)
		}
	}

	if p.Phase != setup.Completed || !p.Terminal() {
		t.Errorf("want completed, got %s", p.Phase)
	}

	wantCommits := []commit{{
		UniqueID: setup.UniqueID,
		Title:    setup.Title,
		Week:     want,
	}}

	if diff := cmp.Diff(wantCommits, store.commits); diff != "" {
		t.Errorf("commits (-want +got)\n%s", diff)
	}
}

func invalidTimesDoNotAdvance(t *testing.T) {
	malformed := []string{
		"08.00", "8-00", "24:00", "12:60", "ab:cd", "", "8", "08:00:00",
	}

	for _, bad := range malformed {
		bad := bad
		t.Run(fmt.Sprintf("%q", bad), func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			store := &mockStore{}
			w := newWizard(t, store)

			p := start(t, w)

			p, _, err := w.Submit(ctx, p, regular())
			if err != nil {
				t.Fatal(err)
			}

			before := p

			inputs := map[string]setup.DayInput{
				"open":  {Enabled: true, Open: bad, Close: "22:00"},
				"close": {Enabled: true, Open: "08:00", Close: bad},
			}

			for field, in := range inputs {
				got, result, err := w.Submit(ctx, before, in)

				var tfe *setup.TimeFormatError
				if !errors.As(err, &tfe) {
					t.Fatalf("%s: want TimeFormatError, got %v", field, err)
				}

				wantFields := []string{"tuesday_" + field}
				if diff := cmp.Diff(wantFields, tfe.Fields()); diff != "" {
					t.Errorf("%s: fields (-want +got)\n%s", field, diff)
				}

				if diff := cmp.Diff(before, got); diff != "" {
					t.Errorf("%s: progress changed (-want +got)\n%s", field, diff)
				}

				if result.Type != setup.ResultForm || result.Form.StepID != setup.StepDay {
					t.Fatalf("%s: want the day form again, got %#v", field, result)
				}

				wantErrors := map[string]string{
					setup.ErrorKeyBase:  setup.ErrorTimeFormat,
					"tuesday_" + field: setup.ErrorTimeFormat,
				}

				if diff := cmp.Diff(wantErrors, result.Form.Errors); diff != "" {
					t.Errorf("%s: form errors (-want +got)\n%s", field, diff)
				}

				if result.Form.Placeholders.Day != "Dienstag" {
					t.Errorf("%s: want the tuesday form, got %s",
						field, result.Form.Placeholders.Day)
				}
			}

			if len(store.commits) != 0 {
				t.Errorf("unexpected commits: %v", store.commits)
			}
		})
	}
}

func disabledDaysSkipValidation(t *testing.T) {
	ctx := context.Background()
	w := newWizard(t, &mockStore{})

	p := start(t, w)

	p, _, err := w.Submit(ctx, p, setup.DayInput{
		Enabled: false,
		Open:    "garbage",
		Close:   "10:30",
	})
	if err != nil {
		t.Fatal(err)
	}

	if p.Day != schedule.Tuesday {
		t.Errorf("want to advance to tuesday, got %s", p.Day)
	}

	want := schedule.Day{
		Enabled: false,
		Close:   schedule.Clock{Hour: 10, Minute: 30},
	}

	if diff := cmp.Diff(want, p.Collected.Day(schedule.Monday)); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}
}

func abortsIfConfigured(t *testing.T) {
	store := &mockStore{exists: true}
	w := newWizard(t, store)

	p, result, err := w.Start(context.Background(), setup.Progress{})
	if !errors.Is(err, setup.ErrAlreadyConfigured) {
		t.Fatalf("want ErrAlreadyConfigured, got %v", err)
	}

	if p.Phase != setup.Aborted || !p.Terminal() {
		t.Errorf("want aborted, got %s", p.Phase)
	}

	want := setup.Result{
		Type:   setup.ResultAbort,
		Reason: setup.ReasonAlreadyConfigured,
	}

	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}

	if _, _, err := w.Submit(context.Background(), p, regular()); !errors.Is(err, setup.ErrInvalidTransition) {
		t.Errorf("want ErrInvalidTransition submitting after abort, got %v", err)
	}

	if len(store.commits) != 0 {
		t.Errorf("unexpected commits: %v", store.commits)
	}
}

func abortsIfConfiguredConcurrently(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	w := newWizard(t, store)

	p := start(t, w)

	store.commitErr = fmt.Errorf("some wrapping: %w", entry.ErrDuplicate)

	var (
		result setup.Result
		err    error
	)

	for range schedule.Weekdays() {
		p, result, err = w.Submit(ctx, p, regular())
	}

	if !errors.Is(err, setup.ErrAlreadyConfigured) {
		t.Fatalf("want ErrAlreadyConfigured, got %v", err)
	}

	if p.Phase != setup.Aborted {
		t.Errorf("want aborted, got %s", p.Phase)
	}

	if result.Type != setup.ResultAbort {
		t.Errorf("want abort result, got %#v", result)
	}
}

func storeErrors(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("disk on fire")

	{ // exists
		w := newWizard(t, &mockStore{existsErr: cause})

		p, _, err := w.Start(ctx, setup.Progress{})
		if !errors.Is(err, cause) {
			t.Errorf("want cause %v, got %v", cause, err)
		}

		if p.Phase != setup.NotStarted {
			t.Errorf("want not started, got %s", p.Phase)
		}
	}

	{ // commit
		store := &mockStore{}
		w := newWizard(t, store)
		p := start(t, w)

		for d := schedule.Monday; d < schedule.Sunday; d++ {
			var err error
			p, _, err = w.Submit(ctx, p, regular())
			if err != nil {
				t.Fatal(err)
			}
		}

		store.commitErr = cause
		before := p

		got, _, err := w.Submit(ctx, p, regular())
		if !errors.Is(err, cause) {
			t.Errorf("want cause %v, got %v", cause, err)
		}

		if diff := cmp.Diff(before, got); diff != "" {
			t.Errorf("progress changed (-want +got)\n%s", diff)
		}
	}
}

func rejectsTerminal(t *testing.T) {
	ctx := context.Background()
	w := newWizard(t, &mockStore{})

	for _, p := range []setup.Progress{
		{},
		{Phase: setup.Completed},
		{Phase: setup.Aborted},
	} {
		got, _, err := w.Submit(ctx, p, regular())
		if !errors.Is(err, setup.ErrInvalidTransition) {
			t.Errorf("%s: want ErrInvalidTransition, got %v", p.Phase, err)
		}

		if diff := cmp.Diff(p, got); diff != "" {
			t.Errorf("%s: progress changed (-want +got)\n%s", p.Phase, diff)
		}

		if _, _, err := w.SubmitWeek(ctx, p, setup.WeekInput{}); !errors.Is(err, setup.ErrInvalidTransition) {
			t.Errorf("%s: week: want ErrInvalidTransition, got %v", p.Phase, err)
		}

		if _, err := w.Current(p); !errors.Is(err, setup.ErrInvalidTransition) {
			t.Errorf("%s: current: want ErrInvalidTransition, got %v", p.Phase, err)
		}
	}
}

func rejectsStartTwice(t *testing.T) {
	w := newWizard(t, &mockStore{})
	p := start(t, w)

	got, _, err := w.Start(context.Background(), p)
	if !errors.Is(err, setup.ErrInvalidTransition) {
		t.Errorf("want ErrInvalidTransition, got %v", err)
	}

	if diff := cmp.Diff(p, got); diff != "" {
		t.Errorf("progress changed (-want +got)\n%s", diff)
	}
}

func weekFormCommits(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	w := newWizard(t, store)
	p := start(t, w)

	result, err := w.WeekForm(p)
	if err != nil {
		t.Fatal(err)
	}

	if got := len(result.Form.Fields); got != 3*schedule.DaysPerWeek {
		t.Errorf("want %d fields, got %d", 3*schedule.DaysPerWeek, got)
	}

	var (
		in   setup.WeekInput
		want schedule.Week
	)

	for _, d := range schedule.Weekdays() {
		in[d] = regular()
		want = want.With(d, regularDay())
	}

	p, result, err = w.SubmitWeek(ctx, p, in)
	if err != nil {
		t.Fatal(err)
	}

	if p.Phase != setup.Completed {
		t.Errorf("want completed, got %s", p.Phase)
	}

	if result.Type != setup.ResultCreateEntry {
		t.Errorf("want entry creation, got %#v", result)
	}

	if diff := cmp.Diff(want, result.Schedule); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}

	if len(store.commits) != 1 {
		t.Errorf("want 1 commit, got %d", len(store.commits))
	}
}

func weekFormReportsAll(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	w := newWizard(t, store)
	p := start(t, w)

	var in setup.WeekInput
	for _, d := range schedule.Weekdays() {
		in[d] = regular()
	}

	in[schedule.Tuesday].Open = "25:00"
	in[schedule.Friday].Close = "late"
	in[schedule.Sunday] = setup.DayInput{Enabled: false, Open: "x", Close: "y"}

	got, result, err := w.SubmitWeek(ctx, p, in)

	var tfe *setup.TimeFormatError
	if !errors.As(err, &tfe) {
		t.Fatalf("want TimeFormatError, got %v", err)
	}

	wantFields := []string{"tuesday_open", "friday_close"}
	if diff := cmp.Diff(wantFields, tfe.Fields()); diff != "" {
		t.Errorf("fields (-want +got)\n%s", diff)
	}

	if diff := cmp.Diff(p, got); diff != "" {
		t.Errorf("progress changed (-want +got)\n%s", diff)
	}

	wantErrors := map[string]string{
		setup.ErrorKeyBase: setup.ErrorTimeFormat,
		"tuesday_open":     setup.ErrorTimeFormat,
		"friday_close":     setup.ErrorTimeFormat,
	}

	if diff := cmp.Diff(wantErrors, result.Form.Errors); diff != "" {
		t.Errorf("form errors (-want +got)\n%s", diff)
	}

	if len(store.commits) != 0 {
		t.Errorf("unexpected commits: %v", store.commits)
	}
}

func weekFormOnlyAtStart(t *testing.T) {
	ctx := context.Background()
	w := newWizard(t, &mockStore{})
	p := start(t, w)

	p, _, err := w.Submit(ctx, p, regular())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := w.WeekForm(p); !errors.Is(err, setup.ErrInvalidTransition) {
		t.Errorf("want ErrInvalidTransition, got %v", err)
	}

	if _, _, err := w.SubmitWeek(ctx, p, setup.WeekInput{}); !errors.Is(err, setup.ErrInvalidTransition) {
		t.Errorf("want ErrInvalidTransition, got %v", err)
	}
}

func currentForm(t *testing.T) {
	ctx := context.Background()
	w := newWizard(t, &mockStore{})
	p := start(t, w)

	p, want, err := w.Submit(ctx, p, regular())
	if err != nil {
		t.Fatal(err)
	}

	got, err := w.Current(p)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}
}
