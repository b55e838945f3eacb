// Package web serves the sensor state and the setup wizard over HTTP.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/alcortesm/physiofit-radar/app/schedule"
	"github.com/alcortesm/physiofit-radar/app/sensor"
	"github.com/alcortesm/physiofit-radar/app/setup"
	"github.com/alcortesm/physiofit-radar/pkg/httpdeco"
)

var tmpl = template.Must(
	template.New("pages").
		Parse(layout + formPage + donePage + abortPage + errorPage))

type Config struct {
	Port int `default:"8080"`
	// Sessions is how many setup flows can be in course at once.
	Sessions int `default:"16"`
}

// StateReader knows how to get the state of the running sensor. It
// returns false if there is no sensor running.
type StateReader interface {
	State() (sensor.State, bool)
}

// Wizard drives setup flows.
type Wizard interface {
	Start(context.Context, setup.Progress) (setup.Progress, setup.Result, error)
	Current(setup.Progress) (setup.Result, error)
	WeekForm(setup.Progress) (setup.Result, error)
	Submit(context.Context, setup.Progress, setup.DayInput) (setup.Progress, setup.Result, error)
	SubmitWeek(context.Context, setup.Progress, setup.WeekInput) (setup.Progress, setup.Result, error)
}

type Web struct {
	logger   *zap.Logger
	states   StateReader
	wizard   Wizard
	sessions *Sessions
}

func New(
	logger *zap.Logger,
	states StateReader,
	wizard Wizard,
	sessions *Sessions,
) *Web {
	return &Web{
		logger:   logger.Named("web"),
		states:   states,
		wizard:   wizard,
		sessions: sessions,
	}
}

// Handler returns all the routes, decorated with logs and panic
// recovery.
func (w *Web) Handler() http.Handler {
	mux := http.NewServeMux()

	routes := map[string]http.Handler{
		"GET /api/state":   w.StateHandler(),
		"GET /healthcheck": HealthHandler(),
		"GET /style.css":   StyleHandler(),
		"GET /setup":       w.StartHandler(false),
		"POST /setup":      w.SubmitDayHandler(),
		"GET /setup/week":  w.StartHandler(true),
		"POST /setup/week": w.SubmitWeekHandler(),
	}

	for pattern, h := range routes {
		mux.Handle(pattern, h)
	}

	return httpdeco.Decorate(mux,
		httpdeco.WithRecovery(w.logger),
		httpdeco.WithLogs(w.logger),
	)
}

// StateHandler serves the sensor state as JSON, or 503 if the sensor
// is not running yet.
func (w *Web) StateHandler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		state, ok := w.states.State()
		if !ok {
			http.Error(rw, "sensor not running, complete the setup first",
				http.StatusServiceUnavailable)
			return
		}

		rw.Header().Set("Content-type", "application/json")

		if err := json.NewEncoder(rw).Encode(state); err != nil {
			w.logger.Warn("writing state", zap.Error(err))
		}
	})
}

func HealthHandler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-type", "text/plain")
		rw.Write([]byte("ok"))
	})
}

// StartHandler presents the current step of the flow in the "flow"
// query parameter, or starts a new flow if there is none. If week is
// true new flows present the combined form.
func (w *Web) StartHandler(week bool) http.Handler {
	action := "/setup"
	if week {
		action = "/setup/week"
	}

	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if id := r.URL.Query().Get("flow"); id != "" {
			w.current(rw, id, action)
			return
		}

		p, result, err := w.wizard.Start(r.Context(), setup.Progress{})
		if errors.Is(err, setup.ErrAlreadyConfigured) {
			w.render(rw, http.StatusConflict, "abort", nil)
			return
		}

		if err != nil {
			w.fail(rw, err)
			return
		}

		if week {
			if result, err = w.wizard.WeekForm(p); err != nil {
				w.fail(rw, err)
				return
			}
		}

		id := w.sessions.Add(p)
		w.renderForm(rw, http.StatusOK, id, action, result.Form, nil)
	})
}

func (w *Web) current(rw http.ResponseWriter, id, action string) {
	p, ok := w.sessions.Get(id)
	if !ok {
		w.render(rw, http.StatusNotFound, "error", "Unbekannte Einrichtung.")
		return
	}

	var (
		result setup.Result
		err    error
	)

	if action == "/setup/week" {
		result, err = w.wizard.WeekForm(p)
	} else {
		result, err = w.wizard.Current(p)
	}

	if errors.Is(err, setup.ErrInvalidTransition) {
		w.render(rw, http.StatusConflict, "error", "Dieser Schritt ist nicht mehr verfügbar.")
		return
	}

	if err != nil {
		w.fail(rw, err)
		return
	}

	w.renderForm(rw, http.StatusOK, id, action, result.Form, nil)
}

// SubmitDayHandler handles the form of a single weekday.
func (w *Web) SubmitDayHandler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		id, p, ok := w.flow(rw, r)
		if !ok {
			return
		}

		in := dayInput(r.PostForm, p.Day)
		next, result, err := w.wizard.Submit(r.Context(), p, in)
		w.handle(rw, id, "/setup", r.PostForm, next, result, err)
	})
}

// SubmitWeekHandler handles the combined form.
func (w *Web) SubmitWeekHandler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		id, p, ok := w.flow(rw, r)
		if !ok {
			return
		}

		var in setup.WeekInput
		for _, d := range schedule.Weekdays() {
			in[d] = dayInput(r.PostForm, d)
		}

		next, result, err := w.wizard.SubmitWeek(r.Context(), p, in)
		w.handle(rw, id, "/setup/week", r.PostForm, next, result, err)
	})
}

// flow parses the submitted form and returns the flow it belongs to.
// If there is any problem an error page is written and ok is false.
func (w *Web) flow(rw http.ResponseWriter, r *http.Request) (id string, p setup.Progress, ok bool) {
	if err := r.ParseForm(); err != nil {
		w.render(rw, http.StatusBadRequest, "error", "Ungültige Eingabe.")
		return "", p, false
	}

	id = r.PostForm.Get("flow")

	p, ok = w.sessions.Get(id)
	if !ok {
		w.render(rw, http.StatusNotFound, "error", "Unbekannte Einrichtung.")
		return "", p, false
	}

	return id, p, true
}

func (w *Web) handle(
	rw http.ResponseWriter,
	id string,
	action string,
	submitted url.Values,
	next setup.Progress,
	result setup.Result,
	err error,
) {
	var timeFormatErr *setup.TimeFormatError

	switch {
	case errors.As(err, &timeFormatErr):
		w.renderForm(rw, http.StatusUnprocessableEntity, id, action, result.Form, submitted)
		return
	case errors.Is(err, setup.ErrAlreadyConfigured):
		w.sessions.Delete(id)
		w.render(rw, http.StatusConflict, "abort", nil)
		return
	case errors.Is(err, setup.ErrInvalidTransition):
		w.render(rw, http.StatusConflict, "error", "Dieser Schritt ist nicht mehr verfügbar.")
		return
	case err != nil:
		w.fail(rw, err)
		return
	}

	switch result.Type {
	case setup.ResultCreateEntry:
		w.sessions.Delete(id)
		w.render(rw, http.StatusOK, "done", summary(result.Schedule))
	case setup.ResultAbort:
		w.sessions.Delete(id)
		w.render(rw, http.StatusConflict, "abort", nil)
	default:
		if !w.sessions.Update(id, next) {
			w.render(rw, http.StatusNotFound, "error", "Unbekannte Einrichtung.")
			return
		}

		w.renderForm(rw, http.StatusOK, id, action, result.Form, nil)
	}
}

func (w *Web) fail(rw http.ResponseWriter, err error) {
	w.logger.Error("setup failed", zap.Error(err))
	w.render(rw, http.StatusInternalServerError, "error", "Interner Fehler, bitte erneut versuchen.")
}

func (w *Web) renderForm(
	rw http.ResponseWriter,
	status int,
	id string,
	action string,
	form *setup.Form,
	submitted url.Values,
) {
	w.render(rw, status, "form", newFormView(id, action, form, submitted))
}

func (w *Web) render(rw http.ResponseWriter, status int, page string, data any) {
	rw.Header().Set("Content-type", "text/html; charset=utf-8")
	rw.WriteHeader(status)

	if err := tmpl.ExecuteTemplate(rw, page, data); err != nil {
		w.logger.Error("rendering page", zap.String("page", page), zap.Error(err))
	}
}

func dayInput(values url.Values, d schedule.Weekday) setup.DayInput {
	return setup.DayInput{
		Enabled: checked(values.Get(d.EnabledField())),
		Open:    values.Get(d.OpenField()),
		Close:   values.Get(d.CloseField()),
	}
}

// checked tells if a checkbox value means true. Browsers send "on"
// for checkboxes without a value.
func checked(v string) bool {
	if v == "on" {
		return true
	}

	b, err := strconv.ParseBool(v)

	return err == nil && b
}

type formView struct {
	Flow    string
	Action  string
	Step    string
	Invalid bool
	Groups  []group
}

type group struct {
	Day    string
	Inputs []input
}

type input struct {
	Name    string
	Label   string
	Type    string
	Value   string
	Checked bool
	Invalid bool
}

var labels = map[string]string{
	"enabled": "Geöffnet",
	"open":    "Öffnet um",
	"close":   "Schließt um",
}

// newFormView prepares a form for rendering. Inputs show the submitted
// values if there are any, or the defaults otherwise.
func newFormView(id, action string, form *setup.Form, submitted url.Values) formView {
	view := formView{
		Flow:    id,
		Action:  action,
		Invalid: form.Errors[setup.ErrorKeyBase] != "",
	}

	if form.StepID == setup.StepDay {
		view.Step = form.Placeholders.Day + ", Schritt " +
			strconv.Itoa(form.Placeholders.CurrentStep) + " von " +
			strconv.Itoa(form.Placeholders.TotalSteps)
	}

	for _, d := range form.Weekdays {
		g := group{Day: d.DisplayName()}

		for _, f := range form.Fields {
			suffix, ok := strings.CutPrefix(f.Name, d.Key()+"_")
			if !ok {
				continue
			}

			in := input{
				Name:    f.Name,
				Label:   labels[suffix],
				Invalid: form.Errors[f.Name] != "",
			}

			value := f.Default
			if submitted != nil {
				value = submitted.Get(f.Name)
			}

			switch f.Kind {
			case setup.FieldBool:
				in.Type = "checkbox"
				in.Checked = checked(value)
			default:
				in.Type = "time"
				in.Value = value
			}

			g.Inputs = append(g.Inputs, in)
		}

		view.Groups = append(view.Groups, g)
	}

	return view
}

type summaryLine struct {
	Day   string
	Hours string
}

func summary(week schedule.Week) []summaryLine {
	result := make([]summaryLine, 0, schedule.DaysPerWeek)

	for _, d := range schedule.Weekdays() {
		day := week.Day(d)

		hours := "geschlossen"
		if day.Enabled {
			hours = day.Open.String() + " - " + day.Close.String()
		}

		result = append(result, summaryLine{Day: d.DisplayName(), Hours: hours})
	}

	return result
}
