// Package sensor polls the studio occupancy while the gym is open and
// keeps the last reading for the consumers of the sensor.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alcortesm/physiofit-radar/app/gym"
	"github.com/alcortesm/physiofit-radar/app/schedule"
	"github.com/alcortesm/physiofit-radar/app/scrape"
)

// Identity of the sensor.
const (
	UniqueID = "physiofit_peine_utilization"
	Name     = "PhysioFIT Auslastung"
	Unit     = "%"
	Icon     = "mdi:weight-lifter"
)

type Config struct {
	Interval time.Duration `default:"5m"`
	// TimeZone is where the opening hours of the gym are defined.
	TimeZone string `default:"Europe/Berlin" split_words:"true"`
}

// Fetcher knows how to get the current occupancy of the gym.
type Fetcher interface {
	Fetch(context.Context) (*gym.Occupancy, error)
}

type Clock func() time.Time

// State is a snapshot of the sensor.
type State struct {
	Value     float64     `json:"value"`
	Unit      string      `json:"unit"`
	UniqueID  string      `json:"unique_id"`
	Name      string      `json:"name"`
	Icon      string      `json:"icon"`
	Available bool        `json:"available"`
	Source    gym.Source  `json:"source,omitempty"`
	Error     scrape.Kind `json:"error,omitempty"`
	Updated   time.Time   `json:"updated"`
}

// Sensor holds the last occupancy reading. Poll updates it and State
// reads it; both are safe for concurrent use.
type Sensor struct {
	logger   *zap.Logger
	fetcher  Fetcher
	clock    Clock
	week     schedule.Week
	location *time.Location

	mux       sync.Mutex
	reading   *gym.Occupancy
	errKind   scrape.Kind
	listeners []func(State)
}

// New returns a sensor for the given opening hours, evaluated in
// location. Before the first poll its value is 0 and it is not
// available.
func New(
	logger *zap.Logger,
	fetcher Fetcher,
	clock Clock,
	week schedule.Week,
	location *time.Location,
) *Sensor {
	return &Sensor{
		logger:   logger.Named("sensor"),
		fetcher:  fetcher,
		clock:    clock,
		week:     week,
		location: location,
	}
}

// Schedule returns the opening hours the sensor was created with.
func (s *Sensor) Schedule() schedule.Week {
	return s.week
}

// Subscribe registers fn to be called with the new state after every
// poll.
func (s *Sensor) Subscribe(fn func(State)) {
	s.mux.Lock()
	defer s.mux.Unlock()

	s.listeners = append(s.listeners, fn)
}

// Poll runs one cycle: if the gym is closed the reading is 0, otherwise
// the occupancy is fetched. Fetch failures are logged and turn into a 0
// reading; they are never returned. If ctx is cancelled during the
// fetch the previous reading is kept.
func (s *Sensor) Poll(ctx context.Context) {
	now := s.clock().In(s.location)

	if !schedule.IsOpen(s.week, now) {
		s.logger.Debug("gym is closed", zap.Time("now", now))
		s.set(gym.Closed(now), "")
		return
	}

	reading, err := s.fetcher.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			s.logger.Debug("poll cancelled", zap.Error(err))
			return
		}

		kind := scrape.KindNetwork

		var fetchErr *scrape.FetchError
		if errors.As(err, &fetchErr) {
			kind = fetchErr.Kind
		}

		s.logger.Warn("fetching occupancy",
			zap.String("kind", string(kind)),
			zap.Error(err))

		s.set(gym.Failed(now), kind)

		return
	}

	s.set(reading, "")
}

func (s *Sensor) set(reading *gym.Occupancy, kind scrape.Kind) {
	s.mux.Lock()

	s.reading = reading
	s.errKind = kind
	state := s.state()
	listeners := s.listeners

	s.mux.Unlock()

	s.logger.Info("occupancy updated", zap.Stringer("reading", reading))

	for _, fn := range listeners {
		fn(state)
	}
}

// State returns a snapshot of the sensor.
func (s *Sensor) State() State {
	s.mux.Lock()
	defer s.mux.Unlock()

	return s.state()
}

// state assumes the mutex is locked.
func (s *Sensor) state() State {
	result := State{
		Unit:     Unit,
		UniqueID: UniqueID,
		Name:     Name,
		Icon:     Icon,
	}

	if s.reading == nil {
		return result
	}

	result.Value = s.reading.Percent
	result.Available = true
	result.Source = s.reading.Source
	result.Error = s.errKind
	result.Updated = s.reading.Timestamp

	return result
}

// Run polls right away and then every interval until ctx is done. A
// poll that overruns its slot defers the next one instead of running
// concurrently with it.
func (s *Sensor) Run(ctx context.Context, interval time.Duration) error {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(s.location),
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					s.logger.Error("poll panicked",
						zap.String("job_id", jobID.String()),
						zap.String("job_name", jobName),
						zap.Any("panic", recoverData))
				}),
			),
		),
	)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.Poll, ctx),
		gocron.WithName("poll occupancy"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("registering poll job: %w", err)
	}

	s.logger.Info("polling started", zap.Duration("interval", interval))
	scheduler.Start()

	<-ctx.Done()

	if err := scheduler.Shutdown(); err != nil {
		return fmt.Errorf("shutting down scheduler: %w", err)
	}

	s.logger.Info("polling stopped")

	return nil
}
