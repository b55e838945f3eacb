package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	_ "github.com/joho/godotenv/autoload"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/alcortesm/physiofit-radar/app/entry"
	"github.com/alcortesm/physiofit-radar/app/hass"
	"github.com/alcortesm/physiofit-radar/app/scrape"
	"github.com/alcortesm/physiofit-radar/app/sensor"
	"github.com/alcortesm/physiofit-radar/app/setup"
	"github.com/alcortesm/physiofit-radar/app/web"
)

const (
	envPrefix = "PHYSIOFIT_RADAR"

	shutdownTimeout   = 10 * time.Second
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 30 * time.Second
	readHeaderTimeout = 2 * time.Second
)

type Config struct {
	LogLevel zapcore.Level `default:"info" split_words:"true"`
	Entries  entry.Config
	Scrape   scrape.Config
	Sensor   sensor.Config
	Web      web.Config
	MQTT     hass.Config
}

func main() {
	ctx, cancel := signalContext(os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var config Config
	err := envconfig.Process(envPrefix, &config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "processing environment variables: %v\n", err)
		os.Exit(1)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(config.LogLevel)
	logger := zap.Must(zapConfig.Build())

	if len(os.Args) > 1 && os.Args[1] == "check" {
		err = check(ctx, logger, config.Scrape)
	} else {
		err = run(ctx, logger, config)
	}

	if err != nil {
		logger.Error("exiting", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	_ = logger.Sync()
}

func signalContext(signals ...os.Signal) (
	context.Context, context.CancelFunc) {
	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)

	c := make(chan os.Signal, 1)
	signal.Notify(c, signals...)

	go func() {
		select {
		case <-c:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(c)
	}()

	return ctx, cancel
}

// check fetches the occupancy once and prints it, regardless of the
// opening hours.
func check(ctx context.Context, logger *zap.Logger, config scrape.Config) error {
	fetcher := scrape.NewFetcher(logger, scrape.NewClient(config), time.Now, config)

	occupancy, err := fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetching occupancy: %w", err)
	}

	fmt.Println(occupancy)

	return nil
}

// runningSensor holds the sensor once the gym is configured.
type runningSensor struct {
	atomic.Pointer[sensor.Sensor]
}

func (r *runningSensor) State() (sensor.State, bool) {
	s := r.Load()
	if s == nil {
		return sensor.State{}, false
	}

	return s.State(), true
}

func run(ctx context.Context, logger *zap.Logger, config Config) error {
	location, err := time.LoadLocation(config.Sensor.TimeZone)
	if err != nil {
		return fmt.Errorf("loading time zone: %w", err)
	}

	store, err := entry.Open(config.Entries.Path, time.Now)
	if err != nil {
		return fmt.Errorf("opening entries: %w", err)
	}

	sessions, err := web.NewSessions(config.Web.Sessions)
	if err != nil {
		return fmt.Errorf("creating sessions: %w", err)
	}

	fetcher := scrape.NewFetcher(logger, scrape.NewClient(config.Scrape),
		time.Now, config.Scrape)

	g, ctx := errgroup.WithContext(ctx)

	var publisher *hass.Publisher

	if config.MQTT.Enable {
		publisher, err = hass.NewPublisher(logger, config.MQTT,
			func(opts *mqtt.ClientOptions) hass.Client {
				return mqtt.NewClient(opts)
			})
		if err != nil {
			return fmt.Errorf("creating mqtt publisher: %w", err)
		}

		g.Go(func() error {
			return publisher.Run(ctx)
		})
	}

	var running runningSensor

	start := func(e entry.Entry) {
		s := sensor.New(logger, fetcher, time.Now, e.Schedule, location)
		if publisher != nil {
			s.Subscribe(publisher.Update)
		}

		if !running.CompareAndSwap(nil, s) {
			return
		}

		logger.Info("starting sensor",
			zap.String("entry_id", string(e.ID)),
			zap.Stringer("schedule", e.Schedule))

		g.Go(func() error {
			return s.Run(ctx, config.Sensor.Interval)
		})
	}

	store.Subscribe(func(e entry.Entry) {
		if e.UniqueID == setup.UniqueID {
			start(e)
		}
	})

	e, err := store.Get(ctx, setup.UniqueID)
	switch {
	case errors.Is(err, entry.ErrNotFound):
		logger.Info("not configured yet, complete the setup at /setup")
	case err != nil:
		return fmt.Errorf("loading entry: %w", err)
	default:
		start(e)
	}

	w := web.New(logger, &running, setup.NewWizard(logger, store), sessions)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Web.Port),
		Handler:           w.Handler(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g.Go(func() error {
		logger.Info("starting server", zap.Int("port", config.Web.Port))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}

		return nil
	})

	return g.Wait()
}
