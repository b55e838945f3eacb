// Studiopage serves a fake studio page to run the radar against.
package main

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/alcortesm/physiofit-radar/pkg/httpdeco"
)

const (
	shutdownTimeoutSeconds   = 10
	readTimeoutSeconds       = 10
	writeTimeoutSeconds      = 10
	idleTimeoutSeconds       = 30
	readHeaderTimeoutSeconds = 2
)

type config struct {
	Port       int    `default:"8081"`
	Percentage string `default:"37,5%"`
	// Status other than 200 makes the page fail.
	Status int `default:"200"`
	// Delay is how long to wait before answering, to simulate timeouts.
	Delay time.Duration `default:"0s"`
}

var page = template.Must(template.New("workload").Parse(`<!DOCTYPE html>
<html lang="de">
<head>
	<meta charset="utf-8">
	<title>Studioauslastung</title>
</head>
<body>
	<div class="chart">
		<div id="studioChart1" percentage="{{.}}"></div>
	</div>
</body>
</html>`))

func main() {
	logger := zap.Must(zap.NewDevelopment())
	defer logger.Sync()

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	var config config
	envPrefix := "STUDIOPAGE"
	err := envconfig.Process(envPrefix, &config)
	if err != nil {
		logger.Fatal("processing environment variables", zap.Error(err))
	}

	mux := http.NewServeMux()

	mux.Handle("GET /workload", httpdeco.Decorate(
		workloadHandler(logger, config),
		httpdeco.WithLogs(logger),
	))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Port),
		Handler:           mux,
		ReadTimeout:       readTimeoutSeconds * time.Second,
		WriteTimeout:      writeTimeoutSeconds * time.Second,
		IdleTimeout:       idleTimeoutSeconds * time.Second,
		ReadHeaderTimeout: readHeaderTimeoutSeconds * time.Second,
	}

	logger.Info("starting server", zap.Int("port", config.Port))

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-done

	logger.Info("signal received: stopping server")

	ctx, cancel := context.WithTimeout(
		context.Background(),
		shutdownTimeoutSeconds*time.Second,
	)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("shutting down server", zap.Error(err))
	}
}

func workloadHandler(logger *zap.Logger, config config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(config.Delay):
		case <-r.Context().Done():
			return
		}

		if config.Status != http.StatusOK {
			http.Error(w, http.StatusText(config.Status), config.Status)
			return
		}

		w.Header().Set("Content-type", "text/html; charset=utf-8")

		if err := page.Execute(w, config.Percentage); err != nil {
			logger.Warn("writing page", zap.Error(err))
		}
	})
}
