package httpdeco

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// WithLogs logs every request along with the response status and the
// time it took to serve it.
func WithLogs(logger *zap.Logger) Decorator {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			verbose := &verboseResponseWriter{ResponseWriter: w}

			start := time.Now()
			h.ServeHTTP(verbose, r)
			elapsed := time.Since(start)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.Stringer("url", r.URL),
				zap.Int("status", verbose.status),
				zap.Duration("elapsed", elapsed),
			}

			if verbose.writeError != nil {
				logger.Warn("request", append(fields, zap.Error(verbose.writeError))...)
				return
			}

			logger.Info("request", fields...)
		})
	}
}

// VerboseResponseWriter wraps an http.ResponseWriter so you can
// inspect the status code and the write error after writing
// the response.
//
// Note this will hide optional methods in the http.ResponseWriter like
// http.Flusher or http.Hijacker.
type verboseResponseWriter struct {
	http.ResponseWriter
	status     int   // the status code set by the handler
	writeError error // the error returned by the last call to Write
}

func (w *verboseResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *verboseResponseWriter) Write(b []byte) (int, error) {
	// If WriteHeader has not yet been called, Write sets
	// status to http.StatusOK before writing the data.
	if w.status == 0 {
		w.status = http.StatusOK
	}

	var n int
	n, w.writeError = w.ResponseWriter.Write(b)

	return n, w.writeError
}
