// Package httpdeco decorates http.Handlers with cross-cutting
// behavior.
package httpdeco

import (
	"net/http"

	"go.uber.org/zap"
)

// Decorator decorates http.Handlers.
type Decorator func(http.Handler) http.Handler

// Decorate applies a bunch of decorators to an http.Handler. The last
// decorator is the outermost one.
func Decorate(h http.Handler, dd ...Decorator) http.Handler {
	result := h

	for _, d := range dd {
		result = d(result)
	}

	return result
}

// WithRecovery turns panics in the handler into 500 responses.
func WithRecovery(logger *zap.Logger) Decorator {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}

					logger.Error("handler panicked",
						zap.String("method", r.Method),
						zap.Stringer("url", r.URL),
						zap.Any("panic", p))

					http.Error(w, http.StatusText(http.StatusInternalServerError),
						http.StatusInternalServerError)
				}
			}()

			h.ServeHTTP(w, r)
		})
	}
}
