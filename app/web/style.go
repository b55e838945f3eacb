package web

import "net/http"

// StyleHandler serves the style sheet of the setup pages.
func StyleHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-type", "text/css")
		w.Write([]byte(css))
	})
}
