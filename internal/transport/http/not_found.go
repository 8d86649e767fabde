package http

import "net/http"

// NotFoundHandler is the fallback route. Anything the mux does not know gets
// the standard JSON error shape instead of the stdlib plain-text 404.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	})
}
