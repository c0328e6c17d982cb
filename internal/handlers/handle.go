package handlers

import (
	"net/http"

	"natours-api/internal/middleware"
)

// HandlerFunc is an http handler that reports failure by returning it.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle adapts fn to http.Handler. A returned error is written by errs and
// nothing else; fn must not have started the response.
func Handle(errs middleware.ErrorResponder, fn HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			errs.Respond(w, r, err)
		}
	})
}
