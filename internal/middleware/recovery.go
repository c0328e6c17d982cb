package middleware

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"

	"natours-api/internal/apperror"
)

// Recovery turns a panic anywhere below it into a programming error and
// hands it to errs.
func Recovery(errs ErrorResponder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Printf("panic: %v [request_id=%s]\n%s", rec, GetRequestID(r.Context()), debug.Stack())
				errs.Respond(w, r, apperror.Wrap(fmt.Errorf("panic: %v", rec)))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
