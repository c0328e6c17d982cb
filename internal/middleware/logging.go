package middleware

import (
	"io"
	"net/http"

	"github.com/gorilla/handlers"
)

// DevLogging writes one Apache common-log line per request to out when
// enabled, and is a pass-through otherwise.
func DevLogging(enabled bool, out io.Writer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return handlers.LoggingHandler(out, next)
	}
}
