package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"natours-api/internal/apperror"
)

const DefaultBodyLimit = 10 * 1024

const NonJSONBodyMessage = "Request body must be sent as application/json"

type bodyKey struct{}

// ParsedBody returns the decoded JSON body stored by BodyParser.
func ParsedBody(r *http.Request) (any, bool) {
	v := r.Context().Value(bodyKey{})
	if v == nil {
		return nil, false
	}
	return v, true
}

// withBody stores v as the parsed body and replaces r.Body with its JSON
// encoding so handlers decode the sanitized value.
func withBody(r *http.Request, v any) (*http.Request, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	r = r.WithContext(context.WithValue(r.Context(), bodyKey{}, v))
	r.Body = io.NopCloser(bytes.NewReader(raw))
	r.ContentLength = int64(len(raw))
	return r, nil
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && (mt == "application/json" || mt == "application/merge-patch+json")
}

// BodyParser caps request bodies at limit bytes and decodes JSON bodies
// into the request context. Oversized and non-JSON bodies never reach a
// handler.
func BodyParser(limit int64, errs ErrorResponder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > limit {
				errs.Respond(w, r, tooLarge(limit))
				return
			}

			raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
			r.Body.Close()
			if err != nil {
				var maxErr *http.MaxBytesError
				if errors.As(err, &maxErr) {
					errs.Respond(w, r, tooLarge(limit))
					return
				}
				errs.Respond(w, r, apperror.BadRequest("Failed to read request body"))
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(raw))
			if len(bytes.TrimSpace(raw)) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			// Only JSON bodies pass through the sanitizing stages.
			if !isJSON(r) {
				errs.Respond(w, r, apperror.UnsupportedMediaType(NonJSONBodyMessage))
				return
			}

			var parsed any
			if err := json.Unmarshal(raw, &parsed); err != nil {
				errs.Respond(w, r, apperror.BadRequest("Invalid JSON body"))
				return
			}

			parsedReq, err := withBody(r, parsed)
			if err != nil {
				errs.Respond(w, r, err)
				return
			}
			next.ServeHTTP(w, parsedReq)
		})
	}
}

func tooLarge(limit int64) error {
	return apperror.PayloadTooLarge(fmt.Sprintf("Request body larger than %d bytes", limit))
}
