package middleware

import (
	"html"
	"net/http"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// unsafeKey reports whether a key could be read as a MongoDB operator or a
// nested path.
func unsafeKey(key string) bool {
	return strings.HasPrefix(key, "$") || strings.Contains(key, ".")
}

// unsafeQueryKey checks the base name and every bracket segment, so both
// "$where" and "price[$gt]" are rejected.
func unsafeQueryKey(key string) bool {
	for _, part := range strings.FieldsFunc(key, func(r rune) bool { return r == '[' || r == ']' }) {
		if unsafeKey(part) {
			return true
		}
	}
	return false
}

func stripOperators(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if unsafeKey(k) {
				continue
			}
			out[k] = stripOperators(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = stripOperators(val)
		}
		return out
	default:
		return v
	}
}

func mapStrings(v any, fn func(string) string) any {
	switch t := v.(type) {
	case string:
		return fn(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = mapStrings(val, fn)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = mapStrings(val, fn)
		}
		return out
	default:
		return v
	}
}

// rewriteBody applies fn to the parsed body, if any, and stores the result.
func rewriteBody(r *http.Request, fn func(any) any) (*http.Request, error) {
	body, ok := ParsedBody(r)
	if !ok {
		return r, nil
	}
	return withBody(r, fn(body))
}

// NoSQLSanitize drops operator-looking keys from the JSON body and query.
func NoSQLSanitize(errs ErrorResponder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			changed := false
			for k := range q {
				if unsafeQueryKey(k) {
					delete(q, k)
					changed = true
				}
			}
			if changed {
				r.URL.RawQuery = q.Encode()
			}

			clean, err := rewriteBody(r, stripOperators)
			if err != nil {
				errs.Respond(w, r, err)
				return
			}
			next.ServeHTTP(w, clean)
		})
	}
}

// XSSSanitize strips markup from every string in the JSON body and from
// query values.
func XSSSanitize(errs ErrorResponder) func(http.Handler) http.Handler {
	policy := bluemonday.StrictPolicy()
	// The policy escapes the text it keeps; only markup should change.
	clean := func(s string) string { return html.UnescapeString(policy.Sanitize(s)) }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.RawQuery != "" {
				q := r.URL.Query()
				out := make(url.Values, len(q))
				for k, vals := range q {
					for _, v := range vals {
						out.Add(k, clean(v))
					}
				}
				r.URL.RawQuery = out.Encode()
			}

			sanitized, err := rewriteBody(r, func(v any) any { return mapStrings(v, clean) })
			if err != nil {
				errs.Respond(w, r, err)
				return
			}
			next.ServeHTTP(w, sanitized)
		})
	}
}
