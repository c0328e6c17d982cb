package middleware

import "net/http"

// ErrorResponder shapes any error into the final response.
type ErrorResponder interface {
	Respond(w http.ResponseWriter, r *http.Request, err error)
}

// Stage is one named step of the request pipeline.
type Stage struct {
	Name string
	Wrap func(http.Handler) http.Handler
}

// Chain composes stages around final. stages[0] is outermost and sees the
// request first; each stage either calls the next one or short-circuits.
func Chain(final http.Handler, stages ...Stage) http.Handler {
	h := final
	for i := len(stages) - 1; i >= 0; i-- {
		if stages[i].Wrap == nil {
			continue
		}
		h = stages[i].Wrap(h)
	}
	return h
}

// Names lists stage names in execution order.
func Names(stages []Stage) []string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name
	}
	return names
}
