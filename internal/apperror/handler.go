package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"

	"go.mongodb.org/mongo-driver/mongo"
)

const genericMessage = "Something went very wrong!"

var dupValuePattern = regexp.MustCompile(`dup key: \{ ?[^:]*: ?("(?:[^"\\]|\\.)*"|[^ }]+)`)

// Handler is the terminal error stage: every failure raised by a middleware
// or a handler ends up in Respond.
type Handler struct {
	Development bool
	Logger      *log.Logger
}

func NewHandler(development bool, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{Development: development, Logger: logger}
}

func (h *Handler) Respond(w http.ResponseWriter, r *http.Request, err error) {
	appErr := Normalize(err)

	if h.Development {
		body := map[string]any{
			"status":  appErr.Status(),
			"error":   describe(appErr),
			"message": appErr.Message,
			"stack":   appErr.Stack(),
		}
		if len(appErr.Fields) > 0 {
			body["errors"] = appErr.Fields
		}
		h.writeJSON(w, appErr.StatusCode, body)
		return
	}

	if !appErr.Operational {
		h.Logger.Printf("ERROR 💥 %s %s: %v", r.Method, r.URL.Path, err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{
			"status":  "error",
			"message": genericMessage,
		})
		return
	}

	body := map[string]any{
		"status":  appErr.Status(),
		"message": appErr.Message,
	}
	if len(appErr.Fields) > 0 {
		body["errors"] = appErr.Fields
	}
	h.writeJSON(w, appErr.StatusCode, body)
}

// Normalize converts driver and transport errors into AppErrors.
func Normalize(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return PayloadTooLarge(fmt.Sprintf("Request body larger than %d bytes", maxBytesErr.Limit))
	case errors.Is(err, mongo.ErrNoDocuments):
		return NotFound("No document found with that ID")
	case mongo.IsDuplicateKeyError(err):
		return BadRequest(fmt.Sprintf("Duplicate field value: %s. Please use another value!", duplicateValue(err)))
	}

	return Wrap(err)
}

func duplicateValue(err error) string {
	m := dupValuePattern.FindStringSubmatch(err.Error())
	if len(m) < 2 {
		return "unknown"
	}
	return m[1]
}

func describe(e *AppError) string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Logger.Printf("failed to encode error response: %v", err)
	}
}
