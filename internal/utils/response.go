package utils

import (
	"encoding/json"
	"log"
	"net/http"
)

func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// JSONError writes a bare {status, message} error body. Handlers return
// errors instead; this is for code running outside the error handler.
func JSONError(w http.ResponseWriter, message string, status int) {
	s := "error"
	if status >= 400 && status < 500 {
		s = "fail"
	}
	JSON(w, status, map[string]string{"status": s, "message": message})
}
