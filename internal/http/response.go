package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"parish-backend-go/internal/services"
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Success: false, Message: message})
}

// writeServiceError maps a services error onto the response. Anything that
// is not a ServiceError is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var serr services.ServiceError
	if errors.As(err, &serr) {
		WriteError(w, serr.Status, serr.Message)
		return
	}
	log.Printf("unexpected error: %v", err)
	WriteError(w, http.StatusInternalServerError, "Internal server error")
}
