package httpapi

import (
	"encoding/json"
	"net/http"
)

// Public error messages. Internal details stay in the server log.
const (
	msgMissingThread  = "Missing thread_id"
	msgMissingMessage = "Missing message"
	msgInvalidJSON    = "Invalid JSON body"
	msgUnknownThread  = "Unknown thread_id"
	msgRunFailed      = "Assistant run failed"
	msgRunTimeout     = "Assistant run timed out"
	msgInternal       = "Internal error"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
