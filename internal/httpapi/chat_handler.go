package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/petasbytes/support-bot/internal/runner"
)

// maxChatBody caps the /chat request body.
const maxChatBody = 1 << 20

type chatRequest struct {
	ThreadID *string         `json:"thread_id"`
	Message  json.RawMessage `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

func (h *handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.turns == nil {
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxChatBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	// thread_id is checked before message so a missing id always wins.
	if req.ThreadID == nil || strings.TrimSpace(*req.ThreadID) == "" {
		writeError(w, http.StatusBadRequest, msgMissingThread)
		return
	}
	threadID := strings.TrimSpace(*req.ThreadID)

	var message string
	if len(req.Message) > 0 && string(req.Message) != "null" {
		if err := json.Unmarshal(req.Message, &message); err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidJSON)
			return
		}
	}
	if strings.TrimSpace(message) == "" {
		writeError(w, http.StatusBadRequest, msgMissingMessage)
		return
	}

	reply, err := h.turns.ExecuteTurn(r.Context(), threadID, message)
	if err != nil {
		status, msg := statusFor(err)
		if status == http.StatusInternalServerError {
			h.errorf("chat thread=%s: %v", threadID, err)
		} else {
			h.logf("chat thread=%s: %d %v", threadID, status, err)
		}
		writeError(w, status, msg)
		return
	}
	h.logf("chat thread=%s: ok", threadID)
	writeJSON(w, http.StatusOK, chatResponse{Response: reply})
}

// statusFor maps a turn error to an HTTP status and public message.
func statusFor(err error) (int, string) {
	var failed *runner.RunFailedError
	switch {
	case errors.Is(err, runner.ErrMissingThread):
		return http.StatusNotFound, msgUnknownThread
	case errors.As(err, &failed):
		return http.StatusBadGateway, msgRunFailed
	case errors.Is(err, runner.ErrRunTimeout):
		return http.StatusGatewayTimeout, msgRunTimeout
	}
	return http.StatusInternalServerError, msgInternal
}
