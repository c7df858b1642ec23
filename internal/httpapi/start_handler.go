package httpapi

import "net/http"

type startResponse struct {
	ThreadID string `json:"thread_id"`
}

func (h *handler) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.conversations == nil {
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	platform := r.URL.Query().Get("platform")
	threadID, err := h.conversations.StartConversation(r.Context(), platform)
	if err != nil {
		h.errorf("start conversation: %v", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	h.logf("start: thread=%s", threadID)
	writeJSON(w, http.StatusOK, startResponse{ThreadID: threadID})
}
