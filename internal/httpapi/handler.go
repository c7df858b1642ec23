// Package httpapi exposes the /start and /chat endpoints.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"
)

// TurnExecutor runs one chat turn on a thread.
type TurnExecutor interface {
	ExecuteTurn(ctx context.Context, threadID, message string) (string, error)
}

// ConversationStarter opens a new thread.
type ConversationStarter interface {
	StartConversation(ctx context.Context, platform string) (string, error)
}

// Config wires dependencies for the HTTP handler.
type Config struct {
	Turns         TurnExecutor
	Conversations ConversationStarter
	Verbose       bool
}

// NewHandler builds the gateway's HTTP handler.
func NewHandler(cfg Config) http.Handler {
	h := &handler{
		turns:         cfg.Turns,
		conversations: cfg.Conversations,
		verbose:       cfg.Verbose,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/start", h.handleStart)
	mux.HandleFunc("/chat", h.handleChat)
	mux.HandleFunc("/healthz", h.handleHealth)
	return mux
}

type handler struct {
	turns         TurnExecutor
	conversations ConversationStarter
	verbose       bool
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *handler) logf(format string, args ...any) {
	if h.verbose {
		fmt.Printf(time.Now().Format(time.RFC3339)+" "+format+"\n", args...)
	}
}

func (h *handler) errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
