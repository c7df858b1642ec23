package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/petasbytes/support-bot/internal/assistant"
	"github.com/petasbytes/support-bot/internal/config"
	"github.com/petasbytes/support-bot/internal/conversation"
	"github.com/petasbytes/support-bot/internal/fsops"
	"github.com/petasbytes/support-bot/internal/httpapi"
	"github.com/petasbytes/support-bot/internal/provider"
	"github.com/petasbytes/support-bot/internal/runner"
	"github.com/petasbytes/support-bot/internal/sheet"
	"github.com/petasbytes/support-bot/internal/store"
	"github.com/petasbytes/support-bot/tools"
)

var (
	bannerColor = color.New(color.FgCyan, color.Bold)
	infoColor   = color.New(color.FgGreen)
	errorColor  = color.New(color.FgRed)
)

// provisionTimeout bounds the startup lookup-or-create of the assistant.
const provisionTimeout = 30 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		errorColor.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		errorColor.Fprintf(os.Stderr, "store: %v\n", err)
		return 1
	}
	defer db.Close()

	var answers tools.AnswerStores
	if cfg.WantsDB() {
		answers = append(answers, db)
	}
	if cfg.WantsSheet() {
		root, err := fsops.OpenRoot(cfg.DataRoot)
		if err != nil {
			errorColor.Fprintf(os.Stderr, "data root: %v\n", err)
			return 1
		}
		answers = append(answers, sheet.New(root, cfg.AnswerSheet))
	}

	dispatcher, err := tools.NewDispatcher(tools.Registry(db, answers))
	if err != nil {
		errorColor.Fprintf(os.Stderr, "tools: %v\n", err)
		return 1
	}

	api := provider.NewOpenAIClient(cfg.APIKey, cfg.BaseURL, nil)

	provisioner := &assistant.Provisioner{
		API:         api,
		Definition:  cfg.Assistant,
		Tools:       dispatcher,
		AssistantID: cfg.AssistantID,
	}
	pctx, cancel := context.WithTimeout(context.Background(), provisionTimeout)
	assistantID, err := provisioner.EnsureAssistant(pctx)
	cancel()
	if err != nil {
		errorColor.Fprintf(os.Stderr, "assistant: %v\n", err)
		return 1
	}

	handler := httpapi.NewHandler(httpapi.Config{
		Turns:         runner.New(api, assistantID, dispatcher, cfg.Runner),
		Conversations: &conversation.Initiator{API: api, Recorder: db},
		Verbose:       cfg.Verbose,
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bannerColor.Println("support-bot gateway")
	infoColor.Printf("  assistant  %s (%s)\n", cfg.Assistant.Name, assistantID)
	infoColor.Printf("  listening  http://%s\n", cfg.ListenAddr)
	infoColor.Printf("  answers    %s\n", cfg.AnswerSink)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	code := 0
	select {
	case <-ctx.Done():
		fmt.Println("\nShutting down...")
	case err := <-errCh:
		errorColor.Fprintf(os.Stderr, "server error: %v\n", err)
		code = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	return code
}
