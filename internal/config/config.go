// Package config reads gateway settings from the environment, an optional .env file
// and an optional YAML assistant definition.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/petasbytes/support-bot/internal/assistant"
	"github.com/petasbytes/support-bot/internal/provider"
	"github.com/petasbytes/support-bot/internal/runner"
)

// Answer sinks selectable with AGT_ANSWER_SINK.
const (
	SinkDB    = "db"
	SinkSheet = "sheet"
	SinkBoth  = "both"
)

const (
	DefaultListenAddr    = "0.0.0.0:8080"
	DefaultAssistantName = "Customer Support Assistant"
	DefaultDatabasePath  = "support-bot.db"
	DefaultAnswerSheet   = "answers.csv"
)

// DefaultInstructions is the assistant prompt used when no definition file overrides it.
const DefaultInstructions = `You are a friendly customer support assistant for a home services company.
Answer questions about the company's services clearly and briefly.
When a customer wants to be contacted, collect their name, phone number, address and email,
then call create_lead with exactly those details.
When a customer fills in the service questionnaire, call save_answers with every answer they gave.
Never invent answers the customer did not provide.`

type Config struct {
	APIKey  string
	BaseURL string

	ListenAddr string

	AssistantID string
	Assistant   assistant.Definition

	DatabasePath string
	DataRoot     string
	AnswerSink   string
	AnswerSheet  string

	Runner runner.Config

	Verbose bool
}

// Load reads .env from the working directory when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables alone.
func FromEnv() (*Config, error) {
	c := &Config{
		APIKey:      os.Getenv("OPENAI_API_KEY"),
		BaseURL:     os.Getenv("OPENAI_BASE_URL"),
		ListenAddr:  envOr("AGT_LISTEN_ADDR", DefaultListenAddr),
		AssistantID: strings.TrimSpace(os.Getenv("AGT_ASSISTANT_ID")),
		Assistant: assistant.Definition{
			Name:         envOr("AGT_ASSISTANT_NAME", DefaultAssistantName),
			Model:        envOr("AGT_ASSISTANT_MODEL", provider.DefaultModel),
			Instructions: DefaultInstructions,
		},
		DatabasePath: envOr("AGT_DATABASE_PATH", DefaultDatabasePath),
		DataRoot:     envOr("AGT_DATA_ROOT", "."),
		AnswerSink:   strings.ToLower(envOr("AGT_ANSWER_SINK", SinkDB)),
		AnswerSheet:  envOr("AGT_ANSWER_SHEET", DefaultAnswerSheet),
		Verbose:      os.Getenv("AGT_VERBOSE") == "1",
	}

	var err error
	if c.Runner.PollInterval, err = envDuration("AGT_POLL_INTERVAL", runner.DefaultPollInterval); err != nil {
		return nil, err
	}
	if c.Runner.ToolSubmitDelay, err = envDuration("AGT_TOOL_SUBMIT_DELAY", runner.DefaultToolSubmitDelay); err != nil {
		return nil, err
	}
	if c.Runner.TurnTimeout, err = envDuration("AGT_TURN_TIMEOUT", runner.DefaultTurnTimeout); err != nil {
		return nil, err
	}
	if c.Runner.MaxPolls, err = envInt("AGT_MAX_POLLS", runner.DefaultMaxPolls); err != nil {
		return nil, err
	}

	if path := os.Getenv("AGT_ASSISTANT_FILE"); path != "" {
		if err := c.loadAssistantFile(path); err != nil {
			return nil, err
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// loadAssistantFile overlays the non-empty fields of a YAML definition.
func (c *Config) loadAssistantFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read assistant file: %w", err)
	}
	var def assistant.Definition
	if err := yaml.Unmarshal(b, &def); err != nil {
		return fmt.Errorf("parse assistant file %s: %w", path, err)
	}
	if def.Name != "" {
		c.Assistant.Name = def.Name
	}
	if def.Model != "" {
		c.Assistant.Model = def.Model
	}
	if strings.TrimSpace(def.Instructions) != "" {
		c.Assistant.Instructions = def.Instructions
	}
	return nil
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("OPENAI_API_KEY not set; export it then try again")
	}
	switch c.AnswerSink {
	case SinkDB, SinkSheet, SinkBoth:
	default:
		return fmt.Errorf("invalid AGT_ANSWER_SINK %q: want db, sheet or both", c.AnswerSink)
	}
	if c.Runner.PollInterval <= 0 {
		return fmt.Errorf("AGT_POLL_INTERVAL must be positive, got %s", c.Runner.PollInterval)
	}
	if c.Runner.ToolSubmitDelay < 0 {
		return fmt.Errorf("AGT_TOOL_SUBMIT_DELAY must not be negative, got %s", c.Runner.ToolSubmitDelay)
	}
	if c.Runner.TurnTimeout <= 0 {
		return fmt.Errorf("AGT_TURN_TIMEOUT must be positive, got %s", c.Runner.TurnTimeout)
	}
	if c.Runner.MaxPolls <= 0 {
		return fmt.Errorf("AGT_MAX_POLLS must be positive, got %d", c.Runner.MaxPolls)
	}
	return nil
}

// WantsDB and WantsSheet report which answer sinks are enabled.
func (c *Config) WantsDB() bool    { return c.AnswerSink == SinkDB || c.AnswerSink == SinkBoth }
func (c *Config) WantsSheet() bool { return c.AnswerSink == SinkSheet || c.AnswerSink == SinkBoth }

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
