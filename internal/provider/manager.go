package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/logr"

	"github.com/nmoreau/prdraft/internal/logging"
)

const defaultRequestTimeout = 60 * time.Second

// Credentials holds whatever backend secrets the user configured. An empty
// field simply means that backend is unavailable this run.
type Credentials struct {
	AnthropicKey string
	OpenAIKey    string
	GeminiKey    string
	GroqKey      string
	OllamaURL    string

	// Models overrides the per-provider default model.
	Models map[ID]string
}

// Chooser resolves an interactive provider choice when automatic selection
// cannot decide. It receives the configured ids in fixed order.
type Chooser func(ids []ID) (ID, error)

type Option func(*Manager)

func WithChooser(fn Chooser) Option {
	return func(m *Manager) { m.chooser = fn }
}

func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.client.Timeout = d
		}
	}
}

func WithLogger(log logr.Logger) Option {
	return func(m *Manager) { m.log = logging.New(log) }
}

// WithEndpoint points one provider at a different URL. Test hook.
func WithEndpoint(id ID, url string) Option {
	return func(m *Manager) { m.endpoints[id] = url }
}

// Result is one successful generation.
type Result struct {
	Provider ID
	Model    string
	Text     string
}

// Manager owns the configured adapters and the fallback chain across them.
// The selected provider is memoized per Manager instance; build a fresh
// Manager per command invocation.
type Manager struct {
	adapters  map[ID]Adapter
	endpoints map[ID]string
	client    *http.Client
	chooser   Chooser
	selected  ID
	log       logging.Logger
}

func NewManager(creds Credentials, opts ...Option) *Manager {
	m := &Manager{
		adapters:  make(map[ID]Adapter),
		endpoints: make(map[ID]string),
		client:    &http.Client{Timeout: defaultRequestTimeout},
		log:       logging.New(logr.Discard()),
	}
	for _, opt := range opts {
		opt(m)
	}

	model := func(id ID) string { return creds.Models[id] }
	if creds.AnthropicKey != "" {
		m.adapters[Claude] = newAnthropicAdapter(creds.AnthropicKey, model(Claude))
	}
	if creds.OpenAIKey != "" {
		m.adapters[ChatGPT] = newOpenAIAdapter(creds.OpenAIKey, model(ChatGPT))
	}
	if creds.GeminiKey != "" {
		m.adapters[Gemini] = newGeminiAdapter(creds.GeminiKey, model(Gemini))
	}
	if creds.GroqKey != "" {
		m.adapters[Groq] = newGroqAdapter(creds.GroqKey, model(Groq))
	}
	if creds.OllamaURL != "" {
		m.adapters[Ollama] = newOllamaAdapter(creds.OllamaURL, model(Ollama))
	}

	for id, url := range m.endpoints {
		if a, ok := m.adapters[id]; ok {
			if s, ok := a.(endpointSetter); ok {
				s.setEndpoint(url)
			}
		}
	}
	return m
}

// Configured returns the available ids in fixed order.
func (m *Manager) Configured() []ID {
	var ids []ID
	for _, id := range All() {
		if _, ok := m.adapters[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Adapter returns the constructed adapter for id, if configured.
func (m *Manager) Adapter(id ID) (Adapter, bool) {
	a, ok := m.adapters[id]
	return a, ok
}

// Select picks the provider for this run and memoizes it: repeated calls
// return the same id. Zero configured adapters is a ConfigError; a single
// one is taken as-is; otherwise the ranked preference applies, and only
// when no ranked backend is configured does the interactive chooser run.
func (m *Manager) Select() (ID, error) {
	if m.selected != "" {
		return m.selected, nil
	}
	configured := m.Configured()
	switch len(configured) {
	case 0:
		return "", &ConfigError{Reason: "no providers configured"}
	case 1:
		m.selected = configured[0]
		m.log.Debug("auto-selected the only configured provider", "provider", m.selected)
		return m.selected, nil
	}
	for _, id := range ranked {
		if _, ok := m.adapters[id]; ok {
			m.selected = id
			m.log.Debug("selected provider by rank", "provider", id)
			return id, nil
		}
	}
	if m.chooser != nil {
		id, err := m.chooser(configured)
		if err != nil {
			return "", fmt.Errorf("choose provider: %w", err)
		}
		if _, ok := m.adapters[id]; !ok {
			return "", &ConfigError{Reason: fmt.Sprintf("provider %q is not configured", id)}
		}
		m.selected = id
		return id, nil
	}
	m.selected = configured[0]
	return m.selected, nil
}

// Generate sends the prompt to one backend, falling back across the
// remaining configured backends in fixed order until one succeeds. An
// explicit id is authoritative: it alone is tried, and its failure is
// returned as a one-attempt AllFailedError. When every adapter fails the
// ordered causes come back in an AllFailedError.
func (m *Manager) Generate(ctx context.Context, promptText string, explicit ID) (Result, error) {
	if explicit != "" {
		adapter, ok := m.adapters[explicit]
		if !ok {
			return Result{}, &ConfigError{Reason: fmt.Sprintf("provider %q is not configured", explicit)}
		}
		text, err := m.callAdapter(ctx, adapter, promptText)
		if err != nil {
			return Result{}, &AllFailedError{Attempts: []Attempt{{Provider: explicit, Err: err}}}
		}
		return Result{Provider: explicit, Model: adapter.Model(), Text: text}, nil
	}

	first, err := m.Select()
	if err != nil {
		return Result{}, err
	}
	order := []ID{first}
	for _, id := range m.Configured() {
		if id != first {
			order = append(order, id)
		}
	}

	var attempts []Attempt
	for _, id := range order {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		adapter := m.adapters[id]
		text, err := m.callAdapter(ctx, adapter, promptText)
		if err == nil {
			if len(attempts) > 0 {
				m.log.Info("provider fallback succeeded", "provider", id, "failed_attempts", len(attempts))
			}
			return Result{Provider: id, Model: adapter.Model(), Text: text}, nil
		}
		m.log.Error(err, "provider failed", "provider", id)
		attempts = append(attempts, Attempt{Provider: id, Err: err})
	}
	return Result{}, &AllFailedError{Attempts: attempts}
}

func (m *Manager) callAdapter(ctx context.Context, a Adapter, promptText string) (string, error) {
	m.log.Debug("calling provider", "provider", a.ID(), "model", a.Model())
	return call(ctx, m.client, a, promptText)
}
