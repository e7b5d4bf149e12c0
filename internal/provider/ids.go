package provider

import (
	"fmt"
	"strings"
)

// ID names an LLM backend. The set is closed: adapters are looked up by
// typed constant, never by free-form string.
type ID string

const (
	Claude  ID = "claude"
	ChatGPT ID = "chatgpt"
	Gemini  ID = "gemini"
	Groq    ID = "groq"
	Ollama  ID = "ollama"
)

// All returns every known id in fixed order. Fallback iteration and status
// output both follow this order.
func All() []ID {
	return []ID{Claude, ChatGPT, Gemini, Groq, Ollama}
}

// ranked is the automatic-selection preference among the hosted backends.
var ranked = []ID{Claude, ChatGPT, Gemini}

// ParseID validates a user-supplied provider name.
func ParseID(s string) (ID, error) {
	id := ID(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range All() {
		if id == known {
			return id, nil
		}
	}
	return "", &ConfigError{Reason: fmt.Sprintf("unknown provider %q", s)}
}
