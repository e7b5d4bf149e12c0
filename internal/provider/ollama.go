package provider

import (
	"encoding/json"
	"strings"
)

const defaultOllamaModel = "llama3.1"

// ollamaAdapter talks to a local Ollama server. The base URL stands in for a
// credential; there is no auth.
type ollamaAdapter struct {
	model string
	url   string
}

func newOllamaAdapter(baseURL, model string) *ollamaAdapter {
	if model == "" {
		model = defaultOllamaModel
	}
	return &ollamaAdapter{
		model: model,
		url:   strings.TrimRight(baseURL, "/") + "/api/chat",
	}
}

func (a *ollamaAdapter) ID() ID { return Ollama }
func (a *ollamaAdapter) Model() string { return a.model }
func (a *ollamaAdapter) DefaultModel() string { return defaultOllamaModel }
func (a *ollamaAdapter) APIURL() string { return a.url }
func (a *ollamaAdapter) setEndpoint(url string) { a.url = url }

func (a *ollamaAdapter) Headers() map[string]string { return nil }

type ollamaRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

func (a *ollamaAdapter) RequestBody(prompt string) ([]byte, error) {
	return json.Marshal(ollamaRequest{
		Model:    a.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Stream:   false,
	})
}

func (a *ollamaAdapter) ExtractContent(body []byte) (string, error) {
	return extractPath(Ollama, body, "message.content")
}
