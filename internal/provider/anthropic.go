package provider

import "encoding/json"

const (
	anthropicURL        = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion = "2023-06-01"
	defaultClaudeModel  = "claude-sonnet-4-20250514"

	// maxResponseTokens bounds generated output across the chat APIs that
	// require an explicit cap.
	maxResponseTokens = 4096
)

type anthropicAdapter struct {
	key   string
	model string
	url   string
}

func newAnthropicAdapter(key, model string) *anthropicAdapter {
	if model == "" {
		model = defaultClaudeModel
	}
	return &anthropicAdapter{key: key, model: model, url: anthropicURL}
}

func (a *anthropicAdapter) ID() ID { return Claude }
func (a *anthropicAdapter) Model() string { return a.model }
func (a *anthropicAdapter) DefaultModel() string { return defaultClaudeModel }
func (a *anthropicAdapter) APIURL() string { return a.url }
func (a *anthropicAdapter) setEndpoint(url string) { a.url = url }

func (a *anthropicAdapter) Headers() map[string]string {
	return map[string]string{
		"x-api-key":         a.key,
		"anthropic-version": anthropicAPIVersion,
	}
}

type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

func (a *anthropicAdapter) RequestBody(prompt string) ([]byte, error) {
	return json.Marshal(anthropicRequest{
		Model:     a.model,
		MaxTokens: maxResponseTokens,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
	})
}

func (a *anthropicAdapter) ExtractContent(body []byte) (string, error) {
	return extractPath(Claude, body, "content.0.text")
}
