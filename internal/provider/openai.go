package provider

import "encoding/json"

const (
	openAIURL           = "https://api.openai.com/v1/chat/completions"
	defaultChatGPTModel = "gpt-4o"
)

type openAIAdapter struct {
	key   string
	model string
	url   string
}

func newOpenAIAdapter(key, model string) *openAIAdapter {
	if model == "" {
		model = defaultChatGPTModel
	}
	return &openAIAdapter{key: key, model: model, url: openAIURL}
}

func (a *openAIAdapter) ID() ID { return ChatGPT }
func (a *openAIAdapter) Model() string { return a.model }
func (a *openAIAdapter) DefaultModel() string { return defaultChatGPTModel }
func (a *openAIAdapter) APIURL() string { return a.url }
func (a *openAIAdapter) setEndpoint(url string) { a.url = url }

func (a *openAIAdapter) Headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + a.key}
}

// openAIRequest is the chat completions shape, also spoken by the
// OpenAI-compatible backends.
type openAIRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

func (a *openAIAdapter) RequestBody(prompt string) ([]byte, error) {
	return json.Marshal(openAIRequest{
		Model:    a.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
}

func (a *openAIAdapter) ExtractContent(body []byte) (string, error) {
	return extractPath(ChatGPT, body, "choices.0.message.content")
}
