package provider

import "encoding/json"

// Groq exposes an OpenAI-compatible chat completions endpoint.
// See https://console.groq.com/docs/api-reference
const (
	groqURL          = "https://api.groq.com/openai/v1/chat/completions"
	defaultGroqModel = "llama-3.3-70b-versatile"
)

type groqAdapter struct {
	key   string
	model string
	url   string
}

func newGroqAdapter(key, model string) *groqAdapter {
	if model == "" {
		model = defaultGroqModel
	}
	return &groqAdapter{key: key, model: model, url: groqURL}
}

func (a *groqAdapter) ID() ID { return Groq }
func (a *groqAdapter) Model() string { return a.model }
func (a *groqAdapter) DefaultModel() string { return defaultGroqModel }
func (a *groqAdapter) APIURL() string { return a.url }
func (a *groqAdapter) setEndpoint(url string) { a.url = url }

func (a *groqAdapter) Headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + a.key}
}

func (a *groqAdapter) RequestBody(prompt string) ([]byte, error) {
	return json.Marshal(openAIRequest{
		Model:    a.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
}

func (a *groqAdapter) ExtractContent(body []byte) (string, error) {
	return extractPath(Groq, body, "choices.0.message.content")
}
