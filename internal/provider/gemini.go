package provider

import (
	"encoding/json"
	"fmt"
)

const (
	geminiURLFormat    = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
	defaultGeminiModel = "gemini-2.5-flash"
)

type geminiAdapter struct {
	key   string
	model string
	url   string
}

func newGeminiAdapter(key, model string) *geminiAdapter {
	if model == "" {
		model = defaultGeminiModel
	}
	return &geminiAdapter{key: key, model: model, url: fmt.Sprintf(geminiURLFormat, model)}
}

func (a *geminiAdapter) ID() ID { return Gemini }
func (a *geminiAdapter) Model() string { return a.model }
func (a *geminiAdapter) DefaultModel() string { return defaultGeminiModel }
func (a *geminiAdapter) APIURL() string { return a.url }
func (a *geminiAdapter) setEndpoint(url string) { a.url = url }

func (a *geminiAdapter) Headers() map[string]string {
	return map[string]string{"x-goog-api-key": a.key}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

func (a *geminiAdapter) RequestBody(prompt string) ([]byte, error) {
	return json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
}

func (a *geminiAdapter) ExtractContent(body []byte) (string, error) {
	return extractPath(Gemini, body, "candidates.0.content.parts.0.text")
}
