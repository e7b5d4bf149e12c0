package provider

import (
	"github.com/tidwall/gjson"
)

// Adapter is the per-vendor capability surface. Variants differ only in
// these operations; transport, timeouts, and error classification live in
// the shared base.
type Adapter interface {
	ID() ID
	Model() string
	DefaultModel() string
	APIURL() string
	Headers() map[string]string
	RequestBody(prompt string) ([]byte, error)
	ExtractContent(body []byte) (string, error)
}

// endpointSetter lets tests point an adapter at a local server.
type endpointSetter interface {
	setEndpoint(url string)
}

// chatMessage is the {role, content} shape shared by the chat-style APIs.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func extractPath(id ID, body []byte, path string) (string, error) {
	result := gjson.GetBytes(body, path)
	if !result.Exists() || result.String() == "" {
		return "", &ExtractionError{Provider: id, Path: path}
	}
	return result.String(), nil
}
