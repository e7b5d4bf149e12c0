package provider

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
)

// call runs one adapter request end to end: build the body, POST it, map
// the status to the error taxonomy, extract the vendor text. Never retries;
// every failure hands control back to the fallback chain.
func call(ctx context.Context, client *http.Client, a Adapter, prompt string) (string, error) {
	body, err := a.RequestBody(prompt)
	if err != nil {
		return "", &APIError{Provider: a.ID(), Cause: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.APIURL(), bytes.NewReader(body))
	if err != nil {
		return "", &APIError{Provider: a.ID(), Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range a.Headers() {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", &TimeoutError{Provider: a.ID(), Cause: err}
		}
		return "", &APIError{Provider: a.ID(), Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &APIError{Provider: a.ID(), Cause: err}
	}
	if err := classifyStatus(a.ID(), resp.StatusCode, raw); err != nil {
		return "", err
	}
	return a.ExtractContent(raw)
}

func classifyStatus(id ID, status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return &AuthError{Provider: id}
	case status == http.StatusTooManyRequests:
		return &RateLimitError{Provider: id}
	case status >= 500:
		return &ServerError{Provider: id, Status: status}
	default:
		return &APIError{Provider: id, Status: status, Body: trimBody(body)}
	}
}

func trimBody(body []byte) string {
	const max = 2048
	if len(body) > max {
		body = body[:max]
	}
	return string(body)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
