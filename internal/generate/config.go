package generate

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/nmoreau/prdraft/internal/config"
	"github.com/nmoreau/prdraft/internal/logging"
	"github.com/nmoreau/prdraft/internal/provider"
	"github.com/nmoreau/prdraft/internal/ticket"
)

type Config struct {
	Base           string // base ref override; "" means ask the remote
	Provider       string // pinned provider name; "" enables fallback
	RequestTimeout time.Duration
	Credentials    provider.Credentials
	Jira           ticket.JiraConfig
	GitHubToken    string
	Logger         logr.Logger
}

func LoadConfig() (Config, error) {
	logger := logging.ForLevel(config.LogLevel())
	cfg := Config{
		Base:        config.BaseRef(),
		Provider:    config.Provider(),
		Credentials: config.ProviderCredentials(),
		Jira: ticket.JiraConfig{
			BaseURL:  config.JiraURL(),
			Email:    config.JiraEmail(),
			APIToken: config.JiraToken(),
			Logger:   logger,
		},
		GitHubToken: config.GitHubToken(),
		Logger:      logger,
	}

	timeout, err := parseDuration(config.RequestTimeout(), 60*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid request_timeout: %w", err)
	}
	cfg.RequestTimeout = timeout

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, err
	}
	return d, nil
}
