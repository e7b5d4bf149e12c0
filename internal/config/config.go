package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"sigs.k8s.io/yaml"

	"github.com/nmoreau/prdraft/internal/provider"
)

func Init(root *cobra.Command) {
	viper.AutomaticEnv()
	_ = godotenv.Load(".env")
	if path := Path(); path != "" {
		viper.SetConfigFile(path)
		_ = viper.ReadInConfig()
	}
	if root != nil {
		_ = viper.BindPFlags(root.PersistentFlags())
	}
	setDefaults()
}

func setDefaults() {
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyRequestTimeout, "60s")
	viper.SetDefault(KeyMCPAddr, ":8080")
}

// Dir returns the prdraft config directory, e.g. ~/.config/prdraft.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "prdraft")
}

// Path returns the config file location, or "" when no home is resolvable.
func Path() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Write persists the given settings as the YAML config file, creating the
// directory on first use. Values already present in the file but absent from
// settings are dropped; the wizard always writes the full set.
func Write(settings map[string]string) error {
	path := Path()
	if path == "" {
		return fmt.Errorf("cannot resolve user config directory")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}

func AnthropicAPIKey() string { return viper.GetString(KeyAnthropicAPIKey) }
func OpenAIAPIKey() string { return viper.GetString(KeyOpenAIAPIKey) }
func GeminiAPIKey() string { return viper.GetString(KeyGeminiAPIKey) }
func GroqAPIKey() string { return viper.GetString(KeyGroqAPIKey) }
func OllamaURL() string { return viper.GetString(KeyOllamaURL) }

func ClaudeModel() string { return viper.GetString(KeyClaudeModel) }
func ChatGPTModel() string { return viper.GetString(KeyChatGPTModel) }
func GeminiModel() string { return viper.GetString(KeyGeminiModel) }
func GroqModel() string { return viper.GetString(KeyGroqModel) }
func OllamaModel() string { return viper.GetString(KeyOllamaModel) }

func Provider() string { return viper.GetString(KeyProvider) }
func RequestTimeout() string { return viper.GetString(KeyRequestTimeout) }

func JiraURL() string { return viper.GetString(KeyJiraURL) }
func JiraEmail() string { return viper.GetString(KeyJiraEmail) }
func JiraToken() string { return viper.GetString(KeyJiraToken) }

func GitHubToken() string { return viper.GetString(KeyGitHubToken) }

func BaseRef() string { return viper.GetString(KeyBaseRef) }
func LogLevel() string { return viper.GetString(KeyLogLevel) }
func MCPAddr() string { return viper.GetString(KeyMCPAddr) }

// ProviderCredentials assembles the credential set for the provider manager
// from the resolved configuration. Empty model overrides leave the adapter
// defaults in place.
func ProviderCredentials() provider.Credentials {
	return provider.Credentials{
		AnthropicKey: AnthropicAPIKey(),
		OpenAIKey:    OpenAIAPIKey(),
		GeminiKey:    GeminiAPIKey(),
		GroqKey:      GroqAPIKey(),
		OllamaURL:    OllamaURL(),
		Models: map[provider.ID]string{
			provider.Claude:  ClaudeModel(),
			provider.ChatGPT: ChatGPTModel(),
			provider.Gemini:  GeminiModel(),
			provider.Groq:    GroqModel(),
			provider.Ollama:  OllamaModel(),
		},
	}
}
