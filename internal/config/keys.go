package config

const (
	KeyAnthropicAPIKey = "anthropic_api_key"
	KeyOpenAIAPIKey    = "openai_api_key"
	KeyGeminiAPIKey    = "gemini_api_key"
	KeyGroqAPIKey      = "groq_api_key"
	KeyOllamaURL       = "ollama_url"

	KeyClaudeModel  = "claude_model"
	KeyChatGPTModel = "chatgpt_model"
	KeyGeminiModel  = "gemini_model"
	KeyGroqModel    = "groq_model"
	KeyOllamaModel  = "ollama_model"

	KeyProvider       = "provider"
	KeyRequestTimeout = "request_timeout"

	KeyJiraURL   = "jira_url"
	KeyJiraEmail = "jira_email"
	KeyJiraToken = "jira_token"

	KeyGitHubToken = "github_token"

	KeyBaseRef  = "base_ref"
	KeyLogLevel = "log_level"
	KeyMCPAddr  = "mcp_addr"
)
