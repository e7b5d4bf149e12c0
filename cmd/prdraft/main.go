package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nmoreau/prdraft/internal/config"
	"github.com/nmoreau/prdraft/internal/generate"
	"github.com/nmoreau/prdraft/internal/gitrepo"
	"github.com/nmoreau/prdraft/internal/hosting"
	"github.com/nmoreau/prdraft/internal/logging"
	"github.com/nmoreau/prdraft/internal/mcpsrv"
	"github.com/nmoreau/prdraft/internal/provider"
	"github.com/nmoreau/prdraft/internal/ui"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "prdraft",
	Short:         "Draft pull request titles and descriptions from branch changes and tickets",
	RunE:          runGenerate,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a pull request draft for the current branch",
	RunE:  runGenerate,
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration wizard",
	RunE:  runSetup,
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Show provider configuration status",
	RunE:  runProviders,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generator over MCP (streamable HTTP)",
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("prdraft " + version)
	},
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().String("repo", ".", "Path to the git checkout")
	cmd.Flags().String("ticket", "", "Ticket key to use instead of inferring one from the branch name")
	cmd.Flags().Bool("no-ticket", false, "Skip the ticket lookup")
	cmd.Flags().String("base", "", "Base ref to diff against (default: the remote's default branch)")
	cmd.Flags().String("provider", "", "Pin one provider: claude, chatgpt, gemini, groq or ollama")
	cmd.Flags().Bool("refine", false, "Run a second generation pass seeded with the first pass summary")
	cmd.Flags().Bool("create", false, "Open the pull request on GitHub after generating")
	cmd.Flags().Bool("draft", false, "With --create, open the pull request as a draft")
	cmd.Flags().Bool("json", false, "Print the result as JSON")
}

func main() {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	addGenerateFlags(rootCmd)
	addGenerateFlags(generateCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default: the mcp_addr setting)")

	config.Init(rootCmd)
	rootCmd.AddCommand(generateCmd, setupCmd, providersCmd, serveCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("prdraft: %v", err)
	}
}

// signalContext mirrors the usual main wiring: the returned context is
// canceled on SIGINT or SIGTERM so in-flight git and HTTP work stops.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() { <-sigs; cancel() }()
	return ctx, cancel
}

func loadConfig(cmd *cobra.Command) (generate.Config, error) {
	cfg, err := generate.LoadConfig()
	if err != nil {
		return generate.Config{}, err
	}
	if debug, _ := cmd.Root().PersistentFlags().GetBool("debug"); debug {
		cfg.Logger = logging.ForLevel("debug")
		cfg.Jira.Logger = cfg.Logger
	}
	return cfg, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	repoPath, _ := flags.GetString("repo")
	createPR, _ := flags.GetBool("create")
	draftPR, _ := flags.GetBool("draft")
	asJSON, _ := flags.GetBool("json")

	var opts generate.Options
	opts.TicketKey, _ = flags.GetString("ticket")
	opts.NoTicket, _ = flags.GetBool("no-ticket")
	opts.Base, _ = flags.GetString("base")
	opts.Provider, _ = flags.GetString("provider")
	opts.Refine, _ = flags.GetBool("refine")

	ctx, cancel := signalContext()
	defer cancel()

	prompter := ui.NewPrompter(os.Stdin, os.Stderr)
	chooser := provider.WithChooser(func(ids []provider.ID) (provider.ID, error) {
		options := make([]string, len(ids))
		for i, id := range ids {
			options[i] = string(id)
		}
		idx, err := prompter.Select("Several providers are configured. Choose one for this run", options)
		if err != nil {
			return "", err
		}
		return ids[idx], nil
	})

	gen, err := generate.FromConfig(cfg, repoPath, chooser)
	if err != nil {
		return err
	}
	out, err := gen.Run(ctx, opts)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Logger)
	if out.Offline {
		logger.Info("no provider produced a draft, using the offline template")
	} else {
		logger.Info("draft generated", "provider", out.Provider, "model", out.Model)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			Title    string `json:"title"`
			Body     string `json:"body"`
			Summary  string `json:"summary,omitempty"`
			Provider string `json:"provider,omitempty"`
			Model    string `json:"model,omitempty"`
			Offline  bool   `json:"offline"`
			Branch   string `json:"branch"`
			Base     string `json:"base"`
		}{
			Title:    out.Content.Title,
			Body:     out.Content.Body,
			Summary:  out.Content.Summary,
			Provider: string(out.Provider),
			Model:    out.Model,
			Offline:  out.Offline,
			Branch:   out.Branch,
			Base:     out.Base,
		}); err != nil {
			return err
		}
	} else {
		fmt.Println(out.Content.Title)
		fmt.Println()
		fmt.Println(out.Content.Body)
	}

	if !createPR {
		return nil
	}
	return openPullRequest(ctx, cfg, repoPath, out, draftPR)
}

func openPullRequest(ctx context.Context, cfg generate.Config, repoPath string, out generate.Outcome, draft bool) error {
	logger := logging.New(cfg.Logger)

	repo := gitrepo.New(gitrepo.RepoConfig{Path: repoPath})
	remote, err := repo.RemoteURL(ctx)
	if err != nil {
		return fmt.Errorf("resolve remote for --create: %w", err)
	}
	ref, err := hosting.Detect(remote)
	if err != nil {
		return err
	}
	client := hosting.NewClient(cfg.GitHubToken, ref)

	existing, err := client.FindPR(ctx, out.Branch)
	if err != nil {
		return err
	}
	if existing != nil {
		logger.Info("an open pull request already exists for this branch, not creating another",
			"url", existing.GetHTMLURL())
		return nil
	}

	url, err := client.CreatePR(ctx, hosting.NewPR{
		Title: out.Content.Title,
		Body:  out.Content.Body,
		Head:  out.Branch,
		Base:  out.Base,
		Draft: draft,
	})
	if err != nil {
		return fmt.Errorf("create pull request: %w", err)
	}
	fmt.Println(url)
	return nil
}

func runSetup(cmd *cobra.Command, args []string) error {
	p := ui.NewPrompter(os.Stdin, os.Stderr)
	settings := map[string]string{}

	keep := func(key, value string) {
		if value != "" {
			settings[key] = value
		}
	}
	ask := func(key, label, def string) error {
		val, err := p.Ask(label, def)
		if err != nil {
			return err
		}
		keep(key, val)
		return nil
	}

	fmt.Fprintln(os.Stderr, "Configure prdraft. Press enter to keep the value in brackets; leave a key empty to skip that provider.")

	providerSteps := []struct {
		key, label, def           string
		modelKey, modelLabel, mdl string
	}{
		{config.KeyAnthropicAPIKey, "Anthropic API key (claude)", config.AnthropicAPIKey(),
			config.KeyClaudeModel, "Claude model (empty for the default)", config.ClaudeModel()},
		{config.KeyOpenAIAPIKey, "OpenAI API key (chatgpt)", config.OpenAIAPIKey(),
			config.KeyChatGPTModel, "ChatGPT model (empty for the default)", config.ChatGPTModel()},
		{config.KeyGeminiAPIKey, "Gemini API key", config.GeminiAPIKey(),
			config.KeyGeminiModel, "Gemini model (empty for the default)", config.GeminiModel()},
		{config.KeyGroqAPIKey, "Groq API key", config.GroqAPIKey(),
			config.KeyGroqModel, "Groq model (empty for the default)", config.GroqModel()},
		{config.KeyOllamaURL, "Ollama base URL (empty to disable)", config.OllamaURL(),
			config.KeyOllamaModel, "Ollama model (empty for the default)", config.OllamaModel()},
	}
	for _, s := range providerSteps {
		if err := ask(s.key, s.label, s.def); err != nil {
			return err
		}
		if settings[s.key] == "" {
			continue
		}
		if err := ask(s.modelKey, s.modelLabel, s.mdl); err != nil {
			return err
		}
	}

	plain := []struct{ key, label, def string }{
		{config.KeyJiraURL, "Jira base URL (empty to disable ticket lookup)", config.JiraURL()},
		{config.KeyJiraEmail, "Jira account email", config.JiraEmail()},
		{config.KeyJiraToken, "Jira API token", config.JiraToken()},
		{config.KeyGitHubToken, "GitHub token (templates and --create)", config.GitHubToken()},
		{config.KeyBaseRef, "Default base ref (empty to use the remote default)", config.BaseRef()},
	}
	for _, s := range plain {
		if err := ask(s.key, s.label, s.def); err != nil {
			return err
		}
	}

	names := []string{"no pin, use the fallback chain"}
	for _, id := range provider.All() {
		names = append(names, string(id))
	}
	idx, err := p.Select("Default provider", names)
	if err != nil {
		return err
	}
	if idx > 0 {
		settings[config.KeyProvider] = string(provider.All()[idx-1])
	}

	// Carry over tunables the wizard does not ask about, so rewriting the
	// file does not drop them.
	if v := config.RequestTimeout(); v != "" && v != "60s" {
		settings[config.KeyRequestTimeout] = v
	}
	if v := config.LogLevel(); v != "" && v != "info" {
		settings[config.KeyLogLevel] = v
	}
	if v := config.MCPAddr(); v != "" && v != ":8080" {
		settings[config.KeyMCPAddr] = v
	}

	if err := config.Write(settings); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", config.Path())
	return nil
}

func runProviders(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	manager := provider.NewManager(cfg.Credentials)
	var selected provider.ID
	if len(manager.Configured()) > 0 {
		if id, err := manager.Select(); err == nil {
			selected = id
		}
	}

	fmt.Println("Provider status:")
	fmt.Println("================")
	for _, id := range provider.All() {
		a, ok := manager.Adapter(id)
		switch {
		case !ok:
			fmt.Printf("❌ %-8s not configured\n", id)
		case id == selected && cfg.Provider == "":
			fmt.Printf("✅ %-8s model %s (selected)\n", id, a.Model())
		default:
			fmt.Printf("✅ %-8s model %s\n", id, a.Model())
		}
	}
	if cfg.Provider != "" {
		fmt.Printf("\nPinned provider: %s\n", cfg.Provider)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	srv := mcpsrv.New(mcpsrv.Config{Run: mcpsrv.DefaultRun})

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = config.MCPAddr()
	}

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("MCP server listening on %s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(ctx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}
