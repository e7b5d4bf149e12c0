package mcpsrv

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nmoreau/prdraft/internal/generate"
)

// RunFunc executes one generation run for a tool call. The server builds no
// pipeline state of its own; every call gets a fresh run.
type RunFunc func(ctx context.Context, repoPath string, opts generate.Options) (generate.Outcome, error)

type Config struct {
	Run     RunFunc
	Options []server.StreamableHTTPOption
}

type Server struct {
	MCP     *server.MCPServer
	HTTP    *server.StreamableHTTPServer
	Handler http.Handler
}

func New(cfg Config) *Server {
	mcpServer := server.NewMCPServer(
		"prdraft",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	tool := mcp.NewTool("generate_pr_description",
		mcp.WithDescription("Generate a pull request title and description for the branch checked out at repo_path, from its diff against the base branch and the linked ticket. Falls back to a deterministic offline draft when no model is reachable."),
		mcp.WithString("repo_path",
			mcp.Required(),
			mcp.Description("Path to the local git checkout"),
		),
		mcp.WithString("base",
			mcp.Description("Base ref to diff against (default: the remote's default branch)"),
		),
		mcp.WithString("ticket",
			mcp.Description("Ticket key to use instead of inferring one from the branch name"),
		),
		mcp.WithBoolean("no_ticket",
			mcp.Description("Skip the ticket lookup entirely"),
		),
		mcp.WithString("provider",
			mcp.Description("Pin one provider instead of using the fallback chain"),
			mcp.Enum("claude", "chatgpt", "gemini", "groq", "ollama"),
		),
		mcp.WithBoolean("refine",
			mcp.Description("Run a second pass seeded with the first pass summary"),
		),
	)

	handler := &generateHandler{run: cfg.Run}
	mcpServer.AddTool(tool, handler.ToolAdapter)

	httpServer := server.NewStreamableHTTPServer(mcpServer, cfg.Options...)

	return &Server{
		MCP:     mcpServer,
		HTTP:    httpServer,
		Handler: httpServer,
	}
}

// DefaultRun loads the configuration and runs the pipeline against the given
// checkout. This is the live wiring; tests substitute their own RunFunc.
func DefaultRun(ctx context.Context, repoPath string, opts generate.Options) (generate.Outcome, error) {
	cfg, err := generate.LoadConfig()
	if err != nil {
		return generate.Outcome{}, err
	}
	gen, err := generate.FromConfig(cfg, repoPath)
	if err != nil {
		return generate.Outcome{}, err
	}
	return gen.Run(ctx, opts)
}

type generateHandler struct {
	run RunFunc
}

func (h *generateHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	repoPath, _ := args["repo_path"].(string)
	if strings.TrimSpace(repoPath) == "" {
		return mcp.NewToolResultError("repo_path parameter is required"), nil
	}

	var opts generate.Options
	if v, ok := args["base"].(string); ok {
		opts.Base = v
	}
	if v, ok := args["ticket"].(string); ok {
		opts.TicketKey = v
	}
	if v, ok := args["no_ticket"].(bool); ok {
		opts.NoTicket = v
	}
	if v, ok := args["provider"].(string); ok {
		opts.Provider = v
	}
	if v, ok := args["refine"].(bool); ok {
		opts.Refine = v
	}

	out, err := h.run(ctx, repoPath, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := struct {
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
	}
	payload, err := json.Marshal(response)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(payload)), nil
}
