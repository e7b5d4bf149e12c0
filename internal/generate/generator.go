package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nmoreau/prdraft/internal/content"
	"github.com/nmoreau/prdraft/internal/diff"
	"github.com/nmoreau/prdraft/internal/gitrepo"
	"github.com/nmoreau/prdraft/internal/hosting"
	"github.com/nmoreau/prdraft/internal/logging"
	"github.com/nmoreau/prdraft/internal/prompt"
	"github.com/nmoreau/prdraft/internal/provider"
	"github.com/nmoreau/prdraft/internal/ticket"
)

// GitSource is the view of the local repository the generator needs.
type GitSource interface {
	diff.Source
	DefaultBaseRef(ctx context.Context) string
	RemoteURL(ctx context.Context) (string, error)
}

// TemplateSource fetches the repository's pull request template.
type TemplateSource interface {
	Template(ctx context.Context) (string, error)
}

// ContentSource produces the draft text for a prompt. Satisfied by
// provider.Manager.
type ContentSource interface {
	Generate(ctx context.Context, promptText string, explicit provider.ID) (provider.Result, error)
}

// TemplateFunc builds the template source once the hosted repository is
// known. A nil func (or nil result) skips template lookup.
type TemplateFunc func(ref hosting.RepoRef) TemplateSource

// Options are the per-invocation knobs.
type Options struct {
	TicketKey string // explicit ticket key; overrides branch inference
	NoTicket  bool   // skip the ticket lookup entirely
	Base      string // base ref override
	Provider  string // provider name; when set, no fallback
	Refine    bool   // second pass seeded with the first summary
}

// Outcome is the result of one generation run.
type Outcome struct {
	Content  content.Generated
	Provider provider.ID // empty when the draft was rendered offline
	Model    string
	Offline  bool
	Branch   string
	Base     string
	Ticket   *ticket.Ticket
}

// Generator runs the draft pipeline: collect branch changes, resolve the
// ticket, build the prompt, call the providers, parse the reply. Build a
// fresh one per invocation.
type Generator struct {
	cfg       Config
	git       GitSource
	tickets   ticket.Fetcher
	source    ContentSource
	templates TemplateFunc
	builder   prompt.Builder
	log       logging.Logger
}

func NewGenerator(cfg Config, git GitSource, tickets ticket.Fetcher, source ContentSource, templates TemplateFunc) *Generator {
	return &Generator{
		cfg:       cfg,
		git:       git,
		tickets:   tickets,
		source:    source,
		templates: templates,
		builder:   prompt.Builder{Logger: cfg.Logger},
		log:       logging.New(cfg.Logger).WithName("generate"),
	}
}

// FromConfig wires a Generator for the repository at path with live
// collaborators. Extra provider options run after the configured defaults,
// so interactive callers can attach a chooser.
func FromConfig(cfg Config, repoPath string, opts ...provider.Option) (*Generator, error) {
	repo := gitrepo.New(gitrepo.RepoConfig{Path: repoPath})

	var fetcher ticket.Fetcher
	if strings.TrimSpace(cfg.Jira.BaseURL) != "" {
		jc, err := ticket.NewJiraClient(cfg.Jira)
		if err != nil {
			return nil, fmt.Errorf("jira client: %w", err)
		}
		fetcher = jc
	}

	mopts := append([]provider.Option{
		provider.WithTimeout(cfg.RequestTimeout),
		provider.WithLogger(cfg.Logger),
	}, opts...)
	manager := provider.NewManager(cfg.Credentials, mopts...)

	templates := func(ref hosting.RepoRef) TemplateSource {
		return hosting.NewClient(cfg.GitHubToken, ref)
	}

	return NewGenerator(cfg, repo, fetcher, manager, templates), nil
}

// Run executes the pipeline once. Total provider failure is not an error:
// the outcome carries an offline-rendered draft instead. Everything the
// command needs to print or open a pull request is on the Outcome.
func (g *Generator) Run(ctx context.Context, opts Options) (Outcome, error) {
	var out Outcome

	explicit, err := g.explicitProvider(opts.Provider)
	if err != nil {
		return out, err
	}

	branch, err := g.git.CurrentBranch(ctx)
	if err != nil {
		return out, err
	}
	out.Branch = branch

	base := opts.Base
	if base == "" {
		base = g.cfg.Base
	}
	if base == "" {
		base = g.git.DefaultBaseRef(ctx)
	}
	out.Base = base

	tkt, err := g.resolveTicket(ctx, branch, opts)
	if err != nil {
		return out, err
	}
	out.Ticket = tkt

	changes, err := diff.Collect(ctx, g.git, base)
	if err != nil {
		return out, fmt.Errorf("collect branch changes: %w", err)
	}

	pctx := prompt.Context{Ticket: tkt, Changes: changes}
	g.attachHosting(ctx, &pctx, branch)

	promptText, tokens := g.builder.Build(pctx)
	g.log.Debug("prompt assembled", "tokens", tokens, "bytes", len(promptText))

	result, err := g.source.Generate(ctx, promptText, explicit)
	if err != nil {
		var all *provider.AllFailedError
		if !errors.As(err, &all) {
			return out, err
		}
		for _, attempt := range all.Attempts {
			g.log.Error(attempt.Err, "provider attempt failed", "provider", attempt.Provider)
		}
		g.log.Info("all providers failed, rendering the offline draft")
		out.Content = Offline(pctx)
		out.Offline = true
		return out, nil
	}

	out.Provider = result.Provider
	out.Model = result.Model
	out.Content = content.Parse(result.Text)

	if opts.Refine {
		if err := g.refine(ctx, pctx, explicit, &out); err != nil {
			return out, err
		}
	}
	return out, nil
}

// refine reruns the pipeline with the first pass's summary folded into the
// prompt. Failure of the second pass keeps the first draft; only a canceled
// context aborts.
func (g *Generator) refine(ctx context.Context, pctx prompt.Context, explicit provider.ID, out *Outcome) error {
	if out.Content.Summary == "" {
		g.log.Debug("first pass produced no summary, skipping refine")
		return nil
	}
	pctx.PriorSummary = out.Content.Summary
	promptText, _ := g.builder.Build(pctx)

	result, err := g.source.Generate(ctx, promptText, explicit)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		g.log.Error(err, "refine pass failed, keeping the first draft")
		return nil
	}
	out.Content = content.Parse(result.Text)
	out.Provider = result.Provider
	out.Model = result.Model
	return nil
}

func (g *Generator) explicitProvider(name string) (provider.ID, error) {
	if strings.TrimSpace(name) == "" {
		name = g.cfg.Provider
	}
	if strings.TrimSpace(name) == "" {
		return "", nil
	}
	return provider.ParseID(name)
}

// resolveTicket finds the ticket for this run. An explicitly requested key
// that cannot be fetched is an error; an inferred key degrades. A key
// without a configured tracker still rides along for the title prefix.
func (g *Generator) resolveTicket(ctx context.Context, branch string, opts Options) (*ticket.Ticket, error) {
	if opts.NoTicket {
		return nil, nil
	}

	key := strings.ToUpper(strings.TrimSpace(opts.TicketKey))
	explicit := key != ""
	if !explicit {
		key = ticket.KeyFromBranch(branch)
	}
	if key == "" {
		return nil, fmt.Errorf("no ticket key in branch %q: pass --ticket KEY or --no-ticket", branch)
	}

	if g.tickets == nil {
		g.log.Debug("no issue tracker configured, keeping the bare ticket key", "key", key)
		return &ticket.Ticket{Key: key}, nil
	}

	tkt, err := g.tickets.Fetch(ctx, key)
	if err != nil {
		if explicit {
			return nil, fmt.Errorf("fetch ticket %s: %w", key, err)
		}
		if errors.Is(err, ticket.ErrNotFound) {
			g.log.Info("branch ticket key not found in the tracker, continuing without it", "key", key)
			return nil, nil
		}
		g.log.Error(err, "ticket fetch failed, keeping the bare key", "key", key)
		return &ticket.Ticket{Key: key}, nil
	}
	return &tkt, nil
}

// attachHosting fills in the hosted-repo reference and pull request template.
// Both are context enrichment only, so every failure here degrades.
func (g *Generator) attachHosting(ctx context.Context, pctx *prompt.Context, branch string) {
	remote, err := g.git.RemoteURL(ctx)
	if err != nil {
		g.log.Debug("no usable remote, skipping deep links and template", "error", err.Error())
		return
	}
	ref, err := hosting.Detect(remote)
	if err != nil {
		g.log.Debug("unrecognized remote URL, skipping deep links and template", "remote", remote)
		return
	}
	ref.Branch = branch
	pctx.Repo = &ref

	if g.templates == nil {
		return
	}
	src := g.templates(ref)
	if src == nil {
		return
	}
	tpl, err := src.Template(ctx)
	if err != nil {
		g.log.Info("pull request template lookup failed, continuing without it", "error", err.Error())
		return
	}
	pctx.Template = tpl
}
