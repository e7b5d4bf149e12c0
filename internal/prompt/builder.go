package prompt

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/nmoreau/prdraft/internal/diff"
	"github.com/nmoreau/prdraft/internal/hosting"
	"github.com/nmoreau/prdraft/internal/logging"
	"github.com/nmoreau/prdraft/internal/ticket"
)

const (
	defaultInlineDiffLimit  = 4000
	defaultDescriptionLimit = 2000
	defaultExcerptLimit     = 500
	defaultTokenBudget      = 12000

	maxDeepLinksPerSide = 10
)

const preamble = `You are a tool that writes pull request titles and descriptions. Analyze the ticket context and code changes below and produce a clear, reviewer-friendly pull request description.

Rules:
- Only describe changes visible in the diff or stated in the ticket context. Never speculate.
- Use direct, technical language. Avoid buzzwords.
- Write the title in imperative mood, at most 72 characters, prefixed with the ticket key when one is present.

`

const outputContract = `## Output format

Respond with a single raw JSON object and nothing else:

{"title": "<pull request title>", "description": "<markdown body>", "summary": "<one-paragraph summary>"}

Rules:
- Return only the JSON object. No markdown fences, no surrounding prose.
- "title" and "description" are required; "summary" is optional.
`

// Context aggregates everything one generation pass may draw on.
type Context struct {
	Ticket       *ticket.Ticket
	Changes      *diff.ChangeSet
	Template     string
	Repo         *hosting.RepoRef
	PriorSummary string
}

// Builder assembles the generation prompt deterministically. Zero-valued
// tunables fall back to the package defaults.
type Builder struct {
	InlineDiffLimit  int
	DescriptionLimit int
	ExcerptLimit     int
	TokenBudget      int
	Logger           logr.Logger
}

// Build renders the prompt and reports its estimated token count. The diff
// is embedded whole when it is small; otherwise, or when the whole prompt
// blows the token budget, the per-file summary stands in for it.
func (b Builder) Build(pctx Context) (string, int) {
	log := logging.New(b.Logger)

	inlineLimit := b.InlineDiffLimit
	if inlineLimit <= 0 {
		inlineLimit = defaultInlineDiffLimit
	}
	budget := b.TokenBudget
	if budget <= 0 {
		budget = defaultTokenBudget
	}

	inline := pctx.Changes != nil && len(pctx.Changes.Diff) < inlineLimit
	text := b.render(pctx, inline)
	tokens := estimateTokens(text)
	if tokens > budget && inline {
		log.Debug("prompt over token budget, replacing inline diff with summary", "tokens", tokens, "budget", budget)
		text = b.render(pctx, false)
		tokens = estimateTokens(text)
	}
	return text, tokens
}

func (b Builder) render(pctx Context, inlineDiff bool) string {
	var sb strings.Builder
	sb.WriteString(preamble)
	b.writeTicket(&sb, pctx.Ticket)
	writeOverview(&sb, pctx.Changes)
	writeFiles(&sb, pctx.Changes, pctx.Repo)
	writeDiff(&sb, pctx.Changes, inlineDiff)
	writeTemplate(&sb, pctx.Template)
	writePriorSummary(&sb, pctx.PriorSummary)
	sb.WriteString(outputContract)
	return sb.String()
}

func (b Builder) writeTicket(sb *strings.Builder, t *ticket.Ticket) {
	if t == nil {
		return
	}
	descLimit := b.DescriptionLimit
	if descLimit <= 0 {
		descLimit = defaultDescriptionLimit
	}
	excerptLimit := b.ExcerptLimit
	if excerptLimit <= 0 {
		excerptLimit = defaultExcerptLimit
	}

	sb.WriteString("## Ticket\n\n")
	fmt.Fprintf(sb, "- Key: %s\n", t.Key)
	fmt.Fprintf(sb, "- Summary: %s\n", t.Summary)
	if t.Type != "" {
		fmt.Fprintf(sb, "- Type: %s\n", t.Type)
	}
	if t.Status != "" {
		fmt.Fprintf(sb, "- Status: %s\n", t.Status)
	}
	assignee := t.Assignee
	if assignee == "" {
		assignee = "Unassigned"
	}
	fmt.Fprintf(sb, "- Assignee: %s\n", assignee)
	if t.Reporter != "" {
		fmt.Fprintf(sb, "- Reporter: %s\n", t.Reporter)
	}
	if t.ParentSummary != "" {
		fmt.Fprintf(sb, "- Parent: %s\n", t.ParentSummary)
	}
	if desc := strings.TrimSpace(t.Description); desc != "" {
		fmt.Fprintf(sb, "\n### Ticket description\n\n%s\n", truncate(desc, descLimit))
	}
	if len(t.Links) > 0 {
		sb.WriteString("\n### Linked documents\n\n")
		for _, link := range t.Links {
			fmt.Fprintf(sb, "- %s (%s)\n", link.Title, link.URL)
			if excerpt := strings.TrimSpace(link.Excerpt); excerpt != "" {
				fmt.Fprintf(sb, "  %s\n", truncate(excerpt, excerptLimit))
			}
		}
	}
	sb.WriteString("\n")
}

func writeOverview(sb *strings.Builder, cs *diff.ChangeSet) {
	if cs == nil {
		return
	}
	sb.WriteString("## Change overview\n\n")
	fmt.Fprintf(sb, "Branch %s: %d file(s) changed, +%d -%d.\n", cs.Branch, cs.FileCount, cs.Insertions, cs.Deletions)
	if len(cs.Commits) > 0 {
		sb.WriteString("\nCommits, oldest first:\n")
		for _, c := range cs.Commits {
			fmt.Fprintf(sb, "- %s\n", c)
		}
	}
	sb.WriteString("\n")
}

func writeFiles(sb *strings.Builder, cs *diff.ChangeSet, repo *hosting.RepoRef) {
	if cs == nil || len(cs.Files) == 0 {
		return
	}
	sb.WriteString("## Files\n\n")
	for _, fc := range cs.Files {
		fmt.Fprintf(sb, "- %s (%s, +%d -%d)\n", fc.Path, fc.Status, fc.Insertions, fc.Deletions)
		if repo == nil {
			continue
		}
		path := diff.ResolveRenamedPath(fc.Path)
		base := fmt.Sprintf("https://github.com/%s/%s/blob/%s/%s", repo.Owner, repo.Repo, repo.Branch, path)
		fmt.Fprintf(sb, "  %s\n", base)
		if fc.Lines == nil {
			continue
		}
		writeLineLinks(sb, "added", base, fc.Lines.Added)
		writeLineLinks(sb, "removed", base, fc.Lines.Removed)
	}
	sb.WriteString("\n")
}

func writeLineLinks(sb *strings.Builder, label, base string, lines []int) {
	if len(lines) == 0 {
		return
	}
	if len(lines) > maxDeepLinksPerSide {
		lines = lines[:maxDeepLinksPerSide]
	}
	links := make([]string, 0, len(lines))
	for _, n := range lines {
		links = append(links, fmt.Sprintf("%s#L%d", base, n))
	}
	fmt.Fprintf(sb, "  %s lines: %s\n", label, strings.Join(links, " "))
}

func writeDiff(sb *strings.Builder, cs *diff.ChangeSet, inline bool) {
	if cs == nil || strings.TrimSpace(cs.Diff) == "" {
		return
	}
	if inline {
		fmt.Fprintf(sb, "## Diff\n\n```diff\n%s\n```\n\n", strings.TrimRight(cs.Diff, "\n"))
		return
	}
	sb.WriteString("## Diff summary\n\nThe diff is too large to include whole. Per-file change counts:\n\n")
	for _, line := range diff.Summarize(cs.Diff) {
		fmt.Fprintf(sb, "- %s\n", line)
	}
	sb.WriteString("\n")
}

func writeTemplate(sb *strings.Builder, tmpl string) {
	if strings.TrimSpace(tmpl) == "" {
		return
	}
	sb.WriteString("## Repository pull request template\n\n")
	sb.WriteString("Write the description by filling in the template below. Keep its headings and structure exactly as they are; do not add, remove, or reorder sections.\n\n")
	sb.WriteString(strings.TrimRight(tmpl, "\n"))
	sb.WriteString("\n\n")
}

func writePriorSummary(sb *strings.Builder, prior string) {
	if strings.TrimSpace(prior) == "" {
		return
	}
	sb.WriteString("## Previous pass summary\n\n")
	sb.WriteString("A first generation pass produced the summary below. Use it as additional context and refine the description.\n\n")
	sb.WriteString(strings.TrimSpace(prior))
	sb.WriteString("\n\n")
}
