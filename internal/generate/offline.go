package generate

import (
	"fmt"
	"strings"

	"github.com/nmoreau/prdraft/internal/content"
	"github.com/nmoreau/prdraft/internal/diff"
	"github.com/nmoreau/prdraft/internal/prompt"
)

// maxListedFiles bounds the offline file list the way the prompt's diff
// summary is bounded.
const maxListedFiles = 20

// Offline renders a deterministic draft from the collected context alone.
// It substitutes for the model output when every provider attempt failed,
// so it performs no I/O and succeeds on any input.
func Offline(pctx prompt.Context) content.Generated {
	branch := ""
	if pctx.Changes != nil {
		branch = pctx.Changes.Branch
	}

	var b strings.Builder
	b.WriteString("## Summary\n\n")
	switch {
	case pctx.Ticket != nil && pctx.Ticket.Summary != "":
		fmt.Fprintf(&b, "%s (%s)\n", pctx.Ticket.Summary, pctx.Ticket.Key)
	case branch != "":
		fmt.Fprintf(&b, "Changes from branch `%s`.\n", branch)
	default:
		b.WriteString("Draft of the pending branch changes.\n")
	}
	b.WriteString("\n")

	if cs := pctx.Changes; cs != nil {
		b.WriteString("## Changes\n\n")
		b.WriteString("| Files | Insertions | Deletions |\n")
		b.WriteString("|------:|-----------:|----------:|\n")
		fmt.Fprintf(&b, "| %d | %d | %d |\n\n", cs.FileCount, cs.Insertions, cs.Deletions)

		if len(cs.Files) > 0 {
			b.WriteString("### Files\n\n")
			for i, f := range cs.Files {
				if i == maxListedFiles {
					fmt.Fprintf(&b, "- and %d more files\n", len(cs.Files)-maxListedFiles)
					break
				}
				writeFileLine(&b, f)
			}
			b.WriteString("\n")
		}

		if len(cs.Commits) > 0 {
			b.WriteString("## Commits\n\n")
			for _, msg := range cs.Commits {
				fmt.Fprintf(&b, "- %s\n", msg)
			}
			b.WriteString("\n")
		}
	}

	if tpl := strings.TrimSpace(pctx.Template); tpl != "" {
		b.WriteString("---\n\n")
		b.WriteString(tpl)
		b.WriteString("\n")
	}

	return content.Generated{
		Title:   offlineTitle(pctx, branch),
		Body:    strings.TrimSpace(b.String()),
		Summary: offlineSummary(pctx.Changes, branch),
	}
}

func offlineTitle(pctx prompt.Context, branch string) string {
	t := pctx.Ticket
	switch {
	case t != nil && t.Summary != "":
		return t.Key + ": " + t.Summary
	case t != nil && branch != "":
		return t.Key + ": Update " + branch
	case branch != "":
		return "Update " + branch
	default:
		return "Pull request update"
	}
}

func offlineSummary(cs *diff.ChangeSet, branch string) string {
	if cs == nil {
		return ""
	}
	if branch == "" {
		return fmt.Sprintf("Updates %d files (+%d/-%d).", cs.FileCount, cs.Insertions, cs.Deletions)
	}
	return fmt.Sprintf("Updates %d files (+%d/-%d) on %s.", cs.FileCount, cs.Insertions, cs.Deletions, branch)
}

func writeFileLine(b *strings.Builder, f diff.FileChange) {
	switch {
	case f.Binary:
		fmt.Fprintf(b, "- `%s` (binary)\n", f.Path)
	case f.Status == diff.StatusDeleted:
		fmt.Fprintf(b, "- `%s` (deleted)\n", f.Path)
	default:
		fmt.Fprintf(b, "- `%s` (+%d -%d)\n", f.Path, f.Insertions, f.Deletions)
	}
}
