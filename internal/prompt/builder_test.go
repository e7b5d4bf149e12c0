package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nmoreau/prdraft/internal/diff"
	"github.com/nmoreau/prdraft/internal/hosting"
	"github.com/nmoreau/prdraft/internal/ticket"
)

func stubTokenCounter(t *testing.T, fn func(string) int) {
	t.Helper()
	old := estimateTokensFunc
	estimateTokensFunc = fn
	t.Cleanup(func() { estimateTokensFunc = old })
}

func charTokens(text string) int { return len(text) / approxCharsPerToken }

func fullContext() Context {
	return Context{
		Ticket: &ticket.Ticket{
			Key:         "PROJ-42",
			Summary:     "Add login flow",
			Description: "Users need SSO login.",
			Type:        "Story",
			Status:      "In Progress",
			Reporter:    "Lee",
			Links: []ticket.LinkedDoc{
				{Title: "Design doc", URL: "https://docs.example.com/d/1", Excerpt: "Login flow design."},
			},
		},
		Changes: &diff.ChangeSet{
			Branch:     "feature/PROJ-42-login",
			FileCount:  1,
			Insertions: 2,
			Deletions:  1,
			Commits:    []string{"add login flow"},
			Files: []diff.FileChange{
				{Path: "auth.go", Status: diff.StatusModified, Insertions: 2, Deletions: 1,
					Lines: &diff.LineNumbers{Added: []int{2, 3}, Removed: []int{2}}},
			},
			Diff: "diff --git a/auth.go b/auth.go\n--- a/auth.go\n+++ b/auth.go\n@@ -1,3 +1,4 @@\n package auth\n-old\n+new\n+extra\n",
		},
		Template:     "## Summary\n\n## Testing\n",
		Repo:         &hosting.RepoRef{Owner: "acme", Repo: "widget", Branch: "feature/PROJ-42-login"},
		PriorSummary: "Adds SSO login to the auth package.",
	}
}

func TestBuild_SectionOrder(t *testing.T) {
	stubTokenCounter(t, charTokens)
	text, tokens := Builder{}.Build(fullContext())
	if tokens <= 0 {
		t.Fatalf("tokens = %d", tokens)
	}
	sections := []string{
		"## Ticket",
		"## Change overview",
		"## Files",
		"## Diff",
		"## Repository pull request template",
		"## Previous pass summary",
		"## Output format",
	}
	last := -1
	for _, s := range sections {
		idx := strings.Index(text, s)
		if idx < 0 {
			t.Fatalf("missing section %q in:\n%s", s, text)
		}
		if idx <= last {
			t.Fatalf("section %q out of order", s)
		}
		last = idx
	}
}

func TestBuild_InlinesSmallDiff(t *testing.T) {
	stubTokenCounter(t, charTokens)
	text, _ := Builder{}.Build(fullContext())
	if !strings.Contains(text, "```diff") {
		t.Fatalf("small diff should be embedded whole")
	}
	if strings.Contains(text, "## Diff summary") {
		t.Fatalf("small diff should not be summarized")
	}
}

func TestBuild_SummarizesLargeDiff(t *testing.T) {
	stubTokenCounter(t, charTokens)
	pctx := fullContext()
	pctx.Changes.Diff = bigDiff(3)
	if len(pctx.Changes.Diff) < 5000 {
		t.Fatalf("test diff too small: %d", len(pctx.Changes.Diff))
	}

	text, _ := Builder{}.Build(pctx)
	if strings.Contains(text, "```diff") {
		t.Fatalf("large diff must not be embedded whole")
	}
	if !strings.Contains(text, "## Diff summary") {
		t.Fatalf("expected diff summary section")
	}
	if !strings.Contains(text, "- f0.go: +50 -0") {
		t.Fatalf("expected per-file counts, got:\n%s", text)
	}
}

func TestBuild_RebuildsOverTokenBudget(t *testing.T) {
	// Make the inline rendering look enormous so the budget check trips.
	stubTokenCounter(t, func(text string) int {
		if strings.Contains(text, "```diff") {
			return 50000
		}
		return 100
	})
	text, tokens := Builder{}.Build(fullContext())
	if strings.Contains(text, "```diff") {
		t.Fatalf("over-budget prompt should fall back to the summary form")
	}
	if tokens != 100 {
		t.Fatalf("tokens = %d, want the rebuilt estimate", tokens)
	}
}

func TestBuild_DeepLinksCapped(t *testing.T) {
	stubTokenCounter(t, charTokens)
	added := make([]int, 30)
	removed := make([]int, 15)
	for i := range added {
		added[i] = i + 1
	}
	for i := range removed {
		removed[i] = i + 1
	}
	pctx := fullContext()
	pctx.Changes.Files[0].Lines = &diff.LineNumbers{Added: added, Removed: removed}

	text, _ := Builder{}.Build(pctx)
	if got := strings.Count(text, "#L"); got != 2*maxDeepLinksPerSide {
		t.Fatalf("deep link count = %d, want %d", got, 2*maxDeepLinksPerSide)
	}
	if !strings.Contains(text, "https://github.com/acme/widget/blob/feature/PROJ-42-login/auth.go#L1") {
		t.Fatalf("missing expected deep link in:\n%s", text)
	}
}

func TestBuild_TemplateVerbatim(t *testing.T) {
	stubTokenCounter(t, charTokens)
	pctx := fullContext()
	pctx.Template = "## Summary\n<!-- what changed -->\n\n## Checklist\n- [ ] tests\n"
	text, _ := Builder{}.Build(pctx)
	if !strings.Contains(text, "## Summary\n<!-- what changed -->\n\n## Checklist\n- [ ] tests") {
		t.Fatalf("template must appear verbatim")
	}
}

func TestBuild_UnassignedTicket(t *testing.T) {
	stubTokenCounter(t, charTokens)
	pctx := fullContext()
	pctx.Ticket.Assignee = ""
	text, _ := Builder{}.Build(pctx)
	if !strings.Contains(text, "- Assignee: Unassigned") {
		t.Fatalf("empty assignee should render as Unassigned")
	}
}

func TestBuild_NoTicket(t *testing.T) {
	stubTokenCounter(t, charTokens)
	pctx := fullContext()
	pctx.Ticket = nil
	text, _ := Builder{}.Build(pctx)
	if strings.Contains(text, "## Ticket") {
		t.Fatalf("ticket section should be absent")
	}
	if !strings.Contains(text, "## Change overview") {
		t.Fatalf("change overview should still render")
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("alpha beta gamma ", 50)
	got := truncate(long, 100)
	if len(got) >= len(long) {
		t.Fatalf("expected truncation, got %d chars", len(got))
	}
	if !strings.HasSuffix(got, "[truncated]") {
		t.Fatalf("missing truncation marker: %q", got)
	}
	if truncate("short", 100) != "short" {
		t.Fatalf("short text must pass through unchanged")
	}
}

func bigDiff(files int) string {
	var sb strings.Builder
	for i := 0; i < files; i++ {
		fmt.Fprintf(&sb, "diff --git a/f%d.go b/f%d.go\n--- a/f%d.go\n+++ b/f%d.go\n@@ -0,0 +1,50 @@\n", i, i, i, i)
		for j := 0; j < 50; j++ {
			fmt.Fprintf(&sb, "+\tvalue%d := compute(%d) // generated padding line\n", j, j)
		}
	}
	return sb.String()
}
