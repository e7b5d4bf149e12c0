package ticket

import (
	"context"
	"regexp"
	"strings"
)

// Ticket is an issue-tracker item in tracker-neutral form. Immutable once
// fetched; an empty Assignee means unassigned.
type Ticket struct {
	Key           string
	Summary       string
	Description   string
	Type          string
	Status        string
	Assignee      string
	Reporter      string
	ParentSummary string
	Links         []LinkedDoc
}

// LinkedDoc is a document attached to a ticket, such as a design page.
type LinkedDoc struct {
	Title   string
	URL     string
	Excerpt string
}

type Fetcher interface {
	Fetch(ctx context.Context, key string) (Ticket, error)
}

var keyRegexp = regexp.MustCompile(`(?i)\b([A-Z][A-Z0-9]+-\d+)\b`)

// KeyFromBranch extracts the first issue-key-shaped token ("ABC-123") from a
// branch name, uppercased. Returns "" when the branch carries no key.
func KeyFromBranch(branch string) string {
	return strings.ToUpper(keyRegexp.FindString(branch))
}
