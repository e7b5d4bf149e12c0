package hosting

import (
	"fmt"

	vcsurl "github.com/gitsight/go-vcsurl"
)

// RepoRef is the link context for a hosted repository checkout, enough to
// build file and line deep-links.
type RepoRef struct {
	Owner  string
	Repo   string
	Branch string
}

// Detect derives owner/name from a git remote URL in any of the usual forms
// (ssh, https, scp-like). The branch is left for the caller to fill in.
func Detect(remoteURL string) (RepoRef, error) {
	info, err := vcsurl.Parse(remoteURL)
	if err != nil {
		return RepoRef{}, fmt.Errorf("parse remote url %q: %w", remoteURL, err)
	}
	if info.Username == "" || info.Name == "" {
		return RepoRef{}, fmt.Errorf("remote url %q does not name an owner and repository", remoteURL)
	}
	return RepoRef{Owner: info.Username, Repo: info.Name}, nil
}
