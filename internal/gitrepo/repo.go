package gitrepo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

type RepoConfig struct {
	Path   string
	Remote string // default: origin
}

type Repo struct {
	cfg    RepoConfig
	runner Runner
}

func New(cfg RepoConfig) *Repo {
	if cfg.Remote == "" {
		cfg.Remote = "origin"
	}
	return &Repo{cfg: cfg, runner: Runner{Timeout: 2 * time.Minute}}
}

type Runner struct {
	Timeout time.Duration
}

func (r Runner) Git(ctx context.Context, dir string, args ...string) (string, error) {
	c := exec.CommandContext(ctx, "git", args...)
	c.Dir = dir
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if err := c.Start(); err != nil {
		return "", formatGitError(args, err, stderr.String())
	}
	done := make(chan error, 1)
	go func() { done <- c.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			return "", formatGitError(args, err, stderr.String())
		}
		return stdout.String(), nil
	case <-time.After(r.Timeout):
		_ = c.Process.Kill()
		<-done
		return "", formatGitTimeoutError(args, r.Timeout, stderr.String())
	case <-ctx.Done():
		_ = c.Process.Kill()
		<-done
		return "", formatGitContextError(args, ctx.Err(), stderr.String())
	}
}

func formatGitError(args []string, cause error, stderr string) error {
	cmd := strings.Join(args, " ")
	stderr = strings.TrimSpace(stderr)
	if stderr != "" {
		return fmt.Errorf("git %s: %w: %s", cmd, cause, stderr)
	}
	return fmt.Errorf("git %s: %w", cmd, cause)
}

func formatGitTimeoutError(args []string, timeout time.Duration, stderr string) error {
	return formatGitError(args, fmt.Errorf("command timed out after %s", timeout), stderr)
}

func formatGitContextError(args []string, cause error, stderr string) error {
	if cause == nil {
		cause = errors.New("context canceled")
	}
	return formatGitError(args, cause, stderr)
}

// Run is a helper to execute arbitrary git subcommands in the repo path.
func (r *Repo) Run(ctx context.Context, args ...string) (string, error) {
	return r.runner.Git(ctx, r.cfg.Path, args...)
}

// Root returns the absolute path of the repository's top-level directory.
func (r *Repo) Root(ctx context.Context) (string, error) {
	out, err := r.runner.Git(ctx, r.cfg.Path, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CurrentBranch returns the checked-out branch name.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.runner.Git(ctx, r.cfg.Path, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	branch := strings.TrimSpace(out)
	if branch == "" || branch == "HEAD" {
		return "", fmt.Errorf("detached HEAD; check out a branch first")
	}
	return branch, nil
}

// DefaultBaseRef resolves the remote default branch (origin/HEAD), falling
// back to "main" when the symbolic ref is not set locally.
func (r *Repo) DefaultBaseRef(ctx context.Context) string {
	out, err := r.runner.Git(ctx, r.cfg.Path, "symbolic-ref", "--short", "refs/remotes/"+r.cfg.Remote+"/HEAD")
	if err == nil {
		ref := strings.TrimSpace(out)
		if _, after, ok := strings.Cut(ref, "/"); ok && after != "" {
			return after
		}
	}
	return "main"
}

// DiffAgainst returns the unified diff of HEAD against the merge-base with
// base, the same view a pull request shows.
func (r *Repo) DiffAgainst(ctx context.Context, base string) (string, error) {
	return r.runner.Git(ctx, r.cfg.Path,
		"diff", "--no-color", "--no-ext-diff", "--find-renames", base+"...HEAD")
}

// NumstatAgainst returns per-file insertion/deletion counts for the same
// range as DiffAgainst, one "ins<TAB>del<TAB>path" line per file.
func (r *Repo) NumstatAgainst(ctx context.Context, base string) (string, error) {
	return r.runner.Git(ctx, r.cfg.Path,
		"diff", "--numstat", "--find-renames", base+"...HEAD")
}

// CommitMessages returns the subjects of the branch commits not on base,
// oldest first.
func (r *Repo) CommitMessages(ctx context.Context, base string) ([]string, error) {
	out, err := r.runner.Git(ctx, r.cfg.Path,
		"log", base+"..HEAD", "--pretty=format:%s", "--reverse")
	if err != nil {
		return nil, err
	}
	var msgs []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			msgs = append(msgs, line)
		}
	}
	return msgs, nil
}

// RemoteURL returns the fetch URL of the configured remote.
func (r *Repo) RemoteURL(ctx context.Context) (string, error) {
	out, err := r.runner.Git(ctx, r.cfg.Path, "remote", "get-url", r.cfg.Remote)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
