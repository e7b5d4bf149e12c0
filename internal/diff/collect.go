package diff

import (
	"context"
	"fmt"
)

// Source is the slice of git plumbing the collector needs.
type Source interface {
	CurrentBranch(ctx context.Context) (string, error)
	DiffAgainst(ctx context.Context, base string) (string, error)
	NumstatAgainst(ctx context.Context, base string) (string, error)
	CommitMessages(ctx context.Context, base string) ([]string, error)
}

// Collect assembles the full ChangeSet for the current branch against base:
// per-file stats from numstat, the matching patch and line numbers for each
// file, branch commits, and the aggregate totals.
func Collect(ctx context.Context, src Source, base string) (*ChangeSet, error) {
	branch, err := src.CurrentBranch(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve branch: %w", err)
	}
	numstat, err := src.NumstatAgainst(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("diff stats against %s: %w", base, err)
	}
	diffText, err := src.DiffAgainst(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("diff against %s: %w", base, err)
	}
	commits, err := src.CommitMessages(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}

	files := ParseNumstat(numstat)
	patches := SplitByFile(diffText)

	cs := &ChangeSet{
		Branch:  branch,
		Commits: commits,
		Diff:    diffText,
	}
	for i := range files {
		fc := &files[i]
		if patch, ok := patches[ResolveRenamedPath(fc.Path)]; ok {
			fc.Patch = patch
			if !fc.Binary {
				ln := ExtractLineNumbers(patch)
				fc.Lines = &ln
			}
		}
		cs.Insertions += fc.Insertions
		cs.Deletions += fc.Deletions
	}
	cs.Files = files
	cs.FileCount = len(files)
	return cs, nil
}
