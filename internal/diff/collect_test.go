package diff

import (
	"context"
	"errors"
	"testing"
)

type fakeSource struct {
	branch  string
	diff    string
	numstat string
	commits []string
	err     error
}

func (f *fakeSource) CurrentBranch(context.Context) (string, error) { return f.branch, f.err }
func (f *fakeSource) DiffAgainst(context.Context, string) (string, error) {
	return f.diff, f.err
}
func (f *fakeSource) NumstatAgainst(context.Context, string) (string, error) {
	return f.numstat, f.err
}
func (f *fakeSource) CommitMessages(context.Context, string) ([]string, error) {
	return f.commits, f.err
}

func TestCollect(t *testing.T) {
	src := &fakeSource{
		branch: "feature/PROJ-42-login",
		diff: `diff --git a/auth.go b/auth.go
--- a/auth.go
+++ b/auth.go
@@ -1,3 +1,4 @@
 package auth
-old
+new
+extra
diff --git a/logo.png b/logo.png
Binary files a/logo.png and b/logo.png differ
`,
		numstat: "2\t1\tauth.go\n-\t-\tlogo.png\n",
		commits: []string{"add login flow", "fix token refresh"},
	}

	cs, err := Collect(context.Background(), src, "main")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if cs.Branch != "feature/PROJ-42-login" {
		t.Fatalf("branch = %q", cs.Branch)
	}
	if cs.FileCount != 2 || len(cs.Files) != 2 {
		t.Fatalf("file count = %d / %d files", cs.FileCount, len(cs.Files))
	}
	if cs.Insertions != 2 || cs.Deletions != 1 {
		t.Fatalf("totals = +%d -%d, want +2 -1", cs.Insertions, cs.Deletions)
	}
	if len(cs.Commits) != 2 {
		t.Fatalf("commits = %v", cs.Commits)
	}

	auth := cs.Files[0]
	if auth.Patch == "" {
		t.Fatalf("auth.go missing patch")
	}
	if auth.Lines == nil || !equalInts(auth.Lines.Added, []int{2, 3}) || !equalInts(auth.Lines.Removed, []int{2}) {
		t.Fatalf("auth.go lines = %+v", auth.Lines)
	}

	logo := cs.Files[1]
	if !logo.Binary || logo.Lines != nil {
		t.Fatalf("logo.png should be binary without line numbers, got %+v", logo)
	}
}

func TestCollect_RenameResolvesPatch(t *testing.T) {
	src := &fakeSource{
		branch:  "refactor",
		diff:    "diff --git a/src/old.go b/src/new.go\n--- a/src/old.go\n+++ b/src/new.go\n@@ -1 +1 @@\n-a\n+b\n",
		numstat: "1\t1\tsrc/{old.go => new.go}\n",
	}
	cs, err := Collect(context.Background(), src, "main")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if cs.Files[0].Status != StatusRenamed {
		t.Fatalf("status = %q", cs.Files[0].Status)
	}
	if cs.Files[0].Patch == "" {
		t.Fatalf("renamed file should pick up its patch via the post-rename path")
	}
}

func TestCollect_SourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("not a git repository")}
	if _, err := Collect(context.Background(), src, "main"); err == nil {
		t.Fatalf("expected error")
	}
}
