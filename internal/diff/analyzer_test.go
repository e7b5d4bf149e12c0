package diff

import (
	"fmt"
	"strings"
	"testing"
)

func TestExtractLineNumbers(t *testing.T) {
	patch := `diff --git a/f.go b/f.go
index 123..456 100644
--- a/f.go
+++ b/f.go
@@ -1,3 +1,4 @@
 package main
-old line
+new line
+another line
`
	ln := ExtractLineNumbers(patch)
	if !equalInts(ln.Added, []int{2, 3}) {
		t.Fatalf("added = %v, want [2 3]", ln.Added)
	}
	if !equalInts(ln.Removed, []int{2}) {
		t.Fatalf("removed = %v, want [2]", ln.Removed)
	}
}

func TestExtractLineNumbers_MultipleHunks(t *testing.T) {
	patch := `diff --git a/f.go b/f.go
--- a/f.go
+++ b/f.go
@@ -1,2 +1,2 @@
-a
+b
@@ -10,3 +10,4 @@
 ctx
+added
 ctx
 ctx
`
	ln := ExtractLineNumbers(patch)
	if !equalInts(ln.Added, []int{1, 11}) {
		t.Fatalf("added = %v, want [1 11]", ln.Added)
	}
	if !equalInts(ln.Removed, []int{1}) {
		t.Fatalf("removed = %v, want [1]", ln.Removed)
	}
}

func TestExtractLineNumbers_BinaryDiff(t *testing.T) {
	patch := `diff --git a/logo.png b/logo.png
index 123..456 100644
Binary files a/logo.png and b/logo.png differ
`
	ln := ExtractLineNumbers(patch)
	if len(ln.Added) != 0 || len(ln.Removed) != 0 {
		t.Fatalf("binary diff should yield empty sets, got added=%v removed=%v", ln.Added, ln.Removed)
	}
}

func TestExtractLineNumbers_AscendingAndCapped(t *testing.T) {
	var b strings.Builder
	b.WriteString("diff --git a/big.txt b/big.txt\n--- /dev/null\n+++ b/big.txt\n@@ -0,0 +1,150 @@\n")
	for i := 0; i < 150; i++ {
		b.WriteString("+line\n")
	}
	ln := ExtractLineNumbers(b.String())
	if len(ln.Added) != maxTrackedLines {
		t.Fatalf("added length = %d, want %d", len(ln.Added), maxTrackedLines)
	}
	for i, n := range ln.Added {
		if n != i+1 {
			t.Fatalf("added[%d] = %d, want %d", i, n, i+1)
		}
	}
}

func TestMapStatus(t *testing.T) {
	cases := []struct {
		name string
		fc   FileChange
		want Status
	}{
		{"added", FileChange{Path: "new.go", Insertions: 12}, StatusAdded},
		{"deleted", FileChange{Path: "gone.go", Deletions: 8}, StatusDeleted},
		{"modified", FileChange{Path: "f.go", Insertions: 3, Deletions: 2}, StatusModified},
		{"binary", FileChange{Path: "logo.png", Binary: true}, StatusModified},
		{"renamed", FileChange{Path: "old.go => new.go", Insertions: 1, Deletions: 1}, StatusRenamed},
		{"renamed wins over added", FileChange{Path: "a.go => b.go", Insertions: 5}, StatusRenamed},
		{"renamed brace form", FileChange{Path: "src/{old => new}/f.go"}, StatusRenamed},
	}
	for _, tc := range cases {
		if got := MapStatus(tc.fc); got != tc.want {
			t.Errorf("%s: MapStatus = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	diff := `diff --git a/f1.go b/f1.go
--- a/f1.go
+++ b/f1.go
@@ -1,2 +1,3 @@
 ctx
-x
+y
+z
diff --git a/f2.go b/f2.go
--- a/f2.go
+++ b/f2.go
@@ -1 +1 @@
-a
+b
`
	lines := Summarize(diff)
	if len(lines) != 2 {
		t.Fatalf("expected 2 summary lines, got %d: %v", len(lines), lines)
	}
	if lines[0] != "f1.go: +2 -1" {
		t.Fatalf("lines[0] = %q", lines[0])
	}
	if lines[1] != "f2.go: +1 -1" {
		t.Fatalf("lines[1] = %q", lines[1])
	}
}

func TestSummarize_CapsFiles(t *testing.T) {
	var b strings.Builder
	for i := 0; i < maxSummaryFiles+5; i++ {
		fmt.Fprintf(&b, "diff --git a/f%d.go b/f%d.go\n--- a/f%d.go\n+++ b/f%d.go\n@@ -1 +1 @@\n-a\n+b\n", i, i, i, i)
	}
	lines := Summarize(b.String())
	if len(lines) != maxSummaryFiles {
		t.Fatalf("expected %d summary lines, got %d", maxSummaryFiles, len(lines))
	}
}

func TestParseNumstat(t *testing.T) {
	out := "10\t2\tmain.go\n0\t5\tgone.go\n7\t0\tnew.go\n-\t-\tlogo.png\n3\t1\tsrc/{old.go => new.go}\n"
	files := ParseNumstat(out)
	if len(files) != 5 {
		t.Fatalf("expected 5 files, got %d", len(files))
	}
	want := []struct {
		path   string
		status Status
		binary bool
	}{
		{"main.go", StatusModified, false},
		{"gone.go", StatusDeleted, false},
		{"new.go", StatusAdded, false},
		{"logo.png", StatusModified, true},
		{"src/{old.go => new.go}", StatusRenamed, false},
	}
	for i, w := range want {
		if files[i].Path != w.path || files[i].Status != w.status || files[i].Binary != w.binary {
			t.Errorf("files[%d] = %+v, want %+v", i, files[i], w)
		}
	}
	if files[0].Insertions != 10 || files[0].Deletions != 2 || files[0].Changes != 12 {
		t.Errorf("main.go counts = +%d -%d (%d)", files[0].Insertions, files[0].Deletions, files[0].Changes)
	}
}

func TestResolveRenamedPath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"old.go => new.go", "new.go"},
		{"src/{old => new}/f.go", "src/new/f.go"},
		{"src/{lib => }/f.go", "src/f.go"},
		{"cmd/{ => tool}/main.go", "cmd/tool/main.go"},
		{"plain.go", "plain.go"},
	}
	for _, tc := range cases {
		if got := ResolveRenamedPath(tc.in); got != tc.want {
			t.Errorf("ResolveRenamedPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSplitByFile(t *testing.T) {
	diff := `diff --git a/file1.txt b/file1.txt
index 123..456 100644
--- a/file1.txt
+++ b/file1.txt
@@ -1 +1 @@
-foo
+bar
diff --git a/file2.txt b/file2.txt
index 789..abc 100644
--- a/file2.txt
+++ b/file2.txt
@@ -1 +1 @@
-baz
+qux
`
	chunks := SplitByFile(diff)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if _, ok := chunks["file1.txt"]; !ok {
		t.Fatalf("missing file1.txt chunk: %v", keysOf(chunks))
	}
	if !strings.Contains(chunks["file2.txt"], "+qux") {
		t.Fatalf("file2.txt chunk lost its body: %q", chunks["file2.txt"])
	}
}

func TestSplitByFile_Empty(t *testing.T) {
	if chunks := SplitByFile("  \n"); chunks != nil {
		t.Fatalf("expected nil for empty diff, got %v", chunks)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func keysOf(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
