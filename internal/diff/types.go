package diff

// Status classifies how a file changed between the base and the branch head.
type Status string

const (
	StatusAdded    Status = "added"
	StatusModified Status = "modified"
	StatusDeleted  Status = "deleted"
	StatusRenamed  Status = "renamed"
)

// LineNumbers holds post-image line numbers for added lines and pre-image
// line numbers for removed lines, ascending, at most maxTrackedLines per side.
type LineNumbers struct {
	Added   []int
	Removed []int
}

type FileChange struct {
	Path       string
	Status     Status
	Insertions int
	Deletions  int
	Changes    int
	Binary     bool
	Patch      string
	Lines      *LineNumbers
}

// ChangeSet is everything the branch changed relative to the base ref,
// assembled once per invocation and never written anywhere.
type ChangeSet struct {
	Branch     string
	Files      []FileChange
	Insertions int
	Deletions  int
	FileCount  int
	Commits    []string
	Diff       string
}
