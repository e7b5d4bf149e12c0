package diff

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// maxTrackedLines bounds the per-side line number lists so a huge patch
	// cannot balloon the prompt.
	maxTrackedLines = 100

	// maxSummaryFiles bounds the per-file summary emitted for oversized diffs.
	maxSummaryFiles = 20
)

var (
	diffHeaderRegexp = regexp.MustCompile(`(?m)^diff --git a/(?P<old>.*?) b/(?P<new>.*?)$`)
	hunkHeaderRegexp = regexp.MustCompile(`^@@ -(\d+)(?:,\d+)? \+(\d+)(?:,\d+)? @@`)
)

// ExtractLineNumbers walks a unified diff and records which line numbers were
// added (post-image) and removed (pre-image). Hunk headers reset the
// counters; structural lines are skipped; context lines advance both sides.
// A patch without hunks, such as a binary change, yields two empty sets.
func ExtractLineNumbers(diffText string) LineNumbers {
	var ln LineNumbers
	oldLine, newLine := 0, 0
	for _, line := range strings.Split(diffText, "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			if m := hunkHeaderRegexp.FindStringSubmatch(line); m != nil {
				o, _ := strconv.Atoi(m[1])
				n, _ := strconv.Atoi(m[2])
				oldLine, newLine = o-1, n-1
			}
		case strings.HasPrefix(line, "diff --git"),
			strings.HasPrefix(line, "index "),
			strings.HasPrefix(line, "+++"),
			strings.HasPrefix(line, "---"):
			// file-level metadata, no counter movement
		case strings.HasPrefix(line, "+"):
			newLine++
			if len(ln.Added) < maxTrackedLines {
				ln.Added = append(ln.Added, newLine)
			}
		case strings.HasPrefix(line, "-"):
			oldLine++
			if len(ln.Removed) < maxTrackedLines {
				ln.Removed = append(ln.Removed, oldLine)
			}
		default:
			oldLine++
			newLine++
		}
	}
	return ln
}

// MapStatus derives a file's change status from its numstat row. A rename
// marker in the path wins over everything else; binary files report zero
// counts on both sides and land on modified.
func MapStatus(fc FileChange) Status {
	switch {
	case strings.Contains(fc.Path, " => "):
		return StatusRenamed
	case fc.Insertions > 0 && fc.Deletions == 0:
		return StatusAdded
	case fc.Deletions > 0 && fc.Insertions == 0:
		return StatusDeleted
	default:
		return StatusModified
	}
}

// Summarize condenses a unified diff into one "<path>: +ins -del" line per
// file, capped to the first maxSummaryFiles files. Used in place of the raw
// diff when the diff is too large to embed in a prompt.
func Summarize(diffText string) []string {
	var (
		lines    []string
		current  string
		ins, del int
	)
	flush := func() {
		if current != "" && len(lines) < maxSummaryFiles {
			lines = append(lines, fmt.Sprintf("%s: +%d -%d", current, ins, del))
		}
	}
	for _, line := range strings.Split(diffText, "\n") {
		if m := diffHeaderRegexp.FindStringSubmatch(line); m != nil {
			flush()
			current = m[diffHeaderRegexp.SubexpIndex("new")]
			if current == "/dev/null" {
				current = m[diffHeaderRegexp.SubexpIndex("old")]
			}
			ins, del = 0, 0
			continue
		}
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			ins++
		case strings.HasPrefix(line, "-"):
			del++
		}
	}
	flush()
	return lines
}

// ParseNumstat turns `git diff --numstat` output into FileChanges. Binary
// files report "-" in both count columns; rename rows keep git's
// "old => new" path form, including the brace-compressed variant.
func ParseNumstat(out string) []FileChange {
	var files []FileChange
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			continue
		}
		fc := FileChange{Path: parts[2]}
		if parts[0] == "-" || parts[1] == "-" {
			fc.Binary = true
		} else {
			fc.Insertions, _ = strconv.Atoi(parts[0])
			fc.Deletions, _ = strconv.Atoi(parts[1])
		}
		fc.Changes = fc.Insertions + fc.Deletions
		fc.Status = MapStatus(fc)
		files = append(files, fc)
	}
	return files
}

// ResolveRenamedPath returns the post-rename path for a numstat rename row.
// Handles both "old => new" and the compressed "pre{old => new}post" form;
// any other path is returned unchanged.
func ResolveRenamedPath(path string) string {
	if !strings.Contains(path, " => ") {
		return path
	}
	if open := strings.Index(path, "{"); open >= 0 {
		if end := strings.Index(path[open:], "}"); end >= 0 {
			inner := path[open+1 : open+end]
			if _, after, ok := strings.Cut(inner, " => "); ok {
				resolved := path[:open] + after + path[open+end+1:]
				return strings.ReplaceAll(resolved, "//", "/")
			}
		}
	}
	_, after, _ := strings.Cut(path, " => ")
	return after
}

// SplitByFile slices a consolidated diff into per-file patches keyed by the
// b-side path (a-side when the file was deleted).
func SplitByFile(diffText string) map[string]string {
	if strings.TrimSpace(diffText) == "" {
		return nil
	}
	matches := diffHeaderRegexp.FindAllStringIndex(diffText, -1)
	if len(matches) == 0 {
		return nil
	}
	chunks := make(map[string]string, len(matches))
	for i, loc := range matches {
		start := loc[0]
		end := len(diffText)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		chunk := strings.TrimSpace(diffText[start:end])
		header := diffHeaderRegexp.FindStringSubmatch(chunk)
		if header == nil {
			continue
		}
		file := header[diffHeaderRegexp.SubexpIndex("new")]
		if file == "/dev/null" {
			file = header[diffHeaderRegexp.SubexpIndex("old")]
		}
		chunks[file] = chunk
	}
	return chunks
}
