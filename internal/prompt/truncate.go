package prompt

import (
	"github.com/tmc/langchaingo/textsplitter"
)

const truncationMarker = "\n[truncated]"

// truncate bounds text to roughly limit characters, cutting on paragraph,
// line, or word boundaries rather than mid-sentence.
func truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
		textsplitter.WithChunkSize(limit),
		textsplitter.WithChunkOverlap(0),
	)
	parts, err := splitter.SplitText(text)
	if err != nil || len(parts) == 0 {
		return text[:limit] + truncationMarker
	}
	return parts[0] + truncationMarker
}
