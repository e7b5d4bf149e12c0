package content

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// Tunable extraction bounds. The exact numbers are heuristics, not semantic
// truths.
const (
	minTitleLen   = 10
	maxTitleLen   = 100
	minSummaryLen = 20
	maxSummaryLen = 200

	placeholderTitle = "Pull request update"
)

var (
	jsonObjectRegexp = regexp.MustCompile(`(?s)\{.*\}`)

	h1Regexp        = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	titleLineRegexp = regexp.MustCompile(`(?mi)^title:\s*(.+)$`)
	h2Regexp        = regexp.MustCompile(`(?m)^##\s+(.+)$`)
	h3Regexp        = regexp.MustCompile(`(?m)^###\s+(.+)$`)

	summaryLineRegexp = regexp.MustCompile(`(?mi)^summary:\s*(.+)$`)
)

// Parse turns whatever an LLM returned into a Generated. It is total: any
// input, including empty or malformed text, yields a result with a non-empty
// Title. Well-formed JSON is taken at face value; everything else goes
// through an ordered heuristic cascade.
func Parse(raw string) Generated {
	cleaned := stripFences(raw)

	if obj := jsonObjectRegexp.FindString(cleaned); obj != "" && gjson.Valid(obj) {
		return fromJSON(obj, cleaned)
	}
	return fromText(cleaned)
}

func stripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

func fromJSON(obj, cleaned string) Generated {
	parsed := gjson.Parse(obj)
	g := Generated{
		Title:   strings.TrimSpace(parsed.Get("title").String()),
		Summary: strings.TrimSpace(parsed.Get("summary").String()),
	}
	body := parsed.Get("description")
	if !body.Exists() {
		body = parsed.Get("body")
	}
	g.Body = strings.TrimSpace(body.String())
	if g.Body == "" {
		g.Body = cleaned
	}
	if g.Title == "" {
		derived := fromText(g.Body)
		g.Title = derived.Title
	}
	return g
}

func fromText(cleaned string) Generated {
	g := Generated{Body: cleaned}
	if title := findTitle(cleaned); title != "" {
		g.Title = title
	} else if line := firstNonEmptyLine(cleaned); line != "" {
		g.Title = line
		g.Body = line
	} else {
		g.Title = placeholderTitle
	}
	g.Summary = findSummary(cleaned)
	return g
}

// findTitle applies the heading cascade, then falls back to the first line
// of plausible title length. The heading rules carry no length bound.
func findTitle(text string) string {
	for _, re := range []*regexp.Regexp{h1Regexp, titleLineRegexp, h2Regexp, h3Regexp} {
		if m := re.FindStringSubmatch(text); m != nil {
			if t := strings.TrimSpace(m[1]); t != "" {
				return t
			}
		}
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if n := len(line); n >= minTitleLen && n <= maxTitleLen {
			return line
		}
	}
	return ""
}

func firstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// findSummary never fails; a text without a recognizable summary simply
// yields "".
func findSummary(text string) string {
	if m := summaryLineRegexp.FindStringSubmatch(text); m != nil {
		if s := strings.TrimSpace(m[1]); s != "" {
			return s
		}
	}
	for _, heading := range []string{"## summary", "### summary"} {
		if s := sectionBody(text, heading); s != "" {
			return s
		}
	}
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if n := len(para); n >= minSummaryLen && n <= maxSummaryLen {
			return para
		}
	}
	return ""
}

// sectionBody returns the text under a heading line, up to the next heading.
func sectionBody(text, heading string) string {
	lines := strings.Split(text, "\n")
	start := -1
	for i, line := range lines {
		if strings.EqualFold(strings.TrimSpace(line), heading) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return ""
	}
	var body []string
	for _, line := range lines[start:] {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			break
		}
		body = append(body, line)
	}
	return strings.TrimSpace(strings.Join(body, "\n"))
}
