package ingest

import (
	"regexp"
	"strings"
)

var (
	codeBlocks    = regexp.MustCompile("(?s)```[^`]*```")
	inlineCode    = regexp.MustCompile("`[^`]+`")
	mdImages      = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	mdLinks       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	mdHeadings    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	mdBlockquotes = regexp.MustCompile(`(?m)^>\s*`)
	mdRules       = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	mdBullets     = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	mdNumbered    = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	blankRuns     = regexp.MustCompile(`\n{3,}`)
)

// markdownTitle uses the first H1 heading, falling back to the filename.
func markdownTitle(content, path string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}
	return titleFromFilename(path)
}

// stripMarkdown reduces markdown to plain text. Simplified handling of
// the common cases; exotic syntax passes through untouched.
func stripMarkdown(content string) string {
	content = codeBlocks.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "")
	content = mdImages.ReplaceAllString(content, "")
	content = mdLinks.ReplaceAllString(content, "$1")
	content = mdHeadings.ReplaceAllString(content, "")

	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "__", "")
	content = strings.ReplaceAll(content, "*", "")
	content = strings.ReplaceAll(content, "_", " ")

	content = mdBlockquotes.ReplaceAllString(content, "")
	content = mdRules.ReplaceAllString(content, "")
	content = mdBullets.ReplaceAllString(content, "")
	content = mdNumbered.ReplaceAllString(content, "")
	content = blankRuns.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
