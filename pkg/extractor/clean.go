package extractor

import (
	"regexp"
	"strings"
)

var (
	urlPattern        = regexp.MustCompile(`https?://\S+`)
	cookiePattern     = regexp.MustCompile(`(?i)Cookie\s+Policy.*?Accept`)
	newsletterPattern = regexp.MustCompile(`(?i)Subscribe\s+to\s+newsletter`)
	spacePattern      = regexp.MustCompile(`[ \t]+`)
	blankLinePattern  = regexp.MustCompile(`\n\s*\n\s*\n+`)

	snapshotFencePattern = regexp.MustCompile("```(?:yaml)?\n?")
	quotedPattern        = regexp.MustCompile(`"([^"]+)"`)
	labeledPattern       = regexp.MustCompile(`(?:text|heading|paragraph|link):\s*([^\n]+)`)
)

// CleanText normalizes extracted page text: raw URLs and common
// cookie/newsletter boilerplate are stripped, whitespace runs collapse to a
// single space, and blank-line runs collapse to one blank line. Cleaning
// already-clean text is a no-op.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = urlPattern.ReplaceAllString(text, "")
	text = cookiePattern.ReplaceAllString(text, "")
	text = newsletterPattern.ReplaceAllString(text, "")
	text = spacePattern.ReplaceAllString(text, " ")
	text = blankLinePattern.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// SnapshotText decodes a structural page snapshot into plain text. The
// snapshot arrives as YAML-like structured text; the readable content lives
// in quoted spans and text/heading/paragraph/link labels.
func SnapshotText(snapshot string) string {
	if snapshot == "" {
		return ""
	}

	// Narrow to the snapshot body when the tool wraps it in a section.
	if _, after, found := strings.Cut(snapshot, "Page Snapshot:"); found {
		snapshot = after
	}
	snapshot = snapshotFencePattern.ReplaceAllString(snapshot, "")

	var spans []string
	for _, m := range quotedPattern.FindAllStringSubmatch(snapshot, -1) {
		spans = append(spans, m[1])
	}
	for _, m := range labeledPattern.FindAllStringSubmatch(snapshot, -1) {
		spans = append(spans, strings.TrimSpace(m[1]))
	}

	if len(spans) == 0 {
		return Truncate(CleanText(snapshot), MaxContentLength)
	}
	return Truncate(CleanText(strings.Join(spans, " ")), MaxContentLength)
}

// Truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}
