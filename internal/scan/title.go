package scan

import "strings"

// ExtractTitle returns the text of the first line whose trimmed form starts
// with "# ". Later headings are ignored. ok is false when no line matches.
func ExtractTitle(content string) (title string, ok bool) {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:]), true
		}
	}
	return "", false
}
