package markdown

import (
	"bufio"
	"bytes"
	"strings"
)

// Heading represents a markdown heading.
type Heading struct {
	Level int
	Text  string
	Line  int // 1-based line number
}

// Anchor returns a fragment id for the heading.
func (h Heading) Anchor() string {
	return Slugify(h.Text)
}

// ExtractHeadings returns the ATX headings of content, skipping
// frontmatter and fenced code blocks.
func ExtractHeadings(content []byte) []Heading {
	var headings []Heading
	scanner := bufio.NewScanner(bytes.NewReader(content))

	var fence fenceTracker
	inFrontmatter := false
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if lineNum == 1 && strings.TrimSpace(line) == "---" {
			inFrontmatter = true
			continue
		}
		if inFrontmatter {
			if strings.TrimSpace(line) == "---" {
				inFrontmatter = false
			}
			continue
		}
		if fence.feed(line) {
			continue
		}

		level, text, ok := parseATX(line)
		if ok && text != "" {
			headings = append(headings, Heading{
				Level: level,
				Text:  text,
				Line:  lineNum,
			})
		}
	}

	return headings
}

// parseATX splits "## Title ##" into (2, "Title"). Up to three leading
// spaces are allowed and the hashes must be followed by a space or end
// of line.
func parseATX(line string) (int, string, bool) {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || !strings.HasPrefix(trimmed, "#") {
		return 0, "", false
	}

	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level > 6 {
		return 0, "", false
	}
	rest := trimmed[level:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return 0, "", false
	}

	text := strings.TrimSpace(rest)
	text = strings.TrimRight(text, "# ")
	return level, strings.TrimSpace(text), true
}

// fenceTracker follows ``` and ~~~ fenced code blocks line by line.
type fenceTracker struct {
	marker string
}

// feed reports whether line belongs to a fenced block, fence lines
// included.
func (f *fenceTracker) feed(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if f.marker != "" {
		if strings.HasPrefix(trimmed, f.marker) && strings.TrimSpace(strings.TrimLeft(trimmed, f.marker[:1])) == "" {
			f.marker = ""
		}
		return true
	}
	for _, m := range []string{"```", "~~~"} {
		if strings.HasPrefix(trimmed, m) {
			n := 0
			for n < len(trimmed) && trimmed[n] == m[0] {
				n++
			}
			f.marker = trimmed[:n]
			return true
		}
	}
	return false
}
