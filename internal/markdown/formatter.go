package markdown

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

// Format applies deterministic formatting to markdown:
//   - one space after heading hashes, trailing hashes dropped
//   - a blank line before each heading
//   - one space after list markers ("-", "*", "+", "1.")
//   - trailing whitespace trimmed
//   - at most two consecutive blank lines
//   - exactly one trailing newline
//
// Frontmatter and fenced code blocks are left untouched.
func Format(content []byte) []byte {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var out []string
	var fence fenceTracker
	inFrontmatter := false
	blanks := 0
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if lineNum == 1 && strings.TrimSpace(line) == "---" {
			inFrontmatter = true
			out = append(out, line)
			continue
		}
		if inFrontmatter {
			out = append(out, line)
			if strings.TrimSpace(line) == "---" {
				inFrontmatter = false
			}
			continue
		}
		if fence.feed(line) {
			blanks = 0
			out = append(out, line)
			continue
		}

		line = strings.TrimRight(line, " \t")

		if line == "" {
			blanks++
			if blanks <= 2 {
				out = append(out, line)
			}
			continue
		}

		if level, text, ok := parseATX(line); ok {
			line = strings.Repeat("#", level)
			if text != "" {
				line += " " + text
			}
			if len(out) > 0 && blanks == 0 && !isFrontmatterEnd(out, lineNum-1) {
				out = append(out, "")
			}
		} else {
			line = normalizeListItem(line)
		}
		blanks = 0
		out = append(out, line)
	}

	result := strings.Join(out, "\n")
	result = strings.TrimRight(result, "\n") + "\n"
	return []byte(result)
}

// isFrontmatterEnd reports whether the last emitted line closed the
// frontmatter block that started the document.
func isFrontmatterEnd(out []string, prevLine int) bool {
	return len(out) == prevLine && len(out) > 1 &&
		strings.TrimSpace(out[0]) == "---" && strings.TrimSpace(out[len(out)-1]) == "---"
}

var listItemRe = regexp.MustCompile(`^(\s*)([-*+]|\d+[.)])[ \t]+(\S.*)$`)

func normalizeListItem(line string) string {
	m := listItemRe.FindStringSubmatch(line)
	if m == nil {
		return line
	}
	// "---", "***" and friends are thematic breaks, not list items.
	if strings.Trim(strings.ReplaceAll(line, " ", ""), m[2]) == "" {
		return line
	}
	return m[1] + m[2] + " " + m[3]
}
