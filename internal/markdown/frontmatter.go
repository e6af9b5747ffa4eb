package markdown

import (
	"bufio"
	"bytes"
	"strings"
)

// Frontmatter is the --- delimited block at the top of a document. Only
// flat "key: value" pairs are understood.
type Frontmatter struct {
	Title   string
	Tags    []string
	Raw     map[string]string
	EndLine int // 1-based line of the closing ---
}

// ExtractFrontmatter returns nil when content has no closed frontmatter.
func ExtractFrontmatter(content []byte) *Frontmatter {
	scanner := bufio.NewScanner(bytes.NewReader(content))

	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "---" {
		return nil
	}

	fm := &Frontmatter{Raw: make(map[string]string)}

	lineNum := 1
	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if strings.TrimSpace(line) == "---" {
			fm.EndLine = lineNum
			break
		}

		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.Trim(strings.TrimSpace(val), `"'`)
		fm.Raw[key] = val

		switch key {
		case "title":
			fm.Title = val
		case "tags":
			for _, tag := range strings.Split(strings.Trim(val, "[]"), ",") {
				if tag = strings.TrimSpace(tag); tag != "" {
					fm.Tags = append(fm.Tags, tag)
				}
			}
		}
	}

	if fm.EndLine == 0 {
		return nil
	}
	return fm
}

// StripFrontmatter returns content without its leading frontmatter block.
// Content without a closed block is returned unchanged.
func StripFrontmatter(content []byte) []byte {
	fm := ExtractFrontmatter(content)
	if fm == nil {
		return content
	}
	rest := content
	for i := 0; i < fm.EndLine; i++ {
		idx := bytes.IndexByte(rest, '\n')
		if idx < 0 {
			return nil
		}
		rest = rest[idx+1:]
	}
	return rest
}
