package markdown

import "testing"

func TestExtractHeadings(t *testing.T) {
	input := "---\ntitle: Test\n---\n\n# Heading 1\n\nSome text.\n\n```md\n# not a heading\n```\n\n## Heading 2\n\n#hashtag\n\n### Heading 3 ###\n"
	headings := ExtractHeadings([]byte(input))

	if len(headings) != 3 {
		t.Fatalf("got %d headings, want 3: %+v", len(headings), headings)
	}

	tests := []struct {
		level int
		text  string
		line  int
	}{
		{1, "Heading 1", 5},
		{2, "Heading 2", 13},
		{3, "Heading 3", 17},
	}

	for i, tt := range tests {
		if headings[i].Level != tt.level {
			t.Errorf("[%d] level: got %d, want %d", i, headings[i].Level, tt.level)
		}
		if headings[i].Text != tt.text {
			t.Errorf("[%d] text: got %q, want %q", i, headings[i].Text, tt.text)
		}
		if headings[i].Line != tt.line {
			t.Errorf("[%d] line: got %d, want %d", i, headings[i].Line, tt.line)
		}
	}
}

func TestHeadingAnchor(t *testing.T) {
	h := Heading{Level: 2, Text: "Getting Started!"}
	if got := h.Anchor(); got != "getting-started" {
		t.Errorf("Anchor() = %q", got)
	}
}
