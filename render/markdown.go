package render

import (
	"regexp"
	"strings"
)

// LineKind classifies one line of the Markdown body.
type LineKind string

const (
	LineHeader    LineKind = "header"
	LineSubHeader LineKind = "subheader"
	LineBullet    LineKind = "bullet"
	LineNumbered  LineKind = "numbered"
	LineParagraph LineKind = "paragraph"
	LineBlank     LineKind = "blank"
)

// Emphasis is the inline style of a text segment.
type Emphasis string

const (
	Plain  Emphasis = "plain"
	Bold   Emphasis = "bold"
	Italic Emphasis = "italic"
)

// BulletGlyph replaces the "*" or "-" marker of bullet lines.
const BulletGlyph = "•"

// Segment is a run of text with a single emphasis.
type Segment struct {
	Text     string   `json:"text"`
	Emphasis Emphasis `json:"emphasis"`
}

// Line is one rendered line of the body.
type Line struct {
	Kind     LineKind  `json:"kind"`
	Segments []Segment `json:"segments,omitempty"`
}

// Text returns the line content without emphasis markers.
func (l Line) Text() string {
	var b strings.Builder
	for _, s := range l.Segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

var (
	numberedPattern  = regexp.MustCompile(`^\d+\.\s`)
	subHeaderPattern = regexp.MustCompile(`^#+\s`)
	bulletPattern    = regexp.MustCompile(`^[*-]\s`)
)

// ParseMarkdown interprets a strict, line oriented Markdown subset: "# "
// headers, "## "/"### " sub-headers, "* "/"- " bullets, "1. " numbered lines
// (kept verbatim), paragraphs and blank lines. Inline **bold** and *italic*
// are recognised inside every line. Nested lists, tables, links and images are
// not part of the subset and render as plain text.
func ParseMarkdown(markdown string) []Line {
	if markdown == "" {
		return nil
	}

	rawLines := strings.Split(markdown, "\n")
	lines := make([]Line, 0, len(rawLines))
	for _, raw := range rawLines {
		lines = append(lines, parseLine(strings.TrimSpace(raw)))
	}
	return lines
}

func parseLine(trimmed string) Line {
	switch {
	case trimmed == "":
		return Line{Kind: LineBlank}
	case strings.HasPrefix(trimmed, "# "):
		return Line{Kind: LineHeader, Segments: ParseInline(strings.TrimPrefix(trimmed, "# "))}
	case strings.HasPrefix(trimmed, "## "), strings.HasPrefix(trimmed, "### "):
		return Line{Kind: LineSubHeader, Segments: ParseInline(subHeaderPattern.ReplaceAllString(trimmed, ""))}
	case bulletPattern.MatchString(trimmed):
		return Line{Kind: LineBullet, Segments: ParseInline(BulletGlyph + " " + trimmed[2:])}
	case numberedPattern.MatchString(trimmed):
		return Line{Kind: LineNumbered, Segments: ParseInline(trimmed)}
	default:
		return Line{Kind: LineParagraph, Segments: ParseInline(trimmed)}
	}
}

// ParseInline splits text into plain, bold and italic segments. Double
// asterisks are split first, then single asterisks inside the plain parts, so
// emphasis never nests. A marker without a closing partner stays literal.
func ParseInline(text string) []Segment {
	var segments []Segment
	parts, rest, unmatched := splitDelimited(text, "**")
	for i, part := range parts {
		if i%2 == 1 {
			segments = appendSegment(segments, part, Bold)
			continue
		}
		segments = appendItalics(segments, part)
	}
	if unmatched {
		segments = appendSegment(segments, "**", Plain)
		segments = appendItalics(segments, rest)
	}
	return segments
}

func appendItalics(segments []Segment, text string) []Segment {
	parts, rest, unmatched := splitDelimited(text, "*")
	for i, part := range parts {
		if i%2 == 1 {
			segments = appendSegment(segments, part, Italic)
		} else {
			segments = appendSegment(segments, part, Plain)
		}
	}
	if unmatched {
		segments = appendSegment(segments, "*"+rest, Plain)
	}
	return segments
}

// splitDelimited splits s on delim so that odd indexes are enclosed parts.
// When the last delimiter has no partner, the text after it is returned as
// rest and unmatched is true.
func splitDelimited(s, delim string) (parts []string, rest string, unmatched bool) {
	parts = strings.Split(s, delim)
	if len(parts)%2 == 0 {
		last := len(parts) - 1
		return parts[:last], parts[last], true
	}
	return parts, "", false
}

func appendSegment(segments []Segment, text string, emphasis Emphasis) []Segment {
	if text == "" {
		return segments
	}
	if n := len(segments); n > 0 && segments[n-1].Emphasis == emphasis {
		segments[n-1].Text += text
		return segments
	}
	return append(segments, Segment{Text: text, Emphasis: emphasis})
}
