package format

import (
	"strings"
	"unicode/utf8"

	"github.com/gnzdotmx/vidscribe/internal/transcript"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Options controls the prose rendering
type Options struct {
	Width         int
	ParagraphSize int
	Language      language.Tag
}

// DefaultOptions returns a width of 100 columns and paragraphs of 4 lines
func DefaultOptions() Options {
	return Options{Width: 100, ParagraphSize: 4, Language: language.Und}
}

// Raw renders one "[HH:MM:SS] " line per item, with a "Speaker {id}: " prefix
// when withSpeakers is set. Lines are joined by "\n" with no trailing newline.
func Raw(lines []transcript.AttributedLine, withSpeakers bool) string {
	return strings.Join(RawLines(lines, withSpeakers), "\n")
}

// RawLines is Raw without the final join
func RawLines(lines []transcript.AttributedLine, withSpeakers bool) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		var b strings.Builder
		b.WriteString("[")
		b.WriteString(line.Timestamp)
		b.WriteString("] ")
		if withSpeakers {
			b.WriteString("Speaker ")
			b.WriteString(line.Speaker)
			b.WriteString(": ")
		}
		b.WriteString(line.Text)
		out = append(out, b.String())
	}
	return out
}

// Prose renders normalized, timestamped lines grouped into wrapped paragraphs.
// Each paragraph starts with "\n " and paragraphs are separated by a blank line.
func Prose(lines []transcript.AttributedLine, opts Options) string {
	prefixed := make([]string, 0, len(lines))
	for _, line := range lines {
		prefixed = append(prefixed, "["+line.Timestamp+"] "+NormalizeText(line.Text, opts.Language))
	}

	paragraphs := GroupParagraphs(prefixed, opts.ParagraphSize)
	rendered := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		wrapped := Wrap(strings.Join(p, " "), opts.Width)
		rendered = append(rendered, "\n "+strings.Join(wrapped, "\n"))
	}
	return strings.Join(rendered, "\n\n")
}

// NormalizeText composes to NFC, collapses whitespace runs to one space, trims,
// and uppercases the first character only using the casing rules of lang.
func NormalizeText(s string, lang language.Tag) string {
	collapsed := strings.Join(strings.Fields(norm.NFC.String(s)), " ")
	if collapsed == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(collapsed)
	if r == utf8.RuneError {
		return collapsed
	}
	return cases.Upper(lang).String(string(r)) + collapsed[size:]
}

// GroupParagraphs splits lines into consecutive groups of size; the last group
// holds the remainder. A size below 1 is treated as 1.
func GroupParagraphs(lines []string, size int) [][]string {
	if size < 1 {
		size = 1
	}
	groups := make([][]string, 0, (len(lines)+size-1)/size)
	for start := 0; start < len(lines); start += size {
		end := min(start+size, len(lines))
		groups = append(groups, lines[start:end])
	}
	return groups
}

// Wrap breaks text at whitespace into lines of at most width runes. A word
// longer than width is placed alone on its own line, unbroken.
func Wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if width < 1 {
		width = 1
	}

	var lines []string
	var current strings.Builder
	currentLen := 0
	for _, word := range words {
		wordLen := utf8.RuneCountInString(word)
		if currentLen > 0 && currentLen+1+wordLen > width {
			lines = append(lines, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(word)
		currentLen += wordLen
	}
	if currentLen > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
