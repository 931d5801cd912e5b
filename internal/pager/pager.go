// Package pager wraps and paginates response text for the fixed-size device
// display.
package pager

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// ScrollStep is the number of lines a single scroll moves the window.
const ScrollStep = 3

// verseDelimiter is replaced with a hard line break for verse-style prompts
// so poetic output renders one line per stanza break.
const verseDelimiter = "/"

// verseMarkers flag a prompt label as verse-style.
var verseMarkers = []string{"haiku", "poem"}

// IsVerseLabel reports whether a prompt label requests verse-style line
// splitting.
func IsVerseLabel(label string) bool {
	l := strings.ToLower(label)
	for _, m := range verseMarkers {
		if strings.Contains(l, m) {
			return true
		}
	}
	return false
}

// Pager holds wrapped text and a scroll window over it.
type Pager struct {
	lines        []string
	scrollPos    int
	linesPerPage int
}

// Load wraps text into lines no wider than wrapWidth display columns and
// returns a pager positioned at the top. When verse is true, every
// verseDelimiter in the text becomes a hard line break before wrapping.
func Load(text string, wrapWidth, linesPerPage int, verse bool) *Pager {
	if wrapWidth < 1 {
		wrapWidth = 1
	}
	if linesPerPage < 1 {
		linesPerPage = 1
	}

	if verse {
		text = strings.ReplaceAll(text, verseDelimiter, "\n")
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, wrapLine(para, wrapWidth)...)
	}

	// A completely empty document still has one blank line so rendering and
	// clamping never see a zero-length slice.
	if len(lines) == 0 {
		lines = []string{""}
	}

	return &Pager{lines: lines, linesPerPage: linesPerPage}
}

// wrapLine breaks a single paragraph into lines of at most width display
// columns, measured with runewidth so wide glyphs count double.
func wrapLine(text string, width int) []string {
	words := strings.Fields(text)
	var lines []string
	var b strings.Builder
	lineLen := 0

	for _, word := range words {
		wordLen := runewidth.StringWidth(word)

		// A word wider than the display is chopped mid-word.
		for wordLen > width {
			if lineLen > 0 {
				lines = append(lines, b.String())
				b.Reset()
				lineLen = 0
			}
			head := runewidth.Truncate(word, width, "")
			if head == "" {
				// A single glyph wider than the display gets its own line.
				_, size := utf8.DecodeRuneInString(word)
				head = word[:size]
			}
			lines = append(lines, head)
			word = word[len(head):]
			wordLen = runewidth.StringWidth(word)
		}
		if word == "" {
			continue
		}

		switch {
		case lineLen == 0:
			b.WriteString(word)
			lineLen = wordLen
		case lineLen+1+wordLen > width:
			lines = append(lines, b.String())
			b.Reset()
			b.WriteString(word)
			lineLen = wordLen
		default:
			b.WriteString(" ")
			b.WriteString(word)
			lineLen += 1 + wordLen
		}
	}
	if lineLen > 0 {
		lines = append(lines, b.String())
	}
	return lines
}

// Lines returns all wrapped lines.
func (p *Pager) Lines() []string {
	return p.lines
}

// TotalLines returns the wrapped line count.
func (p *Pager) TotalLines() int {
	return len(p.lines)
}

// ScrollPos returns the index of the first visible line.
func (p *Pager) ScrollPos() int {
	return p.scrollPos
}

// Page returns the currently visible window of lines.
func (p *Pager) Page() []string {
	end := p.scrollPos + p.linesPerPage
	if end > len(p.lines) {
		end = len(p.lines)
	}
	return p.lines[p.scrollPos:end]
}

// maxScroll is the largest legal scroll position.
func (p *Pager) maxScroll() int {
	m := len(p.lines) - p.linesPerPage
	if m < 0 {
		return 0
	}
	return m
}

// ScrollUp moves the window up by ScrollStep lines, clamped at the top.
// It reports whether the position changed so callers can suppress redundant
// redraws.
func (p *Pager) ScrollUp() bool {
	if p.scrollPos == 0 {
		return false
	}
	p.scrollPos -= ScrollStep
	if p.scrollPos < 0 {
		p.scrollPos = 0
	}
	return true
}

// ScrollDown moves the window down by ScrollStep lines, clamped at the
// bottom, and reports whether the position changed.
func (p *Pager) ScrollDown() bool {
	max := p.maxScroll()
	if p.scrollPos >= max {
		return false
	}
	p.scrollPos += ScrollStep
	if p.scrollPos > max {
		p.scrollPos = max
	}
	return true
}

// Indicator returns the navigation hint for the current position: which
// directions still have content, or a page count when the whole document
// fits on one page.
func (p *Pager) Indicator() string {
	up := p.scrollPos > 0
	down := p.scrollPos < p.maxScroll()

	switch {
	case up && down:
		return "▲ go up  ▼ go down"
	case up:
		return "▲ go up"
	case down:
		return "▼ go down"
	default:
		pages := (len(p.lines) + p.linesPerPage - 1) / p.linesPerPage
		if pages < 1 {
			pages = 1
		}
		return fmt.Sprintf("page 1/%d", pages)
	}
}
