package views

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"

	"github.com/Akashdeep-Patra/zed-page-view/internal/ui"
)

// Kind selects how a document is rendered, and doubles as the reuse
// identifier of the pages that show it.
type Kind string

const (
	KindMarkdown Kind = "markdown"
	KindText     Kind = "text"
)

// Document is what one page shows.
type Document struct {
	Name    string
	Path    string
	Kind    Kind
	ModTime time.Time
	Body    string
	// Err is set when the body could not be read; the page shows it instead.
	Err error
}

// Renderer turns a document body into styled terminal text for a width.
// Implementations must be safe for concurrent use: prefetching renders off
// the update loop.
type Renderer interface {
	Render(doc Document, width int) (string, error)
}

// minWrap keeps glamour from wrapping into a sliver on tiny terminals.
const minWrap = 20

// MarkdownRenderer renders markdown with glamour in a named standard style
// ("dark", "light", "notty", ...).
type MarkdownRenderer struct {
	Style string
}

func (r MarkdownRenderer) Render(doc Document, width int) (string, error) {
	style := r.Style
	if style == "" {
		style = "dark"
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width-2, minWrap)),
	)
	if err != nil {
		return "", fmt.Errorf("views: markdown renderer: %w", err)
	}
	out, err := tr.Render(doc.Body)
	if err != nil {
		return "", fmt.Errorf("views: render %s: %w", doc.Name, err)
	}
	return strings.TrimRight(out, "\n"), nil
}

// TextRenderer renders plain text, optionally wrapped and line-numbered.
type TextRenderer struct {
	Styles      ui.Styles
	LineNumbers bool
	Wrap        bool
}

// gutter is the width of the line number column (LineNum style).
const gutter = 6

func (r TextRenderer) Render(doc Document, width int) (string, error) {
	body := strings.ReplaceAll(strings.TrimRight(doc.Body, "\n"), "\t", "    ")
	limit := width
	if r.LineNumbers {
		limit -= gutter
	}

	var b strings.Builder
	for i, line := range strings.Split(body, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		parts := []string{line}
		if r.Wrap && limit > 0 {
			parts = strings.Split(ansi.Wrap(line, limit, ""), "\n")
		}
		for j, part := range parts {
			if j > 0 {
				b.WriteByte('\n')
			}
			if r.LineNumbers {
				num := ""
				if j == 0 {
					num = strconv.Itoa(i + 1)
				}
				b.WriteString(r.Styles.LineNum.Render(num))
			}
			b.WriteString(r.Styles.PageBody.Render(part))
		}
	}
	return b.String(), nil
}
