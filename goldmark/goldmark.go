// Package goldmark renders assistant answers, which are markdown, to
// ANSI-styled terminal text using goldmark for parsing and lipgloss for
// styling.
package goldmark

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/chatstream"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// defaultWidth is used when the caller does not know the terminal width.
const defaultWidth = 80

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs, quotes and list items are word-wrapped to width; code blocks
// keep their lines as written.
//
// Answers are rendered while they stream, so source may end inside a fenced
// code block. The fence is closed for rendering only.
func Render(source string, width int, theme chatstream.Theme) string {
	if strings.TrimSpace(source) == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	if HasUnclosedFence(source) {
		source += "\n```"
	}
	r := newRenderer(theme)
	src := []byte(source)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var b strings.Builder
	r.blocks(&b, doc, src, width)
	return strings.TrimRight(b.String(), "\n")
}

// HasUnclosedFence reports whether s has an odd number of "```" markers.
// Triple backticks inside inline code spans are counted too.
func HasUnclosedFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}

type renderer struct {
	bold      lipgloss.Style
	italic    lipgloss.Style
	heading   lipgloss.Style
	muted     lipgloss.Style
	quote     lipgloss.Style
	underline lipgloss.Style
}

func newRenderer(theme chatstream.Theme) *renderer {
	return &renderer{
		bold:      lipgloss.NewStyle().Bold(true),
		italic:    lipgloss.NewStyle().Italic(true),
		heading:   lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		quote:     lipgloss.NewStyle().Foreground(ansiColor(theme.Quote)),
		underline: lipgloss.NewStyle().Underline(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

func wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

// blocks renders the children of node, separating siblings by a blank line.
func (r *renderer) blocks(b *strings.Builder, node ast.Node, src []byte, width int) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.block(b, c, src, width)
		if c.NextSibling() != nil {
			b.WriteString("\n")
		}
	}
}

func (r *renderer) block(b *strings.Builder, node ast.Node, src []byte, width int) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		b.WriteString(wrap(r.inlines(n, src), width))
		b.WriteString("\n")

	case *ast.Heading:
		b.WriteString(wrap(r.heading.Render(r.inlines(n, src)), width))
		b.WriteString("\n")

	case *ast.FencedCodeBlock:
		if lang := string(n.Language(src)); lang != "" {
			b.WriteString(r.muted.Render(lang))
			b.WriteString("\n")
		}
		r.code(b, n.Lines(), src)

	case *ast.CodeBlock:
		r.code(b, n.Lines(), src)

	case *ast.Blockquote:
		var inner strings.Builder
		r.blocks(&inner, n, src, max(width-2, 10))
		gutter := r.quote.Render("┃") + " "
		for _, line := range strings.Split(strings.TrimRight(inner.String(), "\n"), "\n") {
			b.WriteString(gutter + line + "\n")
		}

	case *ast.List:
		r.list(b, n, src, width, 0)

	case *ast.ThematicBreak:
		b.WriteString(r.muted.Render(strings.Repeat("─", min(width, 40))))
		b.WriteString("\n")

	case *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(src))
		}

	default:
		r.blocks(b, node, src, width)
	}
}

func (r *renderer) code(b *strings.Builder, lines *text.Segments, src []byte) {
	gutter := r.muted.Render("│") + " "
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.WriteString(gutter)
		b.WriteString(strings.TrimRight(string(seg.Value(src)), "\n"))
		b.WriteString("\n")
	}
}

func (r *renderer) list(b *strings.Builder, node *ast.List, src []byte, width, depth int) {
	indent := strings.Repeat("  ", depth)
	num := node.Start
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "• "
		if node.IsOrdered() {
			marker = strconv.Itoa(num) + ". "
			num++
		}

		var body strings.Builder
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch in := ic.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				body.WriteString(r.inlines(in, src))
			case *ast.List:
				if body.Len() > 0 {
					r.item(b, indent+marker, body.String(), width)
					body.Reset()
				}
				r.list(b, in, src, width, depth+1)
				marker = strings.Repeat(" ", len(marker))
			default:
				r.block(&body, ic, src, width)
			}
		}
		if body.Len() > 0 {
			r.item(b, indent+marker, body.String(), width)
		}
	}
}

// item writes one list item, indenting continuation lines under its text.
func (r *renderer) item(b *strings.Builder, prefix, content string, width int) {
	hang := strings.Repeat(" ", lipgloss.Width(prefix))
	for i, line := range strings.Split(wrap(content, max(width-lipgloss.Width(prefix), 10)), "\n") {
		if i == 0 {
			b.WriteString(prefix)
		} else {
			b.WriteString(hang)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
}

// inlines collects the styled inline text of node's children.
func (r *renderer) inlines(node ast.Node, src []byte) string {
	var b strings.Builder
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.inline(&b, c, src)
	}
	return b.String()
}

func (r *renderer) inline(b *strings.Builder, node ast.Node, src []byte) {
	switch n := node.(type) {
	case *ast.Text:
		b.Write(n.Segment.Value(src))
		switch {
		case n.HardLineBreak():
			b.WriteString("\n")
		case n.SoftLineBreak():
			b.WriteString(" ")
		}

	case *ast.String:
		b.Write(n.Value)

	case *ast.Emphasis:
		inner := r.inlines(n, src)
		if n.Level == 1 {
			b.WriteString(r.italic.Render(inner))
		} else {
			b.WriteString(r.bold.Render(inner))
		}

	case *ast.CodeSpan:
		b.WriteString(r.bold.Render(r.inlines(n, src)))

	case *ast.Link:
		b.WriteString(r.underline.Render(r.inlines(n, src)))
		b.WriteString(" " + r.muted.Render("("+string(n.Destination)+")"))

	case *ast.Image:
		b.WriteString(r.underline.Render(r.inlines(n, src)))
		b.WriteString(" " + r.muted.Render("("+string(n.Destination)+")"))

	case *ast.AutoLink:
		b.WriteString(r.underline.Render(string(n.URL(src))))

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			b.Write(seg.Value(src))
		}

	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			r.inline(b, c, src)
		}
	}
}
