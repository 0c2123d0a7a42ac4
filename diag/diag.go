// Package diag renders issue reports against the source text they point
// into: one block per issue with the offending line, a caret underline
// covering the span, the located message and an optional hint.
package diag

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	kdlt "github.com/reoring/kdlt"
	"github.com/reoring/kdlt/i18n"
)

// Options configures a Renderer.
type Options struct {
	// Color switches on the lipgloss-styled form.
	Color bool
}

// Renderer formats issues for terminals.
type Renderer struct {
	opts Options
}

// NewRenderer returns a renderer with the given options.
func NewRenderer(opts Options) *Renderer { return &Renderer{opts: opts} }

// Render is the plain form, NewRenderer(Options{}).Render.
func Render(src []byte, iss kdlt.Issues) string {
	return NewRenderer(Options{}).Render(src, iss)
}

var (
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	underlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Render formats every issue against src, in report order, blocks
// separated by a blank line.
func (r *Renderer) Render(src []byte, iss kdlt.Issues) string {
	var b strings.Builder
	for i := range iss {
		if i > 0 {
			b.WriteByte('\n')
		}
		r.block(&b, src, iss[i])
	}
	return b.String()
}

func (r *Renderer) block(b *strings.Builder, src []byte, it kdlt.Issue) {
	line, col := locate(src, int(it.Span.Offset))
	b.WriteString(line)
	b.WriteByte('\n')
	b.WriteString(pad(line, col))
	b.WriteString(r.style(underlineStyle, carets(line, col, int(it.Span.Size))))
	b.WriteByte('\n')

	fmt.Fprintf(b, "at %d", it.Span.Offset)
	if it.Path != "" && it.Path != "/" {
		b.WriteString(" (" + it.Path + ")")
	}
	b.WriteString(": ")
	b.WriteString(r.style(labelStyle, i18n.T(it.Code, nil)))
	b.WriteString(": ")
	b.WriteString(it.Message)
	b.WriteByte('\n')
	if it.Hint != "" {
		b.WriteString(r.style(hintStyle, "  hint: "+it.Hint))
		b.WriteByte('\n')
	}
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if !r.opts.Color {
		return text
	}
	return s.Render(text)
}

// locate returns the line containing off, newline excluded, and the byte
// column of off within it. Offsets past the end land on the last line.
func locate(src []byte, off int) (line string, col int) {
	if off > len(src) {
		off = len(src)
	}
	start := off
	for start > 0 && src[start-1] != '\n' {
		start--
	}
	end := off
	for end < len(src) && src[end] != '\n' {
		end++
	}
	return string(src[start:end]), off - start
}

// pad mirrors the line's leading bytes up to col so the underline sits
// under the span even when the line carries tabs.
func pad(line string, col int) string {
	b := make([]byte, 0, col)
	for i := 0; i < col && i < len(line); i++ {
		if line[i] == '\t' {
			b = append(b, '\t')
		} else {
			b = append(b, ' ')
		}
	}
	return string(b)
}

// carets underlines size bytes, clipped to the line, one caret minimum.
func carets(line string, col, size int) string {
	n := size
	if rest := len(line) - col; n > rest {
		n = rest
	}
	if n < 1 {
		n = 1
	}
	return strings.Repeat("^", n)
}
