package ui

import (
	"fmt"
	"html/template"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"tablecast/domain/table"
	"tablecast/domain/transform"
	"tablecast/internal/profile"
)

// previewRowLimit caps how many data rows a preview fragment shows
const previewRowLimit = 8

// sourcePreviewView feeds the source preview fragment. HasTable false with
// Notes set renders a degraded template proposal: notes only, no table.
type sourcePreviewView struct {
	HasTable    bool
	SourceName  string
	SheetName   string
	SheetNotice string
	RowCount    int
	Headers     []string
	Rows        [][]string
	MoreRows    int
	Profiles    []profile.Column
	Notes       []template.HTML
}

// mappingView feeds the mapping fragment
type mappingView struct {
	Pairs       []table.MappingPair
	Suggestions []template.HTML
	HasMapping  bool
}

// outputView feeds the transformed-output fragment
type outputView struct {
	Headers  []string
	Rows     [][]string
	MoreRows int
	RowCount int
}

// sourcePreview builds the preview of a session's active table, including
// the ignored-sheets notice and the column profile
func (a *App) sourcePreview(sess *transform.Session, notes []string) sourcePreviewView {
	view := sourcePreviewView{
		SourceName: sess.SourceName,
		Notes:      renderMarkdownLines(notes),
	}

	active := sess.ActiveTable()
	if active == nil {
		return view
	}

	view.HasTable = true
	view.SheetName = active.Name
	view.RowCount = active.RowCount()
	view.Headers = active.Headers
	view.Rows, view.MoreRows = previewRows(active)
	view.Profiles = profile.Columns(active)

	if ignored := sess.IgnoredSheets(); len(ignored) > 0 {
		view.SheetNotice = fmt.Sprintf("%d sheets found; using %q. Ignored: %s.",
			sess.SheetCount(), active.Name, joinQuoted(ignored))
	}
	return view
}

func buildOutputView(t *table.Table) outputView {
	rows, more := previewRows(t)
	return outputView{
		Headers:  t.Headers,
		Rows:     rows,
		MoreRows: more,
		RowCount: t.RowCount(),
	}
}

// previewRows stringifies up to previewRowLimit rows, padded to the header
// width so the rendered table stays rectangular
func previewRows(t *table.Table) ([][]string, int) {
	limit := len(t.Rows)
	more := 0
	if limit > previewRowLimit {
		more = limit - previewRowLimit
		limit = previewRowLimit
	}

	out := make([][]string, limit)
	for i := 0; i < limit; i++ {
		cells := make([]string, len(t.Headers))
		for j := range cells {
			cells[j] = table.ValueString(t.Rows[i].CellAt(j))
		}
		out[i] = cells
	}
	return out, more
}

// renderMarkdownLines renders model-authored suggestion lines as HTML.
// Raw HTML in the source is skipped: the model's text is not trusted markup.
func renderMarkdownLines(lines []string) []template.HTML {
	if len(lines) == 0 {
		return nil
	}
	out := make([]template.HTML, len(lines))
	for i, line := range lines {
		out[i] = renderMarkdown(line)
	}
	return out
}

func renderMarkdown(text string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.SkipHTML,
	})
	return template.HTML(markdown.ToHTML([]byte(text), p, renderer))
}

func joinQuoted(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%q", n)
	}
	return out
}
