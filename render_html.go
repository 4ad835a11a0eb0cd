package main

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var tooltipPolicy = bluemonday.UGCPolicy()

var pageTemplate = template.Must(template.New("page.html").Funcs(template.FuncMap{
	"cellClass":    cellClass,
	"cellStyle":    cellStyle,
	"downloadURL":  func(e Entry) string { return fileURL(KeyPath(e.Segments), true) },
	"entryDetails": entryDetails,
}).ParseFS(templateFS, "templates/page.html"))

// pageData feeds templates/page.html
type pageData struct {
	Title string
	View  View

	Error       string
	ErrorStatus string

	Table    *TableModel
	Tooltips []string // per column, sanitized HTML

	Inline      string
	Action      string
	FileName    string
	FileURL     string
	DownloadURL string
}

// RenderPage writes a full HTML page
func RenderPage(w io.Writer, data pageData) error {
	return pageTemplate.Execute(w, data)
}

// TooltipHTML converts a tooltip to sanitized HTML
func TooltipHTML(t *Tooltip) string {
	if t == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(t.Markdown()), &buf); err != nil {
		return template.HTMLEscapeString(t.Title + ": " + t.Definition)
	}
	return strings.TrimSpace(tooltipPolicy.Sanitize(buf.String()))
}

// tooltipColumns renders the tooltip of every header, empty when absent
func tooltipColumns(model *TableModel) []string {
	tooltips := make([]string, len(model.Headers))
	for i, h := range model.Headers {
		tooltips[i] = TooltipHTML(h.Tooltip)
	}
	return tooltips
}

func cellClass(col int, cell Cell) string {
	var classes []string
	if col == 0 {
		classes = append(classes, "label")
	}
	if cell.Align == AlignRight {
		classes = append(classes, "num")
	}
	if cell.Wide {
		classes = append(classes, "wide")
	}
	return strings.Join(classes, " ")
}

// cellStyle only ever emits colours produced by RGB.Hex
func cellStyle(cell Cell) template.CSS {
	if _, err := ParseHex(cell.Background); err != nil {
		return ""
	}
	return template.CSS("background-color: " + cell.Background)
}

// fileURL is the content proxy address of a key
func fileURL(key string, download bool) string {
	q := url.Values{"key": {key}}
	if download {
		q.Set("download", "1")
	}
	return "/_file?" + q.Encode()
}

func pageTitle(segments []string) string {
	if len(segments) == 0 {
		return "Results"
	}
	return path.Join(segments...) + " - Results"
}
