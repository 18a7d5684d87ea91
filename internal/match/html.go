package match

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// resultsTableSelectors are tried in order; the first that matches wins.
var resultsTableSelectors = []string{
	"#dfb-Content-view table.listtable",
	"#dfb-Content-view table",
	"table.listtable",
}

// reportLinkSelector finds the edit link of a match report.
const reportLinkSelector = `a[href*="match-report"]`

type htmlTable struct {
	sel *goquery.Selection
}

// NewHTMLTable adapts a goquery table selection to Table.
func NewHTMLTable(sel *goquery.Selection) Table {
	return htmlTable{sel: sel.First()}
}

func (t htmlTable) rows() *goquery.Selection {
	return t.sel.Find("tr")
}

func (t htmlTable) HeaderCells() []string {
	first := t.rows().First()
	cells := make([]string, 0)
	first.ChildrenFiltered("th").Each(func(_ int, s *goquery.Selection) {
		cells = append(cells, innerText(s))
	})
	return cells
}

func (t htmlTable) Rows() []Row {
	sel := t.rows()
	rows := make([]Row, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		rows = append(rows, htmlRow{sel: s})
	})
	return rows
}

type htmlRow struct {
	sel *goquery.Selection
}

func (r htmlRow) Cells() []string {
	cells := make([]string, 0)
	r.sel.ChildrenFiltered("th, td").Each(func(_ int, s *goquery.Selection) {
		cells = append(cells, innerText(s))
	})
	return cells
}

func (r htmlRow) ReportLink() (string, string, error) {
	link := r.sel.Find(reportLinkSelector).First()
	if link.Length() == 0 {
		return "", "", nil
	}
	href, _ := link.Attr("href")
	return href, strings.TrimSpace(innerText(link)), nil
}

// FindResultsTable locates the Spielsuche results table in doc.
func FindResultsTable(doc *goquery.Document) (Table, bool) {
	for _, selector := range resultsTableSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return NewHTMLTable(sel), true
		}
	}
	return nil, false
}

// ExtractDocument finds the results table in doc and extracts its games.
// A document without a results table yields no games.
func ExtractDocument(doc *goquery.Document, opts Options) []UpcomingGame {
	table, ok := FindResultsTable(doc)
	if !ok {
		return make([]UpcomingGame, 0)
	}
	return Extract(table, opts)
}

// ExtractHTML parses an HTML page and extracts its games.
func ExtractHTML(r io.Reader, opts Options) ([]UpcomingGame, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return ExtractDocument(doc, opts), nil
}

// blockElements get a separating space, the way a browser's innerText would
// put them on their own line.
var blockElements = map[string]bool{
	"div": true, "p": true, "li": true, "tr": true,
}

// innerText approximates the rendered text of a selection: text nodes joined, line
// breaks and block boundaries turned into spaces, scripts and styles skipped.
func innerText(s *goquery.Selection) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style":
				return
			case "br":
				b.WriteByte(' ')
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			b.WriteByte(' ')
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return b.String()
}
