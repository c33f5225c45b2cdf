package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	// <br> renders as a line break in the browser
	if node.Type == html.ElementNode && node.Data == "br" {
		buffer.WriteByte('\n')
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`[\s\p{Zs}]+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText trims the text and collapses every run of whitespace (including
// &nbsp;) into a single space, roughly what a browser shows for the text.
func CleanText(text string) string {
	text = removeNonPrintable(text)
	text = innerWhitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// TableRows returns the cell text of every row in a table, header cells (th)
// and data cells (td) alike. Rows without any cells are kept as empty rows so
// that row positions match the source table.
func TableRows(table *goquery.Selection) [][]string {
	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.ChildrenFiltered("th, td")
		row := make([]string, 0, cells.Length())
		for _, n := range cells.Nodes {
			row = append(row, CleanText(GetText(n)))
		}
		rows = append(rows, row)
	})
	return rows
}

// FormValues returns the name and value of every hidden input inside the
// selection, this is used to carry over state like ASP.NET's __VIEWSTATE when
// posting a form back.
func FormValues(form *goquery.Selection) map[string]string {
	values := map[string]string{}
	form.Find("input[type=hidden]").Each(func(_ int, input *goquery.Selection) {
		name, ok := input.Attr("name")
		if !ok || name == "" {
			return
		}
		values[name] = input.AttrOr("value", "")
	})
	return values
}
