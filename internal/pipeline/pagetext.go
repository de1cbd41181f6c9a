package pipeline

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ppiankov/claimcheck/internal/util"
	"golang.org/x/net/html"
)

// boilerplate is removed before looking for the main text
const boilerplate = "script, style, noscript, iframe, nav, header, footer, aside, form, svg"

// mainSelectors are tried in order; the first one yielding text wins
var mainSelectors = []string{
	"article p",
	"main p",
	"[role=main] p",
	"p",
}

// minParagraphChars drops menu items and captions that are tagged as paragraphs
const minParagraphChars = 40

// ExtractPageText returns the main text of an HTML page with whitespace collapsed,
// truncated to maxChars runes (no limit when maxChars <= 0)
func ExtractPageText(htmlContent string, maxChars int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}
	doc.Find(boilerplate).Remove()

	text := mainText(doc)
	if text == "" {
		var b strings.Builder
		for _, n := range doc.Nodes {
			extractVisibleText(n, &b)
		}
		text = util.NormalizeSpace(b.String())
	}

	return util.Truncate(text, maxChars)
}

func mainText(doc *goquery.Document) string {
	for _, selector := range mainSelectors {
		var parts []string
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			p := util.NormalizeSpace(s.Text())
			if len(p) >= minParagraphChars {
				parts = append(parts, p)
			}
		})
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}
	return ""
}

// extractVisibleText writes text nodes under n, skipping scripts and styles
func extractVisibleText(n *html.Node, buf *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "iframe", "template":
			return
		}
	}

	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			buf.WriteString(text)
			buf.WriteString(" ")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractVisibleText(c, buf)
	}
}
